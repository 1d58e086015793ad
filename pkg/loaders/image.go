package loaders

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // JPEG decoder
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// maxPPMPixels bounds decoded PPM images so a corrupt header cannot request a huge buffer
const maxPPMPixels = 1 << 28

// SaveImage writes 3-byte RGB scanlines (top row first) to path. The format
// follows the extension: .ppm writes binary PPM, anything else PNG, with
// ".png" appended when the path has neither extension. Returns the final path.
func SaveImage(path string, width, height int, rgb []byte) (string, error) {
	if width <= 0 || height <= 0 || len(rgb) != width*height*3 {
		return "", fmt.Errorf("image data is %d bytes, want %dx%dx3", len(rgb), width, height)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".png" && ext != ".ppm" {
		path += ".png"
		ext = ".png"
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	err := writeImageFile(path, func(w io.Writer) error {
		if ext == ".ppm" {
			return EncodePPM(w, width, height, rgb)
		}
		return png.Encode(w, RGBToImage(width, height, rgb))
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// writeImageFile creates path and fills it with encode. A failed write leaves no file behind.
func writeImageFile(path string, encode func(w io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}

	err = encode(file)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// RGBToImage wraps 3-byte RGB scanlines in an opaque image
func RGBToImage(width, height int, rgb []byte) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			offset := (y*width + x) * 3
			img.SetRGBA(x, y, color.RGBA{R: rgb[offset], G: rgb[offset+1], B: rgb[offset+2], A: 255})
		}
	}
	return img
}

// LoadImage loads a PNG, JPEG or binary PPM image
func LoadImage(filename string) (image.Image, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	// Format is detected from the file header
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func init() {
	image.RegisterFormat("ppm", "P6", DecodePPM, DecodePPMConfig)
}

// EncodePPM writes a binary (P6) PPM with a maximum value of 255
func EncodePPM(w io.Writer, width, height int, rgb []byte) error {
	if _, err := fmt.Fprintf(w, "P6\n%d %d\n255\n", width, height); err != nil {
		return err
	}
	_, err := w.Write(rgb)
	return err
}

// DecodePPM reads a binary (P6) PPM with a maximum value of 255
func DecodePPM(r io.Reader) (image.Image, error) {
	br := bufio.NewReader(r)
	cfg, err := readPPMHeader(br)
	if err != nil {
		return nil, err
	}

	rgb := make([]byte, cfg.Width*cfg.Height*3)
	if _, err := io.ReadFull(br, rgb); err != nil {
		return nil, fmt.Errorf("ppm: pixel data: %w", err)
	}
	return RGBToImage(cfg.Width, cfg.Height, rgb), nil
}

// DecodePPMConfig returns the dimensions of a binary PPM
func DecodePPMConfig(r io.Reader) (image.Config, error) {
	return readPPMHeader(bufio.NewReader(r))
}

func readPPMHeader(br *bufio.Reader) (image.Config, error) {
	var magic string
	var width, height, maxValue int
	if _, err := fmt.Fscan(br, &magic, &width, &height, &maxValue); err != nil {
		return image.Config{}, fmt.Errorf("ppm: header: %w", err)
	}
	if magic != "P6" || maxValue != 255 || width <= 0 || height <= 0 {
		return image.Config{}, fmt.Errorf("ppm: unsupported header %s %dx%d max %d", magic, width, height, maxValue)
	}
	if width > math.MaxInt/3/height || width*height > maxPPMPixels {
		return image.Config{}, fmt.Errorf("ppm: image %dx%d is too large", width, height)
	}
	// Exactly one whitespace byte separates the header from the pixels
	if _, err := br.ReadByte(); err != nil {
		return image.Config{}, fmt.Errorf("ppm: header: %w", err)
	}
	return image.Config{ColorModel: color.RGBAModel, Width: width, Height: height}, nil
}
