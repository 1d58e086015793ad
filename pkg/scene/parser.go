package scene

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// SceneFileExt is the extension of scene description files
const SceneFileExt = ".scene"

// LoadFile reads and parses a scene file. The scene is named after the file.
func LoadFile(path string, opts Options) (*Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer file.Close()

	s, err := Parse(file, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return s, nil
}

// Parse reads a line-oriented scene description:
//
//	// comment
//	CAM fx fy fz tx ty tz fov
//	MAT name lambertian|metal|dielectric|light r g b [fuzz|index]
//	OBJ sphere mat cx cy cz radius
//	OBJ rect mat xy|xz|yz a0 a1 b0 b1 k
//	BG r g b
//	BG gradient tr tg tb br bg bb
//	~ n
//
// "~ n" runs the next line n times. Any number may be written lo_hi to draw it
// uniformly from [lo, hi], drawn again on every repetition.
func Parse(r io.Reader, opts Options) (*Scene, error) {
	p := &parser{
		random:    rand.New(rand.NewSource(opts.Seed)),
		materials: make(map[string]material.Material),
		world:     NewWorld(nil),
		camera: geometry.CameraConfig{
			Center:      core.NewVec3(0, 0, 0),
			LookAt:      core.NewVec3(0, 0, 1),
			Up:          core.NewVec3(0, 1, 0),
			Width:       400,
			AspectRatio: 16.0 / 9.0,
			VFov:        90.0,
		},
	}

	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	for i := 0; i < len(lines); i++ {
		current := lines[i]
		if current.fields[0] != "~" {
			if err := p.execute(current); err != nil {
				return nil, err
			}
			continue
		}

		count, err := repeatCount(current)
		if err != nil {
			return nil, err
		}
		if i+1 >= len(lines) {
			return nil, fmt.Errorf("line %d: repeat has no following line", current.number)
		}
		target := lines[i+1]
		if target.fields[0] == "~" {
			return nil, fmt.Errorf("line %d: repeat cannot target another repeat", target.number)
		}
		for k := 0; k < count; k++ {
			if err := p.execute(target); err != nil {
				return nil, err
			}
		}
		i++
	}

	sampling := SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
	s, err := newScene("", p.camera, sampling, p.world, []geometry.CameraConfig{opts.Camera})
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}
	return s, nil
}

type line struct {
	number int
	fields []string
}

// readLines returns the non-blank, non-comment lines with their 1-based numbers
func readLines(r io.Reader) ([]line, error) {
	var lines []line
	scanner := bufio.NewScanner(r)
	number := 0
	for scanner.Scan() {
		number++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "//") {
			continue
		}
		lines = append(lines, line{number: number, fields: strings.Fields(text)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return lines, nil
}

func repeatCount(l line) (int, error) {
	if len(l.fields) != 2 {
		return 0, fmt.Errorf("line %d: want \"~ count\"", l.number)
	}
	count, err := strconv.Atoi(l.fields[1])
	if err != nil || count < 0 {
		return 0, fmt.Errorf("line %d: invalid repeat count %q", l.number, l.fields[1])
	}
	return count, nil
}

type parser struct {
	random    *rand.Rand
	materials map[string]material.Material
	world     *World
	camera    geometry.CameraConfig
}

func (p *parser) execute(l line) error {
	var err error
	switch l.fields[0] {
	case "CAM":
		err = p.parseCamera(l.fields[1:])
	case "MAT":
		err = p.parseMaterial(l.fields[1:])
	case "OBJ":
		err = p.parseObject(l.fields[1:])
	case "BG":
		err = p.parseBackground(l.fields[1:])
	default:
		err = fmt.Errorf("unknown command %q", l.fields[0])
	}
	if err != nil {
		return fmt.Errorf("line %d: %w", l.number, err)
	}
	return nil
}

func (p *parser) parseCamera(args []string) error {
	if len(args) != 7 {
		return fmt.Errorf("CAM wants 7 values, got %d", len(args))
	}
	values, err := p.numbers(args)
	if err != nil {
		return err
	}
	p.camera.Center = core.NewVec3(values[0], values[1], values[2])
	p.camera.LookAt = core.NewVec3(values[3], values[4], values[5])
	p.camera.VFov = values[6]
	return nil
}

func (p *parser) parseMaterial(args []string) error {
	if len(args) != 5 && len(args) != 6 {
		return fmt.Errorf("MAT wants name, kind, r g b and an optional parameter, got %d values", len(args))
	}
	name, kind := args[0], args[1]

	values, err := p.numbers(args[2:])
	if err != nil {
		return err
	}
	albedo := core.NewColor(values[0], values[1], values[2])

	// Fuzz for metal, refractive index for dielectric
	extra := 1.0
	if len(values) == 4 {
		extra = values[3]
	}

	var mat material.Material
	switch kind {
	case "lambertian":
		mat = material.NewLambertian(albedo)
	case "metal":
		mat = material.NewMetal(albedo, extra)
	case "dielectric":
		mat = material.NewDielectric(extra)
	case "light":
		mat = material.NewDiffuseLight(albedo)
	default:
		return fmt.Errorf("unknown material kind %q", kind)
	}

	p.materials[name] = mat
	return nil
}

func (p *parser) parseObject(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("OBJ wants a kind and a material")
	}
	kind, matName := args[0], args[1]

	mat, ok := p.materials[matName]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownMaterial, matName)
	}

	switch kind {
	case "sphere":
		if len(args) != 6 {
			return fmt.Errorf("OBJ sphere wants material, center and radius")
		}
		values, err := p.numbers(args[2:])
		if err != nil {
			return err
		}
		p.world.Add(geometry.NewSphere(core.NewVec3(values[0], values[1], values[2]), values[3], mat))
	case "rect":
		if len(args) != 8 {
			return fmt.Errorf("OBJ rect wants material, plane, a0 a1 b0 b1 and k")
		}
		plane, err := geometry.ParsePlane(args[2])
		if err != nil {
			return err
		}
		values, err := p.numbers(args[3:])
		if err != nil {
			return err
		}
		rect, err := geometry.NewAxisRect(plane, values[0], values[1], values[2], values[3], values[4], mat)
		if err != nil {
			return err
		}
		p.world.Add(rect)
	default:
		return fmt.Errorf("unknown object kind %q", kind)
	}
	return nil
}

func (p *parser) parseBackground(args []string) error {
	if len(args) == 7 && args[0] == "gradient" {
		values, err := p.numbers(args[1:])
		if err != nil {
			return err
		}
		p.world.Background = NewGradientBackground(
			core.NewColor(values[0], values[1], values[2]),
			core.NewColor(values[3], values[4], values[5]),
		)
		return nil
	}

	if len(args) != 3 {
		return fmt.Errorf("BG wants r g b or gradient with two colours")
	}
	values, err := p.numbers(args)
	if err != nil {
		return err
	}
	p.world.Background = NewSolidBackground(core.NewColor(values[0], values[1], values[2]))
	return nil
}

func (p *parser) numbers(tokens []string) ([]float64, error) {
	values := make([]float64, len(tokens))
	for i, token := range tokens {
		value, err := p.number(token)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return values, nil
}

// number parses a float, or a lo_hi range drawn uniformly from [lo, hi]
func (p *parser) number(token string) (float64, error) {
	parts := strings.Split(token, "_")
	switch len(parts) {
	case 1:
		value, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", token)
		}
		return value, nil
	case 2:
		lo, errLo := strconv.ParseFloat(parts[0], 64)
		hi, errHi := strconv.ParseFloat(parts[1], 64)
		if errLo != nil || errHi != nil || lo > hi {
			return 0, fmt.Errorf("invalid range %q", token)
		}
		return lo + (hi-lo)*p.random.Float64(), nil
	}
	return 0, fmt.Errorf("invalid range %q", token)
}
