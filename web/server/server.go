package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/df07/go-pathtracer/pkg/config"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

const writeTimeout = 200 * time.Millisecond

// FrameMessage is one preview image pushed to every frames client
type FrameMessage struct {
	Scene     string  `json:"scene"`
	Frame     int     `json:"frame"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Samples   int     `json:"samples"`
	ElapsedMs int64   `json:"elapsedMs"`
	AvgSpp    float64 `json:"avgSpp"`
	PNG       string  `json:"png"` // base64
}

// ControlMessage changes what the preview renders
type ControlMessage struct {
	Scene string `json:"scene,omitempty"` // switch to this scene
	Reset bool   `json:"reset,omitempty"` // restart the current scene from zero samples
}

// ControlReply answers every control message
type ControlReply struct {
	Scene  string `json:"scene"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Error  string `json:"error,omitempty"`
}

// Server streams progressive previews of a scene over websockets
type Server struct {
	cfg      *config.Config
	sceneDir string
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	generation int
	current    *scene.Scene
	sceneName  string // as requested; may be a .scene path
	width      int
	height     int
	last       []byte
	frameID    int
	clients    map[*client]bool
	startTime  time.Time
}

// NewServer creates a preview server. sceneDir is searched for .scene files by /api/scenes.
func NewServer(cfg *config.Config, sceneDir string, logger zerolog.Logger) *Server {
	return &Server{
		cfg:       cfg,
		sceneDir:  sceneDir,
		logger:    logger,
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		ctx:       context.Background(),
		clients:   map[*client]bool{},
		startTime: time.Now(),
	}
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/ws/frames", s.handleFramesWS)
	mux.HandleFunc("/ws/control", s.handleControlWS)
	return mux
}

// StartPreview begins rendering the configured scene. Previews stop when ctx is cancelled.
func (s *Server) StartPreview(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	return s.switchScene(s.cfg.Scene)
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := s.StartPreview(ctx); err != nil {
		return err
	}

	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Str("addr", addr).Msg("Preview server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// client is one frames connection. mu serialises writes, which gorilla/websocket
// allows only one at a time.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Close stops the running preview and disconnects every client
func (s *Server) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	clients := s.clients
	s.clients = map[*client]bool{}
	s.mu.Unlock()

	for c := range clients {
		c.conn.Close()
	}
}

// switchScene replaces the running preview with one of the named scene
func (s *Server) switchScene(name string) error {
	cfg := *s.cfg
	cfg.Scene = name
	sc, err := cfg.LoadScene()
	if err != nil {
		return err
	}
	preview, err := renderer.NewPreview(sc, cfg.PreviewConfig(), s.previewOptions(&cfg))
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	s.generation++
	generation := s.generation
	s.current = sc
	s.sceneName = name
	s.width, s.height = preview.Width(), preview.Height()
	s.last = nil
	s.mu.Unlock()

	s.logger.Info().
		Str("scene", sc.Name).
		Int("width", preview.Width()).
		Int("height", preview.Height()).
		Msg("Preview scene loaded")

	frames, errs := preview.Run(ctx)
	go s.pump(generation, sc.Name, frames, errs)
	return nil
}

func (s *Server) previewOptions(cfg *config.Config) renderer.Options {
	opts := cfg.PreviewOptions()
	logger := s.logger.With().Str("component", "preview").Logger()
	opts.Logger = &logger
	return opts
}

// pump forwards frames of one preview generation to the connected clients
func (s *Server) pump(generation int, name string, frames <-chan renderer.Frame, errs <-chan error) {
	start := time.Now()
	for frame := range frames {
		data, err := imageToBase64PNG(frame.Image)
		if err != nil {
			s.logger.Error().Err(err).Msg("Encode frame")
			continue
		}
		b, err := json.Marshal(FrameMessage{
			Scene:     name,
			Frame:     frame.Number,
			Width:     frame.Image.Bounds().Dx(),
			Height:    frame.Image.Bounds().Dy(),
			Samples:   frame.Samples,
			ElapsedMs: time.Since(start).Milliseconds(),
			AvgSpp:    frame.Stats.AverageSamples,
			PNG:       data,
		})
		if err != nil {
			s.logger.Error().Err(err).Msg("Marshal frame")
			continue
		}
		s.broadcast(generation, b)
	}
	if err := <-errs; err != nil {
		s.logger.Error().Err(err).Str("scene", name).Msg("Preview failed")
	}
}

// broadcast sends a frame to the clients connected when it arrives. Writes happen
// outside s.mu so a slow client cannot stall the HTTP handlers.
func (s *Server) broadcast(generation int, b []byte) {
	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		return
	}
	s.last = b
	s.frameID++
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		if err := c.write(b); err != nil {
			s.logger.Debug().Err(err).Msg("write frame")
		}
	}
}

func (s *Server) handleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}

	// Holding c.mu until the latest frame is written keeps a newer broadcast
	// from overtaking it.
	c.mu.Lock()
	s.mu.Lock()
	s.clients[c] = true
	last := s.last
	s.mu.Unlock()
	if last != nil {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		_ = conn.WriteMessage(websocket.TextMessage, last)
	}
	c.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, c)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) handleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ControlMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendReply(conn, "invalid control message: "+err.Error())
			continue
		}
		s.sendReply(conn, s.applyControl(msg))
	}
}

// applyControl returns a non-empty error text when the message was rejected
func (s *Server) applyControl(msg ControlMessage) string {
	name := msg.Scene
	if name == "" {
		if !msg.Reset {
			return ""
		}
		s.mu.Lock()
		name = s.sceneName
		s.mu.Unlock()
		if name == "" {
			return "no scene is loaded"
		}
	}
	if err := s.switchScene(name); err != nil {
		s.logger.Warn().Err(err).Str("scene", name).Msg("Control rejected")
		return err.Error()
	}
	return ""
}

func (s *Server) sendReply(conn *websocket.Conn, errText string) {
	s.mu.Lock()
	reply := ControlReply{Scene: s.sceneName, Width: s.width, Height: s.height, Error: errText}
	s.mu.Unlock()
	b, _ := json.Marshal(reply)
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := map[string]any{
		"status":   "ok",
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"clients":  len(s.clients),
	}
	if s.current != nil {
		resp["scene"] = s.current.Name
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	groups, err := scene.ListAllScenes(s.sceneDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
