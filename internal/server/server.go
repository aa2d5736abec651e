// Package server exposes the renderer over HTTP: one-shot image renders,
// pointer and selection queries for interactive clients, and a websocket
// that streams a rendered frame for every request it receives.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/maax3v3/escapetime/internal/escape"
	"github.com/maax3v3/escapetime/internal/imaging"
	"github.com/maax3v3/escapetime/internal/plane"
	"github.com/maax3v3/escapetime/internal/renderer"
)

// DefaultMaxPixels caps the canvas size of a single request.
const DefaultMaxPixels = 4096 * 4096

// Server is an http.Handler serving render requests.
type Server struct {
	router    chi.Router
	maxPixels int
	timeout   time.Duration
	font      renderer.FontRenderer
	origins   []string
}

// Option configures a Server.
type Option func(*Server)

// WithMaxPixels limits width*height for every request.
func WithMaxPixels(n int) Option {
	return func(s *Server) { s.maxPixels = n }
}

// WithTimeout bounds the time spent on one HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithFont sets the font used for annotated renders.
func WithFont(f renderer.FontRenderer) Option {
	return func(s *Server) { s.font = f }
}

// New builds a Server with its routes mounted.
func New(opts ...Option) *Server {
	s := &Server{
		maxPixels: DefaultMaxPixels,
		timeout:   time.Minute,
		font:      renderer.NewBasicFont(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/ws", s.handleWebsocket)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))
		r.Get("/render/{kind}", s.handleRender)
		r.Get("/point", s.handlePoint)
		r.Post("/select", s.handleSelect)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		t0 := time.Now()
		next.ServeHTTP(ww, r)
		Logger().Info("request",
			slog.String("id", reqID(r)),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("elapsed", time.Since(t0)),
		)
	})
}

func reqID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := renderRequestFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	req.Fractal = chi.URLParam(r, "kind")

	job, err := req.resolve(s.maxPixels)
	if err != nil {
		writeError(w, err)
		return
	}

	var res escape.Result
	select {
	case res = <-escape.Async(job.kind, job.params):
	case <-r.Context().Done():
		Logger().Warn("render abandoned", slog.String("kind", job.kind.String()), slog.Any("err", r.Context().Err()))
		return
	}
	if res.Err != nil {
		writeError(w, res.Err)
		return
	}

	var body bytes.Buffer
	if err := imaging.Encode(&body, s.frame(job, res.Buffer), job.format); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", job.format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
	_, _ = w.Write(body.Bytes())
}

// frame turns a finished buffer into the image sent to the client.
func (s *Server) frame(job render, buf *plane.Buffer) image.Image {
	img := buf.Image()
	if !job.annotate {
		return img
	}
	legend := renderer.Legend(escape.EffectiveColoring(job.kind, job.params.Coloring))
	return renderer.Annotate(img, legend, renderer.Caption(job.params.Start, job.params.End),
		s.font, renderer.ScaledConfig(job.params.Width))
}

// PointResponse reports the complex value under a pixel.
type PointResponse struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Value Complex `json:"value"`
}

func (s *Server) handlePoint(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req, err := renderRequestFromQuery(q)
	if err != nil {
		writeError(w, err)
		return
	}
	job, err := req.resolve(s.maxPixels)
	if err != nil {
		writeError(w, err)
		return
	}
	x, err := intParam(q, "x")
	if err != nil {
		writeError(w, err)
		return
	}
	y, err := intParam(q, "y")
	if err != nil {
		writeError(w, err)
		return
	}

	m, err := plane.NewMapper(job.params.Width, job.params.Height, job.params.Start, job.params.End)
	if err != nil {
		writeError(w, err)
		return
	}
	if !m.Contains(image.Pt(x, y)) {
		writeError(w, fmt.Errorf("%w: pixel (%d,%d) outside %dx%d", plane.ErrOutOfRange, x, y, job.params.Width, job.params.Height))
		return
	}
	writeJSON(w, http.StatusOK, PointResponse{X: x, Y: y, Value: toComplex(m.PixelToComplex(x, y))})
}

// SelectRequest is a rectangle dragged across the canvas of a view.
type SelectRequest struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Start  Complex `json:"start"`
	End    Complex `json:"end"`
	From   Pixel   `json:"from"`
	To     Pixel   `json:"to"`
}

// Pixel is a canvas position.
type Pixel struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SelectResponse is the viewport to render next.
type SelectResponse struct {
	Start Complex `json:"start"`
	End   Complex `json:"end"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: decoding selection: %w", escape.ErrInvalidParameter, err))
		return
	}
	start, end, err := selectViewport(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SelectResponse{Start: toComplex(start), End: toComplex(end)})
}

type errorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, escape.ErrInvalidParameter), errors.Is(err, plane.ErrDomain):
		return http.StatusBadRequest
	case errors.Is(err, plane.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		Logger().Error("request failed", slog.Any("err", err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Logger().Warn("writing response", slog.Any("err", err))
	}
}
