package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/image/bmp"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(WithMaxPixels(64 * 64)))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, body := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	if string(body) != "ok\n" {
		t.Errorf("body: got %q", body)
	}
}

func TestRender(t *testing.T) {
	srv := newTestServer(t)

	t.Run("mandelbrot png", func(t *testing.T) {
		resp, body := get(t, srv.URL+"/render/mandelbrot?width=16&height=12&max_iter=32")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status: got %d: %s", resp.StatusCode, body)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("content type: got %q", ct)
		}
		img, err := png.Decode(bytes.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		if img.Bounds() != image.Rect(0, 0, 16, 12) {
			t.Errorf("bounds: got %v", img.Bounds())
		}
	})

	t.Run("julia bmp", func(t *testing.T) {
		resp, body := get(t, srv.URL+"/render/julia?width=10&height=10&c=-0.8%2B0.156i&format=bmp&coloring=smooth")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status: got %d: %s", resp.StatusCode, body)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "image/bmp" {
			t.Errorf("content type: got %q", ct)
		}
		img, err := bmp.Decode(bytes.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 10 {
			t.Errorf("bounds: got %v", img.Bounds())
		}
	})

	t.Run("annotated", func(t *testing.T) {
		resp, body := get(t, srv.URL+"/render/m?width=48&height=32&annotate=true&region=seahorse-valley")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status: got %d: %s", resp.StatusCode, body)
		}
		img, err := png.Decode(bytes.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		if img.Bounds().Dx() != 48 || img.Bounds().Dy() <= 32 {
			t.Errorf("annotated bounds: got %v", img.Bounds())
		}
	})
}

func TestRenderErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"unknown fractal", "/render/burningship", http.StatusBadRequest},
		{"bad width", "/render/mandelbrot?width=abc", http.StatusBadRequest},
		{"too large", "/render/mandelbrot?width=100&height=100", http.StatusBadRequest},
		{"pixel count wraps around", "/render/mandelbrot?width=4294967296&height=4294967296", http.StatusBadRequest},
		{"negative height", "/render/julia?width=4&height=-4", http.StatusBadRequest},
		{"bad bailout", "/render/julia?width=4&height=4&bailout=-1", http.StatusBadRequest},
		{"empty viewport", "/render/mandelbrot?width=4&height=4&start=1%2B1i&end=1%2B1i", http.StatusBadRequest},
		{"bad coloring", "/render/mandelbrot?width=4&height=4&coloring=plaid", http.StatusBadRequest},
		{"bad format", "/render/mandelbrot?width=4&height=4&format=gif", http.StatusBadRequest},
		{"bad region", "/render/mandelbrot?width=4&height=4&region=nowhere", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, srv.URL+tt.query)
			if resp.StatusCode != tt.status {
				t.Fatalf("status: got %d, want %d: %s", resp.StatusCode, tt.status, body)
			}
			var e errorResponse
			if err := json.Unmarshal(body, &e); err != nil {
				t.Fatalf("decoding error body: %v", err)
			}
			if e.Error == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestPoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := get(t, srv.URL+"/point?width=4&height=4&start=-2%2B2i&end=2-2i&x=3&y=1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d: %s", resp.StatusCode, body)
	}
	var pr PointResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		t.Fatal(err)
	}
	if pr.X != 3 || pr.Y != 1 || pr.Value != (Complex{Re: 1, Im: 1}) {
		t.Errorf("got %+v", pr)
	}

	resp, _ = get(t, srv.URL+"/point?width=4&height=4&x=4&y=0")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("outside pixel: got status %d", resp.StatusCode)
	}
}

func TestSelect(t *testing.T) {
	srv := newTestServer(t)

	post := func(t *testing.T, body string) (*http.Response, []byte) {
		t.Helper()
		resp, err := http.Post(srv.URL+"/select", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatal(err)
		}
		return resp, b
	}

	resp, body := post(t, `{"width":4,"height":4,"start":{"re":-2,"im":2},"end":{"re":2,"im":-2},"from":{"x":0,"y":0},"to":{"x":2,"y":1}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d: %s", resp.StatusCode, body)
	}
	var sr SelectResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		t.Fatal(err)
	}
	want := SelectResponse{Start: Complex{Re: -2, Im: 2.5}, End: Complex{Re: 0, Im: 0.5}}
	if sr != want {
		t.Errorf("got %+v, want %+v", sr, want)
	}

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed", `{"width":`, http.StatusBadRequest},
		{"empty canvas", `{"width":0,"height":4,"start":{"re":-2,"im":2},"end":{"re":2,"im":-2}}`, http.StatusBadRequest},
		{"outside", `{"width":4,"height":4,"start":{"re":-2,"im":2},"end":{"re":2,"im":-2},"from":{"x":0,"y":0},"to":{"x":9,"y":1}}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status: got %d, want %d: %s", resp.StatusCode, tt.status, body)
			}
		})
	}
}

func TestWebsocket(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.CloseNow()

	if err := wsjson.Write(ctx, c, RenderRequest{Fractal: "julia", Width: 8, Height: 6, MaxIter: 16}); err != nil {
		t.Fatal(err)
	}
	typ, data, err := c.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if typ != websocket.MessageBinary {
		t.Fatalf("message type: got %v", typ)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 8, 6) {
		t.Errorf("bounds: got %v", img.Bounds())
	}

	// A bad request is answered in-band and the connection stays usable.
	if err := wsjson.Write(ctx, c, RenderRequest{Fractal: "newton"}); err != nil {
		t.Fatal(err)
	}
	var e errorResponse
	if err := wsjson.Read(ctx, c, &e); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(e.Error, "newton") {
		t.Errorf("error message: got %q", e.Error)
	}

	if err := wsjson.Write(ctx, c, RenderRequest{Width: 4, Height: 4, Format: "tiff"}); err != nil {
		t.Fatal(err)
	}
	if typ, _, err := c.Read(ctx); err != nil || typ != websocket.MessageBinary {
		t.Fatalf("second frame: type %v, err %v", typ, err)
	}

	// An oversized canvas whose pixel count wraps around is refused in-band.
	if err := wsjson.Write(ctx, c, RenderRequest{Width: math.MaxInt, Height: math.MaxInt}); err != nil {
		t.Fatal(err)
	}
	e = errorResponse{}
	if err := wsjson.Read(ctx, c, &e); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(e.Error, "pixel limit") {
		t.Errorf("oversized canvas: got %q", e.Error)
	}

	if err := c.Close(websocket.StatusNormalClosure, ""); err != nil {
		t.Errorf("close: %v", err)
	}
}
