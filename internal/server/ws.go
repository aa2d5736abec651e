package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/maax3v3/escapetime/internal/escape"
	"github.com/maax3v3/escapetime/internal/imaging"
)

// WithOriginPatterns lists the cross-origin hosts allowed to open the
// websocket. Same-origin clients are always accepted.
func WithOriginPatterns(patterns ...string) Option {
	return func(s *Server) { s.origins = patterns }
}

// handleWebsocket reads one RenderRequest per text message and answers each
// with the encoded frame as a binary message. Requests that cannot be
// rendered are answered with a JSON error text message and the connection
// stays open.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.origins,
	})
	if err != nil {
		Logger().Warn("websocket accept", slog.Any("err", err))
		return
	}
	defer c.CloseNow()

	ctx := r.Context()
	log := Logger().With(slog.String("id", reqID(r)))
	log.Debug("websocket opened", slog.String("remote", r.RemoteAddr))
	for {
		var req RenderRequest
		if err := wsjson.Read(ctx, c, &req); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				log.Debug("websocket closed")
			default:
				log.Warn("websocket read", slog.Any("err", err))
			}
			return
		}
		if err := s.serveFrame(ctx, c, req); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Warn("websocket write", slog.Any("err", err))
			}
			return
		}
	}
}

func (s *Server) serveFrame(ctx context.Context, c *websocket.Conn, req RenderRequest) error {
	job, err := req.resolve(s.maxPixels)
	if err != nil {
		return wsjson.Write(ctx, c, errorResponse{Error: err.Error()})
	}

	var res escape.Result
	select {
	case res = <-escape.Async(job.kind, job.params):
	case <-ctx.Done():
		return ctx.Err()
	}
	if res.Err != nil {
		return wsjson.Write(ctx, c, errorResponse{Error: res.Err.Error()})
	}

	var body bytes.Buffer
	if err := imaging.Encode(&body, s.frame(job, res.Buffer), job.format); err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	return c.Write(ctx, websocket.MessageBinary, body.Bytes())
}
