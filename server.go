package colorconv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-Id"

const (
	// DefaultReadTimeout defines maximum duration for full request reading.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout defines maximum duration for response writing.
	DefaultWriteTimeout = 5 * time.Second
)

// Server exposes conversion and calibration over HTTP.
type Server struct {
	log  zerolog.Logger
	conv *Converter
	cal  *Calibration
	srv  *fasthttp.Server
}

type apiError struct {
	Error   string `json:"error"`
	Channel string `json:"channel,omitempty"`
	Value   *int   `json:"value,omitempty"`
}

// NewServer returns new instance of Server. cal is served by /calibration.
func NewServer(l zerolog.Logger, c *Converter, cal *Calibration) *Server {
	s := &Server{
		log:  l.With().Str("component", "server").Logger(),
		conv: c,
		cal:  cal,
	}
	s.srv = &fasthttp.Server{
		Name:         "colorconv",
		Handler:      s.Handler,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
	return s
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp4", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done. ln is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("listen", ln.Addr().String()).Msg("http listener started")
		errc <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		_ = ln.Close()
		return err
	case <-ctx.Done():
		s.log.Info().Msg("http listener shutdown")
		err := s.srv.Shutdown()
		// Shutdown misses the listener when Serve has not registered it yet.
		if cerr := ln.Close(); err == nil && cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
		return err
	}
}

// Handler is fasthttp.RequestHandler routing all endpoints.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {

	t := time.Now()
	id := uuid.NewString()
	ctx.Response.Header.Set(RequestIDHeader, id)

	switch {
	case !ctx.IsGet():
		s.writeJSON(ctx, fasthttp.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
	default:
		switch string(ctx.Path()) {
		case "/convert":
			s.convert(ctx)
		case "/calibration":
			s.writeJSON(ctx, fasthttp.StatusOK, s.cal)
		case "/healthz":
			s.writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
		default:
			s.writeJSON(ctx, fasthttp.StatusNotFound, apiError{Error: "not found"})
		}
	}

	s.log.Debug().Str("id", id).
		Bytes("method", ctx.Method()).
		Bytes("path", ctx.Path()).
		Int("status", ctx.Response.StatusCode()).
		Str("dur", time.Since(t).String()).Msg("request served")
}

func (s *Server) convert(ctx *fasthttp.RequestCtx) {

	args := ctx.QueryArgs()
	var v [3]int
	for i, name := range [3]string{"r", "g", "b"} {
		n, err := strconv.Atoi(string(args.Peek(name)))
		if err != nil {
			s.writeJSON(ctx, fasthttp.StatusBadRequest, apiError{Error: "query parameter " + name + " must be an integer"})
			return
		}
		v[i] = n
	}

	res, err := s.conv.Convert(v[0], v[1], v[2])
	if err != nil {
		var rerr *RangeError
		if errors.As(err, &rerr) {
			s.writeJSON(ctx, fasthttp.StatusUnprocessableEntity, apiError{Error: err.Error(), Channel: rerr.Channel, Value: &rerr.Value})
			return
		}
		s.writeJSON(ctx, fasthttp.StatusInternalServerError, apiError{Error: err.Error()})
		return
	}

	if string(args.Peek("format")) == "text" {
		var buf bytes.Buffer
		_ = WriteText(&buf, res) // bytes.Buffer never fails.
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetContentType("text/plain; charset=utf-8")
		ctx.SetBody(buf.Bytes())
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, NewReport(res))
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, code int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Str("errmsg", err.Error()).Msg("response encoding failed")
		ctx.Error("internal error", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(code)
	ctx.SetContentType("application/json")
	ctx.SetBody(b)
}
