package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nikola-Milovic/whisp-away/internal/transcribe"
)

// Server accepts one connection per request and handles them strictly in
// sequence: a single model instance is the bottleneck and concurrent access
// to it is not supported.
type Server struct {
	SocketPath string
	Backend    transcribe.Backend

	// ReadTimeout bounds how long a connected client may take to deliver
	// its request.
	ReadTimeout time.Duration
}

func NewServer(socketPath string, backend transcribe.Backend) *Server {
	return &Server{
		SocketPath:  socketPath,
		Backend:     backend,
		ReadTimeout: 10 * time.Second,
	}
}

// ListenAndServe runs the accept loop until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	// A previous daemon instance may have left the socket behind.
	os.Remove(s.SocketPath)

	ln, err := net.Listen("unix", s.SocketPath)
	if err != nil {
		return err
	}
	os.Chmod(s.SocketPath, 0o600)
	defer os.Remove(s.SocketPath)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	log.Info().Str("socket", s.SocketPath).Str("backend", s.Backend.Name()).Msg("daemon listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.handle(ctx, conn)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(s.ReadTimeout))
	// The client half-closes its write side after sending, so reading to
	// EOF yields exactly one request.
	data, err := io.ReadAll(conn)
	if err != nil {
		log.Warn().Err(err).Msg("reading request")
		return
	}

	var req Request
	resp := Response{}
	if err := json.Unmarshal(data, &req); err != nil || req.AudioPath == "" {
		log.Warn().Err(err).Msg("bad request payload")
		resp.Success = false
		resp.Error = "invalid request: missing audio_path"
		s.reply(conn, resp)
		return
	}
	resp.ID = req.ID

	log.Debug().Str("audio", req.AudioPath).Str("id", req.ID).Msg("transcription request")
	text, err := s.Backend.Transcribe(ctx, req.AudioPath)
	if err != nil {
		log.Error().Err(err).Str("audio", req.AudioPath).Msg("transcription failed")
		resp.Success = false
		resp.Error = err.Error()
	} else {
		resp.Success = true
		resp.Text = &text
	}
	s.reply(conn, resp)
}

func (s *Server) reply(conn net.Conn, resp Response) {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		log.Warn().Err(err).Msg("writing response")
	}
}
