package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nikola-Milovic/whisp-away/internal/transcribe"
)

// Route records which transcription path ultimately ran; daemon and direct
// failures are operationally distinguishable.
type Route string

const (
	RouteDaemon Route = "daemon"
	RouteDirect Route = "direct"
)

// Client sends one transcription request per connection.
type Client struct {
	SocketPath  string
	DialTimeout time.Duration
	// IOTimeout bounds the whole exchange; transcription of a long
	// recording can take a while, so it is generous.
	IOTimeout time.Duration
}

func NewClient(socketPath string) *Client {
	return &Client{
		SocketPath:  socketPath,
		DialTimeout: 2 * time.Second,
		IOTimeout:   2 * time.Minute,
	}
}

// Transcribe sends the request and decodes the response. A connect failure
// is ErrUnreachable — "no daemon running", not a protocol error.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	d := net.Dialer{Timeout: c.DialTimeout}
	conn, err := d.DialContext(ctx, "unix", c.SocketPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.IOTimeout))

	req := Request{ID: uuid.NewString(), AudioPath: audioPath}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	// Half-close so the server's read-to-EOF terminates.
	if uc, ok := conn.(*net.UnixConn); ok {
		if err := uc.CloseWrite(); err != nil {
			return "", fmt.Errorf("finishing request: %w", err)
		}
	}

	data, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	log.Debug().Str("response", string(data)).Msg("daemon replied")

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return resp.Result()
}

// Transcribe runs the daemon-first transcription flow: if no daemon is
// reachable, the fallback backend is invoked directly against the audio
// file. The returned Route names the path that ran. If the fallback fails
// too, both causes are reported together.
func Transcribe(ctx context.Context, client *Client, fallback transcribe.Backend, audioPath string) (string, Route, error) {
	text, err := client.Transcribe(ctx, audioPath)
	if err == nil {
		return text, RouteDaemon, nil
	}
	if !errors.Is(err, ErrUnreachable) {
		return "", RouteDaemon, err
	}

	log.Debug().Err(err).Msg("daemon not available, using direct mode")
	daemonErr := err
	text, directErr := fallback.Transcribe(ctx, audioPath)
	if directErr != nil {
		return "", RouteDirect, fmt.Errorf("direct fallback failed: %w (daemon was: %v)", directErr, daemonErr)
	}
	return text, RouteDirect, nil
}
