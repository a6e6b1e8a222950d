package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCallTimeout bounds a single bridge call when the caller's context
// carries no deadline. The source contract specifies no timeout; this is a
// defensive policy so a wedged backend cannot suspend the UI forever.
const DefaultCallTimeout = 10 * time.Second

// ErrClientClosed is returned by calls issued after the client has been
// closed or after the connection failed.
var ErrClientClosed = errors.New("bridge: client closed")

// ClientConfig configures a bridge Client.
type ClientConfig struct {
	// SocketPath is the Unix socket the privileged backend listens on.
	SocketPath string

	// Timeout is the per-call timeout applied when the caller's context
	// has no deadline. Zero means DefaultCallTimeout.
	Timeout time.Duration

	// Logger receives structured log output. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client is the UI-process side of the bridge. It multiplexes concurrent
// calls over a single connection: every request carries a UUID correlation
// id and the matching response resolves exactly one pending caller.
type Client struct {
	conn    net.Conn
	timeout time.Duration
	logger  *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan Response
	readErr error

	closed    chan struct{}
	closeOnce sync.Once
}

// Dial connects to the backend's bridge socket and starts the response
// reader. The caller must Close the client when done.
func Dial(config ClientConfig) (*Client, error) {
	if config.SocketPath == "" {
		return nil, fmt.Errorf("bridge: SocketPath is required")
	}

	conn, err := net.DialTimeout("unix", config.SocketPath, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("bridge: dial %s: %w", config.SocketPath, err)
	}

	return NewClient(conn, config), nil
}

// NewClient wraps an established connection. Used by Dial and by tests that
// connect over an in-process pipe.
func NewClient(conn net.Conn, config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultCallTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		conn:    conn,
		timeout: timeout,
		logger:  logger,
		pending: make(map[string]chan Response),
		closed:  make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Close tears down the connection. Pending calls fail with ErrClientClosed.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

// SetAPIKey stores or overwrites the API key for the identifier. The
// returned outcome reflects the backend's decision; the error return is
// reserved for transport failures (broken connection, timeout).
func (c *Client) SetAPIKey(ctx context.Context, id int64, apiKey string) (Outcome, error) {
	resp, err := c.call(ctx, MethodSetAPIKey, SetAPIKeyParams{ID: id, APIKey: apiKey})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Success: resp.Success, Error: resp.Error}, nil
}

// GetAPIKey retrieves the API key for the identifier. An empty APIKey with
// Success=true means no key is stored.
func (c *Client) GetAPIKey(ctx context.Context, id int64) (KeyOutcome, error) {
	resp, err := c.call(ctx, MethodGetAPIKey, GetAPIKeyParams{ID: id})
	if err != nil {
		return KeyOutcome{}, err
	}
	return KeyOutcome{
		Outcome: Outcome{Success: resp.Success, Error: resp.Error},
		APIKey:  resp.APIKey,
	}, nil
}

// OpenChapterStudio asks the backend to open the studio surface for the
// project/chapter card pair. The outcome carries only the success flag.
func (c *Client) OpenChapterStudio(ctx context.Context, projectID, chapterCardID int64) (Outcome, error) {
	resp, err := c.call(ctx, MethodOpenChapterStudio, OpenChapterStudioParams{
		ProjectID:     projectID,
		ChapterCardID: chapterCardID,
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Success: resp.Success}, nil
}

// call sends one request envelope and blocks until its response arrives,
// the context expires, or the connection fails.
func (c *Client) call(ctx context.Context, method string, params any) (Response, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	rawParams, err := json.Marshal(params)
	if err != nil {
		return Response{}, fmt.Errorf("bridge: marshal %s params: %w", method, err)
	}

	id := uuid.NewString()
	ch := make(chan Response, 1)

	c.mu.Lock()
	select {
	case <-c.closed:
		readErr := c.readErr
		c.mu.Unlock()
		if readErr != nil {
			return Response{}, fmt.Errorf("%w: %w", ErrClientClosed, readErr)
		}
		return Response{}, ErrClientClosed
	default:
	}
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	c.writeMu.Lock()
	writeErr := writeEnvelope(c.conn, Request{ID: id, Method: method, Params: rawParams})
	c.writeMu.Unlock()
	if writeErr != nil {
		return Response{}, fmt.Errorf("bridge: send %s: %w", method, writeErr)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return Response{}, fmt.Errorf("bridge: %s: %w", method, ctx.Err())
	case <-c.closed:
		c.mu.Lock()
		readErr := c.readErr
		c.mu.Unlock()
		if readErr != nil {
			return Response{}, fmt.Errorf("%w: %w", ErrClientClosed, readErr)
		}
		return Response{}, ErrClientClosed
	}
}

// readLoop dispatches response envelopes to pending callers until the
// connection closes. On exit every pending caller is released through the
// closed channel.
func (c *Client) readLoop() {
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 4096), maxRequestBytes)

	for scanner.Scan() {
		var resp Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			c.logger.Error("bridge: malformed response", "error", err)
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.mu.Unlock()

		if !ok {
			// Response for a caller that already timed out.
			c.logger.Debug("bridge: unmatched response", "request_id", resp.ID)
			continue
		}
		ch <- resp
	}

	c.mu.Lock()
	c.readErr = scanner.Err()
	c.mu.Unlock()
	close(c.closed)
	_ = c.conn.Close()
}
