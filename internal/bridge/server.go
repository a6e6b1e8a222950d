package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
)

// maxRequestBytes bounds a single request line. API keys are short; anything
// larger than this is a protocol violation, not a legitimate call.
const maxRequestBytes = 1 << 20

// Service is the privileged-side implementation the server dispatches to.
// Implementations report rejection through the error return; the server
// converts it into a success=false envelope.
type Service interface {
	// SetAPIKey persists or overwrites the API key for the identifier.
	SetAPIKey(ctx context.Context, id int64, apiKey string) error

	// GetAPIKey returns the stored API key, or ("", nil) when no key is
	// stored for the identifier.
	GetAPIKey(ctx context.Context, id int64) (string, error)

	// OpenChapterStudio dispatches a request to open the studio surface.
	OpenChapterStudio(ctx context.Context, projectID, chapterCardID int64) error
}

// Server listens on a Unix domain socket and serves bridge requests.
type Server struct {
	// SocketPath is the Unix socket to listen on. A stale socket file from
	// a previous run is removed before binding.
	SocketPath string

	// Service handles the bridge operations.
	Service Service

	// Logger receives structured log output. If nil, slog.Default() is
	// used. Per-request events are logged at Debug level; errors and
	// lifecycle events at Info/Error.
	Logger *slog.Logger

	listener    net.Listener
	cancel      context.CancelFunc
	done        chan struct{}
	connections sync.WaitGroup
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Start binds the socket and begins accepting connections. It returns once
// the listener is accepting, or an error if binding fails. The server runs
// in the background until Stop is called or the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.SocketPath == "" {
		return fmt.Errorf("bridge: SocketPath is required")
	}
	if s.Service == nil {
		return fmt.Errorf("bridge: Service is required")
	}

	if err := os.Remove(s.SocketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("bridge: remove stale socket %s: %w", s.SocketPath, err)
	}

	listener, err := net.Listen("unix", s.SocketPath)
	if err != nil {
		return fmt.Errorf("bridge: failed to listen on %s: %w", s.SocketPath, err)
	}

	s.listener = listener

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		s.acceptLoop(ctx)
	}()

	s.logger().Info("bridge server started", "socket_path", s.SocketPath)
	return nil
}

// Addr returns the listener's address. Returns nil if the server has not
// been started.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop shuts down the server, closing the listener and waiting for all
// in-flight connections to drain.
func (s *Server) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		s.listener.Close()
	}
	if s.done != nil {
		<-s.done
	}
}

// acceptLoop accepts connections until the context is cancelled. It waits
// for all in-flight connection goroutines to finish before returning, so
// that closing the done channel signals full quiescence.
func (s *Server) acceptLoop(ctx context.Context) {
	var connectionCount int64

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.connections.Wait()
				return
			default:
				s.logger().Error("accept failed", "error", err)
				continue
			}
		}

		connectionCount++
		connID := connectionCount
		s.connections.Add(1)
		go func() {
			defer s.connections.Done()
			s.handleConnection(ctx, conn, connID)
		}()
	}
}

// handleConnection reads request envelopes line by line. Each request is
// served in its own goroutine; no ordering is promised between calls on the
// same connection. Responses are serialized through a per-connection mutex.
func (s *Server) handleConnection(ctx context.Context, conn net.Conn, connID int64) {
	defer conn.Close()

	logger := s.logger().With("connection_id", connID)
	logger.Debug("connection accepted")

	// Close the connection when the server stops so blocked reads unwind.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	var writeMu sync.Mutex
	var requests sync.WaitGroup

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxRequestBytes)

	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			logger.Error("malformed request", "error", err)
			continue
		}

		requests.Add(1)
		go func() {
			defer requests.Done()
			resp := s.dispatch(ctx, logger, req)
			writeMu.Lock()
			defer writeMu.Unlock()
			if err := writeEnvelope(conn, resp); err != nil {
				logger.Debug("write response failed", "request_id", req.ID, "error", err)
			}
		}()
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		logger.Debug("connection read error", "error", err)
	}

	requests.Wait()
	logger.Debug("connection closed")
}

// dispatch routes a request to the service and converts the result into a
// response envelope. Service errors become success=false with error text;
// they are never allowed to escape as faults.
func (s *Server) dispatch(ctx context.Context, logger *slog.Logger, req Request) Response {
	logger.Debug("request", "request_id", req.ID, "method", req.Method)

	switch req.Method {
	case MethodSetAPIKey:
		var params SetAPIKeyParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return Response{ID: req.ID, Error: fmt.Sprintf("invalid setApiKey params: %v", err)}
		}
		if err := s.Service.SetAPIKey(ctx, params.ID, params.APIKey); err != nil {
			logger.Error("setApiKey failed", "credential_id", params.ID, "error", err)
			return Response{ID: req.ID, Error: err.Error()}
		}
		return Response{ID: req.ID, Success: true}

	case MethodGetAPIKey:
		var params GetAPIKeyParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return Response{ID: req.ID, Error: fmt.Sprintf("invalid getApiKey params: %v", err)}
		}
		apiKey, err := s.Service.GetAPIKey(ctx, params.ID)
		if err != nil {
			logger.Error("getApiKey failed", "credential_id", params.ID, "error", err)
			return Response{ID: req.ID, Error: err.Error()}
		}
		// A missing key is a valid outcome: success with an absent value.
		return Response{ID: req.ID, Success: true, APIKey: apiKey}

	case MethodOpenChapterStudio:
		var params OpenChapterStudioParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return Response{ID: req.ID}
		}
		if err := s.Service.OpenChapterStudio(ctx, params.ProjectID, params.ChapterCardID); err != nil {
			logger.Error("openChapterStudio rejected",
				"project_id", params.ProjectID,
				"chapter_card_id", params.ChapterCardID,
				"error", err,
			)
			// The studio outcome declares only a success flag.
			return Response{ID: req.ID}
		}
		return Response{ID: req.ID, Success: true}

	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method %q", req.Method)}
	}
}

// writeEnvelope marshals v and writes it as a single newline-terminated line.
func writeEnvelope(conn net.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	return nil
}
