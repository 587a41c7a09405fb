package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/winsettle/internal/config"
	"github.com/1broseidon/winsettle/internal/daemon"
	"github.com/1broseidon/winsettle/internal/runtimepath"
	"github.com/1broseidon/winsettle/internal/store"
)

// StatusSource reports what the daemon is tracking.
type StatusSource interface {
	Tracked() []daemon.TrackedWindow
	QuietPeriod() time.Duration
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	cfg          *config.Config
	cfgMu        sync.RWMutex
	status       StatusSource
	store        *store.Store
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(cfg *config.Config, status StatusSource, st *store.Store, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		cfg:        cfg,
		status:     status,
		store:      st,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandListGeometry:
		return s.handleListGeometry()
	case CommandForgetGeometry:
		return s.handleForgetGeometry(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	newCfg, err := config.Load()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	s.cfgMu.Lock()
	s.cfg = newCfg
	s.cfgMu.Unlock()

	// Notify the main daemon via channel (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		DaemonRunning: true,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		StoreFile:     s.store.Path(),
		StoredCount:   len(s.store.List()),
		Tracked:       []daemon.TrackedWindow{},
	}
	if s.status != nil {
		status.QuietPeriodMS = s.status.QuietPeriod().Milliseconds()
		status.Tracked = s.status.Tracked()
	}

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleListGeometry() *Response {
	resp, err := NewOKResponse(GeometryData{Entries: s.store.List()})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleForgetGeometry(payload json.RawMessage) *Response {
	var p ForgetGeometryPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid payload: %v", err))
	}
	key := strings.TrimSpace(p.Key)
	if key == "" {
		return NewErrorResponse("key is required")
	}

	removed := s.store.Delete(key)
	if removed {
		if err := s.store.Save(); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to save geometry store: %v", err))
		}
		log.Printf("IPC: Forgot geometry for %q", key)
	}

	resp, _ := NewOKResponse(ForgetGeometryData{Removed: removed})
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig updates the config (thread-safe)
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg = cfg
}
