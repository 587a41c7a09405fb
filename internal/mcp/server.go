// Package mcp exposes daemon status and stored geometry over the Model
// Context Protocol.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winsettle/internal/ipc"
	"github.com/1broseidon/winsettle/internal/store"
)

const (
	ServerName    = "winsettle"
	ServerVersion = "0.1.0"
)

// DaemonClient is the subset of the IPC client the tools use.
type DaemonClient interface {
	GetStatus() (*ipc.StatusData, error)
	ListGeometry() ([]store.Entry, error)
	ForgetGeometry(key string) (bool, error)
}

// Server is the MCP server for winsettle.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    DaemonClient
	storePath string
}

// NewServer creates an MCP server that talks to the daemon and reads
// storePath directly when the daemon is not running.
func NewServer(daemon DaemonClient, storePath string) *Server {
	s := &Server{
		daemon:    daemon,
		storePath: storePath,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report whether the winsettle daemon is running, its quiet period, the windows it is tracking and how many geometries are stored.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_geometry",
		Description: "List the last settled geometry stored for each window key (usually WM_CLASS). Reads the store file when the daemon is not running.",
	}, s.handleListGeometry)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "forget_geometry",
		Description: "Delete the stored geometry for a window key so the window is no longer restored.",
	}, s.handleForgetGeometry)
}
