// ABOUTME: MCP server setup for the gymlog workout store.
// ABOUTME: Binds the workout repository to one signed-in identity for the session.
package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/harperreed/gymlog/internal/identity"
	"github.com/harperreed/gymlog/internal/stats"
	"github.com/harperreed/gymlog/internal/workouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Server wraps the MCP server with repository access.
type Server struct {
	mcpServer *mcp.Server
	repo      *workouts.Repository
	user      identity.Identity
	window    int
	now       func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithWindow sets how many recent workouts stats and resources cover.
func WithWindow(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.window = n
		}
	}
}

// WithClock replaces the wall clock used for stats.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// NewServer creates a new MCP server acting as user.
func NewServer(repo *workouts.Repository, user identity.Identity, opts ...Option) (*Server, error) {
	if user.IsZero() {
		return nil, errors.New("mcp server requires a signed-in user")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "gymlog",
			Version: Version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		user:      user,
		window:    stats.DefaultWindow,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// session attaches the server's identity to a request context.
func (s *Server) session(ctx context.Context) context.Context {
	return identity.NewContext(ctx, s.user)
}

// toolError renders a repository error as the notification text clients see.
func toolError(err error) error {
	return errors.New(workouts.Notify(err).String())
}
