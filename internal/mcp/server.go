package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

type Server struct {
	db  Store
	log *zap.Logger
	mcp *sdk.Server
}

func NewServer(db Store, log *zap.Logger, version string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		db:  db,
		log: log,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "worldkeep",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	s.log.Info("mcp server running", zap.String("server", "worldkeep"))
	return s.mcp.Run(ctx, transport)
}
