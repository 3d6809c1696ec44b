// Package app hosts the action lifecycle endpoints over HTTP for the
// orchestration framework.
package app

import (
	"context"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/relayops/identity-actions/pkg/action"
	"github.com/relayops/identity-actions/pkg/config"
)

type Server struct {
	server *http.Server
	log    *zerolog.Logger
	cfg    *config.Config
	action *action.Action
}

func NewServer(cfgPath string) (*Server, error) {
	cfg, err := config.NewConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	logger := zerolog.New(os.Stderr).
		Level(cfg.Logging.LogLevelParsed).
		With().Timestamp().Logger()

	return newServer(cfg, &logger, action.New(&logger)), nil
}

func newServer(cfg *config.Config, logger *zerolog.Logger, act *action.Action) *Server {
	return &Server{
		log:    logger,
		cfg:    cfg,
		action: act,
	}
}

func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              s.cfg.Server.ListenAddress,
		Handler:           s.routes(),
		IdleTimeout:       s.cfg.Server.IdleTimeout,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: s.cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
	}

	s.server = srv
	s.log.Info().Str("address", s.cfg.Server.ListenAddress).Msg("Starting action runner")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		s.log.Info().Msg("Shutting down action runner")
		return s.server.Shutdown(ctx)
	}

	return nil
}
