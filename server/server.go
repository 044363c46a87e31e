// Package server implements the document upload boundary: a small HTTP
// service that accepts .doc/.docx uploads, runs them through an external
// office converter and returns the produced HTML.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"dcx/config"
	"dcx/state"
)

// Server handles upload requests. The converter is a field so tests can
// substitute the external binary.
type Server struct {
	cfg     *config.ServerConfig
	log     *zap.Logger
	convert converterFunc
}

func New(cfg *config.ServerConfig, log *zap.Logger) *Server {
	return &Server{
		cfg:     cfg,
		log:     log,
		convert: execConverter(cfg.ConverterPath),
	}
}

// Run is the "serve" command entry point. It blocks until the context is
// cancelled and then shuts the listener down gracefully.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("server")

	srv := New(&env.Cfg.Server, log)

	httpSrv := &http.Server{
		Addr:    srv.cfg.Address,
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Listening", zap.String("address", srv.cfg.Address))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", s.handleUpload)
	return mux
}
