package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/born-ml/digits/internal/config"
	"github.com/born-ml/digits/internal/serialization"
	"github.com/born-ml/digits/internal/server"
)

func serveCmd(ctx context.Context, args []string, logger *log.Logger) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	var o config.Overrides
	fs.StringVar(&o.BuildDir, "build", "", "directory holding model.json and config.json")
	fs.StringVar(&o.Addr, "addr", "", "listen address")
	fs.StringVar(&o.StaticDir, "static", "", "serve static files from this directory instead of the built-in canvas")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	cfg.ApplyOverrides(o)
	if cfg.Addr == "" {
		return errors.New("config: addr must be set")
	}

	store := serialization.NewStore(cfg.BuildDir)
	if !store.Exists() {
		logger.Printf("no model in %s yet; /predict returns 503 until training finishes", store.Dir())
	}

	srv := server.New(store, server.WithStaticDir(cfg.StaticDir), server.WithLogger(logger))
	return srv.ListenAndServe(ctx, cfg.Addr)
}
