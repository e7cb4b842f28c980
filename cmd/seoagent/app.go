package main

import (
	"context"
	"fmt"

	"github.com/aretw0/seoagent"
	"github.com/aretw0/seoagent/pkg/core"
	"github.com/aretw0/seoagent/pkg/imagen"
	"github.com/aretw0/seoagent/pkg/research"
	"github.com/aretw0/seoagent/pkg/tools"
)

// service opens the article store described by the configuration.
func (a *app) service() (*core.Service, error) {
	svc, err := seoagent.New(a.cfg.ArticlesDir,
		seoagent.WithFormat(a.cfg.ArticlesFormat),
		seoagent.WithEventBuffer(a.cfg.EventBuffer),
		seoagent.WithLogger(a.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open articles store: %w", err)
	}
	return svc, nil
}

func (a *app) researcher() *research.Client {
	return research.New(research.Config{
		Login:    a.cfg.DataForSEOLogin,
		Password: a.cfg.DataForSEOPassword,
		BaseURL:  a.cfg.DataForSEOURL,
		Logger:   a.logger,
	})
}

func (a *app) images(ctx context.Context) (*imagen.Generator, error) {
	return imagen.New(ctx, imagen.Config{
		APIKey: a.cfg.GeminiAPIKey,
		Model:  a.cfg.ImagenModel,
		Logger: a.logger,
	})
}

// registry wires the store and both collaborators into one tool registry.
func (a *app) registry(ctx context.Context) (*tools.Registry, error) {
	svc, err := a.service()
	if err != nil {
		return nil, err
	}
	images, err := a.images(ctx)
	if err != nil {
		return nil, err
	}
	return tools.New(svc, a.researcher(), images, a.logger)
}
