package ui

import (
	"context"
	"fmt"

	"vidinsights/adapters/excel"
	"vidinsights/app"
	"vidinsights/internal/config"

	"github.com/gin-gonic/gin"
)

// App wires configuration, dataset loading and the API server
type App struct {
	config  *config.Config
	service *app.DashboardService
	server  *Server
}

// NewApp loads the configured dataset and builds the server
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	gin.SetMode(cfg.Server.GinMode)

	service := app.NewDashboardService(cfg.Analytics)
	if err := service.Load(ctx, excel.NewDataReader(cfg.Data.File)); err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", cfg.Data.File, err)
	}

	return &App{
		config:  cfg,
		service: service,
		server:  NewServer(service, excel.NewExporter(), cfg.Server.MaxConcurrentAnalyses),
	}, nil
}

// Service exposes the loaded dashboard service
func (a *App) Service() *app.DashboardService {
	return a.service
}

// Start serves the API on the configured port
func (a *App) Start() error {
	return a.server.Start(":" + a.config.Server.Port)
}
