// Package server wires HTTP handlers into a ServeMux for the GoChat
// relay via routing helpers.
package server

import (
	"log/slog"
	"net/http"
)

// SetupRoutes configures and returns an HTTP ServeMux with all application routes.
// It sets up handlers for health check, WebSocket gateway, and test page.
func SetupRoutes(hub *Hub, cfg Config, logger *slog.Logger) *http.ServeMux {
	cfg = sanitizeConfig(cfg)
	upgrader := newUpgrader(cfg, newOriginPolicy(cfg.AllowedOrigins, logger))

	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler(hub))
	mux.HandleFunc("/ws", WebSocketHandler(hub, upgrader, int64(cfg.ReadBufferSize), logger))
	mux.HandleFunc("/test", TestPageHandler(logger))
	return mux
}
