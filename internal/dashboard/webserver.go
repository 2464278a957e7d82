// Package dashboard serves the debug chart surface: quick go-echarts
// renderings of the stored counties, model residuals, and a combined
// iframe dashboard, plus Prometheus metrics.
package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/terra-data/price.report/internal/db"
	"github.com/terra-data/price.report/internal/model"
)

// WebServer handles the HTTP interface for the chart dashboard.
type WebServer struct {
	address  string
	db       *db.DB
	artifact *model.Artifact
	server   *http.Server
}

// WebServerConfig contains configuration options for the dashboard server.
type WebServerConfig struct {
	Address  string
	DB       *db.DB
	Artifact *model.Artifact
}

// NewWebServer creates a dashboard server with the provided configuration.
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address:  config.Address,
		db:       config.DB,
		artifact: config.Artifact,
	}

	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}

	return ws
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Start begins the HTTP server in a goroutine and handles graceful shutdown.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("Starting dashboard server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start dashboard server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down dashboard server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("dashboard server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("dashboard server force close error: %v", err)
		}
	}

	log.Printf("dashboard server routine stopped")
	return nil
}

// setupRoutes configures the HTTP routes and handlers.
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/", ws.handleDashboard)
	mux.HandleFunc("/charts/county-prices", ws.handleCountyPricesChart)
	mux.HandleFunc("/charts/map", ws.handleCountyMapChart)
	mux.HandleFunc("/charts/residuals", ws.handleResidualsChart)
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
