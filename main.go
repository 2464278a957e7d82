package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/terra-data/price.report/api"
	"github.com/terra-data/price.report/internal/dashboard"
	"github.com/terra-data/price.report/internal/db"
	"github.com/terra-data/price.report/internal/manifest"
	"github.com/terra-data/price.report/internal/model"
	"github.com/terra-data/price.report/internal/version"
)

var (
	//go:embed static/*
	staticFiles embed.FS

	devMode     = flag.Bool("dev", false, "Run in dev mode")
	listen      = flag.String("listen", ":8080", "Listen address")
	debugListen = flag.String("debug-listen", ":8081", "Dashboard listen address")
	dbPath      = flag.String("db", "price_report.db", "Path to the sqlite database")
	modelPath   = flag.String("model", "model.json", "Path to the trained model artifact")
	assetsDir   = flag.String("assets", "assets", "Directory holding data assets and the manifest")
	showVersion = flag.Bool("version", false, "Print version and exit")

	migrationsDir = flag.String("migrations", "migrations", "Directory holding schema migrations")
	migrateUp     = flag.Bool("migrate-up", false, "Apply pending migrations and exit")
	migrateDown   = flag.Bool("migrate-down", false, "Roll back all migrations and exit")
	migrateForce  = flag.Int("migrate-force", -1, "Force migration version (recovery only) and exit")
)

// checkAssets parses the asset manifest under dir and verifies the
// directory satisfies it. Unsatisfied entries are fatal in production
// and warnings in dev mode.
func checkAssets(dir string) *manifest.Manifest {
	m, err := manifest.ParseFile(filepath.Join(dir, "requirements.txt"))
	if err != nil {
		log.Fatalf("failed to parse asset manifest: %v", err)
	}
	if err := m.Validate(); err != nil {
		log.Fatalf("invalid asset manifest: %v", err)
	}
	problems, err := manifest.Verify(m, dir)
	if err != nil {
		log.Fatalf("failed to verify assets: %v", err)
	}
	for _, p := range problems {
		if *devMode {
			log.Printf("warning: asset %s", p)
		} else {
			log.Fatalf("asset %s", p)
		}
	}
	log.Printf("asset manifest ok: %d entries", len(m.Entries))
	return m
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("price-report %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	switch {
	case *migrateUp:
		if err := database.MigrateUp(*migrationsDir); err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
		log.Println("migrations applied")
		return
	case *migrateDown:
		if err := database.MigrateDown(*migrationsDir); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		log.Println("migrations rolled back")
		return
	case *migrateForce >= 0:
		if err := database.MigrateForce(*migrationsDir, *migrateForce); err != nil {
			log.Fatalf("Force migration failed: %v", err)
		}
		log.Printf("migration version forced to %d", *migrateForce)
		return
	}

	if err := database.CheckMigrations(*migrationsDir); err != nil {
		log.Fatalf("%v", err)
	}

	m := checkAssets(*assetsDir)

	var artifact *model.Artifact
	if _, err := os.Stat(*modelPath); err == nil {
		artifact, err = model.Load(*modelPath)
		if err != nil {
			log.Fatalf("failed to load model: %v", err)
		}
		log.Printf("loaded model trained %s on %d rows", artifact.Pipeline.TrainedAt.Format(time.RFC3339), artifact.Pipeline.Rows)
	} else {
		log.Printf("no model at %s; prediction endpoint disabled", *modelPath)
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// chart dashboard on its own listener
	wg.Add(1)
	go func() {
		defer wg.Done()
		ws := dashboard.NewWebServer(dashboard.WebServerConfig{
			Address:  *debugListen,
			DB:       database,
			Artifact: artifact,
		})
		if err := ws.Start(ctx); err != nil {
			log.Printf("dashboard server error: %v", err)
		}
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// mount the admin debugging routes (accessible only in dev mode or over Tailscale)
		database.AttachAdminRoutes(mux)

		apiMux := api.NewServer(database, artifact, m).ServeMux()
		mux.Handle("/api/", http.StripPrefix("/api", apiMux))

		// read static files from the embedded filesystem in production or from
		// the local ./static in dev for easier iteration without restarting the
		// server
		var staticHandler http.Handler
		if *devMode {
			staticHandler = http.FileServer(http.Dir("./static"))
		} else {
			staticHandler = http.FileServer(http.FS(staticFiles))
		}
		mux.Handle("/", staticHandler)

		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("got request %q", r.URL.Path)
			mux.ServeHTTP(w, r)
		})

		server := &http.Server{
			Addr:    *listen,
			Handler: h,
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
