package daemon

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitalquest/vitalquest/internal/api"
	"github.com/vitalquest/vitalquest/internal/app/engagement"
	"github.com/vitalquest/vitalquest/internal/health"
	"github.com/vitalquest/vitalquest/internal/infra/sqlite"
)

// Daemon is the core VitalQuest runtime. It wires together all services.
type Daemon struct {
	Config Config
	DB     *sqlite.DB
	Engine *engagement.Engine
	Server *api.Server
	Health *health.Checker

	logFile *os.File
	cancel  context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config, opts ...engagement.Option) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	d := &Daemon{Config: cfg}
	if err := d.setupLogging(); err != nil {
		return nil, err
	}

	dataDir := cfg.Storage.Dir
	if dataDir == "" {
		dataDir = vitalquestHome()
	}
	db, err := sqlite.Open(dataDir)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	d.DB = db

	loc, _ := cfg.Engine.Location()
	book := engagement.NewRulebook(cfg.Rules, loc)
	eng, err := engagement.NewEngine(book, append([]engagement.Option{engagement.WithStore(db)}, opts...)...)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("start engine: %w", err)
	}
	d.Engine = eng

	d.Health = health.NewChecker(db, eng, dataDir)

	srv := api.NewServer(eng)
	srv.SetCORSOrigins(cfg.API.CORSOrigins)
	srv.SetHealthChecker(d.Health)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}
	d.Server = srv

	return d, nil
}

// setupLogging tees the standard logger into the configured file.
func (d *Daemon) setupLogging() error {
	if d.Config.Logging.Level == "debug" {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}
	if d.Config.Logging.File == "" {
		return nil
	}
	f, err := os.OpenFile(d.Config.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	d.logFile = f
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)
	go d.RunSweeper(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[daemon] shutdown: %v", err)
		}
	}()

	fmt.Printf("VitalQuest serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}
	log.Printf("[daemon] listening on %s (sweep every %s)", addr, d.sweepInterval())

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// ─── Maintenance Sweeper ────────────────────────────────────────────────────

// RunSweeper runs the day-boundary maintenance once, then on every tick
// until ctx is done. Call in a goroutine.
func (d *Daemon) RunSweeper(ctx context.Context) {
	d.SweepOnce()

	ticker := time.NewTicker(d.sweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.SweepOnce()
		}
	}
}

// SweepOnce expires missed quests and streaks and refills quest batches.
func (d *Daemon) SweepOnce() engagement.SweepReport {
	rep, err := d.Engine.Sweep()
	if err != nil {
		log.Printf("[sweeper] sweep failed: %v", err)
		return rep
	}
	if rep != (engagement.SweepReport{}) {
		log.Printf("[sweeper] expired=%d broken=%d added=%d finished=%d",
			rep.QuestsExpired, rep.StreaksBroken, rep.QuestsAdded, rep.QuestsFinished)
	}
	return rep
}

func (d *Daemon) sweepInterval() time.Duration {
	return parseDuration(d.Config.Engine.SweepInterval, 15*time.Minute)
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
	if d.logFile != nil {
		log.SetOutput(os.Stderr)
		_ = d.logFile.Close()
	}
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
