package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/trustsphere/trustsphere/app/services/trustsphere/handlers"
	"github.com/trustsphere/trustsphere/business/core/attendance"
	"github.com/trustsphere/trustsphere/business/core/certificate"
	"github.com/trustsphere/trustsphere/business/core/complaint"
	"github.com/trustsphere/trustsphere/business/core/election"
	"github.com/trustsphere/trustsphere/business/core/ledger"
	"github.com/trustsphere/trustsphere/business/sys/database"
	"github.com/trustsphere/trustsphere/business/sys/ratelimit"
	"github.com/trustsphere/trustsphere/foundation/algorand"
	"github.com/trustsphere/trustsphere/foundation/events"
	"github.com/trustsphere/trustsphere/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("TRUSTSPHERE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			APIHost         string        `conf:"default:0.0.0.0:8080"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			CorsOrigin      string        `conf:"default:*"`
		}
		Algorand struct {
			NodeURL    string `conf:"default:https://testnet-api.algonode.cloud"`
			IndexerURL string `conf:"default:https://testnet-idx.algonode.cloud"`
			Token      string `conf:"mask"`
			WaitRounds uint64 `conf:"default:4"`
		}
		DB struct {
			Path string `conf:"default:zdata/mirror.db"`
		}
		RateLimit struct {
			Max    int           `conf:"default:10"`
			Window time.Duration `conf:"default:60s"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "TRUSTSPHERE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Chain and Mirror Support

	chain, err := algorand.New(algorand.Config{
		NodeURL:    cfg.Algorand.NodeURL,
		IndexerURL: cfg.Algorand.IndexerURL,
		Token:      cfg.Algorand.Token,
	})
	if err != nil {
		return fmt.Errorf("constructing chain clients: %w", err)
	}
	log.Infow("startup", "status", "chain clients constructed", "node", cfg.Algorand.NodeURL, "indexer", cfg.Algorand.IndexerURL)

	db, err := database.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening mirror database: %w", err)
	}
	log.Infow("startup", "status", "mirror database opened", "path", cfg.DB.Path)

	limiter := ratelimit.New(cfg.RateLimit.Max, cfg.RateLimit.Window)
	defer limiter.Stop()

	// The core packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(events.Event{Kind: "ledger", Message: s})
	}

	lgr := ledger.NewCore(ledger.Config{
		Log:        log,
		Node:       chain,
		Indexer:    chain,
		Limiter:    limiter,
		WaitRounds: cfg.Algorand.WaitRounds,
		EvHandler:  ev,
	})

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	debugMux := handlers.DebugMux(build, log)

	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Start API Service

	log.Infow("startup", "status", "initializing V1 API support")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	apiMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown:    shutdown,
		Log:         log,
		Ledger:      lgr,
		Attendance:  attendance.NewCore(log, db, lgr),
		Election:    election.NewCore(log, db, lgr),
		Complaint:   complaint.NewCore(log, db, lgr),
		Certificate: certificate.NewCore(log, db, lgr),
		Evts:        evts,
		CorsOrigin:  cfg.Web.CorsOrigin,
	})

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      apiMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Infow("startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown api started")
		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop api service gracefully: %w", err)
		}
	}

	return nil
}
