package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IT21259166/anbd-core/internal/api"
	"github.com/IT21259166/anbd-core/internal/api/websocket"
	"github.com/IT21259166/anbd-core/internal/config"
	"github.com/IT21259166/anbd-core/internal/detector"
	"github.com/IT21259166/anbd-core/internal/executor"
	"github.com/IT21259166/anbd-core/internal/ingest"
	"github.com/IT21259166/anbd-core/internal/playbook"
	"github.com/IT21259166/anbd-core/internal/rca"
	"github.com/IT21259166/anbd-core/internal/response"
	"github.com/IT21259166/anbd-core/internal/store"
	"github.com/IT21259166/anbd-core/pkg/cache"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logger.New(cfg.LogLevel)
	logger.Info("Starting ANBD core", "environment", cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("Shutdown signal received")
		cancel()
	}()

	// Event/response store on Valkey, with in-memory fallback for dev setups.
	var c cache.Cache
	if len(cfg.Cache.Nodes) > 0 {
		c, err = cache.NewValkeySingle(cfg.Cache.Nodes[0], cfg.Cache.DB, cfg.Cache.Password,
			time.Duration(cfg.Cache.TTL)*time.Second, logger)
		if err != nil {
			logger.Fatal("Failed to initialize Valkey cache", "error", err)
		}
		logger.Info("Valkey cache initialized", "node", cfg.Cache.Nodes[0])
	} else {
		c = cache.NewMemoryCache(logger)
		logger.Warn("No cache nodes configured, using in-memory store")
	}
	st := store.New(c, logger, time.Duration(cfg.Cache.TTL)*time.Second)

	// Detector: a failed load is logged and the service starts serving
	// negative defaults until the next successful load.
	det := detector.New(cfg.Model.Threshold, logger)
	if err := det.Load(cfg.Model.ArtifactPath, cfg.Model.ScalerPath); err != nil {
		logger.Error("Model load failed, serving defaults", "error", err)
	}

	exec, err := executor.NewSSH(cfg.Executor, logger)
	if err != nil {
		logger.Fatal("Failed to initialize SSH executor", "error", err)
	}

	registry, err := playbook.LoadRegistry(cfg.Playbooks, logger)
	if err != nil {
		logger.Fatal("Failed to load playbook registry", "error", err)
	}

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	responder := response.New(registry, exec, st, cfg.Network, hub, logger)

	troubleshooter, err := rca.NewTroubleshooter(cfg.RCA.Type2, cfg.Network, exec, logger)
	if err != nil {
		logger.Fatal("Failed to build troubleshooter", "error", err)
	}
	orchestrator := rca.NewOrchestrator(rca.NewRuleClassifier(cfg.RCA.Type1),
		troubleshooter, st, hub, responder, logger)

	monitor := ingest.NewMonitor(cfg.Ingest, det, orchestrator, st, hub, logger)
	if err := monitor.Start(ctx); err != nil {
		logger.Warn("Ingest monitoring not started", "error", err)
	}

	apiServer := api.NewServer(ctx, cfg, api.Deps{
		Detector:     det,
		Orchestrator: orchestrator,
		Monitor:      monitor,
		Events:       st,
		Responses:    st,
		Hub:          hub,
	}, logger)

	if err := apiServer.Start(ctx); err != nil {
		logger.Fatal("Server failed to start", "error", err)
	}

	logger.Info("ANBD core shutdown complete")
}
