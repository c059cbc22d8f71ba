package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ranwatch-systems/ranwatch/common/logging"
	natsclient "github.com/ranwatch-systems/ranwatch/common/messaging/nats"
	"github.com/ranwatch-systems/ranwatch/detector/internal/cascade"
	"github.com/ranwatch-systems/ranwatch/detector/internal/config"
	"github.com/ranwatch-systems/ranwatch/detector/internal/features"
	"github.com/ranwatch-systems/ranwatch/detector/internal/handlers"
	"github.com/ranwatch-systems/ranwatch/detector/internal/ingest"
	"github.com/ranwatch-systems/ranwatch/detector/internal/pipeline"
	"github.com/ranwatch-systems/ranwatch/detector/internal/recorder"
	"github.com/ranwatch-systems/ranwatch/detector/internal/schema"
	"github.com/ranwatch-systems/ranwatch/detector/internal/sdl"
	"github.com/ranwatch-systems/ranwatch/detector/internal/server"
	"github.com/ranwatch-systems/ranwatch/detector/internal/verdict"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	addr := flag.String("addr", "", "override listen address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)

	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	if *addr != "" {
		listenAddr = *addr
	}

	// Model artifacts. Load failures disable prediction but never abort
	// startup: the detector keeps ingesting and recording.
	s1 := cascade.Load(cfg.Models.Stage1Path)
	s2Benign := cascade.Load(cfg.Models.Stage2BenignPath)
	s2Malicious := cascade.Load(cfg.Models.Stage2MaliciousPath)

	// The stage-1 artifact's feature list, when present, fixes the column
	// layout for all three models.
	sch := schema.Default()
	if s1.Available() && len(s1.Features) > 0 {
		sch = schema.New(s1.Features)
	}

	engineer := features.NewEngineer(sch, schema.DefaultMetricNames(),
		features.WithWindow(cfg.Pipeline.Window))
	casc := cascade.New(sch, cascade.DefaultLabels(), s1, s2Benign, s2Malicious, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Message bus.
	natsCfg := natsclient.DefaultConfig()
	natsCfg.URL = cfg.NATS.URL
	natsCfg.Name = "ranwatch-detector"
	bus, err := natsclient.NewClient(natsCfg)
	if err != nil {
		log.Fatalf("connect to NATS: %v", err)
	}
	defer bus.Close()

	// Verdict sinks: always log, always publish; Redis-backed SDL when
	// enabled so co-located xApps can read detection state.
	sinks := []verdict.Sink{
		verdict.NewLogSink(logger),
		verdict.NewNATSSink(bus, cfg.NATS.VerdictSubject),
	}
	if cfg.SDL.Enabled {
		store, err := sdl.New(ctx, cfg.SDL.URL, sdl.WithTTL(cfg.SDL.TTL))
		if err != nil {
			log.Fatalf("connect to SDL redis: %v", err)
		}
		defer store.Close()
		sinks = append(sinks, store)
		logger.Info("SDL verdict store enabled", "url", cfg.SDL.URL)
	}

	pipe := pipeline.New(pipeline.Config{
		BatchSize: cfg.Pipeline.BatchSize,
		HardCap:   cfg.Pipeline.HardCap,
	}, engineer, casc, verdict.NewMultiSink(sinks...), logger)

	ingestCfg := ingest.Config{
		Subject:     cfg.NATS.Subject,
		Queue:       cfg.NATS.Queue,
		MetricNames: schema.DefaultMetricNames(),
	}
	if cfg.Recorder.Enabled {
		rec, err := recorder.OpenCSV(cfg.Recorder.Path, schema.DefaultMetricNames())
		if err != nil {
			log.Fatalf("open recorder: %v", err)
		}
		defer rec.Close()
		ingestCfg.Recorder = rec
		logger.Info("raw capture recorder enabled", "path", cfg.Recorder.Path)
	}

	sub := ingest.NewSubscriber(bus, pipe, ingestCfg, logger)
	if err := sub.Start(ctx); err != nil {
		log.Fatalf("start ingestion: %v", err)
	}
	defer sub.Stop()

	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      server.NewRouter(handlers.NewStatusHandler(pipe, bus)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("detector service listening", "addr", listenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if err := bus.Drain(); err != nil {
		logger.Error("bus drain failed", "error", err)
	}
}
