package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/cache"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/config"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/consumer"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/hub"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/pipeline"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/server"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/store"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/models"
)

func main() {
	fmt.Println("=== Fortuna NFL Workbench v0 ===")

	cfg := config.Load()

	// Postgres odds warehouse
	if cfg.WarehouseDSN == "" {
		fmt.Println("❌ WAREHOUSE_DSN is required")
		os.Exit(1)
	}
	warehouse, err := store.OpenWarehouse(cfg.WarehouseDSN)
	if err != nil {
		fmt.Printf("❌ Failed to connect to warehouse: %v\n", err)
		os.Exit(1)
	}
	defer warehouse.Close()
	fmt.Println("✓ Connected to warehouse")

	// Local bet log
	betLog, err := store.OpenBetLog(cfg.BetLogPath)
	if err != nil {
		fmt.Printf("❌ Failed to open bet log: %v\n", err)
		os.Exit(1)
	}
	defer betLog.Close()
	fmt.Printf("✓ Bet log at %s\n", cfg.BetLogPath)

	// Redis: result cache and snapshot stream (optional)
	var resultCache *cache.ResultCache
	var snapConsumer *consumer.SnapshotConsumer
	ctx := context.Background()
	if cfg.RedisURL != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			fmt.Printf("❌ Failed to connect to Redis: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		fmt.Println("✓ Connected to Redis")

		resultCache = cache.NewResultCache(redisClient, cfg.CacheTTL)

		snapConsumer = consumer.NewSnapshotConsumer(redisClient, cfg.ConsumerID, cfg.ConsumerGroup)
		if err := snapConsumer.EnsureGroup(ctx, cfg.SnapshotStream); err != nil {
			fmt.Printf("❌ Failed to create consumer group: %v\n", err)
			os.Exit(1)
		}
	}

	// Broadcast hub
	broadcastHub := hub.NewHub()

	// HTTP API
	srv := server.NewServer(betLog, broadcastHub)
	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	opts := pipeline.DefaultOptions()
	opts.Policy = cfg.Policy
	opts.CloseBufferSeconds = cfg.CloseBufferSeconds
	opts.StartingBankroll = cfg.StartingBankroll

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go broadcastHub.Run(runCtx)

	go func() {
		fmt.Printf("✓ API listening on %s\n", cfg.ServerAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("❌ HTTP server error: %v\n", err)
		}
	}()

	// Settlement loop: runs immediately, then on the configured interval
	orch := &orchestrator{
		cfg:          cfg,
		opts:         opts,
		warehouse:    warehouse,
		betLog:       betLog,
		resultCache:  resultCache,
		snapConsumer: snapConsumer,
		srv:          srv,
		hub:          broadcastHub,
	}

	go func() {
		ticker := time.NewTicker(cfg.RunInterval)
		defer ticker.Stop()

		if err := orch.runOnce(runCtx); err != nil {
			fmt.Printf("[Workbench] initial run error: %v\n", err)
		}

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if err := orch.runOnce(runCtx); err != nil {
					fmt.Printf("[Workbench] run error: %v\n", err)
				}
			}
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	fmt.Printf("\n⚠️  Received signal: %v\n", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("⚠️  HTTP shutdown error: %v\n", err)
	}

	fmt.Println("✓ Shutdown complete")
}

// orchestrator owns one settlement cycle: load, check cache, run, persist,
// publish
type orchestrator struct {
	cfg          *config.Config
	opts         pipeline.Options
	warehouse    *store.Warehouse
	betLog       *store.BetLog
	resultCache  *cache.ResultCache
	snapConsumer *consumer.SnapshotConsumer
	srv          *server.Server
	hub          *hub.Hub

	// snapshots accumulate across cycles; the stream is drained into them
	snapshots []models.LineSnapshot
}

func (o *orchestrator) runOnce(ctx context.Context) error {
	edges, err := o.warehouse.LoadEdges(ctx)
	if err != nil {
		return fmt.Errorf("load edges: %w", err)
	}

	scores, err := o.warehouse.LoadScores(ctx)
	if err != nil {
		return fmt.Errorf("load scores: %w", err)
	}

	if len(o.snapshots) == 0 {
		stored, err := o.warehouse.LoadSnapshots(ctx, time.Time{})
		if err != nil {
			return fmt.Errorf("load snapshots: %w", err)
		}
		o.snapshots = consumer.MergeSnapshots(o.snapshots, stored)
	}

	if o.snapConsumer != nil {
		fresh, err := o.snapConsumer.Drain(ctx, o.cfg.SnapshotStream, 10000)
		if err != nil {
			fmt.Printf("[Workbench] snapshot drain error: %v\n", err)
		}
		o.snapshots = consumer.MergeSnapshots(o.snapshots, fresh)
	}

	// Result cache: identical inputs under the same policy reuse the
	// settled table and only recompute aggregates
	var cacheKey string
	if o.resultCache != nil {
		cacheKey, err = cache.Key(edges, scores, o.opts.Policy)
		if err == nil {
			if settled, hit, err := o.resultCache.Get(ctx, cacheKey); err == nil && hit {
				fmt.Println("[Workbench] cache hit, skipping grade")
				o.publish(pipeline.FromSettled(settled, o.snapshots, o.opts))
				return nil
			}
		}
	}

	res, err := pipeline.Run(edges, scores, o.snapshots, o.opts)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if o.resultCache != nil && cacheKey != "" {
		if err := o.resultCache.Set(ctx, cacheKey, res.Settled); err != nil {
			fmt.Printf("[Workbench] cache store error: %v\n", err)
		}
	}

	if err := o.warehouse.SaveSettled(ctx, uuid.New().String(), res.Settled); err != nil {
		fmt.Printf("[Workbench] warehouse save error: %v\n", err)
	}

	o.publish(res)
	return nil
}

func (o *orchestrator) publish(res *pipeline.Result) {
	if _, err := o.betLog.RecordRun(res.Summary, res.Settled); err != nil {
		fmt.Printf("[Workbench] bet log error: %v\n", err)
	}

	o.srv.SetResult(res)
	o.hub.Broadcast(res.Summary)
}
