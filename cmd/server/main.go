package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/dkeye/Jukebox/internal/adapters/broadcast"
	router "github.com/dkeye/Jukebox/internal/adapters/http"
	"github.com/dkeye/Jukebox/internal/app"
	"github.com/dkeye/Jukebox/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}

	hub := broadcast.NewHub(broadcast.PolicyFor(cfg.Broadcast.SlowSubscriber), cfg.Broadcast.SubscriberBuffer)
	hub.ReadLimit = cfg.Broadcast.ReadLimit
	sinks := []broadcast.Sink{hub}

	if cfg.Broadcast.NATSURL != "" {
		ns, err := broadcast.DialNATS(cfg.Broadcast.NATSURL)
		if err != nil {
			log.Error().Err(err).Str("url", cfg.Broadcast.NATSURL).Msg("nats unavailable, continuing without it")
		} else {
			defer ns.Close()
			sinks = append(sinks, ns)
		}
	}
	if cfg.Broadcast.RedisAddr != "" {
		rs, err := broadcast.DialRedis(ctx, cfg.Broadcast.RedisAddr, cfg.Broadcast.RedisPassword, cfg.Broadcast.RedisDB)
		if err != nil {
			log.Error().Err(err).Str("addr", cfg.Broadcast.RedisAddr).Msg("redis unavailable, continuing without it")
		} else {
			defer rs.Close()
			sinks = append(sinks, rs)
		}
	}

	dispatcher := broadcast.NewDispatcher(cfg.Broadcast.Buffer, sinks...)
	manager := app.NewManager(app.NewStore(app.RandomCodes(cfg.Room.CodeLength)), dispatcher)
	manager.Retention = cfg.Room.Retention

	var wg conc.WaitGroup
	wg.Go(func() { dispatcher.Run(ctx) })
	wg.Go(func() { manager.RunSweeper(ctx, cfg.Room.SweepInterval) })

	r := router.SetupRouter(ctx, cfg, manager, hub)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Jukebox server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	wg.Wait()
	log.Info().Msg("Server exited gracefully")
}
