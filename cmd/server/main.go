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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/rtcengine/internal/adapters/device"
	"github.com/dkeye/rtcengine/internal/adapters/host"
	router "github.com/dkeye/rtcengine/internal/adapters/http"
	"github.com/dkeye/rtcengine/internal/adapters/rtc"
	sigclient "github.com/dkeye/rtcengine/internal/adapters/signal"
	"github.com/dkeye/rtcengine/internal/app"
	"github.com/dkeye/rtcengine/internal/app/dispatch"
	"github.com/dkeye/rtcengine/internal/app/orch"
	"github.com/dkeye/rtcengine/internal/config"
	"github.com/dkeye/rtcengine/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}

	rt := dispatch.NewThreadRuntime()
	bridge := dispatch.NewBridge(rt)

	opts := []orch.Option{orch.WithBridge(bridge)}
	if cfg.Signaling {
		opts = append(opts, orch.WithSignaling(sigclient.Factory(
			sigclient.WithSendBuffer(cfg.SignalSendBuffer),
			sigclient.WithWriteTimeout(cfg.WriteTimeout),
			sigclient.WithPingPeriod(cfg.PingPeriod),
		)))
	}
	negotiators := rtc.Factory(func() core.MediaIO { return device.New() })

	boundary := app.NewBoundary(app.NewRegistry(), func(ec orch.Config, sink core.EventSink) (*orch.Orchestrator, error) {
		return orch.New(ec, negotiators, append([]orch.Option{orch.WithSink(sink)}, opts...)...)
	})
	hub := host.NewHub(app.SimplePolicy{MaxDropped: cfg.MaxDropped}, cfg.EventBuffer)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router.SetupRouter(ctx, cfg, boundary, hub),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("rtcengine server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		err := srv.Shutdown(shutdownCtx)
		boundary.Close()
		rt.Close()
		st := bridge.Stats()
		log.Info().Int64("delivered", st.Delivered).Int64("faults", st.Faults).Int64("dropped", st.Dropped).Msg("event bridge totals")
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
	log.Info().Msg("Server exited gracefully")
}
