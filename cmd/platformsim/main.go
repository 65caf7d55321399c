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

	"github.com/platformsim/server/internal/config"
	"github.com/platformsim/server/internal/core/event"
	coresys "github.com/platformsim/server/internal/core/system"
	"github.com/platformsim/server/internal/core/timeline"
	"github.com/platformsim/server/internal/data"
	"github.com/platformsim/server/internal/handler"
	gonet "github.com/platformsim/server/internal/net"
	"github.com/platformsim/server/internal/net/packet"
	"github.com/platformsim/server/internal/scripting"
	"github.com/platformsim/server/internal/system"
	"github.com/platformsim/server/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("PLATFORMSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting", zap.String("server", cfg.Server.Name), zap.String("config", cfgPath))

	// 3. Level layout and character scripts
	lv, err := data.LoadLevel(cfg.Level.Path)
	if err != nil {
		return fmt.Errorf("load level: %w", err)
	}
	log.Info("level loaded",
		zap.String("path", cfg.Level.Path),
		zap.Int("static_platforms", len(lv.StaticPlatforms)),
		zap.Int("moving_platforms", len(lv.MovingPlatforms)),
		zap.Int("spawn_points", len(lv.SpawnPoints)),
		zap.Int("death_zones", len(lv.DeathZones)),
	)

	eng, err := scripting.NewEngine(cfg.Scripting.Dir, log.Named("scripting"))
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer eng.Close()
	tuning := eng.CharacterTuning()
	bindings := eng.CharacterBindings()
	log.Info("character scripts loaded",
		zap.String("dir", cfg.Scripting.Dir),
		zap.Int("bindings", len(bindings)),
		zap.Float64("radius", tuning.Radius),
	)

	// 4. Timelines, scheduler and world
	base := timeline.NewReal(cfg.Simulation.TicSize, timeline.SystemClock{})
	game := timeline.NewGame(cfg.Simulation.GameRate, base)
	replay := timeline.NewGame(cfg.Replay.NormalSpeed, base)
	events := event.NewManager(game, replay, log.Named("events"))
	guard := event.NewGuard(events)

	w, err := world.Build(lv, world.Options{
		Timeline: game,
		Tuning:   tuning,
		Bindings: bindings,
		Log:      log.Named("world"),
	})
	if err != nil {
		return fmt.Errorf("build world: %w", err)
	}

	// 5. Event handlers and client transport
	sessions := gonet.NewSessionStore()
	broadcaster := gonet.NewBroadcaster(sessions)
	handler.RegisterAll(&handler.Deps{
		Events: events,
		World:  w,
		Config: cfg,
		Sink:   broadcaster,
		Log:    log.Named("handler"),
		OnReplayFinished: func() {
			broadcaster.PublishSnapshot(w.Snapshot())
		},
	})

	pktReg := packet.NewRegistry(log.Named("packet"))
	gonet.RegisterRequests(pktReg, guard, w, log.Named("requests"))
	netServer := gonet.NewServer(cfg.Network, pktReg, log.Named("net"))

	// 6. Systems
	runner := coresys.NewRunner(log.Named("runner"))
	runner.Register(system.NewConnectionSystem(netServer, sessions, guard, w, log.Named("connections")))
	runner.Register(system.NewPatrolSystem(guard, w, cfg.Simulation.PlatformPriorityOffset))
	runner.Register(system.NewDispatchSystem(guard, log.Named("dispatch")))
	runner.Register(system.NewDigestSystem(guard, w, cfg.Simulation.DigestInterval, log.Named("digest")))
	runner.Register(system.NewCleanupSystem(guard, w))
	loop := system.NewLoop(runner, cfg.Simulation)

	// 7. Serve until a shutdown signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{
		Addr:              cfg.Network.BindAddress,
		Handler:           netServer.Handler(),
		ReadHeaderTimeout: cfg.Network.HandshakeTimeout,
	}

	log.Info("ready",
		zap.String("listen", cfg.Network.BindAddress+cfg.Network.Path),
		zap.Duration("pre_dispatch_sleep", cfg.Simulation.PreDispatchSleep),
		zap.Duration("post_dispatch_sleep", cfg.Simulation.PostDispatchSleep),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := loop.Run(ctx)
		sessions.ForEach(func(s *gonet.Session) { s.Close() })
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
