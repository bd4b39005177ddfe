package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxel4d/internal/api"
	"github.com/annel0/voxel4d/internal/app"
	"github.com/annel0/voxel4d/internal/config"
	"github.com/annel0/voxel4d/internal/logging"
	"github.com/annel0/voxel4d/internal/metrics"
	"github.com/annel0/voxel4d/internal/observability"
)

func main() {
	var (
		configPath = flag.String("config", "", "путь к YAML-конфигурации (или $"+config.ConfigEnv+")")
		worldName  = flag.String("world", "", "имя мира (перекрывает world.name)")
		username   = flag.String("player", "", "имя игрока (перекрывает world.player)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *worldName != "" {
		cfg.World.Name = *worldName
	}
	if *username != "" {
		cfg.World.Player = *username
	}

	// === ЛОГИРОВАНИЕ ===
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	logging.SetDefaultLevel(level)
	if cfg.Logging.File {
		logging.SetLogDir(cfg.Logging.GetLogDir())
		if err := logging.InitDefaultLogger("server"); err != nil {
			log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
		}
		logging.GetLoggerManager().SetLevel(level)
	}

	err = run(cfg)
	if err != nil {
		logging.Error("❌ %v", err)
	}
	if cfg.Logging.File {
		if cerr := logging.GetLoggerManager().CloseAll(); cerr != nil {
			log.Printf("⚠️ %v", cerr)
		}
		logging.CloseDefaultLogger()
	}
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logging.Info("🎮 Запуск voxel4d: мир %q, игрок %q", cfg.World.Name, cfg.World.Player)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ТРАССИРОВКА ===
	shutdownTracing, err := observability.InitTelemetry(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("инициализация OpenTelemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logging.Warn("Ошибка остановки трассировки: %v", err)
		}
	}()

	// === МЕТРИКИ ===
	var (
		m       *metrics.Metrics
		sampler *metrics.ProcessSampler
		opts    []app.Option
	)
	if cfg.Server.MetricsEnabled {
		m = metrics.New()
		opts = append(opts, app.WithMetrics(m))

		sampler, err = metrics.NewProcessSampler()
		if err != nil {
			logging.Warn("Сэмплер процесса недоступен: %v", err)
		} else {
			go m.RunSampler(ctx, sampler, 15*time.Second)
		}
	}

	// Файловые логи раскладываются по компонентам
	var apiLogger *logging.Logger
	if cfg.Logging.File {
		opts = append(opts,
			app.WithLogger(logging.GetWorldLogger()),
			app.WithStorageLogger(logging.GetStorageLogger()),
		)
		apiLogger = logging.GetAPILogger()
	}

	// === МИР ===
	events := api.NewEventStream(apiLogger)
	opts = append(opts, app.WithEventListener(events.Publish))

	session, err := app.Open(cfg, cfg.World.Name, cfg.World.Player, opts...)
	if err != nil {
		return err
	}
	defer session.Close()

	// === REST API ===
	restServer := api.NewRestServer(api.Config{
		Port:    fmt.Sprintf(":%d", cfg.Server.GetRESTPort()),
		Game:    session,
		Metrics: m,
		Sampler: sampler,
		Events:  events,
		Logger:  apiLogger,
	})
	if err := restServer.Start(); err != nil {
		return fmt.Errorf("запуск REST API: %w", err)
	}
	defer restServer.Stop(context.Background())
	defer events.Close() // раньше HTTP-сервера

	logging.Info("✅ Сервер запущен. Нажмите Ctrl+C для остановки...")

	// Run возвращается после финального сохранения
	if err := session.Run(ctx); err != nil {
		return fmt.Errorf("финальное сохранение: %w", err)
	}
	logging.Info("👋 Мир %q сохранён, до встречи", cfg.World.Name)
	return nil
}
