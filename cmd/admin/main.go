package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Spok95/tuition-center-admin/internal/app"
	"github.com/Spok95/tuition-center-admin/internal/config"
	"github.com/Spok95/tuition-center-admin/internal/jobs"
	"github.com/Spok95/tuition-center-admin/internal/logging"
	"github.com/Spok95/tuition-center-admin/internal/observability"
	"github.com/Spok95/tuition-center-admin/internal/reconcile"
	"github.com/Spok95/tuition-center-admin/internal/session"
	"github.com/Spok95/tuition-center-admin/internal/store"
)

const release = "tuition-center-admin@dev"

func main() {
	// Загрузка переменных окружения
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer lg.Closer()

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, release)
	if err != nil {
		lg.Sugar.Warnw("sentry не инициализирован", "err", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		lg.Sugar.Fatalw("подключение к БД не удалось", "err", err)
	}
	defer database.Close()

	if err := store.Migrate(database); err != nil {
		lg.Sugar.Fatalw("миграция не удалась", "err", err)
	}
	if cfg.SeedDemo {
		if err := store.SeedDemo(ctx, database, cfg.OwnerID); err != nil {
			lg.Sugar.Fatalw("seed демо-данных не удался", "err", err)
		}
	}

	// Сессия создаётся явно и передаётся вниз; глобального состояния нет.
	sess := session.New(cfg.OwnerID, cfg.Location)

	loop := reconcile.NewLoop(store.Snapshot{DB: database, OwnerID: cfg.OwnerID}, sess, lg.Named("loop"))
	go loop.Run(ctx)

	// Любое изменение таблиц в БД — триггер полного пересчёта.
	go func() {
		err := store.ListenChanges(ctx, cfg.DatabaseURL, lg.Named("listen"), loop.Notify)
		if err != nil && !errors.Is(err, context.Canceled) {
			lg.Sugar.Errorw("подписка на изменения завершилась", "err", err)
			observability.CaptureErr(err)
		}
	}()

	jobs.StartMaintenance(ctx, database, loop, cfg.RefreshEvery)

	api := &app.API{DB: database, Loop: loop, Sess: sess, Log: lg.Named("api")}
	app.StartHTTP(ctx, cfg.HTTPAddr, database, api)

	lg.Sugar.Infow("сервис запущен", "addr", cfg.HTTPAddr, "owner", cfg.OwnerID, "env", cfg.Env)
	<-ctx.Done()
	lg.Sugar.Info("остановка по сигналу")
}
