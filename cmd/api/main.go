package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dkravchenko/polyclinic-backend/api/routes"
	"github.com/dkravchenko/polyclinic-backend/internal/auth"
	"github.com/dkravchenko/polyclinic-backend/internal/doctors"
	"github.com/dkravchenko/polyclinic-backend/internal/photos"
	"github.com/dkravchenko/polyclinic-backend/internal/users"
	"github.com/dkravchenko/polyclinic-backend/pkg/config"
	"github.com/dkravchenko/polyclinic-backend/pkg/db"
	"github.com/dkravchenko/polyclinic-backend/pkg/logger"
	"github.com/dkravchenko/polyclinic-backend/pkg/metrics"
	"github.com/dkravchenko/polyclinic-backend/pkg/migrate"
	"github.com/dkravchenko/polyclinic-backend/pkg/redis"
	"github.com/dkravchenko/polyclinic-backend/pkg/storage/fsstore"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	photoStore, err := fsstore.New(context.Background(), cfg.Storage, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap photo storage", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	authMetrics := metrics.NewAuthMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())
	doctorRepo := doctors.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  userRepo,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	promoteService, err := auth.NewPromoteService(auth.PromoteServiceParams{
		TxRunner: dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create promote service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.ServiceParams{
		UserRepo:   userRepo,
		DoctorRepo: doctorRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	photosService, err := photos.NewService(photos.ServiceParams{
		Store:     photoStore,
		UserRepo:  userRepo,
		PublicURL: cfg.App.PublicURL,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create photos service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			photoStore,
			registry,
			authMetrics,
			authService,
			registerService,
			promoteService,
			usersService,
			photosService,
			doctorRepo,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
