package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"trialwatch/internal/auth"
	"trialwatch/internal/clock"
	"trialwatch/internal/config"
	"trialwatch/internal/db"
	"trialwatch/internal/logger"
	"trialwatch/internal/middleware"
	"trialwatch/internal/migrate"
	"trialwatch/internal/trial"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"trialwatch/docs"
)

// @title Trialwatch
// @version 1.0
// @description REST API for tracking free-trial subscriptions before they start charging
// @host localhost:8080
func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	slogger := logger.New(cfg.Log.Level)
	docs.SwaggerInfo.Host = cfg.Swagger.Host

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	sysClock := clock.System()

	var store trial.Store
	if cfg.App.DemoMode {
		slogger.Warn("no database configured, serving seeded demo data")
		store = trial.NewDemoStore(sysClock.Now())
	} else {
		database, err := db.Open(ctx, db.Config{
			URL:             cfg.DB.DSN(),
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		})
		if err != nil {
			log.Fatalf("connect to postgres: %v", err)
		}
		defer database.Close()

		if err := migrate.Up(ctx, database); err != nil {
			log.Fatalf("run migrations: %v", err)
		}

		store = trial.NewRepository(database, cfg.Auth.OwnerScoping)
	}

	svc := trial.NewService(store, sysClock, trial.Options{
		OwnerScoping: cfg.Auth.OwnerScoping,
		DemoMode:     cfg.App.DemoMode,
	})

	var verifier *auth.Verifier
	if cfg.Auth.Secret != "" {
		verifier, err = auth.NewVerifier(cfg.Auth.Secret)
		if err != nil {
			log.Fatalf("init auth verifier: %v", err)
		}
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(slogger))

	router.GET("/healthz", func(c *gin.Context) {
		c.String(200, "ok")
	})

	handler := trial.NewHandler(svc, slogger, cfg.Cron.Secret)
	handler.RegisterRoutes(router, auth.Identity(verifier, slogger))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	slogger.Info("listening",
		"port", cfg.App.Port,
		"demo_mode", cfg.App.DemoMode,
		"owner_scoping", cfg.Auth.OwnerScoping,
	)
	if err := router.Run(":" + cfg.App.Port); err != nil {
		fmt.Fprintln(os.Stderr, "failed to start server:", err)
		os.Exit(1)
	}
}
