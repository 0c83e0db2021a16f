package main // Entry point

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/expomatch/server/internal/config"
	"github.com/expomatch/server/internal/database"
	"github.com/expomatch/server/internal/handler"
	"github.com/expomatch/server/internal/queue"
	"github.com/expomatch/server/internal/repository"
	"github.com/expomatch/server/internal/router"
	"github.com/expomatch/server/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Nil when Redis is unreachable; cache and rate limit degrade to
	// pass-through in that case.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, response cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	events := repository.NewEventRepo(db)
	apps := repository.NewApplicationRepo(db)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, cfg, rdb, router.Handlers{
		Auth:   handler.NewAuthHandler(cfg, users),
		Events: handler.NewEventHandler(events),
		Apps:   handler.NewApplicationHandler(apps, service.PublishApplicationDecided),
		Upload: handler.NewUploadHandler(cfg),
	})

	// Decision log consumer; reconnects on its own and never brings the
	// API down.
	go func() {
		if err := queue.StartDecisionConsumer(); err != nil {
			log.Printf("decision consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
