package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/dkarimli/backoffice/internal/config"
	"github.com/dkarimli/backoffice/internal/database"
	"github.com/dkarimli/backoffice/internal/handler"
	"github.com/dkarimli/backoffice/internal/queue"
	"github.com/dkarimli/backoffice/internal/repository"
	"github.com/dkarimli/backoffice/internal/router"
	"github.com/dkarimli/backoffice/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// nil when Redis is unreachable; cache and rate limiting degrade to no-ops
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	clients := repository.NewClientRepo(db)
	products := repository.NewProductRepo(db)
	orders := repository.NewOrderRepo(db)
	comments := repository.NewCommentRepo(db)

	orderSvc := service.NewOrderService(repository.NewUnitOfWork(db))

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, tokens),
		Users:    handler.NewUserHandler(cfg, users, tokens),
		Clients:  handler.NewClientHandler(clients),
		Products: handler.NewProductHandler(products),
		Orders:   handler.NewOrderHandler(orders, orderSvc),
		Comments: handler.NewCommentHandler(comments),
	}

	e := echo.New()
	router.Register(e, cfg, h, users, rdb)

	// Background consumer writing order events to logs/orders.log.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
