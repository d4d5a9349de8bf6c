package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iamsahan/threadly/internal/config"
	"github.com/iamsahan/threadly/internal/database"
	"github.com/iamsahan/threadly/internal/handler"
	"github.com/iamsahan/threadly/internal/httperr"
	"github.com/iamsahan/threadly/internal/middleware"
	"github.com/iamsahan/threadly/internal/queue"
	"github.com/iamsahan/threadly/internal/repository"
	"github.com/iamsahan/threadly/internal/router"
	"github.com/iamsahan/threadly/internal/service"
	"github.com/iamsahan/threadly/internal/token"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	codec, err := token.NewCodec(cfg.JWTSecret, time.Duration(cfg.SessionTTLMin)*time.Minute)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	users := repository.NewUserRepo(db)
	products := repository.NewProductRepo(db)
	orders := repository.NewOrderRepo(db)
	contacts := repository.NewContactRepo(db)
	customOrders := repository.NewCustomOrderRepo(db)

	auth := middleware.NewAuthenticator(codec, users, cfg.Prod())
	publisher := service.NewPublisher()

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(users, codec, auth, publisher, cfg.BcryptCost),
		Products:     handler.NewProductHandler(products),
		Orders:       handler.NewOrderHandler(orders, products, publisher),
		Contacts:     handler.NewContactHandler(contacts),
		CustomOrders: handler.NewCustomOrderHandler(customOrders),
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, response cache disabled")
	}

	e := echo.New()
	e.HTTPErrorHandler = httperr.NewHandler(cfg.Prod())
	router.Register(e, h, auth, config.LoadCacheConfig(), rdb)

	go queue.StartOrderConsumer(context.Background())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
