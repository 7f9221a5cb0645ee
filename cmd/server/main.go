package main

import (
	"context"
	"log"

	"eventgo-ticketing/config"
	"eventgo-ticketing/internal/cache"
	"eventgo-ticketing/internal/database"
	"eventgo-ticketing/internal/handler"
	"eventgo-ticketing/internal/payment"
	"eventgo-ticketing/internal/queue"
	"eventgo-ticketing/internal/repository"
	"eventgo-ticketing/internal/service"
	"eventgo-ticketing/internal/worker"
	"eventgo-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	defer logger.Sync()

	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// repositories
	eventRepo := repository.NewEventRepository(pool)
	ticketTypeRepo := repository.NewTicketTypeRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	issuedRepo := repository.NewIssuedTicketRepository(pool)
	discountRepo := repository.NewDiscountRepository(pool)

	// services
	rankCache := cache.NewLoyaltyRankCache(rdb, cache.DefaultRankTTL)
	loyaltySvc := service.NewLoyaltyService(orderRepo, rankCache, cfg.Booking)
	discountSvc := service.NewDiscountService(discountRepo)
	notifQueue, err := queue.NewRedisStreamNotificationQueue(rdb, "", nil)
	if err != nil {
		log.Fatalf("Failed to initialize notification queue: %v", err)
	}
	orderSvc := service.NewOrderService(pool, orderRepo, ticketTypeRepo, issuedRepo,
		discountSvc, loyaltySvc, notifQueue, cfg.Booking)
	eventSvc := service.NewEventService(eventRepo)
	ticketTypeSvc := service.NewTicketTypeService(pool, ticketTypeRepo, eventRepo)
	gateway := payment.NewMoMoGateway(cfg.Payment)
	reconcileSvc := service.NewReconcileService(gateway, orderSvc, orderRepo)

	// background workers
	worker.NewExpiryWorker(orderSvc, cfg.Booking).Start(ctx)
	if err := worker.NewNotificationWorker(worker.NewLogNotifier(), notifQueue).Start(ctx); err != nil {
		log.Fatalf("Failed to start notification worker: %v", err)
	}

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.NewEventHandler(eventSvc, discountSvc, loyaltySvc, orderSvc).RegisterRoutes(router)
	handler.NewTicketTypeHandler(ticketTypeSvc, orderSvc).RegisterRoutes(router)
	handler.NewOrderHandler(orderSvc, eventSvc).RegisterRoutes(router)
	handler.NewPaymentHandler(reconcileSvc).RegisterRoutes(router)
	handler.NewLoyaltyHandler(loyaltySvc).RegisterRoutes(router)

	router.Run()
}
