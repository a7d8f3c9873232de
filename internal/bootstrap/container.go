package bootstrap

import (
	"context"
	"log"

	"leave-auth-be/internal/config"
	"leave-auth-be/internal/controller"
	"leave-auth-be/internal/pkg/logger"
	"leave-auth-be/internal/pkg/serverutils"
	"leave-auth-be/internal/repository/unitofwork"
	"leave-auth-be/internal/service"
	"leave-auth-be/pkg/kv"
	pktNats "leave-auth-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	PublicController   controller.IPublicController
	ApprovalController controller.IApprovalController
	RequestController  controller.IRequestController
	AuthController     controller.IAuthController
	AdminController    controller.IAdminController

	// Session middleware, shared by the protected route groups.
	AuthMiddleware fiber.Handler

	// Background services (run from main).
	AuditConsumer service.IAuditConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS fan-out is optional; the audit trail is durable without it.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 3. Ephemeral cache
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	store := kv.NewRedisStore(rdb)

	// 4. Services
	auditPublisher := service.NewAuditPublisher(pubSub, sysLogger)
	configService := service.NewConfigService(uowFactory)

	requestService := service.NewRequestService(uowFactory, configService, auditPublisher)
	approvalService := service.NewApprovalService(uowFactory, store, auditPublisher, cfg.App.ClientURL)
	authService := service.NewAuthService(uowFactory, store, auditPublisher, cfg.Auth)
	adminService := service.NewAdminService(uowFactory, store, configService, auditPublisher, cfg.App.ClientURL)

	auditConsumer := service.NewAuditConsumerService(pubSub, uowFactory, natsPub, sysLogger)

	return &Container{
		PublicController:   controller.NewPublicController(requestService),
		ApprovalController: controller.NewApprovalController(approvalService),
		RequestController:  controller.NewRequestController(requestService, approvalService),
		AuthController:     controller.NewAuthController(authService),
		AdminController:    controller.NewAdminController(adminService),

		AuthMiddleware: serverutils.JwtMiddleware(store, cfg.Auth.JWTSecret),
		AuditConsumer:  auditConsumer,
		Logger:         sysLogger,
	}
}
