package main

import (
	"lumiere/internal/config"
	"lumiere/internal/domain/model"
	"lumiere/internal/handler"
	"lumiere/internal/infra/db"
	"lumiere/internal/infra/events"
	infraRepo "lumiere/internal/infra/repository"
	"lumiere/internal/infra/session"
	"lumiere/internal/server"
	"lumiere/internal/usecase"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envは任意（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Store{},
		&model.ProductVariant{},
		&model.CartItem{},
		&model.PromoCode{},
		&model.OrderStatus{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderStatusHistory{},
		&model.OrderNotification{},
		&model.Payment{},
		&model.AuditLog{},
	); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	storeRepo := infraRepo.NewStoreGormRepository(gormDB)
	variantRepo := infraRepo.NewVariantGormRepository(gormDB)
	cartRepo := infraRepo.NewCartItemGormRepository(gormDB)
	promoRepo := infraRepo.NewPromoGormRepository(gormDB)
	statusRepo := infraRepo.NewStatusGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	historyRepo := infraRepo.NewStatusHistoryGormRepository(gormDB)
	notificationRepo := infraRepo.NewNotificationGormRepository(gormDB)
	paymentRepo := infraRepo.NewPaymentGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//セッション（Redisが無ければインメモリ）
	var sessionStore usecase.SessionStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		sessionStore = session.NewRedisStore(client)
		logger.Info("session store: redis", zap.String("addr", cfg.RedisAddr))
	} else {
		sessionStore = session.NewMemoryStore()
		logger.Info("session store: in-memory")
	}

	//イベント（Kafka未設定なら送信なし）
	var publisher usecase.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, logger)
		defer kp.Close() //nolint:errcheck
		publisher = kp
		logger.Info("event publisher: kafka", zap.Strings("brokers", cfg.KafkaBrokers))
	} else {
		publisher = events.NewNopPublisher()
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, cfg.JWTSecret)
	cartUC := usecase.NewCartUsecase(cartRepo, variantRepo, promoRepo, sessionStore, logger)
	orderUC := usecase.NewOrderUsecase(usecase.OrderUsecaseDeps{
		Tx:            txManager,
		Orders:        orderRepo,
		OrderItems:    orderItemRepo,
		CartItems:     cartRepo,
		Variants:      variantRepo,
		Stores:        storeRepo,
		Promos:        promoRepo,
		Statuses:      statusRepo,
		History:       historyRepo,
		Notifications: notificationRepo,
		Payments:      paymentRepo,
		Audit:         auditRepo,
		Session:       sessionStore,
		Tracker:       usecase.NewStatusTracker(),
		Publisher:     publisher,
		Logger:        logger,
	})
	notificationUC := usecase.NewNotificationUsecase(notificationRepo)

	//Handler生成
	h := server.Handlers{
		Auth:          handler.NewAuthHandler(authUC),
		Cart:          handler.NewCartHandler(cartUC),
		Order:         handler.NewOrderHandler(orderUC),
		Notifications: handler.NewNotificationHandler(notificationUC),
	}

	//Server起動
	e := server.New(cfg, h)
	if err := server.Start(e, cfg); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.GoEnv == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
