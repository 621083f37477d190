package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mserebryaakov/delivery-panel/config"
	"github.com/mserebryaakov/delivery-panel/internal/auth"
	"github.com/mserebryaakov/delivery-panel/internal/backup"
	"github.com/mserebryaakov/delivery-panel/internal/checkout"
	"github.com/mserebryaakov/delivery-panel/internal/delivery"
	"github.com/mserebryaakov/delivery-panel/internal/kvstore"
	"github.com/mserebryaakov/delivery-panel/internal/notify"
	"github.com/mserebryaakov/delivery-panel/internal/order"
	"github.com/mserebryaakov/delivery-panel/internal/product"
	"github.com/mserebryaakov/delivery-panel/internal/promo"
	"github.com/mserebryaakov/delivery-panel/internal/settings"
	"github.com/mserebryaakov/delivery-panel/pkg/httpserver"
	"github.com/mserebryaakov/delivery-panel/pkg/logger"
	"github.com/mserebryaakov/delivery-panel/pkg/postgres"
	"github.com/mserebryaakov/delivery-panel/pkg/validation"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	keepAliveInterval = 30 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	log := logger.NewLogger("debug", &logger.MainLogHook{})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configs: %v", err)
	}

	env, err := config.GetEnvironment()
	if err != nil {
		log.Fatal(err)
	}

	logger.SetFileOutput(logger.FileConfig{
		Path:       env.LogFile,
		MaxSize:    env.LogMaxSize,
		MaxBackups: env.LogMaxBackups,
		MaxAge:     env.LogMaxAge,
		Compress:   true,
	})
	log = logger.NewLogger(env.LogLvl, &logger.MainLogHook{})

	decimal.MarshalJSONWithoutQuotes = true

	postgresConfig := postgres.Config{
		Host:     env.PgHost,
		Port:     env.PgPort,
		Username: env.PgUser,
		Password: env.PgPassword,
		DBName:   env.PgDbName,
		SSLMode:  env.SSLMode,
		TimeZone: env.TimeZone,
	}

	db, err := postgres.NewConnection(postgresConfig, log)
	if err != nil {
		log.Fatalf("failed connection to db: %v", err)
	}

	if err := migrate(db); err != nil {
		log.Fatalf("failed migration: %v", err)
	}

	orderLog := logger.NewLogger(env.LogLvl, &order.OrderLogHook{})
	productLog := logger.NewLogger(env.LogLvl, &product.ProductLogHook{})
	deliveryLog := logger.NewLogger(env.LogLvl, &delivery.DeliveryLogHook{})
	promoLog := logger.NewLogger(env.LogLvl, &promo.PromoLogHook{})
	settingsLog := logger.NewLogger(env.LogLvl, &settings.SettingsLogHook{})
	notifyLog := logger.NewLogger(env.LogLvl, &notify.NotifyLogHook{})
	checkoutLog := logger.NewLogger(env.LogLvl, &checkout.CheckoutLogHook{})
	backupLog := logger.NewLogger(env.LogLvl, &backup.BackupLogHook{})
	authLog := logger.NewLogger(env.LogLvl, &auth.AuthLogHook{})

	kv := kvstore.NewStorage(db)

	settingsService := settings.NewService(settings.NewStorage(db), kv, cfg.Receipt.DefaultWidthMm, settingsLog)
	productService := product.NewService(product.NewStorage(db), productLog)
	deliveryService := delivery.NewService(delivery.NewStorage(db), kv, delivery.RatesFromConfig(cfg.Delivery), deliveryLog)
	promoService := promo.NewService(promo.NewStorage(db), promoLog)

	var senders []notify.Sender
	if env.WhatsappAPIURL != "" {
		senders = append(senders, notify.NewWhatsAppSender(env.WhatsappAPIURL, env.WhatsappAPIToken, notifyLog))
	}
	if env.AmqpURL != "" {
		publisher, err := notify.DialPublisher(env.AmqpURL, notifyLog)
		if err != nil {
			log.Fatalf("failed connection to rabbitmq: %v", err)
		}
		defer publisher.Close()
		senders = append(senders, publisher)
	}
	notifier := notify.NewNotifier(settingsService, notifyLog, notify.Options{
		CountryCode:    cfg.Notify.CountryCode,
		CurrencySymbol: cfg.Notify.CurrencySymbol,
	}, senders...)

	orderStorage := order.NewStorage(db)
	orderService := order.NewService(orderStorage, notifier, settingsService, orderLog)
	watcher := order.NewWatcher(orderStorage, notifier, orderLog,
		cfg.Orders.PollInterval, cfg.Orders.NewOrderWindow, cfg.Orders.AlertBuffer)

	checkoutService := checkout.NewService(productService, deliveryService, settingsService, promoService,
		orderService, notifier, checkoutLog)
	backupService := backup.NewService(productService, orderService, deliveryService, promoService,
		settingsService, kv, backupLog)

	authService, err := auth.NewService(kv, auth.Options{
		Secret:       []byte(env.JWTSecret),
		Username:     env.AdminUsername,
		PasswordHash: env.AdminPasswordHash,
	}, authLog)
	if err != nil {
		log.Fatalf("failed to init auth: %v", err)
	}

	if err := validation.Register(); err != nil {
		log.Fatalf("failed to register validators: %v", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), httpserver.RequestLogger(log))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := router.Group("")
	admin := router.Group("/api", auth.Middleware(authService, authLog))

	auth.NewHandler(authService, authLog).Register(public, admin)
	checkout.NewHandler(checkoutService, checkoutLog).Register(public)
	promo.NewHandler(promoService, promoLog).Register(public, admin)
	delivery.NewHandler(deliveryService, deliveryLog).Register(public, admin)
	order.NewHandler(orderService, watcher, orderLog).Register(admin)
	product.NewHandler(productService, productLog).Register(admin)
	settings.NewHandler(settingsService, settingsLog).Register(admin)
	backup.NewHandler(backupService, backupLog).Register(admin)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := new(httpserver.Server)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("listening on %s", cfg.Server.Port)
		return server.Run(cfg.Server.Port, router)
	})
	g.Go(func() error {
		return watcher.Run(gctx)
	})
	g.Go(func() error {
		return postgres.KeepAlive(gctx, db, keepAliveInterval, log)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("stopped with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		kvstore.RunSchemaMigration,
		settings.RunSchemaMigration,
		product.RunSchemaMigration,
		delivery.RunSchemaMigration,
		promo.RunSchemaMigration,
		order.RunSchemaMigration,
	}
	for _, m := range migrations {
		if err := m(db); err != nil {
			return err
		}
	}
	return nil
}
