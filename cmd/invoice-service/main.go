package main

import (
	"fmt"
	"log"

	"github.com/bonjour-pay/invoice-service/internal/config"
	"github.com/bonjour-pay/invoice-service/internal/delivery/httpapi"
	"github.com/bonjour-pay/invoice-service/internal/delivery/resultlistener"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/kafka"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/legacyorders"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/metrics"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/migrate"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/robokassa"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/sqlite"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/sqlite/repository"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/telegram"
	"github.com/bonjour-pay/invoice-service/internal/usecase"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Init database
	db := sqlite.MustInitDB(cfg)
	if cfg.PaymentsDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.PaymentsDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Init payment repo
	paymentRepo := repository.NewDefaultPaymentRepository(db)

	// Init gateway client
	debugLog := robokassa.NewDebugLog(cfg.Robokassa.DebugLogPath)
	gateway := robokassa.NewClient(&cfg.Robokassa, debugLog)

	// Init telegram notifier
	notifier := telegram.NewNotifier(&cfg.Telegram, logger)

	// Init legacy order importer
	importer := legacyorders.NewPGOrderImporter(cfg.LegacyDB.Dsn)

	// Init kafka publisher (опционален: без брокера события не публикуются)
	var eventPublisher usecase.EventPublisher
	if cfg.KafkaService.Host != "" {
		brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
		eventPublisher = kafka.NewDefaultKafkaPublisher(brokers)
	}

	invoiceMetrics := metrics.NewInvoiceMetrics()

	// Init payment usecase
	uc, err := usecase.NewDefaultPaymentUsecase(
		paymentRepo,
		gateway,
		notifier,
		importer,
		eventPublisher,
		cfg.KafkaService.Topic,
		invoiceMetrics,
		logger,
	)
	if err != nil {
		log.Fatalf("failed to init payment usecase: %v", err)
	}

	// ResultURL-сервер: слушает подтверждения оплаты независимо от API
	listener := resultlistener.NewListener(uc, cfg, invoiceMetrics, logger)
	go func() {
		if err := listener.Start(); err != nil {
			log.Fatalf("result listener failed: %v", err)
		}
	}()

	// Operator HTTP API
	router := httpapi.NewRouter(uc, logger)
	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	log.Printf("HTTP server started on %s\n", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("failed to serve: %v\n", err)
	}
}
