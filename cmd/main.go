package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/SMC-NetsBookingService/internal/api/handlers/cancel_booking"
	createBlockHandler "github.com/m04kA/SMC-NetsBookingService/internal/api/handlers/create_block"
	createBookingHandler "github.com/m04kA/SMC-NetsBookingService/internal/api/handlers/create_booking"
	deleteBlockHandler "github.com/m04kA/SMC-NetsBookingService/internal/api/handlers/delete_block"
	getAvailableSlotsHandler "github.com/m04kA/SMC-NetsBookingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-NetsBookingService/internal/api/handlers/get_booking"
	getPolicyHandler "github.com/m04kA/SMC-NetsBookingService/internal/api/handlers/get_policy"
	getScheduleBookingsHandler "github.com/m04kA/SMC-NetsBookingService/internal/api/handlers/get_schedule_bookings"
	getUserBookingsHandler "github.com/m04kA/SMC-NetsBookingService/internal/api/handlers/get_user_bookings"
	listBlocksHandler "github.com/m04kA/SMC-NetsBookingService/internal/api/handlers/list_blocks"
	validatePackageHandler "github.com/m04kA/SMC-NetsBookingService/internal/api/handlers/validate_package"
	"github.com/m04kA/SMC-NetsBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-NetsBookingService/internal/config"
	blockedRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/blocked"
	bookingRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/booking"
	machineRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/machine"
	notificationRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/notification"
	packagesRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/packages"
	policyRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/policy"
	"github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/schema"
	"github.com/m04kA/SMC-NetsBookingService/internal/integrations/notifier"
	userServiceClient "github.com/m04kA/SMC-NetsBookingService/internal/integrations/userservice"
	"github.com/m04kA/SMC-NetsBookingService/internal/service/access"
	blocksService "github.com/m04kA/SMC-NetsBookingService/internal/service/blocks"
	bookingsService "github.com/m04kA/SMC-NetsBookingService/internal/service/bookings"
	policyService "github.com/m04kA/SMC-NetsBookingService/internal/service/policy"
	blockSlotsUC "github.com/m04kA/SMC-NetsBookingService/internal/usecase/block_slots"
	createBookingUC "github.com/m04kA/SMC-NetsBookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-NetsBookingService/internal/usecase/get_available_slots"
	validatePackageUC "github.com/m04kA/SMC-NetsBookingService/internal/usecase/validate_package"
	"github.com/m04kA/SMC-NetsBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-NetsBookingService/pkg/logger"
	"github.com/m04kA/SMC-NetsBookingService/pkg/metrics"
	"github.com/m04kA/SMC-NetsBookingService/pkg/txmanager"
)

// domainMetrics счётчики бронирований: prometheus или заглушка
type domainMetrics interface {
	BookingCreated(ballType string, packageFunded bool)
	BookingRejected(reason string)
	BookingsCascadeCancelled(n int)
}

func main() {
	// .env необязателен, переменные окружения переопределяют config.toml
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	configPath := os.Getenv("NETS_CONFIG_PATH")
	if configPath == "" {
		configPath = "config.toml"
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-NetsBookingService...")
	log.Info("Configuration loaded from %s (batch_mode=%s, max_batch=%d)",
		configPath, cfg.Booking.BatchMode, cfg.Booking.MaxBatchSize)

	// Инициализируем метрики (если включены)
	var (
		metricsCollector *metrics.Metrics
		bookingMetrics   domainMetrics = metrics.Nop{}
	)
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		bookingMetrics = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// С выключенными метриками обёртка работает как обычный *sql.DB
	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db)
	}

	// Возможности схемы определяются один раз
	detectCtx, cancelDetect := context.WithTimeout(context.Background(), 10*time.Second)
	caps, err := schema.Detect(detectCtx, wrappedDB)
	cancelDetect()
	if err != nil {
		log.Fatal("Failed to detect schema capabilities: %v", err)
	}
	log.Info("Schema capabilities: pricing_columns=%t, blocked_slots=%t", caps.PricingColumns, caps.BlockedSlots)

	// Инициализируем репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB, caps)
	blockedRepository := blockedRepo.NewRepository(wrappedDB, caps)
	machineRepository := machineRepo.NewRepository(wrappedDB)
	packagesRepository := packagesRepo.NewRepository(wrappedDB)
	policyRepository := policyRepo.NewRepository(wrappedDB)
	notificationRepository := notificationRepo.NewRepository(wrappedDB)

	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Роли из UserService; без URL все пользователи customer
	var userClient access.UserServiceClient
	if cfg.UserService.URL != "" {
		userClient = userServiceClient.NewClient(
			cfg.UserService.URL,
			time.Duration(cfg.UserService.Timeout)*time.Second,
			log,
		)
		log.Info("UserService client initialized (url=%s, timeout=%ds)", cfg.UserService.URL, cfg.UserService.Timeout)
	} else {
		log.Warn("UserService URL is empty, every caller is treated as customer")
	}
	roles := access.NewResolver(userClient, log)

	// Публикация уведомлений об отменах; без брокера уведомления остаются в таблице
	var publisher blockSlotsUC.Publisher
	if cfg.RabbitMQ.URL != "" {
		amqpPublisher, err := notifier.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		log.Info("RabbitMQ publisher initialized (exchange=%s, routing_key=%s)",
			cfg.RabbitMQ.Exchange, cfg.RabbitMQ.RoutingKey)
	} else {
		log.Warn("RabbitMQ URL is empty, cancellation notifications are stored but not published")
	}

	// Инициализируем сервисы
	policySvc := policyService.NewService(policyRepository, log)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		packagesRepository,
		txMgr,
		roles,
		bookingsService.RealTimeProvider{},
		log,
	)
	blockSvc := blocksService.NewService(blockedRepository, roles, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		blockedRepository,
		machineRepository,
		packagesRepository,
		policySvc,
		roles,
		txMgr,
		bookingMetrics,
		createBookingUC.Options{
			BatchMode:    createBookingUC.BatchMode(cfg.Booking.BatchMode),
			MaxBatchSize: cfg.Booking.MaxBatchSize,
		},
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		blockedRepository,
		machineRepository,
		policySvc,
		roles,
		log,
	)

	validatePackageUseCase := validatePackageUC.NewUseCase(packagesRepository, policySvc, log)

	blockSlotsUseCase := blockSlotsUC.NewUseCase(
		blockedRepository,
		bookingRepository,
		machineRepository,
		packagesRepository,
		notificationRepository,
		publisher,
		cfg.RabbitMQ.RoutingKey,
		roles,
		txMgr,
		bookingMetrics,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getScheduleBookings := getScheduleBookingsHandler.NewHandler(bookingSvc, log)
	validatePackage := validatePackageHandler.NewHandler(validatePackageUseCase, log)
	createBlock := createBlockHandler.NewHandler(blockSlotsUseCase, log)
	listBlocks := listBlocksHandler.NewHandler(blockSvc, log)
	deleteBlock := deleteBlockHandler.NewHandler(blockSvc, log)
	getPolicy := getPolicyHandler.NewHandler(policySvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Действующая политика: длительность слота, периоды, цены
	api.HandleFunc("/policy", getPolicy.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Доступность и бронирования ---
	protected.HandleFunc("/availability", getAvailableSlots.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Пакеты ---
	protected.HandleFunc("/packages/validate", validatePackage.Handle).Methods(http.MethodPost)

	// --- Администрирование ---
	protected.HandleFunc("/schedule", getScheduleBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/blocks", createBlock.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/blocks", listBlocks.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/blocks/{blockId}", deleteBlock.Handle).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
