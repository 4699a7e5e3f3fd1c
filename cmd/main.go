package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/mfpdev/MFP-BookingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/mfpdev/MFP-BookingService/internal/api/handlers/create_booking"
	createPriceRuleHandler "github.com/mfpdev/MFP-BookingService/internal/api/handlers/create_price_rule"
	deactivatePriceRuleHandler "github.com/mfpdev/MFP-BookingService/internal/api/handlers/deactivate_price_rule"
	getAvailableSlotsHandler "github.com/mfpdev/MFP-BookingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/mfpdev/MFP-BookingService/internal/api/handlers/get_booking"
	getFacilityBookingsHandler "github.com/mfpdev/MFP-BookingService/internal/api/handlers/get_facility_bookings"
	getPriceRulesHandler "github.com/mfpdev/MFP-BookingService/internal/api/handlers/get_price_rules"
	getUserBookingsHandler "github.com/mfpdev/MFP-BookingService/internal/api/handlers/get_user_bookings"
	getWorkflowHandler "github.com/mfpdev/MFP-BookingService/internal/api/handlers/get_workflow"
	runEscalationsHandler "github.com/mfpdev/MFP-BookingService/internal/api/handlers/run_escalations"
	submitDecisionHandler "github.com/mfpdev/MFP-BookingService/internal/api/handlers/submit_decision"
	updatePriceRuleHandler "github.com/mfpdev/MFP-BookingService/internal/api/handlers/update_price_rule"
	"github.com/mfpdev/MFP-BookingService/internal/api/middleware"
	"github.com/mfpdev/MFP-BookingService/internal/availability"
	"github.com/mfpdev/MFP-BookingService/internal/config"
	bookingRepo "github.com/mfpdev/MFP-BookingService/internal/infra/storage/booking"
	priceRuleRepo "github.com/mfpdev/MFP-BookingService/internal/infra/storage/pricerule"
	workflowRepo "github.com/mfpdev/MFP-BookingService/internal/infra/storage/workflow"
	zoneRepo "github.com/mfpdev/MFP-BookingService/internal/infra/storage/zone"
	"github.com/mfpdev/MFP-BookingService/internal/integrations/notify"
	"github.com/mfpdev/MFP-BookingService/internal/pricing"
	"github.com/mfpdev/MFP-BookingService/internal/recurrence"
	approvalsService "github.com/mfpdev/MFP-BookingService/internal/service/approvals"
	bookingsService "github.com/mfpdev/MFP-BookingService/internal/service/bookings"
	priceRulesService "github.com/mfpdev/MFP-BookingService/internal/service/pricerules"
	createBookingUC "github.com/mfpdev/MFP-BookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/mfpdev/MFP-BookingService/internal/usecase/get_available_slots"
	"github.com/mfpdev/MFP-BookingService/internal/workflow"
	"github.com/mfpdev/MFP-BookingService/pkg/dbmetrics"
	"github.com/mfpdev/MFP-BookingService/pkg/logger"
	"github.com/mfpdev/MFP-BookingService/pkg/metrics"
	"github.com/mfpdev/MFP-BookingService/pkg/simpletxmanager"
	"github.com/mfpdev/MFP-BookingService/pkg/txmanager"
)

// notifyGateway объединяет все события, которые публикует сервис
type notifyGateway interface {
	BookingCreated(ctx context.Context, payload notify.BookingPayload)
	BookingApproved(ctx context.Context, payload notify.BookingPayload)
	BookingRejected(ctx context.Context, payload notify.BookingPayload)
	BookingCancelled(ctx context.Context, payload notify.BookingPayload)
	StepEscalated(ctx context.Context, payload notify.EscalationPayload)
	Close()
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
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

	log.Info("Starting MFP-BookingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
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

	// Издатель событий бронирований
	var notifier notifyGateway
	if cfg.RabbitMQ.Enabled {
		notifier = notify.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		log.Info("RabbitMQ notifications enabled (exchange=%s)", cfg.RabbitMQ.Exchange)
	} else {
		notifier = notify.NewNopGateway()
		log.Info("RabbitMQ notifications disabled")
	}
	defer notifier.Close()

	// Интерфейс для transaction manager (используется в usecases и сервисах)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository   *bookingRepo.Repository
		zoneRepository      *zoneRepo.Repository
		priceRuleRepository *priceRuleRepo.Repository
		workflowRepository  *workflowRepo.Repository
	)

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		zoneRepository = zoneRepo.NewRepository(wrappedDB)
		priceRuleRepository = priceRuleRepo.NewRepository(wrappedDB)
		workflowRepository = workflowRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		zoneRepository = zoneRepo.NewRepository(db)
		priceRuleRepository = priceRuleRepo.NewRepository(db)
		workflowRepository = workflowRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Доменные движки
	expander := recurrence.NewExpander(cfg.Booking.MaxOccurrences)
	checker := availability.NewChecker(zoneRepository, bookingRepository, log)
	calculator := pricing.NewCalculator()
	engine := workflow.NewEngine()

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		workflowRepository,
		notifier,
		log,
	)
	approvalSvc := approvalsService.NewService(
		bookingRepository,
		workflowRepository,
		engine,
		notifier,
		txMgr,
		&approvalsService.RealTimeProvider{},
		log,
	)
	priceRuleSvc := priceRulesService.NewService(priceRuleRepository, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		zoneRepository,
		priceRuleRepository,
		workflowRepository,
		expander,
		checker,
		calculator,
		engine,
		notifier,
		txMgr,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		zoneRepository,
		checker,
		cfg.Booking.SlotGranularityMinutes,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getFacilityBookings := getFacilityBookingsHandler.NewHandler(bookingSvc, log)
	getWorkflow := getWorkflowHandler.NewHandler(approvalSvc, log)
	submitDecision := submitDecisionHandler.NewHandler(approvalSvc, log)
	runEscalations := runEscalationsHandler.NewHandler(approvalSvc, log)
	getPriceRules := getPriceRulesHandler.NewHandler(priceRuleSvc, log)
	createPriceRule := createPriceRuleHandler.NewHandler(priceRuleSvc, log)
	updatePriceRule := updatePriceRuleHandler.NewHandler(priceRuleSvc, log)
	deactivatePriceRule := deactivatePriceRuleHandler.NewHandler(priceRuleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Сетка доступных слотов зоны на день
	api.HandleFunc("/zones/{zoneId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Ценовые правила объекта
	api.HandleFunc("/facilities/{facilityId}/price-rules",
		getPriceRules.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования (разовое или повторяющееся)
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// История бронирований пользователя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Согласование ---
	// Процесс согласования бронирования
	protected.HandleFunc("/bookings/{bookingId}/workflow", getWorkflow.Handle).Methods(http.MethodGet)

	// Решение по текущему шагу согласования
	protected.HandleFunc("/bookings/{bookingId}/workflow/decision", submitDecision.Handle).Methods(http.MethodPost)

	// Ручной прогон эскалаций (для планировщика)
	protected.HandleFunc("/workflows/escalations/run", runEscalations.Handle).Methods(http.MethodPost)

	// --- Управление объектом (для администраторов) ---
	// Список бронирований объекта
	protected.HandleFunc("/facilities/{facilityId}/bookings", getFacilityBookings.Handle).Methods(http.MethodGet)

	// Создание ценового правила
	protected.HandleFunc("/facilities/{facilityId}/price-rules", createPriceRule.Handle).Methods(http.MethodPost)

	// Обновление ценового правила
	protected.HandleFunc("/price-rules/{ruleId}", updatePriceRule.Handle).Methods(http.MethodPut)

	// Выключение ценового правила
	protected.HandleFunc("/price-rules/{ruleId}/deactivate", deactivatePriceRule.Handle).Methods(http.MethodPatch)

	// Фоновый прогон эскалаций просроченных шагов согласования
	escalationsCtx, stopEscalations := context.WithCancel(context.Background())
	go func() {
		interval := time.Duration(cfg.Booking.EscalationIntervalMinutes) * time.Minute
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info("Escalation loop started (interval=%s)", interval)
		for {
			select {
			case <-escalationsCtx.Done():
				return
			case <-ticker.C:
				if _, err := approvalSvc.RunEscalations(escalationsCtx); err != nil {
					log.Error("Escalation loop run failed: %v", err)
				}
			}
		}
	}()

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем фоновые эскалации
	stopEscalations()

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

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
