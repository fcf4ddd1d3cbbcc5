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

	cancelReservationHandler "github.com/salonbook/booking-service/internal/api/handlers/cancel_reservation"
	createReservationHandler "github.com/salonbook/booking-service/internal/api/handlers/create_reservation"
	deleteReservationHandler "github.com/salonbook/booking-service/internal/api/handlers/delete_reservation"
	getAvailableSlotsHandler "github.com/salonbook/booking-service/internal/api/handlers/get_available_slots"
	getBookingPolicyHandler "github.com/salonbook/booking-service/internal/api/handlers/get_booking_policy"
	getReservationHandler "github.com/salonbook/booking-service/internal/api/handlers/get_reservation"
	getSalonReservationsHandler "github.com/salonbook/booking-service/internal/api/handlers/get_salon_reservations"
	getUserReservationsHandler "github.com/salonbook/booking-service/internal/api/handlers/get_user_reservations"
	transitionReservationHandler "github.com/salonbook/booking-service/internal/api/handlers/transition_reservation"
	updateBookingPolicyHandler "github.com/salonbook/booking-service/internal/api/handlers/update_booking_policy"
	"github.com/salonbook/booking-service/internal/api/middleware"
	"github.com/salonbook/booking-service/internal/config"
	"github.com/salonbook/booking-service/internal/events"
	policyRepo "github.com/salonbook/booking-service/internal/infra/storage/policy"
	reservationRepo "github.com/salonbook/booking-service/internal/infra/storage/reservation"
	salonServiceClient "github.com/salonbook/booking-service/internal/integrations/salonservice"
	policyService "github.com/salonbook/booking-service/internal/service/policy"
	reservationsService "github.com/salonbook/booking-service/internal/service/reservations"
	createReservationUC "github.com/salonbook/booking-service/internal/usecase/create_reservation"
	getAvailableSlotsUC "github.com/salonbook/booking-service/internal/usecase/get_available_slots"
	"github.com/salonbook/booking-service/pkg/dbmetrics"
	"github.com/salonbook/booking-service/pkg/logger"
	"github.com/salonbook/booking-service/pkg/metrics"
	"github.com/salonbook/booking-service/pkg/simpletxmanager"
	"github.com/salonbook/booking-service/pkg/txmanager"
)

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

	log.Info("Starting booking-service...")
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

	// Инициализируем клиент SalonService
	salonClient := salonServiceClient.NewClient(
		cfg.SalonService.URL,
		time.Duration(cfg.SalonService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration client initialized (SalonService=%s timeout=%ds)",
		cfg.SalonService.URL, cfg.SalonService.Timeout)

	// Инициализируем publisher событий (если включен)
	var publisher *events.Publisher
	if cfg.Kafka.Enabled {
		publisher = events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		defer publisher.Close()
		log.Info("Event publisher initialized (brokers=%v, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		reservationRepository *reservationRepo.Repository
		policyRepository      *policyRepo.Repository
	)

	// Интерфейс transaction manager (используется в usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		reservationRepository = reservationRepo.NewRepository(wrappedDB)
		policyRepository = policyRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		reservationRepository = reservationRepo.NewRepository(db)
		policyRepository = policyRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	reservationSvc := reservationsService.NewService(
		reservationRepository,
		log,
	)
	policySvc := policyService.NewService(
		policyRepository,
		salonClient,
		log,
	)

	// Инициализируем use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		policyRepository,
		salonClient,
		eventPublisherOrNil(publisher),
		txMgr,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		reservationRepository,
		policyRepository,
		salonClient,
		log,
	)

	// Инициализируем handlers
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationSvc, log)
	confirmReservation := transitionReservationHandler.NewConfirmHandler(reservationSvc, log)
	completeReservation := transitionReservationHandler.NewCompleteHandler(reservationSvc, log)
	deleteReservation := deleteReservationHandler.NewHandler(reservationSvc, log)
	getUserReservations := getUserReservationsHandler.NewHandler(reservationSvc, log)
	getSalonReservations := getSalonReservationsHandler.NewHandler(reservationSvc, log)
	getBookingPolicy := getBookingPolicyHandler.NewHandler(policySvc, log)
	updateBookingPolicy := updateBookingPolicyHandler.NewHandler(policySvc, log)

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

	// Получение доступных слотов для бронирования
	api.HandleFunc("/salons/{salonId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Получение политики бронирования салона
	api.HandleFunc("/salons/{salonId}/policy",
		getBookingPolicy.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования
	protected.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)

	// События жизненного цикла бронирования
	protected.HandleFunc("/reservations/{reservationId}/confirm", confirmReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/complete", completeReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)

	// Физическое удаление (только оператор салона)
	protected.HandleFunc("/reservations/{reservationId}", deleteReservation.Handle).Methods(http.MethodDelete)

	// История бронирований пользователя
	protected.HandleFunc("/users/{userId}/reservations", getUserReservations.Handle).Methods(http.MethodGet)

	// --- Управление салоном (для операторов) ---
	// Список бронирований салона
	protected.HandleFunc("/salons/{salonId}/reservations", getSalonReservations.Handle).Methods(http.MethodGet)

	// Обновление политики бронирования салона
	protected.HandleFunc("/salons/{salonId}/policy", updateBookingPolicy.Handle).Methods(http.MethodPut)

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

// eventPublisherOrNil возвращает nil интерфейс при выключенной публикации.
// Прямая передача nil *events.Publisher дала бы non-nil интерфейс.
func eventPublisherOrNil(p *events.Publisher) createReservationUC.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}
