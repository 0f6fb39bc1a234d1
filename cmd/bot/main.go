package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"kladovka/internal/api"
	"kladovka/internal/bot"
	"kladovka/internal/config"
	"kladovka/internal/database"
	"kladovka/internal/domain"
	"kladovka/internal/events"
	"kladovka/internal/google"
	"kladovka/internal/logging"
	"kladovka/internal/metrics"
	"kladovka/internal/models"
	"kladovka/internal/notify"
	"kladovka/internal/repository"
	"kladovka/internal/service"
	"kladovka/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	cells, err := loadCells(&logger)
	if err != nil {
		return err
	}

	if err := prepareDirectories(cfg); err != nil {
		logger.Error().Err(err).Msg("Ошибка подготовки директорий")
		return err
	}

	db, err := initDatabase(cfg, cells, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	stateService := initStateService(redisClient, &logger)

	sheetsService := initGoogleSheets(cfg, &logger)

	var sheetsWorker *worker.SheetsWorker
	if sheetsService != nil {
		retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
		sheetsWorker = worker.NewSheetsWorker(db, sheetsService, redisClient, retryPolicy, &logger)
		go sheetsWorker.Start(ctx)
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка подключения к Telegram API")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug
	logger.Info().Str("username", botAPI.Self.UserName).Msg("Бот авторизован")

	tgService := service.NewTelegramService(bot.NewBotWrapper(botAPI))

	// Шина событий кормит телеграм-уведомления; задания для Google Sheets
	// сервисы ставят в очередь напрямую.
	eventBus := events.NewEventBus()
	notifier := notify.NewNotifier(db, tgService, &logger)
	notifier.SubscribeAll(eventBus)

	rentalService := service.NewRentalService(db, eventBus, sheetsWorkerOrNil(sheetsWorker), cfg.Pricing.RatePerCubicMeter, &logger)
	customerService := service.NewCustomerService(db, eventBus, sheetsWorkerOrNil(sheetsWorker), &logger)
	cellService := service.NewCellService(db, &logger)
	authService := service.NewAuthService(db, 0, &logger)

	botMetrics := bot.NewMetrics()

	telegramBot, err := bot.NewBot(
		tgService,
		cfg,
		stateService,
		sheetsWriterOrNil(sheetsService),
		sheetsWorkerOrNil(sheetsWorker),
		eventBus,
		rentalService,
		customerService,
		cellService,
		authService,
		notifier,
		botMetrics,
		&logger,
	)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бота")
		return err
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	// HTTP API может жить в одном процессе с ботом, отдельный бинарник
	// cmd/api нужен для раздельного деплоя.
	if cfg.API.Enabled && cfg.API.HTTP.Enabled {
		httpServer := api.NewHTTPServer(cfg.API, cfg.Uploads, api.Services{
			Cells:     cellService,
			Customers: customerService,
			Rentals:   rentalService,
			Auth:      authService,
			Repo:      db,
		}, &logger)
		go func() {
			if err := httpServer.Start(); err != nil {
				logger.Error().Err(err).Msg("http server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
		}()
		logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("HTTP API started")
	}

	telegramBot.StartReminders(ctx)

	logger.Info().Msg("Бот запущен")
	telegramBot.Start(ctx)

	logger.Info().Msg("Бот остановлен")
	return nil
}

func sheetsWorkerOrNil(w *worker.SheetsWorker) domain.SyncWorker {
	if w == nil {
		return nil
	}
	return w
}

func sheetsWriterOrNil(s *google.SheetsService) domain.SheetsWriter {
	if s == nil {
		return nil
	}
	return s
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	return cfg, logger, closer, nil
}

func loadCells(logger *zerolog.Logger) ([]models.Cell, error) {
	cellsPath := os.Getenv("CELLS_PATH")
	if cellsPath == "" {
		cellsPath = "configs/cells.yaml"
	}
	cellsData, err := os.ReadFile(cellsPath)
	if err != nil {
		logger.Error().Err(err).Str("cells_path", cellsPath).Msg("read cells")
		return nil, err
	}

	var cellsConfig struct {
		Cells []models.Cell `yaml:"cells"`
	}
	if err := yaml.Unmarshal(cellsData, &cellsConfig); err != nil {
		logger.Error().Err(err).Str("cells_path", cellsPath).Msg("parse cells")
		return nil, err
	}

	if err := config.ValidateCells(cellsConfig.Cells); err != nil {
		logger.Error().Err(err).Msg("Cells validation failed")
		return nil, err
	}

	return cellsConfig.Cells, nil
}

func prepareDirectories(cfg *config.Config) error {
	dirs := []string{
		filepath.Dir(cfg.Database.Path),
		cfg.Exports.Path,
		cfg.Uploads.Path,
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return nil
}

func initDatabase(cfg *config.Config, cells []models.Cell, logger zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	if err := db.SyncCells(context.Background(), cells); err != nil {
		logger.Error().Err(err).Msg("Ошибка синхронизации справочника ячеек")
	}
	return db, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initStateService собирает хранилище диалоговых состояний. При живом Redis
// состояния переживают рестарт, in-memory копия остается запасным путем.
func initStateService(redisClient *redis.Client, logger *zerolog.Logger) *service.StateService {
	ttl := time.Duration(models.DefaultRedisTTL) * time.Second
	memoryRepo := repository.NewMemoryStateRepository(ttl)

	if redisClient == nil {
		logger.Info().Msg("state storage: memory only")
		return service.NewStateService(memoryRepo, logger)
	}

	redisRepo := repository.NewRedisStateRepository(redisClient, ttl)
	failover := repository.NewFailoverStateRepository(redisRepo, memoryRepo, logger)
	logger.Info().Msg("state storage: redis with memory failover")
	return service.NewStateService(failover, logger)
}

func initGoogleSheets(cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.GoogleCredentialsFile == "" || cfg.Google.RentalsSpreadSheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(
		cfg.Google.GoogleCredentialsFile,
		cfg.Google.CustomersSpreadSheetID,
		cfg.Google.RentalsSpreadSheetID,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return sheetsService
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info().Int("port", port).Msg("metrics server started")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
