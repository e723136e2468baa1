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

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"warehouse-catalog/internal/app/catalog/cache"
	"warehouse-catalog/internal/app/catalog/config"
	"warehouse-catalog/internal/app/catalog/database"
	"warehouse-catalog/internal/app/catalog/entity"
	"warehouse-catalog/internal/app/catalog/handler"
	"warehouse-catalog/internal/app/catalog/repository"
	"warehouse-catalog/internal/app/catalog/service"
	"warehouse-catalog/internal/app/catalog/util"
	"warehouse-catalog/pkg/logger"
)

func main() {
	// .env опционален, в контейнере конфигурация приходит через окружение
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("catalog-service", cfg.Log.Level)

	// === ПОДКЛЮЧЕНИЕ К POSTGRESQL ===
	// Пул pgx для репозитория категорий
	pool, err := connectDB(context.Background(), cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("Successfully connected to PostgreSQL")

	// database/sql хендл на stdlib-драйвере pgx: для goose миграций и GORM
	sqlDB, err := sql.Open("pgx", cfg.Database.DSN())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open sql connection")
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize GORM")
	}

	// === ИНИЦИАЛИЗАЦИЯ KAFKA PRODUCER ===
	kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().Str("topic", cfg.Kafka.Topic).Msg("Successfully initialized Kafka producer")

	// === ИНИЦИАЛИЗАЦИЯ КЕША ===
	// Каждый сервис владеет своими ячейками: одна list-ячейка плюс
	// набор by-id ячеек. Кеш процессный, между репликами не координируется.
	categoryListCache := cache.NewSlot[[]entity.Category](cfg.Cache.TTL)
	categoryByIDCache := cache.NewMap[int64, entity.Category](cfg.Cache.TTL)
	productListCache := cache.NewSlot[[]entity.Product](cfg.Cache.TTL)
	productByIDCache := cache.NewMap[int64, entity.Product](cfg.Cache.TTL)

	janitor := cache.NewJanitor(categoryListCache, categoryByIDCache, productListCache, productByIDCache)
	if err := janitor.Start(cfg.Cache.JanitorSchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start cache janitor")
	}
	defer janitor.Stop()

	// === ИНИЦИАЛИЗАЦИЯ СЛОЕВ ===
	categoryRepo := repository.NewCategoryRepository(pool)
	productRepo := repository.NewProductRepository(gormDB)

	categoryService := service.NewCategoryService(categoryRepo, categoryListCache, categoryByIDCache)
	productService := service.NewProductService(productRepo, categoryRepo, kafkaProducer, productListCache, productByIDCache)

	catalogHandler := handler.NewCatalogHandler(categoryService, productService)
	authMiddleware := handler.NewAuthMiddleware(cfg.JWT.Secret)
	router := handler.SetupRoutes(catalogHandler, authMiddleware)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("Starting Catalog Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Catalog Service")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Catalog Service stopped gracefully")
}

// connectDB устанавливает соединение с PostgreSQL используя pgx connection pool
// Повторяет попытки подключения для устойчивости при запуске в Docker
func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	var pool *pgxpool.Pool
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to database, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}
