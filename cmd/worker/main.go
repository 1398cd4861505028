package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"orderflow/cmd"
	"orderflow/internal/adapters/out/rabbitmq"
	"orderflow/internal/workers"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gormDB, err := gorm.Open(gormpostgres.Open(configs.PostgresDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	broker, err := rabbitmq.NewConnection(ctx, configs.AmqpURL, logger)
	if err != nil {
		log.Fatalf("Error connecting to RabbitMQ: %v", err)
	}

	app := cmd.NewCompositionRoot(configs, gormDB, broker, logger)
	defer app.Close()

	hostname, _ := os.Hostname()
	pool := app.CreateProcessingPool(fmt.Sprintf("worker-%s-%d", hostname, os.Getpid()))

	// Run blocks until shutdown is requested, then drains in-flight tasks.
	if err = pool.Run(ctx); err != nil {
		log.Fatalf("Error running processing pool: %v", err)
	}
}

func getConfigs() cmd.Config {
	return cmd.Config{
		DBHost:            goDotEnvVariable("DB_HOST"),
		DBPort:            goDotEnvVariable("DB_PORT"),
		DBUser:            goDotEnvVariable("DB_USER"),
		DBPassword:        goDotEnvVariable("DB_PASSWORD"),
		DBName:            goDotEnvVariable("DB_NAME"),
		DBSslMode:         goDotEnvVariable("DB_SSLMODE"),
		AmqpURL:           goDotEnvVariable("AMQP_URL"),
		WorkerConcurrency: cmd.IntOrDefault(goDotEnvVariable("WORKER_CONCURRENCY"), workers.DefaultConcurrency),
		WorkerPrefetch:    cmd.IntOrDefault(goDotEnvVariable("WORKER_PREFETCH"), workers.DefaultConcurrency),
		TaskTimeout:       cmd.DurationOrDefault(goDotEnvVariable("TASK_TIMEOUT"), workers.DefaultTaskTimeout),
	}
}

func goDotEnvVariable(key string) string {
	_ = godotenv.Load(".env")
	return os.Getenv(key)
}
