package cmd

import (
	"log/slog"

	httpadapter "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/rabbitmq"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/jobs"
	"orderflow/internal/workers"

	"gorm.io/gorm"
)

// CompositionRoot wires adapters to use cases for both binaries.
// The API side uses the publisher; the worker side uses the consumer.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	broker     *rabbitmq.Connection
	logger     *slog.Logger
}

// NewCompositionRoot assembles the root from an open database connection
// and a live broker connection.
func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	broker *rabbitmq.Connection,
	logger *slog.Logger,
) CompositionRoot {
	return CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		broker:     broker,
		logger:     logger,
	}
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreatePlaceOrderCommandHandler() commands.PlaceOrderCommandHandler {
	publisher := rabbitmq.NewTaskPublisher(c.broker, c.logger)
	return commands.NewPlaceOrderCommandHandler(c.orderUoWFactory(), publisher)
}

func (c *CompositionRoot) CreateProcessOrderCommandHandler() commands.ProcessOrderCommandHandler {
	work := workers.SimulatedWork(workers.MinWorkDelay, workers.MaxWorkDelay)
	return commands.NewProcessOrderCommandHandler(c.orderUoWFactory(), work)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAllOrdersQueryHandler() queries.GetAllOrdersQueryHandler {
	return queries.NewGetAllOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetStalledOrdersQueryHandler() queries.GetStalledOrdersQueryHandler {
	return queries.NewGetStalledOrdersQueryHandler(c.gormDB)
}

// CreateHTTPServer builds the producer-side HTTP surface.
func (c *CompositionRoot) CreateHTTPServer() *httpadapter.Server {
	return httpadapter.NewServer(
		c.CreatePlaceOrderCommandHandler(),
		c.CreateGetOrderQueryHandler(),
		c.CreateGetAllOrdersQueryHandler(),
		c.gormDB,
		c.broker,
	)
}

// CreateProcessingPool builds the worker-side pool with the given consumer
// tag.
func (c *CompositionRoot) CreateProcessingPool(consumerTag string) *workers.ProcessingPool {
	consumer := rabbitmq.NewTaskConsumer(
		c.broker,
		consumerTag,
		c.config.WorkerPrefetch,
		c.logger,
	)
	handler := c.CreateProcessOrderCommandHandler()

	return workers.NewProcessingPool(
		consumer,
		&handler,
		c.config.WorkerConcurrency,
		c.config.TaskTimeout,
		workers.NewPoolMetrics(),
		c.logger,
	)
}

// CreateJobManager builds the background jobs for the API binary.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateGetStalledOrdersQueryHandler(),
		c.config.StalledThreshold,
		c.logger,
	)
}

// Close releases the broker connection. The database pool is owned by the
// caller that opened it.
func (c *CompositionRoot) Close() error {
	if c.broker == nil {
		return nil
	}
	return c.broker.Close()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
