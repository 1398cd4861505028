// Package http exposes the producer-side API: order placement, status
// lookups, the debug listing, a health probe and the Prometheus endpoint.
package http

import (
	"errors"
	"net/http"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// BrokerHealth reports whether the message broker connection is open.
type BrokerHealth interface {
	IsAlive() bool
}

// OrderResponse is the wire shape for a single order.
type OrderResponse struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

// ErrorResponse is the wire shape for request failures.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// HealthResponse reports the service and its dependencies.
// The endpoint answers 200 regardless; consumers inspect the fields.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	RabbitMQ string `json:"rabbitmq"`
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	placeOrderHandler   commands.PlaceOrderCommandHandler
	getOrderHandler     queries.GetOrderQueryHandler
	getAllOrdersHandler queries.GetAllOrdersQueryHandler

	db     *gorm.DB
	broker BrokerHealth
}

// NewServer creates an HTTP server with the required handlers and the
// dependencies probed by the health endpoint.
func NewServer(
	placeOrderHandler commands.PlaceOrderCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getAllOrdersHandler queries.GetAllOrdersQueryHandler,
	db *gorm.DB,
	broker BrokerHealth,
) *Server {
	return &Server{
		placeOrderHandler:   placeOrderHandler,
		getOrderHandler:     getOrderHandler,
		getAllOrdersHandler: getAllOrdersHandler,
		db:                  db,
		broker:              broker,
	}
}

// RegisterRoutes attaches all endpoints to the Echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.POST("/order/place", s.PlaceOrder)
	e.GET("/order/get/:id", s.GetOrder)
	e.GET("/debug/orders", s.GetAllOrders)
	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// PlaceOrder handles POST /order/place - persists a new order and enqueues
// its processing task.
func (s *Server) PlaceOrder(ctx echo.Context) error {
	cmd := commands.NewPlaceOrderCommand()

	result, err := s.placeOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to place order",
		})
	}

	return ctx.JSON(http.StatusOK, OrderResponse{
		OrderID: result.OrderID.Int64(),
		Status:  result.Status.String(),
	})
}

// GetOrder handles GET /order/get/:id - returns the current status of one
// order. Unknown and non-numeric identifiers both answer 404.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := kernel.OrderIDFromString(ctx.Param("id"))
	if err != nil {
		return orderNotFound(ctx)
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return orderNotFound(ctx)
	}

	resp, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return orderNotFound(ctx)
		}
		return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve order",
		})
	}

	return ctx.JSON(http.StatusOK, OrderResponse{
		OrderID: resp.ID.Int64(),
		Status:  resp.Status.String(),
	})
}

// GetAllOrders handles GET /debug/orders - lists every order, answering 404
// when the store is empty.
func (s *Server) GetAllOrders(ctx echo.Context) error {
	query, err := queries.NewGetAllOrdersQuery()
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve orders",
		})
	}

	orders, err := s.getAllOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve orders",
		})
	}

	if len(orders) == 0 {
		return ctx.JSON(http.StatusNotFound, ErrorResponse{
			Code:    http.StatusNotFound,
			Message: "No orders found",
		})
	}

	response := make([]OrderResponse, len(orders))
	for i, o := range orders {
		response[i] = OrderResponse{
			OrderID: o.ID.Int64(),
			Status:  o.Status.String(),
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// Health handles GET /health - probes the database and the broker.
func (s *Server) Health(ctx echo.Context) error {
	const healthy, unhealthy = "healthy", "unhealthy"

	resp := HealthResponse{Status: healthy, Database: healthy, RabbitMQ: healthy}

	if err := s.db.WithContext(ctx.Request().Context()).Exec("SELECT 1").Error; err != nil {
		resp.Database = unhealthy
		resp.Status = unhealthy
	}

	if s.broker == nil || !s.broker.IsAlive() {
		resp.RabbitMQ = unhealthy
		resp.Status = unhealthy
	}

	return ctx.JSON(http.StatusOK, resp)
}

func orderNotFound(ctx echo.Context) error {
	return ctx.JSON(http.StatusNotFound, ErrorResponse{
		Code:    http.StatusNotFound,
		Message: "Order not found",
	})
}
