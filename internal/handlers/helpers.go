package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/motoexpress/pedidos_api/internal/logging"
	"github.com/motoexpress/pedidos_api/internal/mykafka"
)

const (
	orderEventsTopic       = "order_events"
	userEventsTopic        = "user_events"
	merchandiseEventsTopic = "merchandise_events"
)

func errorResponse(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"error": msg})
}

func validationResponse(c echo.Context, details map[string]string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"error":   "validation failed",
		"details": details,
	})
}

// publish sends one event and never fails the request: broker errors are
// logged and swallowed.
func publish(c echo.Context, producer *mykafka.Producer, topic, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("kafka_publish_error", "topic", topic, "error", err)
	}
}
