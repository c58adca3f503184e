package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/motoexpress/pedidos_api/internal/logging"
	"github.com/motoexpress/pedidos_api/internal/mail"
	"github.com/motoexpress/pedidos_api/internal/models"
	"github.com/motoexpress/pedidos_api/internal/mykafka"
	"github.com/motoexpress/pedidos_api/internal/validation"
	"gorm.io/gorm"
)

type PedidoHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Mailer   mail.Mailer
	Validate *validator.Validate
}

type createPedidoRequest struct {
	Quantity      int    `json:"quantity"       validate:"gte=1"`
	Status        string `json:"status"         validate:"required,order_status"`
	MerchandiseID int    `json:"merchandise_id" validate:"required"`
	UserID        string `json:"user_id"        validate:"required"`
}

type updateStatusRequest struct {
	Status    string `json:"status"`
	MotoboyID *int   `json:"motoboy_id"`
}

func invalidStatusMessage() string {
	return "invalid status: must be one of " + strings.Join(models.OrderStatuses, ", ")
}

func (h *PedidoHandler) GetPedidos(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pedido.list")

	q := h.DB.WithContext(ctx).Preload("User").Preload("Merchandise").Order("id DESC")

	if status := c.QueryParam("status"); status != "" {
		if !models.ValidStatus(status) {
			l.Warn("list_error", "status", 400, "reason", "invalid status filter")
			return errorResponse(c, http.StatusBadRequest, invalidStatusMessage())
		}
		q = q.Where("status = ?", status)
	}

	orders := []models.Order{}
	if err := q.Find(&orders).Error; err != nil {
		l.Error("list_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *PedidoHandler) GetPedidosByUsuario(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pedido.list_by_usuario")

	userID := c.Param("usuario_id")

	orders := []models.Order{}
	if err := h.DB.WithContext(ctx).
		Preload("Merchandise").
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&orders).Error; err != nil {
		l.Error("list_by_usuario_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *PedidoHandler) CreatePedido(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pedido.create")

	var req createPedidoRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_error", "status", 400, "reason", "invalid body", "error", err)
		return errorResponse(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.Validate.Struct(req); err != nil {
		l.Warn("create_error", "status", 400, "reason", "validation failed", "error", err)
		return validationResponse(c, validation.Details(err))
	}

	order := models.Order{
		Quantity:      req.Quantity,
		Status:        req.Status,
		MerchandiseID: req.MerchandiseID,
		UserID:        req.UserID,
	}

	if err := h.DB.WithContext(ctx).Create(&order).Error; err != nil {
		l.Error("create_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	event := map[string]any{
		"type":     "order_created",
		"orderID":  order.ID,
		"userID":   order.UserID,
		"status":   order.Status,
		"quantity": order.Quantity,
	}
	publish(c, h.Producer, orderEventsTopic, strconv.Itoa(order.ID), event)

	l.Info("create_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *PedidoHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pedido.update_status")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid id")
		return errorResponse(c, http.StatusBadRequest, "invalid order id")
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return errorResponse(c, http.StatusBadRequest, "invalid body")
	}

	if req.Status == "" {
		l.Warn("update_status_error", "status", 400, "reason", "missing status")
		return errorResponse(c, http.StatusBadRequest, "status is required")
	}
	if !models.ValidStatus(req.Status) {
		l.Warn("update_status_error", "status", 400, "reason", "invalid status")
		return errorResponse(c, http.StatusBadRequest, invalidStatusMessage())
	}

	var order models.Order
	if err := h.DB.WithContext(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("update_status_error", "status", 404, "reason", "order not found")
			return errorResponse(c, http.StatusNotFound, "order not found")
		}
		l.Error("update_status_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	order.Status = req.Status
	if req.MotoboyID != nil {
		order.MotoboyID = req.MotoboyID
	}

	if err := h.DB.WithContext(ctx).Save(&order).Error; err != nil {
		l.Error("update_status_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	var enriched models.Order
	if err := h.DB.WithContext(ctx).
		Preload("User").
		Preload("Merchandise").
		First(&enriched, order.ID).Error; err != nil {
		l.Error("update_status_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	// The status change is already persisted; a failed notification still
	// surfaces as an error to the caller.
	if enriched.User != nil && enriched.Merchandise != nil {
		data := mail.OrderStatusData{
			UserName:        enriched.User.Name,
			Email:           enriched.User.Email,
			MerchandiseName: enriched.Merchandise.Name,
			Status:          enriched.Status,
		}
		if err := h.Mailer.SendOrderStatus(ctx, data); err != nil {
			l.Error("update_status_error", "status", 500, "reason", "notification failed", "error", err)
			return errorResponse(c, http.StatusInternalServerError, "internal server error")
		}
	} else {
		l.Info("update_status_notification_skipped", "order_id", enriched.ID)
	}

	event := map[string]any{
		"type":    "order_status_updated",
		"orderID": enriched.ID,
		"userID":  enriched.UserID,
		"status":  enriched.Status,
	}
	publish(c, h.Producer, orderEventsTopic, strconv.Itoa(enriched.ID), event)

	l.Info("update_status_success", "order_id", enriched.ID, "new_status", enriched.Status)
	return c.JSON(http.StatusOK, enriched)
}

func (h *PedidoHandler) DeletePedido(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pedido.delete")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("delete_error", "status", 400, "reason", "invalid id")
		return errorResponse(c, http.StatusBadRequest, "invalid order id")
	}

	var order models.Order
	if err := h.DB.WithContext(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("delete_error", "status", 404, "reason", "order not found")
			return errorResponse(c, http.StatusNotFound, "order not found")
		}
		l.Error("delete_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	if err := h.DB.WithContext(ctx).Delete(&order).Error; err != nil {
		l.Error("delete_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	event := map[string]any{
		"type":    "order_deleted",
		"orderID": order.ID,
		"userID":  order.UserID,
	}
	publish(c, h.Producer, orderEventsTopic, strconv.Itoa(order.ID), event)

	l.Info("delete_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, order)
}
