package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/motoexpress/pedidos_api/internal/logging"
	"github.com/motoexpress/pedidos_api/internal/models"
	"github.com/motoexpress/pedidos_api/internal/mykafka"
	"github.com/motoexpress/pedidos_api/internal/service/search"
	"github.com/motoexpress/pedidos_api/internal/util"
	"github.com/motoexpress/pedidos_api/internal/validation"
	"gorm.io/gorm"
)

type MercadoriaHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Validate *validator.Validate
}

type mercadoriaRequest struct {
	Nome      string  `json:"nome"      validate:"required,min=2"`
	Descricao string  `json:"descricao" validate:"required"`
	Preco     float64 `json:"preco"     validate:"gte=0"`
}

func (h *MercadoriaHandler) GetMercadorias(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "mercadoria.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.WithContext(ctx).Model(&models.Merchandise{}).Count(&total).Error; err != nil {
		l.Error("list_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	items := []models.Merchandise{}
	if err := h.DB.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		l.Error("list_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *MercadoriaHandler) CreateMercadoria(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "mercadoria.create")

	var req mercadoriaRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_error", "status", 400, "reason", "invalid body", "error", err)
		return errorResponse(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.Validate.Struct(req); err != nil {
		l.Warn("create_error", "status", 400, "reason", "validation failed", "error", err)
		return validationResponse(c, validation.Details(err))
	}

	item := models.Merchandise{
		Name:        req.Nome,
		Description: req.Descricao,
		Price:       req.Preco,
	}

	if err := h.DB.WithContext(ctx).Create(&item).Error; err != nil {
		l.Error("create_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	// Indexing is best effort: a failure leaves the row authoritative and is
	// only logged.
	if err := h.indexMercadoria(ctx, item); err != nil {
		l.Warn("create_index_error", "merchandise_id", item.ID, "error", err)
	}

	event := map[string]any{
		"type":          "merchandise_created",
		"merchandiseID": item.ID,
		"nome":          item.Name,
	}
	publish(c, h.Producer, merchandiseEventsTopic, strconv.Itoa(item.ID), event)

	l.Info("create_success", "merchandise_id", item.ID)
	return c.JSON(http.StatusCreated, item)
}

func (h *MercadoriaHandler) DeleteMercadoria(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "mercadoria.delete")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("delete_error", "status", 400, "reason", "invalid id")
		return errorResponse(c, http.StatusBadRequest, "invalid merchandise id")
	}

	var item models.Merchandise
	if err := h.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("delete_error", "status", 404, "reason", "merchandise not found")
			return errorResponse(c, http.StatusNotFound, "merchandise not found")
		}
		l.Error("delete_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	if err := h.DB.WithContext(ctx).Delete(&item).Error; err != nil {
		l.Error("delete_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	if err := h.removeFromIndex(ctx, item.ID); err != nil {
		l.Warn("delete_index_error", "merchandise_id", item.ID, "error", err)
	}

	event := map[string]any{
		"type":          "merchandise_deleted",
		"merchandiseID": item.ID,
	}
	publish(c, h.Producer, merchandiseEventsTopic, strconv.Itoa(item.ID), event)

	l.Info("delete_success", "merchandise_id", item.ID)
	return c.JSON(http.StatusOK, item)
}

func (h *MercadoriaHandler) indexMercadoria(ctx context.Context, item models.Merchandise) error {
	if h.ES == nil {
		return nil
	}

	data, err := json.Marshal(item)
	if err != nil {
		return err
	}

	res, err := h.ES.Index(
		search.MerchandiseIndex,
		bytes.NewReader(data),
		h.ES.Index.WithDocumentID(strconv.Itoa(item.ID)),
		h.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index responded with %s", res.Status())
	}
	return nil
}

func (h *MercadoriaHandler) removeFromIndex(ctx context.Context, id int) error {
	if h.ES == nil {
		return nil
	}

	res, err := h.ES.Delete(
		search.MerchandiseIndex,
		strconv.Itoa(id),
		h.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("index responded with %s", res.Status())
	}
	return nil
}
