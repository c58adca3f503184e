package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/motoexpress/pedidos_api/internal/hash"
	"github.com/motoexpress/pedidos_api/internal/logging"
	"github.com/motoexpress/pedidos_api/internal/mail"
	"github.com/motoexpress/pedidos_api/internal/models"
	"github.com/motoexpress/pedidos_api/internal/mykafka"
	"github.com/motoexpress/pedidos_api/internal/validation"
	"gorm.io/gorm"
)

type UsuarioHandler struct {
	DB        *gorm.DB
	Producer  *mykafka.Producer
	Mailer    mail.Mailer
	JWTSecret []byte
	Validate  *validator.Validate
}

type usuarioRequest struct {
	Nome     string `json:"nome"     validate:"required,min=2"`
	Email    string `json:"email"    validate:"required,email"`
	Senha    string `json:"senha"    validate:"required,senha"`
	Telefone string `json:"telefone" validate:"required,telefone"`
	Endereco string `json:"endereco" validate:"required,min=2"`
}

func (h *UsuarioHandler) GetUsuarios(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "usuario.list")

	if telefone := strings.TrimSpace(c.QueryParam("telefone")); telefone != "" {
		var user models.User
		err := h.DB.WithContext(ctx).Where("phone = ?", telefone).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusOK, nil)
		}
		if err != nil {
			l.Error("list_error", "status", 500, "error", err)
			return errorResponse(c, http.StatusInternalServerError, "internal server error")
		}
		return c.JSON(http.StatusOK, user)
	}

	users := []models.User{}
	if err := h.DB.WithContext(ctx).Order("name ASC").Find(&users).Error; err != nil {
		l.Error("list_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, users)
}

func (h *UsuarioHandler) GetUsuario(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "usuario.get")

	id := c.Param("id")

	var user models.User
	if err := h.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("get_error", "status", 404, "reason", "user not found")
			return errorResponse(c, http.StatusNotFound, "user not found")
		}
		l.Error("get_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, user)
}

func (h *UsuarioHandler) SearchUsuarios(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "usuario.search")

	termo := strings.ToLower(c.Param("termo"))
	pattern := "%" + termo + "%"

	users := []models.User{}
	if err := h.DB.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(phone) LIKE ?", pattern, pattern).
		Order("name ASC").
		Find(&users).Error; err != nil {
		l.Error("search_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, users)
}

func (h *UsuarioHandler) UpdateUsuario(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "usuario.update")

	id := c.Param("id")

	var req usuarioRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_error", "status", 400, "reason", "invalid body", "error", err)
		return errorResponse(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.Validate.Struct(req); err != nil {
		l.Warn("update_error", "status", 400, "reason", "validation failed", "error", err)
		return validationResponse(c, validation.Details(err))
	}

	var user models.User
	if err := h.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("update_error", "status", 404, "reason", "user not found")
			return errorResponse(c, http.StatusNotFound, "user not found")
		}
		l.Error("update_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	var other models.User
	err := h.DB.WithContext(ctx).Where("email = ? AND id <> ?", req.Email, id).First(&other).Error
	if err == nil {
		l.Warn("update_error", "status", 400, "reason", "email taken")
		return errorResponse(c, http.StatusBadRequest, "email already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("update_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	pwHash, err := hash.HashPassword(req.Senha)
	if err != nil {
		l.Error("update_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	user.Name = req.Nome
	user.Email = req.Email
	user.PasswordHash = pwHash
	user.Phone = req.Telefone
	user.Address = req.Endereco

	if err := h.DB.WithContext(ctx).Save(&user).Error; err != nil {
		l.Error("update_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	event := map[string]any{
		"type":   "user_updated",
		"userID": user.ID,
		"email":  user.Email,
	}
	publish(c, h.Producer, userEventsTopic, user.ID, event)

	l.Info("update_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, user)
}

func (h *UsuarioHandler) DeleteUsuario(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "usuario.delete")

	id := c.Param("id")

	var user models.User
	if err := h.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("delete_error", "status", 404, "reason", "user not found")
			return errorResponse(c, http.StatusNotFound, "user not found")
		}
		l.Error("delete_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	if err := h.DB.WithContext(ctx).Delete(&user).Error; err != nil {
		l.Error("delete_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	event := map[string]any{
		"type":   "user_deleted",
		"userID": user.ID,
	}
	publish(c, h.Producer, userEventsTopic, user.ID, event)

	l.Info("delete_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, user)
}
