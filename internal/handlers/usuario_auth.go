package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/motoexpress/pedidos_api/internal/hash"
	"github.com/motoexpress/pedidos_api/internal/logging"
	"github.com/motoexpress/pedidos_api/internal/mail"
	"github.com/motoexpress/pedidos_api/internal/models"
	"github.com/motoexpress/pedidos_api/internal/tokens"
	"github.com/motoexpress/pedidos_api/internal/validation"
	"gorm.io/gorm"
)

// invalidCredentials is shared by the unknown-email and wrong-password paths
// so the response does not reveal which one failed.
const invalidCredentials = "invalid email or password"

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type recoveryRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email             string `json:"email"`
	CodigoRecuperacao string `json:"codigoRecuperacao"`
	NovaSenha         string `json:"novaSenha"`
	ConfirmarSenha    string `json:"confirmarSenha"`
}

func (h *UsuarioHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "usuario.register")

	var req usuarioRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return errorResponse(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.Validate.Struct(req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "validation failed", "error", err)
		return validationResponse(c, validation.Details(err))
	}

	var existing models.User
	err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		l.Warn("register_error", "status", 400, "reason", "email taken")
		return errorResponse(c, http.StatusBadRequest, "email already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("register_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	pwHash, err := hash.HashPassword(req.Senha)
	if err != nil {
		l.Error("register_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	user := models.User{
		Name:         req.Nome,
		Email:        req.Email,
		PasswordHash: pwHash,
		Phone:        req.Telefone,
		Address:      req.Endereco,
	}

	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		l.Error("register_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	event := map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	}
	publish(c, h.Producer, userEventsTopic, user.ID, event)

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *UsuarioHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "usuario.login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return errorResponse(c, http.StatusBadRequest, "invalid body")
	}

	if req.Email == "" || req.Senha == "" {
		l.Warn("login_error", "status", 400, "reason", "missing credentials")
		return errorResponse(c, http.StatusBadRequest, "email and senha are required")
	}

	var user models.User
	err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		l.Warn("login_error", "status", 401, "reason", "unknown email")
		return errorResponse(c, http.StatusUnauthorized, invalidCredentials)
	}
	if err != nil {
		l.Error("login_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	if !hash.CheckPassword(user.PasswordHash, req.Senha) {
		l.Warn("login_error", "status", 401, "reason", "wrong password")
		return errorResponse(c, http.StatusUnauthorized, invalidCredentials)
	}

	token, err := tokens.SignAccessToken(user.ID, user.Email, h.JWTSecret, tokens.AccessTokenTTL)
	if err != nil {
		l.Error("login_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	l.Info("login_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"usuario": echo.Map{
			"id":    user.ID,
			"nome":  user.Name,
			"email": user.Email,
		},
	})
}

func (h *UsuarioHandler) RequestRecovery(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "usuario.request_recovery")

	var req recoveryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("request_recovery_error", "status", 400, "reason", "invalid body", "error", err)
		return errorResponse(c, http.StatusBadRequest, "invalid body")
	}

	if req.Email == "" {
		l.Warn("request_recovery_error", "status", 400, "reason", "missing email")
		return errorResponse(c, http.StatusBadRequest, "email is required")
	}

	var user models.User
	err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		l.Warn("request_recovery_error", "status", 404, "reason", "user not found")
		return errorResponse(c, http.StatusNotFound, "user not found")
	}
	if err != nil {
		l.Error("request_recovery_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	code, err := generateRecoveryCode()
	if err != nil {
		l.Error("request_recovery_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	if err := h.DB.WithContext(ctx).Model(&user).Update("recovery_code", code).Error; err != nil {
		l.Error("request_recovery_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	data := mail.RecoveryCodeData{
		UserName: user.Name,
		Email:    user.Email,
		Code:     code,
	}
	if err := h.Mailer.SendRecoveryCode(ctx, data); err != nil {
		l.Error("request_recovery_error", "status", 500, "reason", "send failed", "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	l.Info("request_recovery_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "recovery code sent"})
}

func (h *UsuarioHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "usuario.reset_password")

	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("reset_password_error", "status", 400, "reason", "invalid body", "error", err)
		return errorResponse(c, http.StatusBadRequest, "invalid body")
	}

	if req.Email == "" || req.CodigoRecuperacao == "" || req.NovaSenha == "" || req.ConfirmarSenha == "" {
		l.Warn("reset_password_error", "status", 400, "reason", "missing fields")
		return errorResponse(c, http.StatusBadRequest, "email, codigoRecuperacao, novaSenha and confirmarSenha are required")
	}

	if req.NovaSenha != req.ConfirmarSenha {
		l.Warn("reset_password_error", "status", 400, "reason", "password mismatch")
		return errorResponse(c, http.StatusBadRequest, "passwords do not match")
	}

	if !validation.StrongPassword(req.NovaSenha) {
		l.Warn("reset_password_error", "status", 400, "reason", "weak password")
		return errorResponse(c, http.StatusBadRequest, "senha must have at least 8 characters, one uppercase letter and one special character")
	}

	var user models.User
	err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		l.Warn("reset_password_error", "status", 400, "reason", "unknown email")
		return errorResponse(c, http.StatusBadRequest, "invalid recovery code")
	}
	if err != nil {
		l.Error("reset_password_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	if user.RecoveryCode == nil || *user.RecoveryCode != req.CodigoRecuperacao {
		l.Warn("reset_password_error", "status", 400, "reason", "wrong code")
		return errorResponse(c, http.StatusBadRequest, "invalid recovery code")
	}

	pwHash, err := hash.HashPassword(req.NovaSenha)
	if err != nil {
		l.Error("reset_password_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	// The new hash and the code reset happen in one update so a used code
	// can never stay valid.
	updates := map[string]any{
		"password_hash": pwHash,
		"recovery_code": nil,
	}
	if err := h.DB.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		l.Error("reset_password_error", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	l.Info("reset_password_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

func generateRecoveryCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
