package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/motoexpress/pedidos_api/internal/hash"
	"github.com/motoexpress/pedidos_api/internal/mail"
	"github.com/motoexpress/pedidos_api/internal/models"
	"github.com/motoexpress/pedidos_api/internal/mykafka"
	"github.com/motoexpress/pedidos_api/internal/validation"
)

func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Merchandise{}, &models.Order{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

// fakeMailer records every send so a test can assert on notifications without
// an SMTP server. Setting err makes every send fail.
type fakeMailer struct {
	statusMails   []mail.OrderStatusData
	recoveryMails []mail.RecoveryCodeData
	err           error
}

func (f *fakeMailer) SendOrderStatus(ctx context.Context, data mail.OrderStatusData) error {
	if f.err != nil {
		return f.err
	}
	f.statusMails = append(f.statusMails, data)
	return nil
}

func (f *fakeMailer) SendRecoveryCode(ctx context.Context, data mail.RecoveryCodeData) error {
	if f.err != nil {
		return f.err
	}
	f.recoveryMails = append(f.recoveryMails, data)
	return nil
}

type testEnv struct {
	e          *echo.Echo
	db         *gorm.DB
	mailer     *fakeMailer
	pedido     *PedidoHandler
	usuario    *UsuarioHandler
	mercadoria *MercadoriaHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := InitTestDB(t)
	mailer := &fakeMailer{}
	validate := validation.New()

	return &testEnv{
		e:      echo.New(),
		db:     db,
		mailer: mailer,
		pedido: &PedidoHandler{
			DB:       db,
			Producer: &mykafka.Producer{},
			Mailer:   mailer,
			Validate: validate,
		},
		usuario: &UsuarioHandler{
			DB:        db,
			Producer:  &mykafka.Producer{},
			Mailer:    mailer,
			JWTSecret: []byte("test-secret"),
			Validate:  validate,
		},
		mercadoria: &MercadoriaHandler{
			DB:       db,
			Producer: &mykafka.Producer{},
			Validate: validate,
		},
	}
}

func (env *testEnv) jsonContext(t *testing.T, method, path string, body any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	return c, rec
}

func (env *testEnv) createUser(t *testing.T, name, email, senha, phone string) models.User {
	t.Helper()

	pwHash, err := hash.HashPassword(senha)
	require.NoError(t, err)

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Phone:        phone,
		Address:      "Rua das Flores, 10",
	}
	require.NoError(t, env.db.Create(&user).Error)
	return user
}

func (env *testEnv) createMerchandise(t *testing.T, name string, price float64) models.Merchandise {
	t.Helper()

	item := models.Merchandise{
		Name:        name,
		Description: name + " description",
		Price:       price,
	}
	require.NoError(t, env.db.Create(&item).Error)
	return item
}

func (env *testEnv) createOrder(t *testing.T, userID string, merchandiseID, quantity int, status string) models.Order {
	t.Helper()

	order := models.Order{
		Quantity:      quantity,
		Status:        status,
		MerchandiseID: merchandiseID,
		UserID:        userID,
	}
	require.NoError(t, env.db.Create(&order).Error)
	return order
}
