// Package testutil поднимает эталонный бэкенд на sqlite в памяти и оркестратор поверх него.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"consultlink_backend/internal/app"
	"consultlink_backend/internal/config"
	"consultlink_backend/internal/database"
	"consultlink_backend/internal/gateway"
	"consultlink_backend/internal/logger"
	"consultlink_backend/internal/models"
	"consultlink_backend/internal/paygate"
	"consultlink_backend/internal/services"
	"consultlink_backend/internal/services/dto"
	"consultlink_backend/internal/session"
	"consultlink_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	RequesterEmail   = "requester@consultlink.test"
	Requester2Email  = "requester2@consultlink.test"
	Consultant1Email = "consultant1@consultlink.test"
	Consultant2Email = "consultant2@consultlink.test"
	AdminEmail       = "admin@consultlink.test"
	Password         = "correct-horse"
	ClientKey        = "test_ck_consultlink"
)

var setupOnce sync.Once

// Env - связка бэкенд + оркестратор для одного теста.
type Env struct {
	DB           *gorm.DB
	Config       *config.Config
	Backend      *httptest.Server
	Orchestrator *httptest.Server
	Email        *app.MockEmailProvider
	Gateway      *gateway.Client
	// Services - отдельный контейнер сервисов поверх того же бэкенда,
	// для тестов без HTTP слоя оркестратора.
	Services *services.ServiceContainer
	Store    *session.MemoryStore
}

// New поднимает окружение и регистрирует его закрытие в t.Cleanup.
func New(t *testing.T) *Env {
	t.Helper()
	setupOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		logger.InitWithWriter("test", io.Discard)
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := Config()

	backendRouter, err := app.SetupBackendRouter(ctx, cfg, db)
	require.NoError(t, err)
	backendSrv := httptest.NewServer(backendRouter)
	t.Cleanup(backendSrv.Close)

	cfg.Backend.BaseURL = backendSrv.URL + "/api/v1"

	mail := &app.MockEmailProvider{}
	orchestratorRouter, err := app.SetupRouter(ctx, cfg, app.Options{Email: mail})
	require.NoError(t, err)
	orchestratorSrv := httptest.NewServer(orchestratorRouter)
	t.Cleanup(orchestratorSrv.Close)

	gw := gateway.NewClient(cfg.Backend.BaseURL, cfg.BackendTimeout())
	widget, err := paygate.New(paygate.Config{
		ClientKey:       cfg.Gateway.ClientKey,
		SuccessURL:      cfg.Gateway.SuccessURL,
		FailURL:         cfg.Gateway.FailURL,
		OrderNamePrefix: cfg.Gateway.OrderNamePrefix,
		Currency:        cfg.Gateway.Currency,
	})
	require.NoError(t, err)
	store := session.NewMemoryStore(cfg.SessionTTL())
	notifier := services.NewEmailSupportNotifier(mail, cfg.Email.SupportEmail)

	return &Env{
		DB:           db,
		Config:       cfg,
		Backend:      backendSrv,
		Orchestrator: orchestratorSrv,
		Email:        mail,
		Gateway:      gw,
		Services:     services.NewServiceContainer(gw, store, widget, notifier, validator.New()),
		Store:        store,
	}
}

// Config - конфигурация для тестов: пять пользователей, без SMTP.
func Config() *config.Config {
	cfg, _ := config.Load("")
	cfg.Server.Env = "test"
	cfg.JWT.Secret = "test-secret"
	cfg.Gateway.ClientKey = ClientKey
	cfg.Email.SMTPHost = ""
	cfg.Email.SupportEmail = "support@consultlink.test"
	cfg.SeedUsers = []config.SeedUser{
		{Email: RequesterEmail, Name: "Requester", Password: Password, Role: string(models.UserRoleRequester)},
		{Email: Requester2Email, Name: "Second Requester", Password: Password, Role: string(models.UserRoleRequester)},
		{Email: Consultant1Email, Name: "Consultant One", Password: Password, Role: string(models.UserRoleConsultant)},
		{Email: Consultant2Email, Name: "Consultant Two", Password: Password, Role: string(models.UserRoleConsultant)},
		{Email: AdminEmail, Name: "Admin", Password: Password, Role: string(models.UserRoleAdmin)},
	}
	return cfg
}

// Login открывает сессию через сервис авторизации.
func (e *Env) Login(t *testing.T, email string) *session.Session {
	t.Helper()
	sess, err := e.Services.AuthService.Login(context.Background(), &dto.LoginRequest{Email: email, Password: Password})
	require.NoError(t, err)
	return sess
}

// NewConsultation создает запрос от имени заявителя.
func (e *Env) NewConsultation(t *testing.T, requester *session.Session, amount int64) *models.Consultation {
	t.Helper()
	c, err := e.Services.ConsultationService.Create(context.Background(), requester, &dto.CreateConsultationRequest{
		Type:    models.ConsultationTypeVisa,
		Method:  models.ConsultationMethodMessage,
		Content: "Need help extending my work visa before it expires.",
		Amount:  amount,
	})
	require.NoError(t, err)
	return c
}

// Match назначает консультанта и возвращает matched консультацию.
func (e *Env) Match(t *testing.T, consultant *session.Session, id string) *models.Consultation {
	t.Helper()
	res, err := e.Services.ConsultationService.Accept(context.Background(), consultant, id)
	require.NoError(t, err)
	require.Equal(t, dto.AcceptOutcomeAccepted, res.Outcome)
	return res.Consultation
}

// SuccessQuery - параметры редиректа успешной оплаты.
func SuccessQuery(paymentKey, orderID string, amount int64) url.Values {
	return url.Values{
		"paymentKey": {paymentKey},
		"orderId":    {orderID},
		"amount":     {strconv.FormatInt(amount, 10)},
	}
}

// Pay проводит checkout и подтверждение оплаты, консультация становится scheduled.
func (e *Env) Pay(t *testing.T, requester *session.Session, c *models.Consultation, paymentKey string) *dto.ReconcileResult {
	t.Helper()
	ctx := context.Background()
	_, err := e.Services.PaymentService.Initiate(ctx, requester, c.ID, nil)
	require.NoError(t, err)
	res, err := e.Services.PaymentService.ReconcileSuccess(ctx, requester, SuccessQuery(paymentKey, c.ID, c.Amount))
	require.NoError(t, err)
	return res
}

// ---------------- HTTP ----------------

// Client - http.Client с cookie jar, залогиненный в оркестратор.
func (e *Env) Client(t *testing.T, email string) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	status, body := e.Do(t, client, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: email, Password: Password})
	require.Equal(t, http.StatusOK, status, string(body))
	return client
}

// Do отправляет запрос в оркестратор и возвращает статус и тело.
func (e *Env) Do(t *testing.T, client *http.Client, method, path string, body any) (int, []byte) {
	t.Helper()
	return do(t, client, e.Orchestrator.URL+path, method, body, "")
}

// DoBackend отправляет запрос напрямую в бэкенд с bearer-токеном.
func (e *Env) DoBackend(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	return do(t, http.DefaultClient, e.Backend.URL+"/api/v1"+path, method, body, token)
}

func do(t *testing.T, client *http.Client, url, method string, body any, token string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

// Decode разбирает JSON ответа в T.
func Decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}
