package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"consultlink_backend/internal/auth"
	"consultlink_backend/internal/models"
	"consultlink_backend/internal/paygate"
	"consultlink_backend/internal/services/dto"
	"consultlink_backend/internal/testutil"
	"consultlink_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorBody struct {
	Error    apperrors.AppError `json:"error"`
	Redirect string             `json:"redirect"`
}

type listBody struct {
	Consultations []models.Consultation `json:"consultations"`
	Total         int                   `json:"total"`
}

func TestHealth(t *testing.T) {
	t.Parallel()
	env := testutil.New(t)

	status, body := env.Do(t, http.DefaultClient, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestAuth_LoginMeLogout(t *testing.T) {
	t.Parallel()
	env := testutil.New(t)

	client := env.Client(t, testutil.RequesterEmail)

	// 1. me с cookie сессии
	status, body := env.Do(t, client, http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	me := testutil.Decode[dto.SessionResponse](t, body)
	assert.Equal(t, models.UserRoleRequester, me.User.Role)
	assert.NotEmpty(t, me.ExpiresAt)

	// 2. logout
	status, _ = env.Do(t, client, http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, status)

	// 3. сессии больше нет
	status, body = env.Do(t, client, http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	resp := testutil.Decode[errorBody](t, body)
	assert.Equal(t, "/login", resp.Redirect)
	assert.Equal(t, apperrors.CodeUnauthenticated, resp.Error.Code)
}

func TestAuth_InvalidCredentials(t *testing.T) {
	t.Parallel()
	env := testutil.New(t)

	status, body := env.Do(t, http.DefaultClient, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{
		Email:    testutil.RequesterEmail,
		Password: "not-the-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	resp := testutil.Decode[errorBody](t, body)
	assert.Equal(t, apperrors.CodeInvalidCredentials, resp.Error.Code)
	assert.Empty(t, resp.Redirect, "bad credentials are not a session problem")
}

func TestBackendRejectionExpiresSession(t *testing.T) {
	t.Parallel()
	env := testutil.New(t)

	// 1. Подготовка: токен, подписанный чужим ключом, бэкенд его не примет
	forged, err := auth.NewTokenManager("someone-else", time.Hour).Generate(&models.User{
		BaseModel: models.BaseModel{ID: "forged-user"},
		Name:      "Forged",
		Role:      models.UserRoleRequester,
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, env.Orchestrator.URL+"/api/v1/consultations", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+forged)

	// 2. Действие
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	// 3. Проверка
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	decoded := testutil.Decode[errorBody](t, body)
	assert.Equal(t, "/login", decoded.Redirect)
	assert.Equal(t, apperrors.CodeUnauthenticated, decoded.Error.Code)

	var expired bool
	for _, c := range resp.Cookies() {
		if c.Name == env.Config.Session.CookieName && c.MaxAge < 0 {
			expired = true
		}
	}
	assert.True(t, expired, "session cookie is cleared")
}

func TestConsultations_AcceptRaceOverHTTP(t *testing.T) {
	t.Parallel()
	env := testutil.New(t)

	requester := env.Client(t, testutil.RequesterEmail)
	first := env.Client(t, testutil.Consultant1Email)
	second := env.Client(t, testutil.Consultant2Email)

	// 1. Запрос
	status, body := env.Do(t, requester, http.MethodPost, "/api/v1/consultations", dto.CreateConsultationRequest{
		Type:    models.ConsultationTypeResidence,
		Method:  models.ConsultationMethodMessage,
		Content: "How do I switch my residence permit category?",
		Amount:  45000,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	c := testutil.Decode[models.Consultation](t, body)

	status, body = env.Do(t, second, http.MethodGet, "/api/v1/consultations/incoming", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, testutil.Decode[listBody](t, body).Total)

	// 2. Два консультанта принимают
	status, body = env.Do(t, first, http.MethodPost, "/api/v1/consultations/"+c.ID+"/accept", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	won := testutil.Decode[dto.AcceptResult](t, body)

	status, body = env.Do(t, second, http.MethodPost, "/api/v1/consultations/"+c.ID+"/accept", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	lost := testutil.Decode[dto.AcceptResult](t, body)

	// 3. Проверка
	assert.Equal(t, dto.AcceptOutcomeAccepted, won.Outcome)
	assert.Equal(t, dto.AcceptOutcomeAlreadyMatched, lost.Outcome)
	require.NotNil(t, lost.Consultation)
	assert.Equal(t, won.Consultation.ConsultantID, lost.Consultation.ConsultantID)

	status, body = env.Do(t, requester, http.MethodGet, "/api/v1/consultations?status=matched", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, testutil.Decode[listBody](t, body).Total)
}

func TestPayments_CheckoutAndLanding(t *testing.T) {
	t.Parallel()
	env := testutil.New(t)

	requester := env.Client(t, testutil.RequesterEmail)
	consultant := env.Login(t, testutil.Consultant1Email)
	owner := env.Login(t, testutil.RequesterEmail)
	c := env.NewConsultation(t, owner, 60000)
	env.Match(t, consultant, c.ID)

	// 1. checkout
	status, body := env.Do(t, requester, http.MethodPost, "/api/v1/consultations/"+c.ID+"/checkout", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	checkout := testutil.Decode[paygate.CheckoutSession](t, body)
	assert.Equal(t, testutil.ClientKey, checkout.ClientKey)
	assert.Equal(t, c.ID, checkout.OrderID)
	assert.Equal(t, int64(60000), checkout.Amount)
	assert.True(t, strings.HasSuffix(checkout.SuccessURL, "/api/v1/payments/success"))

	// 2. неуспешный редирект ничего не меняет
	fail := url.Values{"code": {"PAY_PROCESS_CANCELED"}, "message": {"cancelled by user"}, "orderId": {c.ID}}
	status, body = env.Do(t, requester, http.MethodGet, "/api/v1/payments/fail?"+fail.Encode(), nil)
	require.Equal(t, http.StatusOK, status)
	failure := testutil.Decode[dto.FailureResult](t, body)
	assert.Equal(t, "/api/v1/consultations/"+c.ID+"/checkout", failure.RetryPath)
	assert.Equal(t, "/api/v1/consultations", failure.AbandonPath)

	// 3. успешный редирект
	query := testutil.SuccessQuery("pk_http", c.ID, 60000)
	status, body = env.Do(t, requester, http.MethodGet, "/api/v1/payments/success?"+query.Encode(), nil)
	require.Equal(t, http.StatusOK, status, string(body))
	result := testutil.Decode[dto.ReconcileResult](t, body)
	assert.Equal(t, dto.ReconcileOutcomeConfirmed, result.Outcome)
	assert.Equal(t, models.ConsultationStatusScheduled, result.Consultation.Status)

	// 4. поврежденный callback
	status, body = env.Do(t, requester, http.MethodGet, "/api/v1/payments/success?orderId="+c.ID, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.CodeMalformedCallback, testutil.Decode[errorBody](t, body).Error.Code)

	updated, err := env.Services.ConsultationService.Get(context.Background(), owner, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConsultationStatusScheduled, updated.Status)
}

func TestMessagesAndReviewOverHTTP(t *testing.T) {
	t.Parallel()
	env := testutil.New(t)

	requesterClient := env.Client(t, testutil.RequesterEmail)
	consultantClient := env.Client(t, testutil.Consultant1Email)
	requester := env.Login(t, testutil.RequesterEmail)
	consultant := env.Login(t, testutil.Consultant1Email)

	c := env.NewConsultation(t, requester, 25000)
	env.Match(t, consultant, c.ID)
	env.Pay(t, requester, c, "pk_chat")

	path := "/api/v1/consultations/" + c.ID
	status, body := env.Do(t, requesterClient, http.MethodPost, path+"/messages", dto.SendMessageRequest{Body: "Здравствуйте"})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = env.Do(t, consultantClient, http.MethodGet, path+"/messages", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), "Здравствуйте")

	status, body = env.Do(t, consultantClient, http.MethodPost, path+"/complete", nil)
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = env.Do(t, requesterClient, http.MethodPost, path+"/review", dto.SubmitReviewRequest{Rating: 4, Comment: "Помогли"})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = env.Do(t, requesterClient, http.MethodPost, path+"/review", dto.SubmitReviewRequest{Rating: 5})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, apperrors.CodeAlreadyReviewed, testutil.Decode[errorBody](t, body).Error.Code)
}
