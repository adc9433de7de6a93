package backend_test

import (
	"net/http"
	"testing"

	"consultlink_backend/internal/gateway"
	"consultlink_backend/internal/models"
	"consultlink_backend/internal/services/dto"
	"consultlink_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type detailBody struct {
	Detail string `json:"detail"`
}

func token(t *testing.T, env *testutil.Env, email string) string {
	t.Helper()
	status, body := env.DoBackend(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Email: email, Password: testutil.Password})
	require.Equal(t, http.StatusOK, status, string(body))
	return testutil.Decode[dto.LoginResponse](t, body).AccessToken
}

func createConsultation(t *testing.T, env *testutil.Env, tok string, amount int64) models.Consultation {
	t.Helper()
	status, body := env.DoBackend(t, http.MethodPost, "/consultations", tok, dto.CreateConsultationRequest{
		Type:    models.ConsultationTypeLabor,
		Method:  models.ConsultationMethodMessage,
		Content: "My employer has not paid overtime for three months.",
		Amount:  amount,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	return testutil.Decode[models.Consultation](t, body)
}

func TestBackend_Auth(t *testing.T) {
	t.Parallel()
	env := testutil.New(t)

	status, body := env.DoBackend(t, http.MethodGet, "/consultations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, gateway.DetailMissingToken, testutil.Decode[detailBody](t, body).Detail)

	status, body = env.DoBackend(t, http.MethodGet, "/consultations", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, gateway.DetailInvalidToken, testutil.Decode[detailBody](t, body).Detail)

	status, body = env.DoBackend(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Email: testutil.RequesterEmail, Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, gateway.DetailInvalidCredentials, testutil.Decode[detailBody](t, body).Detail)

	consultant := token(t, env, testutil.Consultant1Email)
	status, body = env.DoBackend(t, http.MethodPost, "/consultations", consultant, dto.CreateConsultationRequest{
		Type:    models.ConsultationTypeVisa,
		Method:  models.ConsultationMethodMessage,
		Content: "Consultants cannot open requests.",
		Amount:  1000,
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, gateway.DetailForbidden, testutil.Decode[detailBody](t, body).Detail)
}

func TestBackend_AcceptConflictAndRedactedView(t *testing.T) {
	t.Parallel()
	env := testutil.New(t)

	// 1. Подготовка
	requester := token(t, env, testutil.RequesterEmail)
	first := token(t, env, testutil.Consultant1Email)
	second := token(t, env, testutil.Consultant2Email)
	c := createConsultation(t, env, requester, 30000)

	// 2. Действие
	status, body := env.DoBackend(t, http.MethodPost, "/consultations/"+c.ID+"/accept", first, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	winner := testutil.Decode[models.Consultation](t, body)

	status, body = env.DoBackend(t, http.MethodPost, "/consultations/"+c.ID+"/accept", second, nil)

	// 3. Проверка
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, gateway.DetailAlreadyMatched, testutil.Decode[detailBody](t, body).Detail)

	status, body = env.DoBackend(t, http.MethodGet, "/consultations/"+c.ID, second, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	seen := testutil.Decode[models.Consultation](t, body)
	assert.Equal(t, models.ConsultationStatusMatched, seen.Status)
	assert.Equal(t, winner.ConsultantID, seen.ConsultantID)
	assert.Empty(t, seen.Content, "request text is hidden from other consultants")

	status, body = env.DoBackend(t, http.MethodGet, "/consultations/"+c.ID, first, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, testutil.Decode[models.Consultation](t, body).Content)
}

func TestBackend_ForeignConsultationIsHidden(t *testing.T) {
	t.Parallel()
	env := testutil.New(t)

	owner := token(t, env, testutil.Requester2Email)
	requester := token(t, env, testutil.RequesterEmail)
	admin := token(t, env, testutil.AdminEmail)
	c := createConsultation(t, env, owner, 10000)

	status, body := env.DoBackend(t, http.MethodGet, "/consultations/"+c.ID, requester, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, gateway.DetailConsultationNotFound, testutil.Decode[detailBody](t, body).Detail)

	status, body = env.DoBackend(t, http.MethodGet, "/consultations", requester, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, testutil.Decode[[]models.Consultation](t, body))

	status, body = env.DoBackend(t, http.MethodGet, "/consultations", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, testutil.Decode[[]models.Consultation](t, body), 1)
}

func TestBackend_Payments(t *testing.T) {
	t.Parallel()
	env := testutil.New(t)

	requester := token(t, env, testutil.RequesterEmail)
	consultant := token(t, env, testutil.Consultant1Email)
	c := createConsultation(t, env, requester, 50000)

	create := func(t *testing.T, amount int64) (int, []byte) {
		return env.DoBackend(t, http.MethodPost, "/payments", requester, dto.CreatePaymentRequest{
			ConsultationID: c.ID,
			Method:         models.PaymentMethodCard,
			Amount:         amount,
		})
	}

	t.Run("not awaiting payment before match", func(t *testing.T) {
		status, body := create(t, 50000)
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, gateway.DetailNotAwaitingPayment, testutil.Decode[detailBody](t, body).Detail)
	})

	status, body := env.DoBackend(t, http.MethodPost, "/consultations/"+c.ID+"/accept", consultant, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	t.Run("amount must match consultation", func(t *testing.T) {
		status, body := create(t, 40000)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, gateway.DetailAmountMismatch, testutil.Decode[detailBody](t, body).Detail)
	})

	status, body = create(t, 50000)
	require.Equal(t, http.StatusCreated, status, string(body))
	payment := testutil.Decode[models.Payment](t, body)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, c.ID, payment.OrderID)

	t.Run("second active payment", func(t *testing.T) {
		status, body := create(t, 50000)
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, gateway.DetailPaymentExists, testutil.Decode[detailBody](t, body).Detail)
	})

	confirm := dto.ConfirmPaymentRequest{PaymentKey: "pk_backend", OrderID: c.ID, Amount: 50000, Status: models.ConfirmStatusDone}

	t.Run("unsupported confirm status", func(t *testing.T) {
		bad := confirm
		bad.Status = "WAITING"
		status, body := env.DoBackend(t, http.MethodPost, "/payments/confirm", requester, bad)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, gateway.DetailUnsupportedConfirm, testutil.Decode[detailBody](t, body).Detail)
	})

	status, body = env.DoBackend(t, http.MethodPost, "/payments/confirm", requester, confirm)
	require.Equal(t, http.StatusOK, status, string(body))
	confirmed := testutil.Decode[dto.ConfirmPaymentResponse](t, body)
	assert.Equal(t, models.PaymentStatusDone, confirmed.Payment.Status)
	assert.Equal(t, models.ConsultationStatusScheduled, confirmed.Consultation.Status)

	t.Run("repeat with same key is a no-op", func(t *testing.T) {
		status, _ := env.DoBackend(t, http.MethodPost, "/payments/confirm", requester, confirm)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("different key after success", func(t *testing.T) {
		other := confirm
		other.PaymentKey = "pk_other"
		status, body := env.DoBackend(t, http.MethodPost, "/payments/confirm", requester, other)
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, gateway.DetailPaymentKeyMismatch, testutil.Decode[detailBody](t, body).Detail)
	})

	status, body = env.DoBackend(t, http.MethodGet, "/payments?consultation_id="+c.ID, consultant, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	listed := testutil.Decode[models.Payment](t, body)
	assert.True(t, listed.HasKey("pk_backend"))
}

func TestBackend_MessagesAndReview(t *testing.T) {
	t.Parallel()
	env := testutil.New(t)

	requester := token(t, env, testutil.RequesterEmail)
	consultant := token(t, env, testutil.Consultant1Email)
	c := createConsultation(t, env, requester, 20000)

	status, body := env.DoBackend(t, http.MethodPost, "/consultations/"+c.ID+"/messages", requester, dto.SendMessageRequest{Body: "hello"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, gateway.DetailChannelInactive, testutil.Decode[detailBody](t, body).Detail)

	status, _ = env.DoBackend(t, http.MethodPost, "/consultations/"+c.ID+"/accept", consultant, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.DoBackend(t, http.MethodPost, "/consultations/"+c.ID+"/messages", requester, dto.SendMessageRequest{Body: "hello"})
	require.Equal(t, http.StatusCreated, status)

	status, body = env.DoBackend(t, http.MethodPost, "/consultations/"+c.ID+"/messages/read", consultant, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), testutil.Decode[dto.MarkReadResponse](t, body).Updated)

	status, body = env.DoBackend(t, http.MethodPost, "/consultations/"+c.ID+"/review", requester, dto.SubmitReviewRequest{Rating: 5})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, gateway.DetailNotCompleted, testutil.Decode[detailBody](t, body).Detail)

	status, body = env.DoBackend(t, http.MethodGet, "/consultations/"+c.ID+"/review", requester, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, gateway.DetailReviewNotFound, testutil.Decode[detailBody](t, body).Detail)
}

func TestBackend_AcceptOnTerminalConsultation(t *testing.T) {
	t.Parallel()
	env := testutil.New(t)

	requester := token(t, env, testutil.RequesterEmail)
	first := token(t, env, testutil.Consultant1Email)
	second := token(t, env, testutil.Consultant2Email)

	accept := func(t *testing.T, tok, id string) (int, string) {
		status, body := env.DoBackend(t, http.MethodPost, "/consultations/"+id+"/accept", tok, nil)
		return status, testutil.Decode[detailBody](t, body).Detail
	}

	t.Run("cancelled after match", func(t *testing.T) {
		c := createConsultation(t, env, requester, 30000)
		status, _ := env.DoBackend(t, http.MethodPost, "/consultations/"+c.ID+"/accept", first, nil)
		require.Equal(t, http.StatusOK, status)
		status, body := env.DoBackend(t, http.MethodPost, "/consultations/"+c.ID+"/cancel", requester, nil)
		require.Equal(t, http.StatusOK, status, string(body))

		status, detail := accept(t, second, c.ID)
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, gateway.DetailInvalidTransition, detail)

		status, detail = accept(t, first, c.ID)
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, gateway.DetailInvalidTransition, detail)
	})

	t.Run("completed", func(t *testing.T) {
		// 1. Подготовка: консультация проходит весь путь до completed
		c := createConsultation(t, env, requester, 30000)
		status, _ := env.DoBackend(t, http.MethodPost, "/consultations/"+c.ID+"/accept", first, nil)
		require.Equal(t, http.StatusOK, status)
		status, body := env.DoBackend(t, http.MethodPost, "/payments", requester, dto.CreatePaymentRequest{
			ConsultationID: c.ID,
			Method:         models.PaymentMethodCard,
			Amount:         30000,
		})
		require.Equal(t, http.StatusCreated, status, string(body))
		status, body = env.DoBackend(t, http.MethodPost, "/payments/confirm", requester, dto.ConfirmPaymentRequest{
			PaymentKey: "pk_terminal",
			OrderID:    c.ID,
			Amount:     30000,
			Status:     models.ConfirmStatusDone,
		})
		require.Equal(t, http.StatusOK, status, string(body))
		status, body = env.DoBackend(t, http.MethodPost, "/consultations/"+c.ID+"/complete", first, nil)
		require.Equal(t, http.StatusOK, status, string(body))

		// 2. Действие
		status, detail := accept(t, first, c.ID)

		// 3. Проверка
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, gateway.DetailInvalidTransition, detail)
	})
}
