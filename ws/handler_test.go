package ws_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"consultlink_backend/internal/models"
	"consultlink_backend/internal/services/dto"
	"consultlink_backend/internal/testutil"
	"consultlink_backend/ws"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsURL(env *testutil.Env, consultationID string) string {
	return "ws" + strings.TrimPrefix(env.Orchestrator.URL, "http") + "/api/v1/ws/consultations/" + consultationID + "/messages"
}

func bearer(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}

func TestServeWS_RejectsBeforeMatch(t *testing.T) {
	t.Parallel()
	env := testutil.New(t)

	requester := env.Login(t, testutil.RequesterEmail)
	c := env.NewConsultation(t, requester, 15000)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(env, c.ID), bearer(requester.AccessToken))
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestServeWS_RequiresSession(t *testing.T) {
	t.Parallel()
	env := testutil.New(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(env, "any"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWS_SendAndReceive(t *testing.T) {
	t.Parallel()
	env := testutil.New(t)

	// 1. Подготовка
	requester := env.Login(t, testutil.RequesterEmail)
	consultant := env.Login(t, testutil.Consultant1Email)
	c := env.NewConsultation(t, requester, 15000)
	env.Match(t, consultant, c.ID)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(env, c.ID), bearer(requester.AccessToken))
	require.NoError(t, err)
	defer conn.Close()

	// 2. Действие
	payload, err := json.Marshal(dto.SendMessageRequest{Body: "Когда удобно созвониться?"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(ws.IncomingWSMessage{Action: ws.ActionSendMessage, Data: payload}))

	// 3. Проверка
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame struct {
		Action string           `json:"action"`
		Data   []models.Message `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, ws.ActionMessages, frame.Action)
	require.Len(t, frame.Data, 1)
	assert.Equal(t, "Когда удобно созвониться?", frame.Data[0].Body)
	assert.Equal(t, requester.UserID(), frame.Data[0].SenderID)
}

func TestServeWS_ChecksOrigin(t *testing.T) {
	t.Parallel()
	env := testutil.New(t)

	// 1. Подготовка
	requester := env.Login(t, testutil.RequesterEmail)
	consultant := env.Login(t, testutil.Consultant1Email)
	c := env.NewConsultation(t, requester, 15000)
	env.Match(t, consultant, c.ID)

	withOrigin := func(origin string) http.Header {
		h := bearer(requester.AccessToken)
		h.Set("Origin", origin)
		return h
	}

	// 2. Чужой сайт получает отказ до апгрейда
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(env, c.ID), withOrigin("http://evil.example"))
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// 3. Разрешенный origin подключается
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(env, c.ID), withOrigin(env.Config.Server.AllowedOrigins[0]))
	require.NoError(t, err)
	conn.Close()
}
