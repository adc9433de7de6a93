package services_test

import (
	"context"
	"fmt"
	"testing"

	"consultlink_backend/internal/services/dto"
	"consultlink_backend/internal/testutil"
	"consultlink_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_ChannelLifecycle(t *testing.T) {
	t.Parallel()

	env := testutil.New(t)
	ctx := context.Background()
	requester := env.Login(t, testutil.RequesterEmail)
	consultant := env.Login(t, testutil.Consultant1Email)
	outsider := env.Login(t, testutil.Consultant2Email)
	c := env.NewConsultation(t, requester, 30000)

	t.Run("inactive before match", func(t *testing.T) {
		_, err := env.Services.MessageService.Send(ctx, requester, c.ID, &dto.SendMessageRequest{Body: "Hello?"})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeChannelInactive))

		_, err = env.Services.MessageService.Poll(ctx, requester, c.ID)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeChannelInactive))
	})

	env.Match(t, consultant, c.ID)

	t.Run("parties exchange messages in order", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, err := env.Services.MessageService.Send(ctx, requester, c.ID, &dto.SendMessageRequest{Body: fmt.Sprintf("question %d", i)})
			require.NoError(t, err)
		}
		reply, err := env.Services.MessageService.Send(ctx, consultant, c.ID, &dto.SendMessageRequest{Body: "answer"})
		require.NoError(t, err)
		assert.Equal(t, consultant.UserID(), reply.SenderID)

		msgs, err := env.Services.MessageService.Poll(ctx, consultant, c.ID)
		require.NoError(t, err)
		require.Len(t, msgs, 4)
		assert.Equal(t, "question 0", msgs[0].Body)
		assert.Equal(t, "answer", msgs[3].Body)
		for i := 1; i < len(msgs); i++ {
			assert.False(t, msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt))
		}

		again, err := env.Services.MessageService.Poll(ctx, requester, c.ID)
		require.NoError(t, err)
		assert.Equal(t, msgs, again, "order is stable between polls")
	})

	t.Run("mark read touches only the other party's messages", func(t *testing.T) {
		resp, err := env.Services.MessageService.MarkRead(ctx, consultant, c.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.Updated)

		resp, err = env.Services.MessageService.MarkRead(ctx, consultant, c.ID)
		require.NoError(t, err)
		assert.Zero(t, resp.Updated)
	})

	t.Run("outsider is not a party", func(t *testing.T) {
		_, err := env.Services.MessageService.Poll(ctx, outsider, c.ID)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

		_, err = env.Services.MessageService.Send(ctx, outsider, c.ID, &dto.SendMessageRequest{Body: "hi"})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	})

	t.Run("blank body", func(t *testing.T) {
		_, err := env.Services.MessageService.Send(ctx, requester, c.ID, &dto.SendMessageRequest{Body: "   "})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
	})

	t.Run("cancelled keeps history read-only", func(t *testing.T) {
		_, err := env.Services.ConsultationService.Cancel(ctx, requester, c.ID)
		require.NoError(t, err)

		msgs, err := env.Services.MessageService.Poll(ctx, requester, c.ID)
		require.NoError(t, err)
		assert.Len(t, msgs, 4)

		_, err = env.Services.MessageService.Send(ctx, requester, c.ID, &dto.SendMessageRequest{Body: "one more thing"})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeChannelInactive))
	})
}
