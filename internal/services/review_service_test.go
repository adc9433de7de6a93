package services_test

import (
	"context"
	"testing"

	"consultlink_backend/internal/services/dto"
	"consultlink_backend/internal/testutil"
	"consultlink_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReview_Lifecycle(t *testing.T) {
	t.Parallel()

	// 1. Подготовка: консультация оплачена, но не завершена
	env := testutil.New(t)
	ctx := context.Background()
	requester := env.Login(t, testutil.RequesterEmail)
	consultant := env.Login(t, testutil.Consultant1Email)
	c := env.NewConsultation(t, requester, 30000)
	env.Match(t, consultant, c.ID)
	env.Pay(t, requester, c, "pk_review")

	req := &dto.SubmitReviewRequest{Rating: 5, Comment: "Clear and fast answer."}

	// 2. Отзыв в статусе scheduled
	_, err := env.Services.ReviewService.Submit(ctx, requester, c.ID, req)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotEligible))

	_, err = env.Services.ReviewService.Get(ctx, requester, c.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	// 3. После завершения
	_, err = env.Services.ConsultationService.MarkCompleted(ctx, consultant, c.ID)
	require.NoError(t, err)

	_, err = env.Services.ReviewService.Submit(ctx, consultant, c.ID, req)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotEligible), "only the requester reviews")

	review, err := env.Services.ReviewService.Submit(ctx, requester, c.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, consultant.UserID(), review.ConsultantID)
	assert.Equal(t, requester.UserID(), review.ReviewerID)

	// 4. Повтор
	_, err = env.Services.ReviewService.Submit(ctx, requester, c.ID, req)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyReviewed))

	got, err := env.Services.ReviewService.Get(ctx, consultant, c.ID)
	require.NoError(t, err)
	assert.Equal(t, review.ID, got.ID)
}

func TestReview_Validation(t *testing.T) {
	t.Parallel()

	env := testutil.New(t)
	requester := env.Login(t, testutil.RequesterEmail)

	_, err := env.Services.ReviewService.Submit(context.Background(), requester, "any", &dto.SubmitReviewRequest{Rating: 6})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}
