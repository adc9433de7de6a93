package services

import (
	"testing"
	"time"

	"consultlink_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func message(id string, at time.Time) models.Message {
	m := models.Message{Body: id}
	m.ID = id
	m.CreatedAt = at
	return m
}

func TestSortMessages_TiesBrokenByID(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	msgs := []models.Message{
		message("c", t0.Add(time.Second)),
		message("b", t0),
		message("a", t0),
	}

	SortMessages(msgs)

	assert.Equal(t, []string{"a", "b", "c"}, []string{msgs[0].ID, msgs[1].ID, msgs[2].ID})
}

func TestMessageView_MergeReturnsOnlyNew(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	view := NewMessageView()

	first := view.Merge([]models.Message{message("m1", t0), message("m2", t0.Add(time.Second))})
	assert.Len(t, first, 2)

	second := view.Merge([]models.Message{message("m1", t0), message("m2", t0.Add(time.Second)), message("m3", t0.Add(2 * time.Second))})
	if assert.Len(t, second, 1) {
		assert.Equal(t, "m3", second[0].ID)
	}

	assert.Nil(t, view.Merge([]models.Message{message("m3", t0.Add(2 * time.Second))}))
	assert.Equal(t, 3, view.Len())

	all := view.Messages()
	all[0].Body = "changed"
	assert.Equal(t, "m1", view.Messages()[0].Body, "Messages returns a copy")
}
