package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketlive/internal/models"
)

func TestCommentStoreAddAndList(t *testing.T) {
	store := NewCommentStore(t.TempDir())

	first, err := store.Add(models.Comment{Name: "Ana", Message: "Great show!", Rating: 5})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	time.Sleep(10 * time.Millisecond)
	second, err := store.Add(models.Comment{Name: "Luis", Message: "Good seats", Rating: 4})
	require.NoError(t, err)

	comments, err := store.List()
	require.NoError(t, err)
	require.Len(t, comments, 2)

	// Newest first.
	assert.Equal(t, second.ID, comments[0].ID)
	assert.Equal(t, first.ID, comments[1].ID)
}

func TestCommentStoreRejectsInvalid(t *testing.T) {
	store := NewCommentStore(t.TempDir())

	tests := []struct {
		name    string
		comment models.Comment
	}{
		{"missing name", models.Comment{Message: "hi", Rating: 3}},
		{"missing message", models.Comment{Name: "Ana", Rating: 3}},
		{"rating too low", models.Comment{Name: "Ana", Message: "hi", Rating: 0}},
		{"rating too high", models.Comment{Name: "Ana", Message: "hi", Rating: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Add(tt.comment)
			assert.Error(t, err)
		})
	}
}

func TestCommentStoreEmptyFile(t *testing.T) {
	store := NewCommentStore(t.TempDir())

	comments, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestSubscriberStoreAdd(t *testing.T) {
	store := NewSubscriberStore(t.TempDir())

	require.NoError(t, store.Add("Ana@Example.com"))

	subs, err := store.List()
	require.NoError(t, err)
	require.Len(t, subs, 1)
	// Addresses are stored lowercased.
	assert.Equal(t, "ana@example.com", subs[0].Email)
}

func TestSubscriberStoreRejectsDuplicate(t *testing.T) {
	store := NewSubscriberStore(t.TempDir())

	require.NoError(t, store.Add("ana@example.com"))
	err := store.Add("ANA@example.com")
	assert.ErrorIs(t, err, ErrAlreadySubscribed)

	subs, err := store.List()
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestSubscriberStoreRejectsBadEmail(t *testing.T) {
	store := NewSubscriberStore(t.TempDir())
	assert.Error(t, store.Add("not-an-email"))
}
