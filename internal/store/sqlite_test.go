package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/crewcheck/internal/model"
)

func newStore(t *testing.T, opts ...Option) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(":memory:", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetAbsentKey(t *testing.T) {
	s := newStore(t)

	var out []model.Task
	found, err := s.Get(context.Background(), KeyTasks, &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, out)
}

func TestSetGetRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	task := model.Task{
		ID:           "t1",
		AssigneeName: "Ann",
		AreaName:     "Room 1",
		Checklist: []model.ChecklistItem{
			{ID: "c1", Text: "Wipe counters", Completed: true},
			{ID: "c2", Text: "Mop floor", Completed: false},
		},
		Status:      model.StatusCompleted,
		Photos:      []string{"https://img.example/1.jpg"},
		CreatedAt:   1700000000000,
		CompletedAt: 1700000500000,
		StartDate:   1699990000000,
		DueDate:     1700086399999,
	}

	require.NoError(t, s.Set(ctx, KeyTasks, []model.Task{task}))

	var out []model.Task
	found, err := s.Get(ctx, KeyTasks, &out)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, out, 1)
	assert.Equal(t, task, out[0])
}

func TestSetOverwrites(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyAdminPassword, "0000"))
	require.NoError(t, s.Set(ctx, KeyAdminPassword, "secret"))

	var pwd string
	found, err := s.Get(ctx, KeyAdminPassword, &pwd)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "secret", pwd)
}

func TestRemove(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyAccessCode, "1234"))
	require.NoError(t, s.Remove(ctx, KeyAccessCode))

	var code string
	found, err := s.Get(ctx, KeyAccessCode, &code)
	require.NoError(t, err)
	assert.False(t, found)

	// Removing an absent key is not an error.
	require.NoError(t, s.Remove(ctx, KeyAccessCode))
}

func TestQuotaExceeded(t *testing.T) {
	s := newStore(t, WithMaxBytes(64))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyEmployees, []string{"Ann"}))

	big := strings.Repeat("x", 128)
	err := s.Set(ctx, KeyTasks, []string{big})
	require.ErrorIs(t, err, ErrCapacityExceeded)

	// The failed write must not have landed.
	var out []string
	found, err := s.Get(ctx, KeyTasks, &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestQuotaCountsReplacedValueOnce(t *testing.T) {
	s := newStore(t, WithMaxBytes(128))
	ctx := context.Background()

	value := strings.Repeat("a", 80)
	require.NoError(t, s.Set(ctx, KeyTasks, value))

	// Replacing the same key with a similar-size value stays within quota
	// because the old value is released.
	replacement := strings.Repeat("b", 80)
	require.NoError(t, s.Set(ctx, KeyTasks, replacement))

	var out string
	found, err := s.Get(ctx, KeyTasks, &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, replacement, out)
}
