package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletedChecklistCount(t *testing.T) {
	task := Task{Checklist: []ChecklistItem{
		{ID: "a", Completed: true},
		{ID: "b", Completed: false},
		{ID: "c", Completed: true},
	}}
	assert.Equal(t, 2, task.CompletedChecklistCount())
	assert.Equal(t, 0, Task{}.CompletedChecklistCount())
}

func TestEndOfDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	in := time.Date(2026, time.March, 5, 9, 30, 0, 0, loc)
	got := time.UnixMilli(EndOfDay(in)).In(loc)

	assert.Equal(t, 5, got.Day())
	assert.Equal(t, 23, got.Hour())
	assert.Equal(t, 59, got.Minute())
	assert.Equal(t, 59, got.Second())
}

func TestStripPhotosLeavesOriginalIntact(t *testing.T) {
	tasks := []Task{{
		ID:        "t1",
		Photos:    []string{"a", "b"},
		Checklist: []ChecklistItem{{ID: "c", Completed: true}},
	}}

	stripped := StripPhotos(tasks)

	require.Len(t, stripped, 1)
	assert.Empty(t, stripped[0].Photos)
	assert.Equal(t, tasks[0].Checklist, stripped[0].Checklist)
	assert.Equal(t, []string{"a", "b"}, tasks[0].Photos)
}

func TestTaskWireFormat(t *testing.T) {
	task := Task{
		ID: "t1", AssigneeName: "Ann", AreaName: "Lobby",
		Status: StatusCompleted, CreatedAt: 1000, CompletedAt: 2000,
	}

	raw, err := json.Marshal(task)
	require.NoError(t, err)

	// Field names are the remote document's wire format.
	assert.Contains(t, string(raw), `"assigneeName":"Ann"`)
	assert.Contains(t, string(raw), `"areaName":"Lobby"`)
	assert.Contains(t, string(raw), `"createdAt":1000`)
	assert.Contains(t, string(raw), `"completedAt":2000`)

	// Unset optional timestamps stay off the wire.
	raw, err = json.Marshal(Task{ID: "t2"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "completedAt")
	assert.NotContains(t, string(raw), "dueDate")
}
