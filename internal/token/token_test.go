package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/crewcheck/internal/model"
)

func TestRoundTripRemoteConfig(t *testing.T) {
	cfg := model.RemoteConfig{
		StoreID:   "bin-42",
		APIKey:    "$2a$10$secretsecret",
		StoreName: "Night Crew",
	}

	tok, err := Encode(cfg)
	require.NoError(t, err)

	// URL-safe and clipboard-safe: no padding, no characters outside the
	// base64url alphabet.
	assert.NotContains(t, tok, "=")
	assert.NotContains(t, tok, "+")
	assert.NotContains(t, tok, "/")

	got := DecodeRemoteConfig(tok)
	require.NotNil(t, got)
	assert.Equal(t, cfg, *got)
}

func TestRoundTripSystemData(t *testing.T) {
	data := model.SystemData{
		Tasks: []model.Task{
			{
				ID:           "t1",
				AssigneeName: "Ann",
				AreaName:     "Kitchen",
				Checklist: []model.ChecklistItem{
					{ID: "c1", Text: "Degrease hood", Completed: true},
				},
				Status:    model.StatusPending,
				Photos:    []string{"https://img.example/a.jpg"},
				CreatedAt: 1700000000000,
			},
		},
		Employees:     []string{"Ann"},
		Announcements: []model.Announcement{{ID: "a1", Content: "Hi", CreatedAt: 1}},
		AdminPassword: "0000",
		UpdatedAt:     1700000002000,
	}

	tok, err := Encode(data)
	require.NoError(t, err)

	var got model.SystemData
	require.NoError(t, Decode(tok, &got))
	assert.Equal(t, data, got)
}

func TestDecodeGarbage(t *testing.T) {
	cases := []string{
		"",
		"not a token!!!",
		"////",
		strings.Repeat("A", 3),                // valid base64, invalid JSON
		"eyJicm9rZW4iOiB0cnVl",                // truncated JSON object
		string([]byte{0xff, 0xfe, 0x00, 'a'}), // binary junk
	}

	for _, tc := range cases {
		var out map[string]any
		err := Decode(tc, &out)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", tc)
	}
}

func TestDecodeRemoteConfigRejectsWrongShape(t *testing.T) {
	// Well-formed token, but not a usable config.
	tok, err := Encode(map[string]string{"hello": "world"})
	require.NoError(t, err)
	assert.Nil(t, DecodeRemoteConfig(tok))

	assert.Nil(t, DecodeRemoteConfig("complete garbage"))
}

func TestDecodeAssignmentRequiresTag(t *testing.T) {
	tagged, err := Encode(model.AssignmentData{
		Tasks:     []model.Task{{ID: "t1"}},
		Employees: []string{"Ann"},
		Type:      model.AssignmentType,
	})
	require.NoError(t, err)
	require.NotNil(t, DecodeAssignment(tagged))

	untagged, err := Encode(model.AssignmentData{Tasks: []model.Task{{ID: "t1"}}})
	require.NoError(t, err)
	assert.Nil(t, DecodeAssignment(untagged))
}

func TestDecodeSystemDataRejectsEmptyPayload(t *testing.T) {
	tok, err := Encode(struct{}{})
	require.NoError(t, err)
	assert.Nil(t, DecodeSystemData(tok))
}
