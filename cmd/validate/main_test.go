package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGame(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const cleanYAML = `
defaultLocationId: hut
locations:
  - id: hut
    name: Hut
    items: [cup]
items:
  - id: cup
    name: Cup
    state: world
    interactive: grabbable
quests:
  - id: tea
    title: Tea
    order: 0
    steps:
      - id: get_cup
        objectiveType: collectEntities
        objectiveParams:
          entityIds: [cup]
`

func TestValidateFile_Clean(t *testing.T) {
	v := &GameValidator{}
	assert.NoError(t, v.validateFile(writeGame(t, "tea_time.yaml", cleanYAML)))
	assert.Empty(t, v.warnings)
}

func TestValidateFile_BundledGame(t *testing.T) {
	v := &GameValidator{}
	assert.NoError(t, v.validateFile("../../internal/storage/data/lyre_grotto.json"))
}

func TestValidateFile_Filename(t *testing.T) {
	v := &GameValidator{}
	err := v.validateFile(writeGame(t, "Tea-Time.json", `{"locations":[]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snake_case")

	err = v.validateFile(writeGame(t, "tea.txt", `{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extension")

	assert.Error(t, v.validateFile(filepath.Join(t.TempDir(), "missing.json")))
}

func TestValidateFile_Errors(t *testing.T) {
	v := &GameValidator{}
	err := v.validateFile(writeGame(t, "broken.json", `{
		"defaultLocationId": "attic",
		"locations": [{"id": "hut", "name": "Hut", "items": ["kettle"]}]
	}`))
	require.Error(t, err)
	assert.NotEmpty(t, v.errors)
	for _, e := range v.errors {
		assert.Contains(t, e, "  - error: ")
	}
}

func TestValidateFile_IDWarnings(t *testing.T) {
	v := &GameValidator{}
	err := v.validateFile(writeGame(t, "tea.json", `{
		"locations": [{"id": "Hut", "name": "Hut", "items": ["Big-Cup"]}],
		"items": [{"id": "Big-Cup", "name": "Cup", "state": "world"}]
	}`))
	require.NoError(t, err)
	assert.Contains(t, v.warnings, "  - location ID 'Hut' should be lowercase snake_case")
	assert.Contains(t, v.warnings, "  - entity ID 'Big-Cup' should be lowercase snake_case")
}

func TestIsValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"a", true},
		{"crystal_1", true},
		{"portal_to_cave", true},
		{"Crystal", false},
		{"crystal-1", false},
		{"_crystal", false},
		{"crystal_", false},
		{"1crystal", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, isValidID(tt.id))
		})
	}
	assert.True(t, isValidGameFilename("x.draft_game"))
}
