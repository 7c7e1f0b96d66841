package seed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statetree/internal/tree"
)

var wantWorld = tree.Obj(
	tree.P("player", tree.Obj(
		tree.P("hp", tree.Int(100)),
		tree.P("speed", tree.Float(1.5)),
		tree.P("name", tree.String("knight")),
		tree.P("alive", tree.Bool(true)),
	)),
	tree.P("log", tree.Arr()),
	tree.P("target", tree.Null{}),
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json",
			file: "world.json",
			content: `{"player": {"hp": 100, "speed": 1.5, "name": "knight", "alive": true},
				"log": [], "target": null}`,
		},
		{
			name: "yaml",
			file: "world.yaml",
			content: `
player:
  hp: 100
  speed: 1.5
  name: knight
  alive: true
log: []
target: null
`,
		},
		{
			name:    "yml",
			file:    "world.yml",
			content: "player: {hp: 100, speed: 1.5, name: knight, alive: true}\nlog: []\ntarget: ~\n",
		},
		{
			name: "cue",
			file: "world.cue",
			content: `
player: {
	hp:    *100 | int
	speed: 1.5
	name:  "knight"
	alive: true
}
log:    []
target: null
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.True(t, tree.Equal(wantWorld, got), "got %#v", got)
		})
	}
}

func TestLoad_UnknownExtension(t *testing.T) {
	_, err := Load(writeFile(t, "world.toml", "a = 1"))
	require.Error(t, err)

	var seedErr *Error
	require.True(t, errors.As(err, &seedErr))
	assert.Equal(t, ErrCodeUnknownFormat, seedErr.Code)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	var seedErr *Error
	require.True(t, errors.As(err, &seedErr))
	assert.Equal(t, ErrCodeRead, seedErr.Code)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name     string
		format   Format
		data     string
		wantCode string
	}{
		{"bad json", FormatJSON, `{"a":`, ErrCodeDecode},
		{"bad yaml", FormatYAML, "a: [1, 2", ErrCodeDecode},
		{"bad cue syntax", FormatCUE, "a: {", ErrCodeDecode},
		{"cue not concrete", FormatCUE, "a: int", ErrCodeNotConcrete},
		{"unknown format", Format("toml"), "a = 1", ErrCodeUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode("input", tt.format, []byte(tt.data))
			require.Error(t, err)

			var seedErr *Error
			require.True(t, errors.As(err, &seedErr), "got %T", err)
			assert.Equal(t, tt.wantCode, seedErr.Code)
		})
	}
}

func TestDecode_CUEErrorHasPosition(t *testing.T) {
	_, err := Decode("world.cue", FormatCUE, []byte("a: int\n"))
	require.Error(t, err)

	var seedErr *Error
	require.True(t, errors.As(err, &seedErr))
	assert.True(t, seedErr.Pos.IsValid())
	assert.Contains(t, seedErr.Error(), "world.cue:1:")
}

func TestDecode_YAMLNestedArrays(t *testing.T) {
	got, err := Decode("x.yaml", FormatYAML, []byte("items:\n  - {id: 1}\n  - {id: 2}\n"))
	require.NoError(t, err)

	want := tree.Obj(tree.P("items", tree.Arr(
		tree.Obj(tree.P("id", tree.Int(1))),
		tree.Obj(tree.P("id", tree.Int(2))),
	)))
	assert.True(t, tree.Equal(want, got))
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		file string
		want Format
	}{
		{"a.json", FormatJSON},
		{"a.JSON", FormatJSON},
		{"a.yaml", FormatYAML},
		{"a.yml", FormatYAML},
		{"dir/a.cue", FormatCUE},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, err := FormatOf(tt.file)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
