package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Path
	}{
		{"root", "", Path{}},
		{"single key", "turn", Path{Key("turn")}},
		{"nested", "player.hp", Path{Key("player"), Key("hp")}},
		{"index", "party.0.hp", Path{Key("party"), Index(0), Key("hp")}},
		{"multi digit index", "log.12", Path{Key("log"), Index(12)}},
		{"leading zero stays key", "codes.007", Path{Key("codes"), Key("007")}},
		{"negative is key", "x.-1", Path{Key("x"), Key("-1")}},
		{"mixed key", "e1", Path{Key("e1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String(), "String must round-trip")
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  ErrorCode
	}{
		{"double dot", "a..b", ErrCodeInvalidPath},
		{"leading dot", ".a", ErrCodeInvalidPath},
		{"trailing dot", "a.", ErrCodeInvalidPath},
		{"lone dot", ".", ErrCodeInvalidPath},
		{"wildcard", "party.*.hp", ErrCodeWildcardWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.code, CodeOf(err))
		})
	}
}

func TestParsePatternAllowsWildcard(t *testing.T) {
	p, err := ParsePattern("party.*.hp")
	require.NoError(t, err)
	assert.Equal(t, Path{Key("party"), Wildcard(), Key("hp")}, p)
	assert.True(t, p.IsPattern())

	_, err = ParsePattern("party..hp")
	assert.True(t, IsInvalidPath(err))
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"party.*.hp", "party.0.hp", true},
		{"party.*.hp", "party.1.hp", true},
		{"party.*.hp", "party.0.mp", false},
		{"party.*.hp", "party.0", false},
		{"party.*.hp", "party.0.hp.max", false},
		{"*", "turn", true},
		{"*.*", "a.b", true},
		{"turn", "turn", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"~"+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(MustParse(tt.pattern), MustParse(tt.path)))
		})
	}
}

func TestHasPrefix(t *testing.T) {
	p := MustParse("entities.e1.hp")

	assert.True(t, p.HasPrefix(MustParse("")))
	assert.True(t, p.HasPrefix(MustParse("entities")))
	assert.True(t, p.HasPrefix(MustParse("entities.e1.hp")))
	assert.False(t, p.HasPrefix(MustParse("entities.e2")))
	assert.False(t, p.HasPrefix(MustParse("entities.e1.hp.max")))
}

func TestSegmentKeyIndexEquivalence(t *testing.T) {
	// A hand-built Key("0") addresses the same place as a parsed Index(0).
	assert.True(t, Path{Key("a"), Key("0")}.Equal(MustParse("a.0")))
	assert.False(t, Path{Key("a"), Wildcard()}.Equal(MustParse("a.0")))
}

func TestChildDoesNotAlias(t *testing.T) {
	base := make(Path, 1, 4)
	base[0] = Key("a")

	x := base.Child(Key("x"))
	y := base.Child(Key("y"))

	assert.Equal(t, "a.x", x.String())
	assert.Equal(t, "a.y", y.String())
}

func TestParentAndLast(t *testing.T) {
	p := MustParse("a.b.c")
	assert.Equal(t, "a.b", p.Parent().String())
	assert.Equal(t, Key("c"), p.Last())
	assert.Equal(t, "", Path{}.Parent().String())
}
