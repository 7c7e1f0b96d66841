package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/tree"
)

func entry(p string, from, to tree.Value) Entry {
	return Entry{Path: path.MustParse(p), From: from, To: to}
}

func assertEntries(t *testing.T, want []Entry, got Diff) {
	t.Helper()
	require.Len(t, got.Entries, len(want), "entries: %v", got.Paths())
	for i := range want {
		assert.Equal(t, want[i].Path.String(), got.Entries[i].Path.String(), "entry %d path", i)
		assert.True(t, tree.Equal(want[i].From, got.Entries[i].From), "entry %d from: %v", i, got.Entries[i].From)
		assert.True(t, tree.Equal(want[i].To, got.Entries[i].To), "entry %d to: %v", i, got.Entries[i].To)
	}
}

func TestComputeScalarChange(t *testing.T) {
	before := tree.Obj(tree.P("player", tree.Obj(tree.P("hp", tree.Int(100)))))
	after := tree.Obj(tree.P("player", tree.Obj(tree.P("hp", tree.Int(80)))))

	assertEntries(t, []Entry{entry("player.hp", tree.Int(100), tree.Int(80))}, Compute(before, after))
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		before tree.Value
		after  tree.Value
		want   []Entry
	}{
		{
			name:   "added key",
			before: tree.Obj(),
			after:  tree.Obj(tree.P("a", tree.Int(1))),
			want:   []Entry{entry("a", nil, tree.Int(1))},
		},
		{
			name:   "removed key",
			before: tree.Obj(tree.P("a", tree.Int(1))),
			after:  tree.Obj(),
			want:   []Entry{entry("a", tree.Int(1), nil)},
		},
		{
			name:   "null is not absent",
			before: tree.Obj(tree.P("a", tree.Null{})),
			after:  tree.Obj(),
			want:   []Entry{entry("a", tree.Null{}, nil)},
		},
		{
			name:   "keys in sorted order",
			before: tree.Obj(tree.P("z", tree.Int(1)), tree.P("b", tree.Int(1))),
			after:  tree.Obj(tree.P("z", tree.Int(2)), tree.P("a", tree.Int(1))),
			want: []Entry{
				entry("a", nil, tree.Int(1)),
				entry("b", tree.Int(1), nil),
				entry("z", tree.Int(1), tree.Int(2)),
			},
		},
		{
			name:   "array grows",
			before: tree.Obj(tree.P("log", tree.Arr(tree.String("a")))),
			after:  tree.Obj(tree.P("log", tree.Arr(tree.String("a"), tree.String("b")))),
			want: []Entry{
				entry("log.1", nil, tree.String("b")),
				entry("log.length", tree.Int(1), tree.Int(2)),
			},
		},
		{
			name:   "array shrinks",
			before: tree.Arr(tree.Int(1), tree.Int(2), tree.Int(3)),
			after:  tree.Arr(tree.Int(9)),
			want: []Entry{
				entry("0", tree.Int(1), tree.Int(9)),
				entry("1", tree.Int(2), nil),
				entry("2", tree.Int(3), nil),
				entry("length", tree.Int(3), tree.Int(1)),
			},
		},
		{
			name:   "kind change is one leaf",
			before: tree.Obj(tree.P("a", tree.Arr(tree.Int(1)))),
			after:  tree.Obj(tree.P("a", tree.Obj(tree.P("0", tree.Int(1))))),
			want:   []Entry{entry("a", tree.Arr(tree.Int(1)), tree.Obj(tree.P("0", tree.Int(1))))},
		},
		{
			name:   "int to equal float is no change",
			before: tree.Obj(tree.P("x", tree.Int(1))),
			after:  tree.Obj(tree.P("x", tree.Float(1))),
			want:   nil,
		},
		{
			name:   "numbers inside arrays compare by value",
			before: tree.Obj(tree.P("xs", tree.Arr(tree.Float(2), tree.Int(3)))),
			after:  tree.Obj(tree.P("xs", tree.Arr(tree.Int(2), tree.Float(3.5)))),
			want:   []Entry{entry("xs.1", tree.Int(3), tree.Float(3.5))},
		},
		{
			name:   "int to fractional float is a change",
			before: tree.Obj(tree.P("x", tree.Int(1))),
			after:  tree.Obj(tree.P("x", tree.Float(1.5))),
			want:   []Entry{entry("x", tree.Int(1), tree.Float(1.5))},
		},
		{
			name:   "root scalar",
			before: tree.Int(1),
			after:  tree.String("1"),
			want:   []Entry{{Path: path.Path{}, From: tree.Int(1), To: tree.String("1")}},
		},
		{
			name:   "equal by value, distinct by identity",
			before: tree.Obj(tree.P("a", tree.Arr(tree.Obj(tree.P("b", tree.Int(1)))))),
			after:  tree.Obj(tree.P("a", tree.Arr(tree.Obj(tree.P("b", tree.Int(1)))))),
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertEntries(t, tt.want, Compute(tt.before, tt.after))
		})
	}
}

func TestComputePartyPaths(t *testing.T) {
	before := tree.Obj(tree.P("party", tree.Arr(
		tree.Obj(tree.P("hp", tree.Int(10))),
		tree.Obj(tree.P("hp", tree.Int(20))),
	)))
	next, err := path.Set(before, path.MustParse("party.0.hp"), tree.Int(5))
	require.NoError(t, err)
	next, err = path.Set(next, path.MustParse("party.1.hp"), tree.Int(15))
	require.NoError(t, err)

	d := Compute(before, next)
	assert.Equal(t, []string{"party.0.hp", "party.1.hp"}, d.Paths())
}

func TestTouches(t *testing.T) {
	d := Diff{Entries: []Entry{entry("entities.e1.hp", tree.Int(1), tree.Int(2))}}

	assert.True(t, d.Touches(path.MustParse("entities")))
	assert.True(t, d.Touches(path.MustParse("entities.e1")))
	assert.True(t, d.Touches(path.MustParse("entities.e1.hp.max")), "entry above p")
	assert.True(t, d.Touches(path.MustParse("")))
	assert.False(t, d.Touches(path.MustParse("entities.e2")))
	assert.False(t, Diff{}.Touches(path.MustParse("")))
}

func TestIsLength(t *testing.T) {
	assert.True(t, entry("log.length", tree.Int(1), tree.Int(2)).IsLength())
	assert.False(t, entry("log.length", tree.String("x"), tree.Int(2)).IsLength())
	assert.False(t, entry("log.1", tree.Int(1), tree.Int(2)).IsLength())
	assert.False(t, Entry{}.IsLength())
}

func TestEntryString(t *testing.T) {
	assert.Equal(t, `player.hp: 100 -> 80`, entry("player.hp", tree.Int(100), tree.Int(80)).String())
	assert.Equal(t, `a: <absent> -> "x"`, entry("a", nil, tree.String("x")).String())
	assert.Equal(t, `<root>: null -> <absent>`, Entry{From: tree.Null{}}.String())
}
