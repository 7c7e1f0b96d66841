package tree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"both absent", nil, nil, true},
		{"absent vs null", nil, Null{}, false},
		{"null", Null{}, Null{}, true},
		{"strings", String("a"), String("a"), true},
		{"different strings", String("a"), String("b"), false},
		{"int equals integral float", Int(1), Float(1), true},
		{"int vs fractional float", Int(1), Float(1.5), false},
		{"negative zero", Int(0), Float(math.Copysign(0, -1)), true},
		{"float beyond int64", Int(math.MaxInt64), Float(math.MaxInt64), false},
		{"number vs string", Int(1), String("1"), false},
		{"nested numbers", Obj(P("a", Arr(Int(2)))), Obj(P("a", Arr(Float(2)))), true},
		{"arrays", Arr(Int(1), Int(2)), Arr(Int(1), Int(2)), true},
		{"array order", Arr(Int(1), Int(2)), Arr(Int(2), Int(1)), false},
		{"array length", Arr(Int(1)), Arr(Int(1), Int(1)), false},
		{"objects", Obj(P("a", Int(1))), Obj(P("a", Int(1))), true},
		{"object extra key", Obj(P("a", Int(1))), Obj(P("a", Int(1)), P("b", Int(2))), false},
		{"object vs array", Obj(), Arr(), false},
		{"nested", Obj(P("a", Arr(Obj(P("b", Null{}))))), Obj(P("a", Arr(Obj(P("b", Null{}))))), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a), "Equal must be symmetric")
		})
	}
}

func TestSame(t *testing.T) {
	obj := Obj(P("a", Int(1)))
	arr := Arr(Int(1), Int(2))

	assert.True(t, Same(obj, obj))
	assert.False(t, Same(obj, Obj(P("a", Int(1)))), "equal but distinct maps")
	assert.True(t, Same(arr, arr))
	assert.False(t, Same(arr, Arr(Int(1), Int(2))))
	assert.False(t, Same(arr, arr[:1]), "shorter view of the same backing array")
	assert.True(t, Same(Int(3), Int(3)))
	assert.True(t, Same(Int(3), Float(3)), "equal numbers are the same scalar")
	assert.False(t, Same(Int(3), Float(3.5)))
	assert.True(t, Same(nil, nil))
}

func TestCloneSharesNothing(t *testing.T) {
	orig := Obj(P("party", Arr(Obj(P("hp", Int(10))))))
	cp := Clone(orig).(Object)

	assert.True(t, Equal(orig, cp))
	assert.False(t, Same(orig, cp))
	assert.False(t, Same(orig["party"], cp["party"]))

	cp["party"].(Array)[0].(Object)["hp"] = Int(0)
	assert.Equal(t, Int(10), orig["party"].(Array)[0].(Object)["hp"])
}
