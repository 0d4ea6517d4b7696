package attr

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoerce(t *testing.T) {
	t.Run("Scalars pass through", func(t *testing.T) {
		assert.Equal(t, "hi", Coerce("hi").Any())
		assert.Equal(t, int64(7), Coerce(7).Any())
		assert.Equal(t, int64(7), Coerce(uint16(7)).Any())
		assert.Equal(t, 2.5, Coerce(2.5).Any())
		assert.Equal(t, true, Coerce(true).Any())
	})

	t.Run("Unsupported types stringify", func(t *testing.T) {
		assert.Equal(t, KindString, Coerce(time.Second).Kind())
		assert.Equal(t, "1s", Coerce(time.Second).String())
		assert.Equal(t, "boom", Coerce(errors.New("boom")).Any())
		assert.Equal(t, KindString, Coerce([]int{1, 2}).Kind())
		assert.Equal(t, "", Coerce(nil).String())
	})
}

func TestMarshalJSON(t *testing.T) {
	tests := []struct {
		val  Value
		want string
	}{
		{String(`say "hi"`), `"say \"hi\""`},
		{Int(-3), `-3`},
		{Float(0.5), `0.5`},
		{Bool(true), `true`},
	}
	for _, tt := range tests {
		got, err := tt.val.MarshalJSON()
		assert.NoError(t, err)
		assert.Equal(t, tt.want, string(got))
	}
}

func TestMerge(t *testing.T) {
	base := Map{"a": Int(1), "b": String("x")}
	merged := base.Merge(Map{"a": Int(2), "c": Bool(true)})

	assert.Equal(t, int64(2), merged["a"].Any(), "overlay key wins")
	assert.Equal(t, "x", merged["b"].Any())
	assert.Equal(t, true, merged["c"].Any())

	// Original untouched
	assert.Equal(t, int64(1), base["a"].Any())
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))
	assert.Nil(t, From(map[string]interface{}{}))

	m := From(map[string]interface{}{"n": 3, "s": "v"})
	assert.Equal(t, int64(3), m["n"].Any())
	assert.Equal(t, "v", m["s"].Any())
}
