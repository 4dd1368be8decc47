package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(Null{}))
	assert.True(t, IsEmpty(String("")))
	assert.False(t, IsEmpty(String(" ")))
	assert.False(t, IsEmpty(Int(0)))
	assert.False(t, IsEmpty(Bool(false)))
	assert.False(t, IsEmpty(Real(0)))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Null{}, nil))
	assert.True(t, Equal(Int(2), Real(2)))
	assert.True(t, Equal(Real(2), Int(2)))
	assert.True(t, Equal(String("a"), String("a")))
	assert.False(t, Equal(String("1"), Int(1)))
	assert.False(t, Equal(Bool(true), Int(1)))
	assert.False(t, Equal(Null{}, String("")))
}

func TestFromAny(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		in   any
		want Value
	}{
		{nil, Null{}},
		{"x", String("x")},
		{[]byte("y"), String("y")},
		{int64(3), Int(3)},
		{3, Int(3)},
		{float64(4), Int(4)},
		{1.25, Real(1.25)},
		{true, Bool(true)},
		{ts, String("2025-03-10T12:00:00Z")},
	}
	for _, tt := range tests {
		got, err := FromAny(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := FromAny(struct{}{})
	assert.Error(t, err)
}

func TestAnyAndFormat(t *testing.T) {
	assert.Nil(t, Any(Null{}))
	assert.Equal(t, int64(5), Any(Int(5)))
	assert.Equal(t, "s", Any(String("s")))
	assert.Equal(t, true, Any(Bool(true)))
	assert.Equal(t, "1.5", Format(Real(1.5)))
	assert.Equal(t, "", Format(Null{}))
}

func TestRecordSetKeepsPosition(t *testing.T) {
	var r Record
	r.Set("a", Int(1))
	r.Set("b", Int(2))
	r.Set("a", Int(3))

	assert.Equal(t, []string{"a", "b"}, r.Names())
	v, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, Int(3), v)

	r.Set("c", nil)
	v, _ = r.Get("c")
	assert.Equal(t, Null{}, v)
}

func TestFromMapOrder(t *testing.T) {
	r, err := FromMap(map[string]any{"name": "Miata", "carId": "c1", "zz": 1}, "carId")
	require.NoError(t, err)
	assert.Equal(t, []string{"carId", "name", "zz"}, r.Names())
}
