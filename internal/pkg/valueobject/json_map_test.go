package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMap_Scan(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  JSONMap
	}{
		{name: "null", value: nil, want: JSONMap{}},
		{name: "empty text", value: "", want: JSONMap{}},
		{name: "json null", value: "null", want: JSONMap{}},
		{name: "text", value: `{"factorKey":"ab"}`, want: JSONMap{"factorKey": "ab"}},
		{name: "bytes", value: []byte(`{"n":1}`), want: JSONMap{"n": float64(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got JSONMap
			require.NoError(t, got.Scan(tt.value))
			assert.Equal(t, tt.want, got)
		})
	}

	var got JSONMap
	assert.ErrorIs(t, got.Scan(42), ErrScanValueNotBytes)
	assert.Error(t, got.Scan("{not json"))
}

func TestJSONMap_Value(t *testing.T) {
	v, err := JSONMap{"factorKey": "ab"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"factorKey":"ab"}`, v)

	v, err = JSONMap(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestJSONMap_Merge(t *testing.T) {
	base := JSONMap{"factorKey": "old", "label": "phone"}
	merged := base.Merge(JSONMap{"factorKey": "new", "extra": true})

	assert.Equal(t, JSONMap{"factorKey": "new", "label": "phone", "extra": true}, merged)
	assert.Equal(t, "old", base.GetString("factorKey"), "receiver is untouched")
	assert.True(t, merged.Has("extra"))
	assert.Empty(t, merged.GetString("extra"))

	assert.Equal(t, JSONMap{"a": 1}, JSONMap(nil).Merge(JSONMap{"a": 1}))
}
