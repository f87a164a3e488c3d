package datasource

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	A     string
	Title string
}

func (r row) LegacyMarker() string { return r.A }

func TestNormalize_SliceIdentity(t *testing.T) {
	in := []int{3, 1, 2, 2}
	out := Normalize[int](in)
	assert.Equal(t, in, out)

	// Same backing array, not a copy.
	require.Len(t, out, 4)
	out[0] = 99
	assert.Equal(t, 99, in[0])
}

func TestNormalize_AnySliceIdentity(t *testing.T) {
	in := []any{"x", 1, nil, map[string]any{"a": "ab"}}
	assert.Equal(t, in, Normalize[any](in))
}

func TestNormalize_ExplicitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Normalize[string](List[string]{"a", "b"}))
}

func TestNormalize_AnySliceFiltersToType(t *testing.T) {
	in := []any{"a", 1, "b", 2.5}
	assert.Equal(t, []string{"a", "b"}, Normalize[string](in))
}

func TestNormalize_TypedSequenceAsAny(t *testing.T) {
	assert.Equal(t, []any{"a", "b"}, Normalize[any]([]string{"a", "b"}))
	assert.Equal(t, []any{1, 2, 3}, Normalize[any]([3]int{1, 2, 3}))

	raw := Classify[any]([]int{1, 2})
	assert.Equal(t, KindList, raw.Kind)
	assert.Equal(t, []any{1, 2}, raw.Items())
}

func TestNormalize_SequenceOfOtherType(t *testing.T) {
	raw := Classify[int]([]string{"wrong type"})
	assert.Equal(t, KindList, raw.Kind)
	assert.NotNil(t, raw.Items())
	assert.Empty(t, raw.Items())

	assert.Equal(t, []int{1, 2}, Normalize[int]([]any{1, "x", 2}))
}

func TestNormalize_LegacyBlob(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want []any
	}{
		{
			name: "sentinel placeholder",
			raw:  map[string]any{BlobField: map[string]any{BlobSection: []any{map[string]any{"a": "ab"}}}},
			want: []any{},
		},
		{
			name: "section absent",
			raw:  map[string]any{BlobField: map[string]any{}},
			want: []any{},
		},
		{
			name: "blob not a table",
			raw:  map[string]any{BlobField: 7},
			want: []any{},
		},
		{
			name: "rows",
			raw:  map[string]any{BlobField: map[string]any{BlobSection: []any{"one", "two"}}},
			want: []any{"one", "two"},
		},
		{
			name: "sentinel value only counts alone",
			raw: map[string]any{BlobField: map[string]any{BlobSection: []any{
				map[string]any{"a": "ab"},
				map[string]any{"a": "ab"},
			}}},
			want: []any{map[string]any{"a": "ab"}, map[string]any{"a": "ab"}},
		},
		{
			name: "single row with other marker",
			raw:  map[string]any{BlobField: map[string]any{BlobSection: []any{map[string]any{"a": "zz"}}}},
			want: []any{map[string]any{"a": "zz"}},
		},
		{
			name: "typed map rows",
			raw:  map[string]any{BlobField: map[string]any{BlobSection: []map[string]any{{"a": "ab"}}}},
			want: []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize[any](tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, KindBlob, Classify[any](tt.raw).Kind)
		})
	}
}

func TestNormalize_TypedBlob(t *testing.T) {
	empty := Blob{DataBlob: map[string][]any{BlobSection: {row{A: "ab"}}}}
	assert.Empty(t, Normalize[row](empty))
	assert.Empty(t, Normalize[row](&empty))

	full := &Blob{DataBlob: map[string][]any{BlobSection: {row{Title: "first"}, row{Title: "second"}}}}
	got := Normalize[row](full)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Title)
	assert.Equal(t, "second", got[1].Title)

	var nilBlob *Blob
	assert.Empty(t, Normalize[row](nilBlob))
}

func TestNormalize_DecodedJSONBlob(t *testing.T) {
	var raw any
	require.NoError(t, json.Unmarshal([]byte(`{"_dataBlob":{"s1":[{"a":"ab"}]}}`), &raw))
	assert.Empty(t, Normalize[any](raw))

	require.NoError(t, json.Unmarshal([]byte(`{"_dataBlob":{"s1":[{"id":1},{"id":2}]}}`), &raw))
	assert.Len(t, Normalize[any](raw), 2)
}

func TestNormalize_Unrecognized(t *testing.T) {
	for _, raw := range []any{nil, 42, "text", map[string]any{}, struct{}{}} {
		got := Normalize[int](raw)
		assert.NotNil(t, got)
		assert.Empty(t, got, "raw=%#v", raw)
	}
	assert.Equal(t, KindUnrecognized, Classify[int](map[string]any{}).Kind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "list", KindList.String())
	assert.Equal(t, "blob", KindBlob.String())
	assert.Equal(t, "unrecognized", KindUnrecognized.String())
}
