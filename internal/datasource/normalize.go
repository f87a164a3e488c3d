// Package datasource turns the loosely shaped data sources callers hand to a
// list into a canonical ordered slice of items.
package datasource

import "reflect"

// Legacy blob layout: {"_dataBlob": {"s1": [...]}}. A single row whose "a"
// field is "ab" is the placeholder older producers emit for an empty list.
const (
	BlobField     = "_dataBlob"
	BlobSection   = "s1"
	SentinelField = "a"
	SentinelValue = "ab"
)

// Kind tags the shape a raw data source was recognized as.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindList
	KindBlob
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindBlob:
		return "blob"
	default:
		return "unrecognized"
	}
}

// List wraps an ordered sequence explicitly.
type List[T any] []T

// Blob is the typed form of the legacy wrapper. DataBlob maps section names to
// rows; only BlobSection is read.
type Blob struct {
	DataBlob map[string][]any `json:"_dataBlob" toml:"_dataBlob"`
}

// Marker lets typed rows take part in sentinel detection.
type Marker interface {
	LegacyMarker() string
}

// Raw is a data source after shape detection.
type Raw[T any] struct {
	Kind  Kind
	items []T
}

// Items returns the canonical items. Unrecognized sources yield an empty,
// non-nil slice.
func (r Raw[T]) Items() []T {
	if r.items == nil {
		return []T{}
	}
	return r.items
}

// Normalize returns the ordered items held by raw. It never panics; shapes it
// does not understand produce an empty slice.
func Normalize[T any](raw any) []T {
	return Classify[T](raw).Items()
}

// Classify resolves the shape of raw once.
func Classify[T any](raw any) Raw[T] {
	switch v := raw.(type) {
	case nil:
		return Raw[T]{Kind: KindUnrecognized}
	case []T:
		return Raw[T]{Kind: KindList, items: v}
	case List[T]:
		return Raw[T]{Kind: KindList, items: []T(v)}
	case []any:
		return Raw[T]{Kind: KindList, items: filter[T](v)}
	case Blob:
		return Raw[T]{Kind: KindBlob, items: blobRows[T](v.DataBlob[BlobSection])}
	case *Blob:
		if v == nil {
			return Raw[T]{Kind: KindUnrecognized}
		}
		return Raw[T]{Kind: KindBlob, items: blobRows[T](v.DataBlob[BlobSection])}
	case map[string]any:
		blob, ok := v[BlobField]
		if !ok || blob == nil {
			return Raw[T]{Kind: KindUnrecognized}
		}
		return Raw[T]{Kind: KindBlob, items: blobRows[T](section(blob))}
	}
	return classifySequence[T](raw)
}

// classifySequence handles slices and arrays whose element type is not T,
// such as a []string read as Normalize[any]. Elements are kept in order;
// an element that is not a T is skipped, the same rule []any follows.
func classifySequence[T any](raw any) Raw[T] {
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return Raw[T]{Kind: KindUnrecognized}
	}
	out := make([]T, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		if item, ok := rv.Index(i).Interface().(T); ok {
			out = append(out, item)
		}
	}
	return Raw[T]{Kind: KindList, items: out}
}

// section pulls the s1 rows out of a decoded blob value. Decoders disagree on
// whether nested tables arrive as map[string]any or as typed slices, so both
// are accepted.
func section(blob any) []any {
	var rows any
	switch b := blob.(type) {
	case map[string]any:
		rows = b[BlobSection]
	case map[string][]any:
		rows = b[BlobSection]
	default:
		return nil
	}

	switch r := rows.(type) {
	case []any:
		return r
	case []map[string]any:
		out := make([]any, len(r))
		for i, m := range r {
			out[i] = m
		}
		return out
	}
	return nil
}

func blobRows[T any](rows []any) []T {
	if len(rows) == 1 && isSentinel(rows[0]) {
		return nil
	}
	return filter[T](rows)
}

func isSentinel(row any) bool {
	switch r := row.(type) {
	case map[string]any:
		s, ok := r[SentinelField].(string)
		return ok && s == SentinelValue
	case map[string]string:
		return r[SentinelField] == SentinelValue
	case Marker:
		return r.LegacyMarker() == SentinelValue
	}
	return false
}

// filter keeps the elements of rows that are a T, in order.
func filter[T any](rows []any) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if item, ok := row.(T); ok {
			out = append(out, item)
		}
	}
	return out
}
