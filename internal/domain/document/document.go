package document

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Well-known metadata keys.
const (
	// SourceKey identifies the original location of the content (file, URL, record).
	SourceKey = "source"
	// PartitionKey tags the logical partition the document was indexed under.
	PartitionKey = "data_source"
)

// Document is a retrieved unit of content (immutable value object).
// Metadata values are primitives: string, bool, integers or floats.
type Document struct {
	content  string
	metadata map[string]any
}

// New creates a Document. The metadata map is copied.
func New(content string, metadata map[string]any) Document {
	return Document{content: content, metadata: maps.Clone(metadata)}
}

// Content returns the document text body.
func (d Document) Content() string { return d.content }

// Metadata returns a copy of the document metadata.
func (d Document) Metadata() map[string]any { return maps.Clone(d.metadata) }

// Get returns a single metadata value.
func (d Document) Get(key string) (any, bool) {
	v, ok := d.metadata[key]
	return v, ok
}

// Source returns the original-location identifier, if present.
func (d Document) Source() string { return d.stringValue(SourceKey) }

// Partition returns the partition tag, if present.
func (d Document) Partition() string { return d.stringValue(PartitionKey) }

func (d Document) stringValue(key string) string {
	v, ok := d.metadata[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Key returns the structural identity of the document: content plus metadata
// sorted by key, every value tagged with its kind. Two documents are duplicates
// iff their keys are equal.
func (d Document) Key() string {
	var b strings.Builder
	b.Grow(len(d.content) + 16*len(d.metadata) + 16)

	writeField(&b, d.content)
	for _, k := range slices.Sorted(maps.Keys(d.metadata)) {
		writeField(&b, k)
		writeField(&b, encodeValue(d.metadata[k]))
	}
	return b.String()
}

// writeField writes a length-prefixed field so concatenations stay unambiguous.
func writeField(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteByte(':')
	b.WriteString(s)
}

func encodeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "n"
	case string:
		return "s" + val
	case bool:
		return "b" + strconv.FormatBool(val)
	case int:
		return "i" + strconv.FormatInt(int64(val), 10)
	case int32:
		return "i" + strconv.FormatInt(int64(val), 10)
	case int64:
		return "i" + strconv.FormatInt(val, 10)
	case uint64:
		return "u" + strconv.FormatUint(val, 10)
	case float32:
		return "f" + strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return "f" + strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprintf("x%T:%v", val, val)
	}
}
