package fs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/seoagent/pkg/core"
)

// Supported on-disk formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// errMissingSlug marks a record that decodes but cannot be addressed.
var errMissingSlug = errors.New("record has no slug")

// Codec defines how one article record is read from and written to a file.
type Codec interface {
	// Ext is the file extension of records, including the dot.
	Ext() string
	// Marshal converts the article to file bytes.
	Marshal(a core.Article) ([]byte, error)
	// Unmarshal parses file bytes. A record without a slug is rejected.
	Unmarshal(data []byte) (core.Article, error)
	// Rewrite applies the fields that differ between before and after onto the
	// original file bytes. Keys the article type does not know are kept as found.
	Rewrite(original []byte, before, after core.Article) ([]byte, error)
}

// CodecFor returns the codec for a format name. Empty means JSON.
func CodecFor(format string) (Codec, error) {
	switch format {
	case "", FormatJSON:
		return JSONCodec{}, nil
	case FormatYAML, "yml":
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported record format %q", format)
	}
}

// JSONCodec stores records as indented JSON, the canonical format.
type JSONCodec struct{}

func (JSONCodec) Ext() string { return ".json" }

func (JSONCodec) Marshal(a core.Article) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (JSONCodec) Unmarshal(data []byte) (core.Article, error) {
	var a core.Article
	dec := json.NewDecoder(bytes.NewReader(data))
	// Numbers inside schemaMarkup stay json.Number so rewrites keep their precision.
	dec.UseNumber()
	if err := dec.Decode(&a); err != nil {
		return core.Article{}, fmt.Errorf("invalid json: %w", err)
	}
	if a.Slug == "" {
		return core.Article{}, errMissingSlug
	}
	return a, nil
}

func (JSONCodec) Rewrite(original []byte, before, after core.Article) ([]byte, error) {
	fields, err := jsonFields(original)
	if err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	changed, err := changedFields(before, after)
	if err != nil {
		return nil, err
	}
	for _, ch := range changed {
		i := slices.IndexFunc(fields, func(f field) bool { return f.key == ch.key })
		if i < 0 {
			fields = append(fields, ch)
			continue
		}
		fields[i].value = ch.value
	}

	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			compact.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		compact.Write(key)
		compact.WriteByte(':')
		compact.Write(f.value)
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// field is one top-level key of a JSON record with its encoded value.
type field struct {
	key   string
	value json.RawMessage
}

// jsonFields splits a JSON object into its top-level fields in document order.
func jsonFields(data []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("record is not an object")
	}

	var fields []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		fields = append(fields, field{key: key, value: raw})
	}
	return fields, nil
}

// changedFields returns the encoded fields of after that differ from before,
// in the order the article type declares them.
func changedFields(before, after core.Article) ([]field, error) {
	prev, err := JSONCodec{}.Marshal(before)
	if err != nil {
		return nil, err
	}
	next, err := JSONCodec{}.Marshal(after)
	if err != nil {
		return nil, err
	}
	prevFields, err := jsonFields(prev)
	if err != nil {
		return nil, err
	}
	nextFields, err := jsonFields(next)
	if err != nil {
		return nil, err
	}

	old := make(map[string]json.RawMessage, len(prevFields))
	for _, f := range prevFields {
		old[f.key] = f.value
	}
	var changed []field
	for _, f := range nextFields {
		if !bytes.Equal(old[f.key], f.value) {
			changed = append(changed, f)
		}
	}
	return changed, nil
}

// YAMLCodec stores records as YAML documents with the same field names.
type YAMLCodec struct{}

func (YAMLCodec) Ext() string { return ".yaml" }

func (YAMLCodec) Marshal(a core.Article) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(a); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (YAMLCodec) Unmarshal(data []byte) (core.Article, error) {
	var a core.Article
	if err := yaml.Unmarshal(data, &a); err != nil {
		return core.Article{}, fmt.Errorf("invalid yaml: %w", err)
	}
	if a.Slug == "" {
		return core.Article{}, errMissingSlug
	}
	return a, nil
}

func (YAMLCodec) Rewrite(original []byte, before, after core.Article) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(original, &doc); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("record is not a mapping")
	}
	record := doc.Content[0]

	changed, err := changedFields(before, after)
	if err != nil {
		return nil, err
	}
	var next yaml.Node
	if err := next.Encode(after); err != nil {
		return nil, err
	}
	for _, ch := range changed {
		value := mappingValue(&next, ch.key)
		if value == nil {
			continue
		}
		if existing := mappingValue(record, ch.key); existing != nil {
			*existing = *value
			continue
		}
		record.Content = append(record.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: ch.key}, value)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// mappingValue returns the value node stored under key, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
