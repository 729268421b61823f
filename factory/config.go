/*
Package factory converts documents into engine values.

PURPOSE:
  Configuration layers and evaluation inputs arrive as JSON or YAML
  documents (admin UI, files on disk, the database). The factory turns them
  into generic.Layer and engine.Input values so the engine itself never
  parses anything.

LAYER DOCUMENTS:
  Nested objects become dotted paths, numbers become scalars and arrays of
  numbers become ladders. Flat dotted keys are accepted too, so both
  spellings below produce the same layer:

    {"mobile": {"soglie": {"C1": [70, 105, 135, 165]}}}
    {"mobile.soglie.C1": [70, 105, 135, 165]}

  Numbers keep their exact decimal text; "1.1" is never routed through
  float64. Quoted numbers ("1.1") are accepted for spreadsheet exports.

USAGE:
  layer, err := factory.ParseLayer(generic.LayerOrg, data, factory.FormatYAML)
  snap := generic.NewSnapshot(factory.DefaultLayer(), system, layer)

SEE ALSO:
  - generic/snapshot.go: Layer and Snapshot
  - factory/input.go: Evaluation input documents
*/
package factory

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/incentive-engine/generic"
)

// =============================================================================
// FORMATS
// =============================================================================

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Anything that is
// not .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// =============================================================================
// LAYER DOCUMENTS
// =============================================================================

// ParseLayer reads a layer document.
func ParseLayer(name generic.LayerName, data []byte, format Format) (generic.Layer, error) {
	tree, err := decodeTree(data, format)
	if err != nil {
		return generic.Layer{}, err
	}
	layer := generic.NewLayer(name)
	if tree == nil {
		return layer, nil
	}
	root, ok := tree.(map[string]any)
	if !ok {
		return generic.Layer{}, fmt.Errorf("%w: layer document must be an object", generic.ErrInvalidInput)
	}
	if err := flatten(layer, "", root); err != nil {
		return generic.Layer{}, err
	}
	return layer, nil
}

// LayerDocument renders a layer as a flat path -> number document that
// ParseLayer reads back unchanged.
func LayerDocument(l generic.Layer) map[string]any {
	doc := make(map[string]any, len(l.Values))
	for _, p := range l.Paths() {
		doc[p] = documentValue(l.Values[p])
	}
	return doc
}

// MarshalLayer encodes a layer as a JSON document.
func MarshalLayer(l generic.Layer) ([]byte, error) {
	return json.Marshal(LayerDocument(l))
}

// ValueDocument renders one value as a number or an array of numbers.
func ValueDocument(v generic.Value) any {
	return documentValue(v)
}

func documentValue(v generic.Value) any {
	if !v.IsLadder {
		return json.Number(v.Scalar.String())
	}
	out := make([]json.Number, len(v.Ladder))
	for i, d := range v.Ladder {
		out[i] = json.Number(d.String())
	}
	return out
}

func flatten(layer generic.Layer, prefix string, node map[string]any) error {
	keys := make([]string, 0, len(node))
	for k := range node {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("%w: empty key below %q", generic.ErrInvalidInput, prefix)
		}
		path := k
		if prefix != "" {
			path = generic.Path(prefix, k)
		}

		switch v := node[k].(type) {
		case map[string]any:
			if err := flatten(layer, path, v); err != nil {
				return err
			}
		case []any:
			ladder := make([]decimal.Decimal, len(v))
			for i, item := range v {
				d, err := number(path, item)
				if err != nil {
					return err
				}
				ladder[i] = d
			}
			layer.SetLadder(path, ladder...)
		default:
			d, err := number(path, v)
			if err != nil {
				return err
			}
			layer.SetScalar(path, d)
		}
	}
	return nil
}

func number(path string, v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case json.Number:
		return parseNumber(path, n.String())
	case string:
		return parseNumber(path, strings.TrimSpace(n))
	default:
		return decimal.Zero, fmt.Errorf("%w: %s must be a number or a list of numbers, got %T", generic.ErrInvalidInput, path, v)
	}
}

func parseNumber(path, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s has non-numeric value %q", generic.ErrInvalidInput, path, s)
	}
	return d, nil
}

// =============================================================================
// DECODING
// =============================================================================

// decodeTree decodes a document into maps, slices and exact numbers.
func decodeTree(data []byte, format Format) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	switch format {
	case FormatYAML:
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: yaml: %v", generic.ErrInvalidInput, err)
		}
		if len(doc.Content) == 0 {
			return nil, nil
		}
		return yamlTree(doc.Content[0])
	case FormatJSON, "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var tree any
		if err := dec.Decode(&tree); err != nil {
			return nil, fmt.Errorf("%w: json: %v", generic.ErrInvalidInput, err)
		}
		return tree, nil
	default:
		return nil, fmt.Errorf("%w: unknown document format %q", generic.ErrInvalidInput, format)
	}
}

// yamlTree walks a YAML node keeping numeric scalars as decimals parsed
// from their source text.
func yamlTree(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlTree(n.Content[0])
	case yaml.AliasNode:
		return yamlTree(n.Alias)
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := yamlTree(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[n.Content[i].Value] = v
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, len(n.Content))
		for i, c := range n.Content {
			v, err := yamlTree(c)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		switch n.Tag {
		case "!!int", "!!float":
			d, err := decimal.NewFromString(n.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %q is not a decimal", generic.ErrInvalidInput, n.Line, n.Value)
			}
			return d, nil
		case "!!null":
			return nil, fmt.Errorf("%w: line %d: null value", generic.ErrInvalidInput, n.Line)
		default:
			return n.Value, nil
		}
	}
}
