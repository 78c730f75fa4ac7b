package driver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"whileplus/interpreter-go/pkg/ast"
	"whileplus/interpreter-go/pkg/runtime"
)

// Program is a statement together with the store it starts from.
type Program struct {
	Path  string
	Store runtime.Store
	Body  ast.Statement
}

// LoadProgram reads a program document from disk. JSON and YAML are accepted,
// selected by extension.
func LoadProgram(path string) (*Program, error) {
	if path == "" {
		return nil, fmt.Errorf("program: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("program: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("program: read %s: %w", abs, err)
	}
	prog, err := ParseProgram(data, formatOf(abs))
	if err != nil {
		return nil, fmt.Errorf("program: %s: %w", abs, err)
	}
	prog.Path = abs
	return prog, nil
}

// DocumentFormat names the encoding of a program document.
type DocumentFormat string

const (
	FormatJSON DocumentFormat = "json"
	FormatYAML DocumentFormat = "yaml"
)

func formatOf(path string) DocumentFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// ParseProgram decodes a program document. The document is either
// {store: {...}, program: <statement>} or a bare statement.
func ParseProgram(data []byte, format DocumentFormat) (*Program, error) {
	raw, err := decodeDocument(data, format)
	if err != nil {
		return nil, err
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a mapping at the document root, got %T", raw)
	}
	body, hasBody := doc["program"]
	if !hasBody {
		stmt, err := ast.DecodeStatement(doc)
		if err != nil {
			return nil, err
		}
		return &Program{Store: runtime.NewStore(nil), Body: stmt}, nil
	}
	for key := range doc {
		if key != "program" && key != "store" {
			return nil, fmt.Errorf("unknown top-level field %q", key)
		}
	}
	store, err := DecodeStore(doc["store"])
	if err != nil {
		return nil, err
	}
	stmt, err := ast.DecodeStatement(body)
	if err != nil {
		return nil, err
	}
	return &Program{Store: store, Body: stmt}, nil
}

func decodeDocument(data []byte, format DocumentFormat) (any, error) {
	var raw any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
	if raw == nil {
		return nil, errors.New("document is empty")
	}
	return raw, nil
}

// DecodeStore reads a mapping of variable names to tagged values. A missing
// store decodes as empty.
func DecodeStore(raw any) (runtime.Store, error) {
	if raw == nil {
		return runtime.NewStore(nil), nil
	}
	entries, ok := raw.(map[string]any)
	if !ok {
		return runtime.Store{}, fmt.Errorf("store: expected a mapping, got %T", raw)
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	values := make(map[string]runtime.Value, len(entries))
	for _, name := range names {
		val, err := DecodeValue(entries[name])
		if err != nil {
			return runtime.Store{}, fmt.Errorf("store.%s: %w", name, err)
		}
		values[name] = val
	}
	return runtime.NewStore(values), nil
}

// DecodeValue reads a tagged value such as {int: 3} or {bool: true}.
func DecodeValue(raw any) (runtime.Value, error) {
	lit, err := ast.DecodeLiteral(raw)
	if err != nil {
		return nil, err
	}
	switch v := lit.(type) {
	case *ast.IntegerLiteral:
		return runtime.Int(v.Value), nil
	case *ast.BooleanLiteral:
		return runtime.Bool(v.Value), nil
	default:
		return nil, fmt.Errorf("unsupported literal %s", lit.NodeType())
	}
}

// EncodeValue is the inverse of DecodeValue.
func EncodeValue(v runtime.Value) map[string]any {
	switch val := v.(type) {
	case runtime.IntValue:
		return map[string]any{"int": val.Val}
	case runtime.BoolValue:
		return map[string]any{"bool": val.Val}
	default:
		return nil
	}
}

// ReadProgram parses a program document from r.
func ReadProgram(r io.Reader, format DocumentFormat) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("program: read: %w", err)
	}
	prog, err := ParseProgram(data, format)
	if err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}
	return prog, nil
}
