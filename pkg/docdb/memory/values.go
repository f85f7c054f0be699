package memory

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// normalize converts any JSON-encodable document body into a plain map.
func normalize(data any) (map[string]any, error) {
	if data == nil {
		return make(map[string]any), nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", docdb.ErrInvalidArgument, err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: document body must be an object: %v", docdb.ErrInvalidArgument, err)
	}
	if out == nil {
		out = make(map[string]any)
	}
	return out, nil
}

// normalizeValue converts a single value the same way document fields are
// converted, so query values compare against stored values directly.
func normalizeValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", docdb.ErrInvalidArgument, err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", docdb.ErrInvalidArgument, err)
	}
	return out, nil
}

func deepCopy(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	b, _ := json.Marshal(src)
	var dst map[string]any
	_ = json.Unmarshal(b, &dst)
	return dst
}

func decoder(data map[string]any) docdb.DecodeFunc {
	return func(v any) error {
		b, err := json.Marshal(data)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, v)
	}
}

// getPath resolves a dot-separated field path.
func getPath(data map[string]any, path string) (any, bool) {
	var cur any = data
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// setPath assigns a value at a dot-separated field path, creating
// intermediate maps as needed.
func setPath(data map[string]any, path string, v any) {
	parts := strings.Split(path, ".")
	cur := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

func equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// compare orders two values of the same kind. ok is false when the values
// are not comparable, in which case range filters never match.
func compare(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(sa, sb), true
	}
	if ba, ok := a.(bool); ok {
		bb, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case ba == bb:
			return 0, true
		case !ba:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func containsValue(list []any, v any) bool {
	for _, item := range list {
		if equal(item, v) {
			return true
		}
	}
	return false
}

func notFound(collection, id string) error {
	return fmt.Errorf("%w: %s/%s", docdb.ErrNotFound, collection, id)
}

func preconditionFailed(collection, id, what string) error {
	return fmt.Errorf("%w: %s/%s: %s", docdb.ErrPreconditionFailed, collection, id, what)
}
