package execution

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/store"
)

// PayloadError reports a request payload that cannot be executed. Its text is
// safe to show to the core administrator.
type PayloadError struct {
	msg string
}

func (e *PayloadError) Error() string { return e.msg }

func payloadErrorf(format string, args ...any) error {
	return &PayloadError{msg: fmt.Sprintf(format, args...)}
}

// asMap accepts the map shapes produced by JSON and BSON decoding.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case primitive.M:
		return map[string]any(m), true
	case store.Document:
		return map[string]any(m), true
	case primitive.D:
		return map[string]any(m.Map()), true
	}
	return nil, false
}

// asSlice accepts the array shapes produced by JSON and BSON decoding.
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case primitive.A:
		return []any(s), true
	case []string:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	}
	return nil, false
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// asNumber accepts JSON float64 and BSON integer representations.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// validFieldName rejects names that would address operators or nested paths.
func validFieldName(name string) bool {
	return name != "" && name != "id" && name != "_id" &&
		!strings.ContainsAny(name, ".$")
}

// CleanFields copies data minus identifier and timestamp keys and fails on
// a field name that would address an operator or a nested path.
func CleanFields(data map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(data)+2)
	for k, v := range data {
		switch k {
		case "id", "_id", "createdAt", "updatedAt":
			continue
		}
		if !validFieldName(k) {
			return nil, payloadErrorf("invalid field name %q", k)
		}
		out[k] = v
	}
	return out, nil
}
