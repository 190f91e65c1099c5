package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/sellingcar/internal/catalog"
	"github.com/dmitrijs2005/sellingcar/internal/common"
	"github.com/dmitrijs2005/sellingcar/internal/server/models"
)

const dateLayout = "2006-01-02"

// ValidationError rejects a request body field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == common.ErrorValidation }

// coerce converts a decoded JSON value into the stored representation of
// the field's kind. Empty strings become nil for every non-string kind.
func coerce(f catalog.Field, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok && f.Kind != catalog.KindString && strings.TrimSpace(s) == "" {
		return nil, nil
	}
	bad := &ValidationError{Field: f.Name, Reason: "must be " + article(f.Kind)}

	switch f.Kind {
	case catalog.KindInteger:
		switch x := v.(type) {
		case int64:
			return x, nil
		case int:
			return int64(x), nil
		case float64:
			if x != math.Trunc(x) {
				return nil, bad
			}
			return int64(x), nil
		case json.Number:
			n, err := x.Int64()
			if err != nil {
				return nil, bad
			}
			return n, nil
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
			if err != nil {
				return nil, bad
			}
			return n, nil
		}
	case catalog.KindNumber:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int64:
			return float64(x), nil
		case int:
			return float64(x), nil
		case json.Number:
			n, err := x.Float64()
			if err != nil {
				return nil, bad
			}
			return n, nil
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if err != nil {
				return nil, bad
			}
			return n, nil
		}
	case catalog.KindDate:
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(s)
			if t, err := time.Parse(dateLayout, s); err == nil {
				return t.Format(dateLayout), nil
			}
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return t.Format(dateLayout), nil
			}
		}
	default:
		switch x := v.(type) {
		case string:
			return x, nil
		case json.Number:
			return x.String(), nil
		case float64, int64, int, bool:
			return fmt.Sprint(x), nil
		}
	}
	return nil, bad
}

func article(k catalog.Kind) string {
	switch k {
	case catalog.KindInteger:
		return "an integer"
	case catalog.KindDate:
		return "a date (YYYY-MM-DD)"
	default:
		return "a " + string(k)
	}
}

func formatKeyPart(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// keyOf is the canonical storage key of row, key values joined by "/".
func keyOf(d *catalog.Descriptor, row models.Row) string {
	parts := make([]string, len(d.Key))
	for i, k := range d.Key {
		parts[i] = formatKeyPart(row[k])
	}
	return strings.Join(parts, "/")
}

// parseKey normalizes URL key segments through the key fields' kinds, so
// "007" and "7" address the same integer key.
func parseKey(d *catalog.Descriptor, parts []string) (string, error) {
	if len(parts) != len(d.Key) {
		return "", fmt.Errorf("%s key has %d part(s), got %d: %w", d.Name, len(d.Key), len(parts), common.ErrorNotFound)
	}
	out := make([]string, len(parts))
	for i, f := range d.KeyFields() {
		v, err := coerce(f, parts[i])
		if err != nil || v == nil {
			return "", fmt.Errorf("%s key %q: %w", d.Name, parts[i], common.ErrorNotFound)
		}
		out[i] = formatKeyPart(v)
	}
	return strings.Join(out, "/"), nil
}
