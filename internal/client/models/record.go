package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/sellingcar/internal/catalog"
)

const DateLayout = "2006-01-02"

// Record is one resource row as returned by the backend.
type Record map[string]any

// Key addresses a record. Values are kept in their canonical string form so
// keys typed at the prompt compare equal to keys read from records.
type Key []string

func (k Key) Equal(other Key) bool { return slices.Equal(k, other) }

func (k Key) String() string { return strings.Join(k, "/") }

// Path renders the URL suffix for the key, e.g. "/3/7".
func (k Key) Path() string {
	var b strings.Builder
	for _, v := range k {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(v))
	}
	return b.String()
}

// KeyOf extracts the key of rec according to d.
func KeyOf(d *catalog.Descriptor, rec Record) Key {
	k := make(Key, len(d.Key))
	for i, name := range d.Key {
		k[i] = FormatValue(rec[name], "")
	}
	return k
}

// ParseKey builds a key from prompt arguments, checking arity and numeric
// key kinds.
func ParseKey(d *catalog.Descriptor, args []string) (Key, error) {
	if len(args) != len(d.Key) {
		return nil, fmt.Errorf("%s key is (%s), got %d value(s)", d.Name, strings.Join(d.Key, ", "), len(args))
	}
	k := make(Key, len(args))
	for i, f := range d.KeyFields() {
		v, err := Coerce(f, args[i])
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, &ValidationError{Field: f.Name, Reason: "is required"}
		}
		k[i] = FormatValue(v, f.Kind)
	}
	return k, nil
}

// Normalize converts json.Number values (as produced by a decoder with
// UseNumber) into int64 or float64, recursively.
func Normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		for k, e := range x {
			x[k] = Normalize(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = Normalize(e)
		}
		return x
	default:
		return v
	}
}

// FormatValue renders a record value for display or for a draft. Dates are
// cut to their calendar day.
func FormatValue(v any, kind catalog.Kind) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		if kind == catalog.KindDate {
			return dateOnly(x)
		}
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func dateOnly(s string) string {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(DateLayout)
	}
	if before, _, ok := strings.Cut(s, "T"); ok {
		return before
	}
	return s
}
