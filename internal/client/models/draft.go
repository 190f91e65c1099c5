package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/sellingcar/internal/catalog"
)

// ValidationError is a local coercion failure for one field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Draft holds raw, uncoerced form input keyed by field name.
type Draft map[string]string

// NewDraft returns an empty draft with one entry per input field.
func NewDraft(d *catalog.Descriptor) Draft {
	dr := Draft{}
	for _, f := range d.InputFields() {
		dr[f.Name] = ""
	}
	return dr
}

// DraftFromRecord prefills a draft with every stored field of rec.
func DraftFromRecord(d *catalog.Descriptor, rec Record) Draft {
	dr := Draft{}
	for _, f := range d.Fields {
		dr[f.Name] = FormatValue(rec[f.Name], f.Kind)
	}
	return dr
}

func (dr Draft) Clone() Draft {
	out := make(Draft, len(dr))
	for k, v := range dr {
		out[k] = v
	}
	return out
}

// CreateBody coerces every input field of the draft.
func CreateBody(d *catalog.Descriptor, dr Draft) (map[string]any, error) {
	return body(d.InputFields(), dr)
}

// UpdateBody coerces every editable field of the draft. Key fields never
// appear; they travel in the URL.
func UpdateBody(d *catalog.Descriptor, dr Draft) (map[string]any, error) {
	return body(d.EditableFields(), dr)
}

func body(fields []catalog.Field, dr Draft) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		v, err := Coerce(f, dr[f.Name])
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

// Coerce converts raw input into the field's wire value. Empty numeric and
// date input becomes nil (JSON null), never "" or NaN.
func Coerce(f catalog.Field, raw string) (any, error) {
	if f.Kind != catalog.KindString {
		raw = strings.TrimSpace(raw)
	}
	if raw == "" {
		if f.Required {
			return nil, &ValidationError{Field: f.Name, Reason: "is required"}
		}
		if f.Kind == catalog.KindString {
			return "", nil
		}
		return nil, nil
	}

	switch f.Kind {
	case catalog.KindInteger:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, &ValidationError{Field: f.Name, Reason: "must be an integer"}
		}
		return i, nil
	case catalog.KindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, &ValidationError{Field: f.Name, Reason: "must be a number"}
		}
		return n, nil
	case catalog.KindDate:
		if t, err := time.Parse(DateLayout, raw); err == nil {
			return t.Format(DateLayout), nil
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.Format(DateLayout), nil
		}
		return nil, &ValidationError{Field: f.Name, Reason: "must be a date (YYYY-MM-DD)"}
	default:
		return raw, nil
	}
}
