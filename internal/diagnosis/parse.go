package diagnosis

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnknownDisease = errors.New("unknown disease")
)

// FieldError describes one field that could not be read as a number.
type FieldError struct {
	Field  string `json:"field"`
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// InputError collects every bad field of one submission.
type InputError struct {
	Disease Disease
	Fields  []FieldError
}

func (e *InputError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		keys = append(keys, f.Field)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Disease, strings.Join(keys, ", "))
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// ByField indexes the reasons by field key for form rendering.
func (e *InputError) ByField() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Reason
	}
	return out
}

// ParseFeatures reads every schema field from values, in schema order. It never returns a
// partial vector: any bad field yields an *InputError and a nil vector.
func ParseFeatures(s Schema, values map[string]string) ([]float64, error) {
	vec := make([]float64, 0, s.Width())
	var bad []FieldError

	for _, f := range s.Fields {
		raw := normalizeNumber(values[f.Key])
		if raw == "" {
			bad = append(bad, FieldError{Field: f.Key, Label: f.Label, Reason: "value is required"})
			continue
		}

		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			bad = append(bad, FieldError{Field: f.Key, Label: f.Label, Reason: "must be a number"})
			continue
		}
		vec = append(vec, v)
	}

	if len(bad) > 0 {
		return nil, &InputError{Disease: s.Disease, Fields: bad}
	}
	return vec, nil
}

// normalizeNumber folds full-width digits and signs to ASCII and strips surrounding space.
func normalizeNumber(text string) string {
	return strings.TrimFunc(norm.NFKC.String(text), unicode.IsSpace)
}
