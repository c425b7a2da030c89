package analysis

import (
	"encoding/json"
	"fmt"
)

// Validate parses a raw provider reply and checks it against the Result schema.
func Validate(raw []byte) (Result, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Result{}, fmt.Errorf("%w: not json: %v", ErrInvalidResponseShape, err)
	}
	return ValidateValue(v)
}

// ValidateValue checks already-decoded JSON data. Checks run in a fixed order:
// riskLevel, summary, details, recommendation. Any failure rejects the whole
// payload; nothing is coerced.
func ValidateValue(v any) (Result, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Result{}, fmt.Errorf("%w: expected object, got %T", ErrInvalidResponseShape, v)
	}

	level, ok := obj["riskLevel"].(string)
	if !ok || !RiskLevel(level).Valid() {
		return Result{}, fmt.Errorf("%w: riskLevel %v", ErrInvalidResponseShape, obj["riskLevel"])
	}

	summary, ok := obj["summary"].(string)
	if !ok {
		return Result{}, fmt.Errorf("%w: summary is %T", ErrInvalidResponseShape, obj["summary"])
	}

	rawDetails, ok := obj["details"].([]any)
	if !ok {
		return Result{}, fmt.Errorf("%w: details is %T", ErrInvalidResponseShape, obj["details"])
	}
	details := make([]string, 0, len(rawDetails))
	for i, d := range rawDetails {
		s, ok := d.(string)
		if !ok {
			return Result{}, fmt.Errorf("%w: details[%d] is %T", ErrInvalidResponseShape, i, d)
		}
		details = append(details, s)
	}

	rec, ok := obj["recommendation"].(string)
	if !ok {
		return Result{}, fmt.Errorf("%w: recommendation is %T", ErrInvalidResponseShape, obj["recommendation"])
	}

	return Result{
		RiskLevel:      RiskLevel(level),
		Summary:        summary,
		Details:        details,
		Recommendation: rec,
	}, nil
}
