package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
)

// ErrUnrecognizedDetection is returned when a detect-dish payload is neither
// a bare label nor an object carrying a "dish" string.
var ErrUnrecognizedDetection = errors.New("unrecognized detection payload")

// PlaceholderConfidence is shown when the API does not score its answer.
const PlaceholderConfidence = "98% Confidence"

// Detection is the normalized detect-dish result. The API answers either with
// a bare JSON string or with an object such as {"dish": "pizza", "confidence": 97.3};
// both decode into the same value.
type Detection struct {
	Dish       string
	Confidence *float64
	// Extra holds any other fields the API chose to return.
	Extra map[string]any
}

// Label is the display name of the detected dish.
func (d Detection) Label() string {
	return d.Dish
}

// ConfidenceLabel renders the API confidence (a percentage) or the placeholder badge.
func (d Detection) ConfidenceLabel() string {
	if d.Confidence == nil {
		return PlaceholderConfidence
	}
	return strconv.FormatFloat(*d.Confidence, 'f', -1, 64) + "% Confidence"
}

// Clone returns a copy that shares no mutable state with d.
func (d Detection) Clone() Detection {
	out := Detection{Dish: d.Dish, Extra: maps.Clone(d.Extra)}
	if d.Confidence != nil {
		c := *d.Confidence
		out.Confidence = &c
	}
	return out
}

func (d *Detection) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ErrUnrecognizedDetection
	}

	switch b[0] {
	case '"':
		var label string
		if err := json.Unmarshal(b, &label); err != nil {
			return err
		}
		if label == "" {
			return ErrUnrecognizedDetection
		}
		*d = Detection{Dish: label}
		return nil

	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(b, &fields); err != nil {
			return err
		}
		var out Detection
		raw, ok := fields["dish"]
		if !ok {
			return fmt.Errorf("%w: missing dish", ErrUnrecognizedDetection)
		}
		if err := json.Unmarshal(raw, &out.Dish); err != nil || out.Dish == "" {
			return fmt.Errorf("%w: dish must be a non-empty string", ErrUnrecognizedDetection)
		}
		delete(fields, "dish")

		if raw, ok := fields["confidence"]; ok {
			var c float64
			if err := json.Unmarshal(raw, &c); err == nil {
				out.Confidence = &c
				delete(fields, "confidence")
			}
		}

		for k, raw := range fields {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				continue
			}
			if out.Extra == nil {
				out.Extra = make(map[string]any, len(fields))
			}
			out.Extra[k] = v
		}
		*d = out
		return nil
	}

	return ErrUnrecognizedDetection
}
