package cloudevents

import (
	"encoding/json"
	"fmt"
)

// Outcome classifies the result an event reports. It is a CloudEvents
// extension attribute specific to the meemoo event contract and can only be
// one of three values: fail, warning or success.
type Outcome string

const (
	OutcomeFail    Outcome = "fail"
	OutcomeWarning Outcome = "warning"
	OutcomeSuccess Outcome = "success"
)

// ParseOutcome converts an outcome token to an Outcome.
// Returns ErrInvalidOutcome for any token outside the closed set.
func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(s); o {
	case OutcomeFail, OutcomeWarning, OutcomeSuccess:
		return o, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
	}
}

// String returns the canonical lowercase token.
func (o Outcome) String() string {
	return string(o)
}

// Map returns the outcome wrapped under its attribute key.
func (o Outcome) Map() map[string]string {
	return map[string]string{AttrOutcome: string(o)}
}

// JSON returns the JSON encoding of Map.
func (o Outcome) JSON() ([]byte, error) {
	return json.Marshal(o.Map())
}
