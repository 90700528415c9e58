package cloudevents_test

import (
	"errors"
	"testing"

	"github.com/meemoo/cloudevents"
)

func TestParseOutcome(t *testing.T) {
	for _, token := range []string{"fail", "warning", "success"} {
		o, err := cloudevents.ParseOutcome(token)
		if err != nil {
			t.Errorf("ParseOutcome(%q) returned error: %v", token, err)
		}
		if o.String() != token {
			t.Errorf("expected %q, got %q", token, o.String())
		}
	}
}

func TestParseOutcome_Invalid(t *testing.T) {
	for _, token := range []string{"", "ok", "SUCCESS", "failure"} {
		if _, err := cloudevents.ParseOutcome(token); !errors.Is(err, cloudevents.ErrInvalidOutcome) {
			t.Errorf("ParseOutcome(%q): expected ErrInvalidOutcome, got %v", token, err)
		}
	}
}

func TestOutcome_Map(t *testing.T) {
	cases := []struct {
		outcome cloudevents.Outcome
		want    string
	}{
		{cloudevents.OutcomeSuccess, "success"},
		{cloudevents.OutcomeWarning, "warning"},
		{cloudevents.OutcomeFail, "fail"},
	}
	for _, c := range cases {
		m := c.outcome.Map()
		if len(m) != 1 || m["outcome"] != c.want {
			t.Errorf("expected {\"outcome\": %q}, got %v", c.want, m)
		}
	}
}

func TestOutcome_JSON(t *testing.T) {
	b, err := cloudevents.OutcomeSuccess.JSON()
	if err != nil {
		t.Fatalf("JSON returned error: %v", err)
	}
	if string(b) != `{"outcome":"success"}` {
		t.Errorf(`expected {"outcome":"success"}, got %s`, b)
	}
}
