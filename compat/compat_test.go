package compat_test

import (
	"errors"
	"testing"
	"time"

	sdk "github.com/cloudevents/sdk-go/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/meemoo/cloudevents"
	"github.com/meemoo/cloudevents/compat"
)

var fixedTime = time.Date(2021, 6, 1, 12, 30, 0, 0, time.UTC)

func sampleEvent(t *testing.T) cloudevents.Event {
	t.Helper()
	attrs, err := cloudevents.NewAttributes("/meemoo/sample-app", "be.meemoo.sample-event",
		cloudevents.WithID("id-1"),
		cloudevents.WithCorrelationID("corr-1"),
		cloudevents.WithTime(fixedTime),
		cloudevents.WithOutcome(cloudevents.OutcomeSuccess),
	)
	if err != nil {
		t.Fatalf("NewAttributes returned error: %v", err)
	}
	event, err := cloudevents.NewEvent(attrs, map[string]any{"message": "Hello World!"})
	if err != nil {
		t.Fatalf("NewEvent returned error: %v", err)
	}
	return event
}

func TestToSDK(t *testing.T) {
	se, err := compat.ToSDK(sampleEvent(t))
	if err != nil {
		t.Fatalf("ToSDK returned error: %v", err)
	}
	if se.ID() != "id-1" || se.Source() != "/meemoo/sample-app" || se.Type() != "be.meemoo.sample-event" {
		t.Errorf("unexpected sdk attributes: %v", se.Context)
	}
	if !se.Time().Equal(fixedTime) {
		t.Errorf("expected time %v, got %v", fixedTime, se.Time())
	}
	ext := se.Extensions()
	if ext["outcome"] != "success" {
		t.Errorf("expected outcome extension, got %v", ext["outcome"])
	}
	if ext["correlationid"] != "corr-1" {
		t.Errorf("expected correlationid extension, got %v", ext["correlationid"])
	}
}

func TestRoundTrip(t *testing.T) {
	event := sampleEvent(t)
	se, err := compat.ToSDK(event)
	if err != nil {
		t.Fatalf("ToSDK returned error: %v", err)
	}
	again, err := compat.FromSDK(se)
	if err != nil {
		t.Fatalf("FromSDK returned error: %v", err)
	}

	// The sdk normalizes the time representation, so compare parsed times
	// and the remaining attributes separately.
	at, err := event.EventTime()
	if err != nil {
		t.Fatalf("EventTime returned error: %v", err)
	}
	bt, err := again.EventTime()
	if err != nil {
		t.Fatalf("EventTime returned error: %v", err)
	}
	if !at.Equal(bt) {
		t.Errorf("expected time %v, got %v", at, bt)
	}

	a, b := event.Attributes().Map(), again.Attributes().Map()
	delete(a, "time")
	delete(b, "time")
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("attribute mismatch (-want +got):\n%s", diff)
	}

	want := map[string]any{"message": "Hello World!"}
	if diff := cmp.Diff(want, again.Data()); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestFromSDK_MissingRequired(t *testing.T) {
	se := sdk.NewEvent()
	se.SetID("id-1")
	if _, err := compat.FromSDK(se); !errors.Is(err, cloudevents.ErrAttributeDecode) {
		t.Errorf("expected ErrAttributeDecode, got %v", err)
	}
}

func TestFromSDK_InvalidOutcome(t *testing.T) {
	se := sdk.NewEvent()
	se.SetSource("/meemoo/sample-app")
	se.SetType("be.meemoo.sample-event")
	se.SetExtension("outcome", "partial")
	if _, err := compat.FromSDK(se); !errors.Is(err, cloudevents.ErrInvalidOutcome) {
		t.Errorf("expected ErrInvalidOutcome, got %v", err)
	}
}
