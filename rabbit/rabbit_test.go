package rabbit_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/meemoo/cloudevents"
	"github.com/meemoo/cloudevents/rabbit"
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

func TestToProtocol_Binary(t *testing.T) {
	binding := rabbit.NewBinding(rabbit.Config{})
	msg, err := binding.ToProtocol(sampleEvent(t), cloudevents.ModeBinary)
	if err != nil {
		t.Fatalf("ToProtocol returned error: %v", err)
	}

	wantHeaders := map[string]string{
		"ce_source":  "/meemoo/sample-app",
		"ce_type":    "be.meemoo.sample-event",
		"ce_outcome": "success",
	}
	for k, v := range wantHeaders {
		if msg.Headers[k] != v {
			t.Errorf("expected header %s=%q, got %v", k, v, msg.Headers[k])
		}
	}
	if msg.ContentType != "application/json" {
		t.Errorf("expected content type application/json, got %q", msg.ContentType)
	}

	var payload map[string]any
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if payload["message"] != "Hello World!" {
		t.Errorf("expected Hello World! payload, got %v", payload)
	}
}

func TestToProtocol_NativeProperties(t *testing.T) {
	binding := rabbit.NewBinding(rabbit.Config{})
	// The AMQP properties are set in both modes.
	for _, mode := range []cloudevents.Mode{cloudevents.ModeBinary, cloudevents.ModeStructured} {
		msg, err := binding.ToProtocol(sampleEvent(t), mode)
		if err != nil {
			t.Fatalf("ToProtocol(%s) returned error: %v", mode, err)
		}
		if msg.MessageID != "id-1" {
			t.Errorf("%s: expected message id id-1, got %q", mode, msg.MessageID)
		}
		if msg.CorrelationID != "corr-1" {
			t.Errorf("%s: expected correlation id corr-1, got %q", mode, msg.CorrelationID)
		}
		if msg.Type != "be.meemoo.sample-event" {
			t.Errorf("%s: expected type property, got %q", mode, msg.Type)
		}
		if !msg.Timestamp.Equal(fixedTime) {
			t.Errorf("%s: expected timestamp %v, got %v", mode, fixedTime, msg.Timestamp)
		}
	}
}

func TestToProtocol_Structured(t *testing.T) {
	binding := rabbit.NewBinding(rabbit.Config{})
	msg, err := binding.ToProtocol(sampleEvent(t), cloudevents.ModeStructured)
	if err != nil {
		t.Fatalf("ToProtocol returned error: %v", err)
	}
	if msg.ContentType != cloudevents.ContentTypeStructured {
		t.Errorf("expected structured marker, got %q", msg.ContentType)
	}

	var envelope map[string]any
	if err := json.Unmarshal(msg.Body, &envelope); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if envelope["correlationid"] != "corr-1" || envelope["outcome"] != "success" {
		t.Errorf("expected domain attributes in envelope, got %v", envelope)
	}
	want := map[string]any{"message": "Hello World!"}
	if diff := cmp.Diff(want, envelope["data"]); diff != "" {
		t.Errorf("envelope data mismatch (-want +got):\n%s", diff)
	}
}

func TestToProtocol_UnsupportedMode(t *testing.T) {
	binding := rabbit.NewBinding(rabbit.Config{})
	if _, err := binding.ToProtocol(sampleEvent(t), cloudevents.Mode("")); !errors.Is(err, cloudevents.ErrUnsupportedMode) {
		t.Errorf("expected ErrUnsupportedMode, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	binding := rabbit.NewBinding(rabbit.Config{})
	event := sampleEvent(t)

	for _, mode := range []cloudevents.Mode{cloudevents.ModeBinary, cloudevents.ModeStructured} {
		t.Run(string(mode), func(t *testing.T) {
			msg, err := binding.ToProtocol(event, mode)
			if err != nil {
				t.Fatalf("ToProtocol returned error: %v", err)
			}
			again, err := binding.FromProtocol(msg)
			if err != nil {
				t.Fatalf("FromProtocol returned error: %v", err)
			}
			if !event.Equal(again) {
				t.Errorf("round trip mismatch:\n got %v\nwant %v", again, event)
			}
		})
	}
}

func TestRoundTrip_ThroughPublishingAndDelivery(t *testing.T) {
	binding := rabbit.NewBinding(rabbit.Config{})
	event := sampleEvent(t)

	msg, err := binding.ToProtocol(event, cloudevents.ModeBinary)
	if err != nil {
		t.Fatalf("ToProtocol returned error: %v", err)
	}

	pub := rabbit.ToPublishing(msg)
	if pub.DeliveryMode != amqp.Persistent {
		t.Errorf("expected persistent delivery mode, got %d", pub.DeliveryMode)
	}

	// What a consumer would see after the broker relays the publishing.
	delivery := amqp.Delivery{
		Headers:       pub.Headers,
		ContentType:   pub.ContentType,
		CorrelationId: pub.CorrelationId,
		MessageId:     pub.MessageId,
		Timestamp:     pub.Timestamp,
		Type:          pub.Type,
		Body:          pub.Body,
	}
	again, err := binding.FromProtocol(rabbit.FromDelivery(delivery))
	if err != nil {
		t.Fatalf("FromProtocol returned error: %v", err)
	}
	if !event.Equal(again) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", again, event)
	}
}

func TestFromProtocol_NoContentTypeWithAttributes(t *testing.T) {
	binding := rabbit.NewBinding(rabbit.Config{})
	msg := &rabbit.Message{
		Body: []byte(`{"message":"Hello World!"}`),
		Headers: amqp.Table{
			"ce_source": "/meemoo/sample-app",
			"ce_type":   "be.meemoo.sample-event",
		},
	}
	event, err := binding.FromProtocol(msg)
	if err != nil {
		t.Fatalf("FromProtocol returned error: %v", err)
	}
	if event.Attributes().Type != "be.meemoo.sample-event" {
		t.Errorf("expected type, got %q", event.Attributes().Type)
	}
}

func TestFromProtocol_Undecidable(t *testing.T) {
	binding := rabbit.NewBinding(rabbit.Config{})
	msg := &rabbit.Message{Body: []byte("{}")}
	if _, err := binding.FromProtocol(msg); !errors.Is(err, cloudevents.ErrMissingContentType) {
		t.Errorf("expected ErrMissingContentType, got %v", err)
	}
}

func TestFromProtocol_CorrelationFromNativeProperty(t *testing.T) {
	binding := rabbit.NewBinding(rabbit.Config{})
	msg := &rabbit.Message{
		Body:          []byte(`{"message":"Hello World!"}`),
		ContentType:   "application/json",
		CorrelationID: "corr-native",
		Headers: amqp.Table{
			"ce_source": "/meemoo/sample-app",
			"ce_type":   "be.meemoo.sample-event",
		},
	}
	event, err := binding.FromProtocol(msg)
	if err != nil {
		t.Fatalf("FromProtocol returned error: %v", err)
	}
	if event.Attributes().CorrelationID != "corr-native" {
		t.Errorf("expected correlation id from AMQP property, got %q", event.Attributes().CorrelationID)
	}
}

func TestGenerateAttributes_Binary(t *testing.T) {
	binding := rabbit.NewBinding(rabbit.Config{})
	props, err := binding.GenerateAttributes(sampleEvent(t).Attributes(), cloudevents.ModeBinary)
	if err != nil {
		t.Fatalf("GenerateAttributes returned error: %v", err)
	}
	want := map[string]string{
		"ce_id":              "id-1",
		"ce_source":          "/meemoo/sample-app",
		"ce_specversion":     "1.0",
		"ce_type":            "be.meemoo.sample-event",
		"ce_datacontenttype": "application/json",
		"ce_time":            "2021-06-01T12:30:00Z",
		"ce_outcome":         "success",
		"ce_correlationid":   "corr-1",
	}
	if diff := cmp.Diff(want, props); diff != "" {
		t.Errorf("property mismatch (-want +got):\n%s", diff)
	}
}
