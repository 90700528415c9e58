// Package compat converts between this module's event model and
// github.com/cloudevents/sdk-go events, for collaborators already built on
// the SDK's protocol implementations.
package compat

import (
	"fmt"
	"time"

	sdk "github.com/cloudevents/sdk-go/v2"
	sdkevent "github.com/cloudevents/sdk-go/v2/event"

	"github.com/meemoo/cloudevents"
)

// ToSDK converts an event into an sdk-go event. The outcome and correlation
// id travel as extension attributes.
func ToSDK(e cloudevents.Event) (sdkevent.Event, error) {
	attrs := e.Attributes()

	se := sdk.NewEvent()
	se.SetID(attrs.ID)
	se.SetSource(attrs.Source)
	se.SetSpecVersion(attrs.SpecVersion)
	se.SetType(attrs.Type)
	if attrs.Subject != "" {
		se.SetSubject(attrs.Subject)
	}
	if attrs.Time != "" {
		t, err := time.Parse(time.RFC3339, attrs.Time)
		if err != nil {
			return sdkevent.Event{}, fmt.Errorf("%w: %q", cloudevents.ErrTimeParse, attrs.Time)
		}
		se.SetTime(t)
	}
	if attrs.Outcome != "" {
		se.SetExtension(cloudevents.AttrOutcome, string(attrs.Outcome))
	}
	if attrs.CorrelationID != "" {
		se.SetExtension(cloudevents.AttrCorrelationID, attrs.CorrelationID)
	}
	for k, v := range attrs.Extensions {
		se.SetExtension(k, v)
	}

	if e.Data() != nil {
		if err := se.SetData(attrs.DataContentType, e.Data()); err != nil {
			return sdkevent.Event{}, fmt.Errorf("compat: set data: %w", err)
		}
	} else if attrs.DataContentType != "" {
		se.SetDataContentType(attrs.DataContentType)
	}

	return se, nil
}

// FromSDK converts an sdk-go event into an event of this module. JSON data is
// decoded into a structured payload; anything else stays raw bytes.
func FromSDK(se sdkevent.Event) (cloudevents.Event, error) {
	attrs := cloudevents.Attributes{
		ID:              se.ID(),
		Source:          se.Source(),
		SpecVersion:     se.SpecVersion(),
		Type:            se.Type(),
		DataContentType: se.DataContentType(),
		Subject:         se.Subject(),
	}
	if attrs.Source == "" {
		return cloudevents.Event{}, fmt.Errorf("%w: source", cloudevents.ErrAttributeDecode)
	}
	if attrs.Type == "" {
		return cloudevents.Event{}, fmt.Errorf("%w: type", cloudevents.ErrAttributeDecode)
	}
	if attrs.ID == "" {
		attrs.ID = cloudevents.DefaultIDGenerator()
	}
	if attrs.SpecVersion == "" {
		attrs.SpecVersion = cloudevents.SpecVersion
	}
	if t := se.Time(); !t.IsZero() {
		attrs.Time = t.UTC().Format(time.RFC3339Nano)
	}

	for k, v := range se.Extensions() {
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprint(v)
		}
		switch k {
		case cloudevents.AttrOutcome:
			outcome, err := cloudevents.ParseOutcome(s)
			if err != nil {
				return cloudevents.Event{}, err
			}
			attrs.Outcome = outcome
		case cloudevents.AttrCorrelationID:
			attrs.CorrelationID = s
		default:
			if attrs.Extensions == nil {
				attrs.Extensions = map[string]string{}
			}
			attrs.Extensions[k] = s
		}
	}

	data, err := cloudevents.DecodeBody(se.Data(), attrs.DataContentType, cloudevents.NewJSONMarshaler())
	if err != nil {
		return cloudevents.Event{}, err
	}
	return cloudevents.NewEvent(attrs, data)
}
