package cloudevents

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
)

// CloudEvents context attribute keys as they appear in projections and on
// the wire. Extension keys follow the CloudEvents naming rule of lowercase
// alphanumeric, so the correlation id is "correlationid" rather than the
// snake_case form.
const (
	// AttrID is required by CloudEvents. Unique event identifier.
	AttrID = "id"
	// AttrSource is required by CloudEvents. Event source URI.
	AttrSource = "source"
	// AttrSpecVersion is required by CloudEvents. Always "1.0" here.
	AttrSpecVersion = "specversion"
	// AttrType is required by CloudEvents. Event type (e.g., "be.meemoo.sample-event").
	AttrType = "type"
	// AttrDataContentType is optional in CloudEvents. Payload content type.
	AttrDataContentType = "datacontenttype"
	// AttrSubject is optional in CloudEvents. Event subject/context.
	AttrSubject = "subject"
	// AttrTime is optional in CloudEvents. Event timestamp (RFC 3339).
	AttrTime = "time"
	// AttrOutcome is a meemoo extension. Result classification of the event.
	AttrOutcome = "outcome"
	// AttrCorrelationID is a meemoo extension. Links related events across a pipeline.
	AttrCorrelationID = "correlationid"
)

// SpecVersion is the only CloudEvents version this module speaks.
const SpecVersion = "1.0"

// IDGenerator produces unique tokens for the id and correlationid attributes.
type IDGenerator func() string

// DefaultIDGenerator is used when no generator is injected via WithIDGenerator.
var DefaultIDGenerator IDGenerator = uuid.NewString

// Attributes is the validated set of CloudEvents context attributes plus the
// meemoo extension attributes. Treat it as a value: construct it once with
// NewAttributes and never mutate it afterwards.
//
// Field order matters for the JSON projection: CloudEvents-mandated
// attributes come first, extensions last.
type Attributes struct {
	ID              string  `json:"id"`
	Source          string  `json:"source"`
	SpecVersion     string  `json:"specversion"`
	Type            string  `json:"type"`
	DataContentType string  `json:"datacontenttype,omitempty"`
	Subject         string  `json:"subject,omitempty"`
	Time            string  `json:"time,omitempty"`
	Outcome         Outcome `json:"outcome,omitempty"`
	CorrelationID   string  `json:"correlationid,omitempty"`

	// Extensions carries extension attributes beyond the named ones,
	// typically populated when decoding a received message. Marshaled at
	// the top level of the JSON projection.
	Extensions map[string]string `json:"-"`
}

// Option configures attribute construction.
type Option func(*attrOptions)

type attrOptions struct {
	id              string
	specVersion     string
	subject         string
	timeStr         string
	outcome         Outcome
	correlationID   string
	dataContentType *string
	extensions      map[string]string
	newID           IDGenerator
	now             func() time.Time
	requireCorrID   bool
}

// WithID sets the event id instead of generating one.
func WithID(id string) Option {
	return func(o *attrOptions) { o.id = id }
}

// WithSpecVersion overrides the CloudEvents spec version. Permitted, but no
// other version is understood by the bindings.
func WithSpecVersion(v string) Option {
	return func(o *attrOptions) { o.specVersion = v }
}

// WithSubject sets the optional subject attribute.
func WithSubject(subject string) Option {
	return func(o *attrOptions) { o.subject = subject }
}

// WithTime sets the event time instead of using the construction clock.
func WithTime(t time.Time) Option {
	return func(o *attrOptions) { o.timeStr = t.UTC().Format(time.RFC3339Nano) }
}

// WithTimeString sets the event time from a caller-supplied RFC 3339 string.
// The string is not validated here; Event.EventTime reports ErrTimeParse if
// it turns out malformed.
func WithTimeString(s string) Option {
	return func(o *attrOptions) { o.timeStr = s }
}

// WithOutcome sets the outcome extension attribute.
func WithOutcome(outcome Outcome) Option {
	return func(o *attrOptions) { o.outcome = outcome }
}

// WithCorrelationID sets the correlation id instead of generating one.
func WithCorrelationID(id string) Option {
	return func(o *attrOptions) { o.correlationID = id }
}

// WithDataContentType overrides the default "application/json" payload
// content type. An empty string leaves the attribute unset.
func WithDataContentType(ct string) Option {
	return func(o *attrOptions) { o.dataContentType = &ct }
}

// WithExtension adds an extension attribute beyond the named ones.
// Keys should be lowercase alphanumeric per the CloudEvents naming rule.
func WithExtension(key, value string) Option {
	return func(o *attrOptions) {
		if o.extensions == nil {
			o.extensions = map[string]string{}
		}
		o.extensions[key] = value
	}
}

// WithIDGenerator injects the generator used for defaulted id and
// correlationid values. Tests use this to get deterministic tokens.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *attrOptions) { o.newID = g }
}

// WithClock injects the clock used for the defaulted time attribute.
func WithClock(now func() time.Time) Option {
	return func(o *attrOptions) { o.now = now }
}

// RequireCorrelationID makes construction fail with
// ErrMissingRequiredAttribute when no correlation id is supplied, instead of
// generating one. The meemoo contract expects every event to carry one; by
// default a fresh id is generated so the attribute is never absent.
func RequireCorrelationID() Option {
	return func(o *attrOptions) { o.requireCorrID = true }
}

// NewAttributes constructs a validated attribute set. Source and eventType
// are the CloudEvents-required context attributes and must be non-empty;
// id, specversion, time, datacontenttype and correlationid are defaulted
// when not supplied via options.
func NewAttributes(source, eventType string, opts ...Option) (Attributes, error) {
	if source == "" {
		return Attributes{}, fmt.Errorf("%w: source", ErrMissingRequiredAttribute)
	}
	if eventType == "" {
		return Attributes{}, fmt.Errorf("%w: type", ErrMissingRequiredAttribute)
	}

	o := attrOptions{
		specVersion: SpecVersion,
		newID:       DefaultIDGenerator,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.id == "" {
		o.id = o.newID()
	}
	if o.timeStr == "" {
		o.timeStr = o.now().UTC().Format(time.RFC3339Nano)
	}
	if o.correlationID == "" {
		if o.requireCorrID {
			return Attributes{}, fmt.Errorf("%w: correlationid", ErrMissingRequiredAttribute)
		}
		o.correlationID = o.newID()
	}

	dct := ContentTypeJSON
	if o.dataContentType != nil {
		dct = *o.dataContentType
	}

	return Attributes{
		ID:              o.id,
		Source:          source,
		SpecVersion:     o.specVersion,
		Type:            eventType,
		DataContentType: dct,
		Subject:         o.subject,
		Time:            o.timeStr,
		Outcome:         o.outcome,
		CorrelationID:   o.correlationID,
		Extensions:      o.extensions,
	}, nil
}

// Map returns the set attributes as a flat string mapping, omitting unset
// ones. The outcome is flattened to its lowercase token.
func (a Attributes) Map() map[string]string {
	m := make(map[string]string, 9+len(a.Extensions))
	m[AttrID] = a.ID
	m[AttrSource] = a.Source
	m[AttrSpecVersion] = a.SpecVersion
	m[AttrType] = a.Type
	if a.DataContentType != "" {
		m[AttrDataContentType] = a.DataContentType
	}
	if a.Subject != "" {
		m[AttrSubject] = a.Subject
	}
	if a.Time != "" {
		m[AttrTime] = a.Time
	}
	if a.Outcome != "" {
		m[AttrOutcome] = string(a.Outcome)
	}
	if a.CorrelationID != "" {
		m[AttrCorrelationID] = a.CorrelationID
	}
	for k, v := range a.Extensions {
		if !isNamedAttribute(k) {
			m[k] = v
		}
	}
	return m
}

// MarshalJSON includes extension attributes at the top level.
func (a Attributes) MarshalJSON() ([]byte, error) {
	type alias Attributes
	data, err := json.Marshal(alias(a))
	if err != nil {
		return nil, err
	}
	if len(a.Extensions) == 0 {
		return data, nil
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	for k, v := range a.Extensions {
		if !isNamedAttribute(k) {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

// JSON returns the JSON projection of the set attributes.
func (a Attributes) JSON() ([]byte, error) {
	return json.Marshal(a)
}

// Equal reports whether two attribute sets match field for field.
func (a Attributes) Equal(b Attributes) bool {
	if a.ID != b.ID || a.Source != b.Source || a.SpecVersion != b.SpecVersion ||
		a.Type != b.Type || a.DataContentType != b.DataContentType ||
		a.Subject != b.Subject || a.Time != b.Time ||
		a.Outcome != b.Outcome || a.CorrelationID != b.CorrelationID {
		return false
	}
	if len(a.Extensions) == 0 && len(b.Extensions) == 0 {
		return true
	}
	return maps.Equal(a.Extensions, b.Extensions)
}

// String returns a short diagnostic form.
func (a Attributes) String() string {
	return fmt.Sprintf("Attributes(id=%s, type=%s, correlationid=%s)", a.ID, a.Type, a.CorrelationID)
}

// isNamedAttribute reports whether key belongs to a named Attributes field,
// so decoded extensions never shadow one.
func isNamedAttribute(key string) bool {
	switch key {
	case AttrID, AttrSource, AttrSpecVersion, AttrType,
		AttrDataContentType, AttrSubject, AttrTime,
		AttrOutcome, AttrCorrelationID:
		return true
	}
	return false
}
