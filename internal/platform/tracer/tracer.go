// Package tracer is a small tracing abstraction so services can emit spans
// without importing OpenTelemetry directly.
//
// Implementations:
//   - Noop: for tests and when tracing is disabled
//   - OTel: OpenTelemetry adapter for production
package tracer

import "context"

// Span is an active trace span. End must be called exactly once.
type Span interface {
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Span names.
const (
	SpanIdentityValidate     = "identity.validate"
	SpanRegistrationRegister = "registration.register"
)

// Attribute keys. ID numbers are only ever recorded hashed.
const (
	AttrIDType     = "id.type"
	AttrIDHash     = "id.hash"
	AttrValid      = "id.valid"
	AttrErrorKind  = "id.error_kind"
	AttrApplicant  = "applicant.id"
	AttrIdempotent = "idempotent.replay"
)
