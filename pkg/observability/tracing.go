package observability

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer wraps X-Ray subsegments. Outside Lambda there is no parent
// segment, so a disabled tracer runs functions untraced.
type Tracer struct {
	serviceName string
	enabled     bool
}

// NewTracer creates a tracer; enabled should be true only where X-Ray
// provides the root segment
func NewTracer(serviceName string, enabled bool) *Tracer {
	return &Tracer{serviceName: serviceName, enabled: enabled}
}

// Enabled reports whether spans are recorded
func (t *Tracer) Enabled() bool { return t != nil && t.enabled }

// TraceFunction runs fn inside a named subsegment
func (t *Tracer) TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error {
	if !t.Enabled() || xray.GetSegment(ctx) == nil {
		return fn(ctx)
	}

	ctx, seg := xray.BeginSubsegment(ctx, fmt.Sprintf("%s.%s", t.serviceName, name))
	err := fn(ctx)
	seg.Close(err)
	return err
}

// AddAnnotation adds an indexed annotation to the current segment
func (t *Tracer) AddAnnotation(ctx context.Context, key, value string) {
	if !t.Enabled() {
		return
	}
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddAnnotation(key, value)
	}
}
