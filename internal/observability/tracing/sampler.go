package tracing

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// uploadSampler records every span marked as a spreadsheet upload and leaves
// the rest to base.
type uploadSampler struct {
	base sdktrace.Sampler
}

func UploadSampler(base sdktrace.Sampler) sdktrace.Sampler {
	return uploadSampler{base: base}
}

func (s uploadSampler) ShouldSample(p sdktrace.SamplingParameters) sdktrace.SamplingResult {
	for _, attr := range p.Attributes {
		if attr.Key == AttrUpload && attr.Value.AsBool() {
			return sdktrace.SamplingResult{
				Decision:   sdktrace.RecordAndSample,
				Tracestate: trace.SpanContextFromContext(p.ParentContext).TraceState(),
			}
		}
	}
	return s.base.ShouldSample(p)
}

func (s uploadSampler) Description() string {
	return "UploadSampler{" + s.base.Description() + "}"
}
