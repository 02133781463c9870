package tracing

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/storecogs/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Span attributes describing the import a request belongs to.
const (
	AttrUpload      = attribute.Key("storecogs.upload")
	AttrUploadBytes = attribute.Key("storecogs.upload.bytes")
	AttrFileName    = attribute.Key("storecogs.file_name")
	AttrDataset     = attribute.Key("storecogs.dataset")
	AttrBatchID     = attribute.Key("storecogs.batch_id")
)

// GinMiddleware instruments inbound HTTP requests. Spreadsheet uploads are
// marked when the span starts, so an upload-aware sampler can keep them, and
// the dataset and import batch set by the handler are attached on the way out.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("storecogs/http")
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		method := strings.ToUpper(c.Request.Method)
		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		startAttrs := []attribute.KeyValue{
			attribute.String("http.method", method),
			attribute.String("http.route", route),
		}
		if IsUploadRoute(method, route) {
			startAttrs = append(startAttrs, AttrUpload.Bool(true))
			if c.Request.ContentLength > 0 {
				startAttrs = append(startAttrs, AttrUploadBytes.Int64(c.Request.ContentLength))
			}
		}

		ctx, span := tracer.Start(ctx, "HTTP "+method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(startAttrs...),
		)
		defer span.End()

		if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
			if member, err := baggage.NewMember("request_id", requestID); err == nil {
				if bag, err := baggage.New(member); err == nil {
					ctx = baggage.ContextWithBaggage(ctx, bag)
				}
			}
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		c.Request = c.Request.WithContext(ctx)
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(SafeAttributes(
			attribute.Int("http.status_code", status),
			attribute.Int64("http.server_duration_ms", time.Since(start).Milliseconds()),
		)...)
		span.SetAttributes(ImportAttributes(c)...)

		lastErr := c.Errors.Last()
		switch {
		case status >= http.StatusInternalServerError:
			if lastErr != nil {
				if safeErr := SafeError(lastErr.Err); safeErr != nil {
					span.RecordError(safeErr)
				}
			}
			span.SetStatus(codes.Error, "request error")
		case lastErr != nil:
			// Rejected uploads and aborted batches stay visible without
			// marking the span failed.
			span.AddEvent("request.rejected", trace.WithAttributes(
				attribute.String("error", SafeError(lastErr.Err).Error()),
			))
		}
	}
}

// IsUploadRoute reports whether method and route accept a spreadsheet.
func IsUploadRoute(method, route string) bool {
	return strings.EqualFold(method, http.MethodPost) && strings.HasSuffix(route, "/upload")
}

// ImportAttributes collects the dataset, batch and file handlers recorded on c.
func ImportAttributes(c *gin.Context) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if v := strings.TrimSpace(c.GetString(obscontext.GinKeyDataset)); v != "" {
		attrs = append(attrs, AttrDataset.String(v))
	}
	if v := strings.TrimSpace(c.GetString(obscontext.GinKeyBatchID)); v != "" {
		attrs = append(attrs, AttrBatchID.String(v))
	}
	if v := strings.TrimSpace(c.GetString(obscontext.GinKeyFileName)); v != "" {
		attrs = append(attrs, AttrFileName.String(v))
	}
	return attrs
}
