package reconcile

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// elementAttrs describes the root of a tree for a span.
func elementAttrs(el vdom.Element) []attribute.KeyValue {
	if el == nil {
		return []attribute.KeyValue{attribute.Bool("vtree.nil_root", true)}
	}
	attrs := []attribute.KeyValue{
		attribute.String("vtree.key", el.Key().String()),
		attribute.String("vtree.kind", el.Kind().String()),
	}
	if tag := vdom.TagOf(el); tag != "" {
		attrs = append(attrs, attribute.String("vtree.tag", tag))
	}
	return attrs
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
