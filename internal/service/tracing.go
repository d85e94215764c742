package service

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/jnst/order-processor/internal/service"

func newTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
