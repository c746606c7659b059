package auth

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const meterName = "github.com/applifting/applifting-sdk-go/auth"

// Token sources reported in metrics and span attributes.
const (
	sourceMemory  = "memory"
	sourceCache   = "cache"
	sourceRefresh = "refresh"
	sourceError   = "error"
)

type instruments struct {
	lookups         metric.Int64Counter
	refreshDuration metric.Float64Histogram
}

func newInstruments(mp metric.MeterProvider) instruments {
	meter := mp.Meter(meterName)

	var (
		i   instruments
		err error
	)
	i.lookups, err = meter.Int64Counter(
		"applifting.token.lookups",
		metric.WithDescription("Access token lookups by the source that served them"),
	)
	if err != nil {
		otel.Handle(err)
	}

	i.refreshDuration, err = meter.Float64Histogram(
		"applifting.token.refresh.duration",
		metric.WithDescription("Duration of refresh token exchanges"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
	}

	return i
}

func (i instruments) recordLookup(ctx context.Context, source string) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("applifting.token.source", source))
	if i.lookups == nil {
		return
	}
	i.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

func (i instruments) recordRefresh(ctx context.Context, duration time.Duration, err error) {
	if i.refreshDuration == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	i.refreshDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("status", status)),
	)
}
