package graph

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/naivary/pixst/graph"

var (
	meter  metric.Meter
	tracer trace.Tracer

	// Run metrics
	ObjectsDuplicated metric.Int64Counter
	ObjectsReferenced metric.Int64Counter
	ObjectsIgnored    metric.Int64Counter
	RunsDuration      metric.Float64Histogram
	RunsInFlight      metric.Int64UpDownCounter

	// Initialization
	once        sync.Once
	initErr     error
	initialized bool
)

// Init initializes the global metrics and tracer. Call this once at
// application startup; without it the engine runs uninstrumented.
func Init() error {
	once.Do(func() {
		meter = otel.Meter(instrumentationName)
		tracer = otel.Tracer(instrumentationName)
		initErr = initializeMetrics()
		if initErr == nil {
			initialized = true
		}
	})
	return initErr
}

func initializeMetrics() error {
	var err error
	ObjectsDuplicated, err = meter.Int64Counter("pixst.graph.objects.duplicated",
		metric.WithDescription("Number of objects duplicated"))
	if err != nil {
		return err
	}
	ObjectsReferenced, err = meter.Int64Counter("pixst.graph.objects.referenced",
		metric.WithDescription("Number of objects linked to instead of duplicated"))
	if err != nil {
		return err
	}
	ObjectsIgnored, err = meter.Int64Counter("pixst.graph.objects.ignored",
		metric.WithDescription("Number of objects neither duplicated nor referenced"))
	if err != nil {
		return err
	}
	RunsDuration, err = meter.Float64Histogram("pixst.graph.runs.duration",
		metric.WithDescription("Duration of duplication runs in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return err
	}
	RunsInFlight, err = meter.Int64UpDownCounter("pixst.graph.runs.in_flight",
		metric.WithDescription("Number of duplication runs currently executing"))
	if err != nil {
		return err
	}
	return nil
}
