package metrics

import (
	"context"
	"fmt"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter provides OpenTelemetry metrics export in Prometheus format.
// It also observes relay deliveries and receiver outcomes.
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	registry      *promclient.Registry
	collector     Collector
	queue         QueueLen

	meter            metric.Meter
	requests         metric.Int64Counter
	actions          metric.Int64Counter
	deliveries       metric.Int64Counter
	exhausted        metric.Int64Counter
	queueLengthGauge metric.Int64ObservableGauge
	receivedGauge    metric.Int64ObservableGauge
	auditGauge       metric.Int64ObservableGauge
}

// NewOTelExporter creates an exporter serving its own Prometheus registry.
// collector and queue may be nil.
func NewOTelExporter(collector Collector, queue QueueLen) (*OTelExporter, error) {
	registry := promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	oe, err := newExporter(exporter, collector, queue)
	if err != nil {
		return nil, err
	}
	oe.registry = registry
	otel.SetMeterProvider(oe.meterProvider)

	return oe, nil
}

func newExporter(reader sdkmetric.Reader, collector Collector, queue QueueLen) (*OTelExporter, error) {
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
	)

	meter := meterProvider.Meter(
		"message-relay",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		collector:     collector,
		queue:         queue,
		meter:         meter,
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates and registers all OpenTelemetry metric instruments
func (oe *OTelExporter) registerInstruments() error {
	var err error

	oe.requests, err = oe.meter.Int64Counter(
		"webhook.requests",
		metric.WithDescription("Inbound webhook calls by outcome"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return fmt.Errorf("creating requests counter: %w", err)
	}

	oe.actions, err = oe.meter.Int64Counter(
		"webhook.actions",
		metric.WithDescription("Configured actions executed, by action and result"),
		metric.WithUnit("{actions}"),
	)
	if err != nil {
		return fmt.Errorf("creating actions counter: %w", err)
	}

	oe.deliveries, err = oe.meter.Int64Counter(
		"relay.delivery.attempts",
		metric.WithDescription("Outbound delivery attempts by result"),
		metric.WithUnit("{attempts}"),
	)
	if err != nil {
		return fmt.Errorf("creating delivery counter: %w", err)
	}

	oe.exhausted, err = oe.meter.Int64Counter(
		"relay.delivery.exhausted",
		metric.WithDescription("Events dropped after exhausting retries"),
		metric.WithUnit("{events}"),
	)
	if err != nil {
		return fmt.Errorf("creating exhausted counter: %w", err)
	}

	oe.queueLengthGauge, err = oe.meter.Int64ObservableGauge(
		"relay.queue.length",
		metric.WithDescription("Events waiting for a delivery retry"),
		metric.WithUnit("{events}"),
		metric.WithInt64Callback(oe.observeQueueLength),
	)
	if err != nil {
		return fmt.Errorf("creating queue length gauge: %w", err)
	}

	oe.receivedGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.received",
		metric.WithDescription("Stored received counter per webhook"),
		metric.WithUnit("{requests}"),
		metric.WithInt64Callback(oe.observeReceived),
	)
	if err != nil {
		return fmt.Errorf("creating received gauge: %w", err)
	}

	oe.auditGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.audit.records",
		metric.WithDescription("Stored audit records per webhook"),
		metric.WithUnit("{records}"),
		metric.WithInt64Callback(oe.observeAudit),
	)
	if err != nil {
		return fmt.Errorf("creating audit gauge: %w", err)
	}

	return nil
}

// RecordRequest counts one inbound call. outcome is accepted, duplicate or a rejection reason.
func (oe *OTelExporter) RecordRequest(ctx context.Context, outcome string) {
	oe.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordAction counts one action execution
func (oe *OTelExporter) RecordAction(ctx context.Context, action string, ok bool) {
	oe.actions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.Bool("ok", ok),
	))
}

// Attempted implements relay.Observer
func (oe *OTelExporter) Attempted(ctx context.Context, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	oe.deliveries.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// Exhausted implements relay.Observer
func (oe *OTelExporter) Exhausted(ctx context.Context) {
	oe.exhausted.Add(ctx, 1)
}

func (oe *OTelExporter) observeQueueLength(_ context.Context, observer metric.Int64Observer) error {
	if oe.queue != nil {
		observer.Observe(int64(oe.queue.Len()))
	}
	return nil
}

func (oe *OTelExporter) observeReceived(ctx context.Context, observer metric.Int64Observer) error {
	if oe.collector == nil {
		return nil
	}
	counts, err := oe.collector.GetReceivedCounts(ctx)
	if err != nil {
		return err
	}
	for webhookID, n := range counts {
		observer.Observe(n, metric.WithAttributes(attribute.String("webhook.id", webhookID)))
	}
	return nil
}

func (oe *OTelExporter) observeAudit(ctx context.Context, observer metric.Int64Observer) error {
	if oe.collector == nil {
		return nil
	}
	counts, err := oe.collector.GetAuditCounts(ctx)
	if err != nil {
		return err
	}
	for webhookID, n := range counts {
		observer.Observe(n, metric.WithAttributes(attribute.String("webhook.id", webhookID)))
	}
	return nil
}

// ServeHTTP returns the handler serving Prometheus-formatted metrics
func (oe *OTelExporter) ServeHTTP() http.Handler {
	if oe.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(oe.registry, promhttp.HandlerOpts{})
}

// Snapshot returns the current metrics as JSON-friendly values
func (oe *OTelExporter) Snapshot(ctx context.Context) (Metrics, error) {
	return Collect(ctx, oe.collector, oe.queue)
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
