package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	ordersPlaced    metric.Int64Counter
	billsCreated    metric.Int64Counter
	billingRuns     metric.Int64Counter
	billTransitions metric.Int64Counter
	aggregations    metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "tapledger"
	}
	meter := provider.Meter(name)

	ordersPlaced, err := meter.Int64Counter("tapledger_orders_placed_total")
	if err != nil {
		return nil, err
	}
	billsCreated, err := meter.Int64Counter("tapledger_bills_created_total")
	if err != nil {
		return nil, err
	}
	billingRuns, err := meter.Int64Counter("tapledger_billing_runs_total")
	if err != nil {
		return nil, err
	}
	billTransitions, err := meter.Int64Counter("tapledger_bill_transitions_total")
	if err != nil {
		return nil, err
	}
	aggregations, err := meter.Int64Counter("tapledger_aggregations_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ordersPlaced:    ordersPlaced,
		billsCreated:    billsCreated,
		billingRuns:     billingRuns,
		billTransitions: billTransitions,
		aggregations:    aggregations,
	}, nil
}

// RecordOrderPlaced counts placed orders by subject kind (personal or event).
func (m *Metrics) RecordOrderPlaced(ctx context.Context, subjectType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("subject_type", strings.TrimSpace(subjectType)))
	m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordBillsCreated adds the bills produced by one billing run.
func (m *Metrics) RecordBillsCreated(ctx context.Context, subjectType string, count int) {
	if m == nil || count <= 0 {
		return
	}
	attrs := FilterAttributes(attribute.String("subject_type", strings.TrimSpace(subjectType)))
	m.billsCreated.Add(ctx, int64(count), metric.WithAttributes(attrs...))
}

// RecordBillingRun counts billing runs by outcome.
func (m *Metrics) RecordBillingRun(ctx context.Context, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(status)))
	m.billingRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordBillTransition counts bill status changes.
func (m *Metrics) RecordBillTransition(ctx context.Context, from, to string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("from", strings.TrimSpace(from)),
		attribute.String("to", strings.TrimSpace(to)),
	)
	m.billTransitions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordAggregation counts statistics computations by kind.
func (m *Metrics) RecordAggregation(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("kind", strings.TrimSpace(kind)))
	m.aggregations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"subject_type": {},
	"status":       {},
	"from":         {},
	"to":           {},
	"kind":         {},
	"route":        {},
	"status_code":  {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
