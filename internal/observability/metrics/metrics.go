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
	rfqDistributions metric.Int64Counter
	rfqItems         metric.Int64Counter
	vendorRequests   metric.Int64Counter
	vendorResponses  metric.Int64Counter
	emailOutcomes    metric.Int64Counter
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

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "procura"
	}
	meter := provider.Meter(name)

	rfqDistributions, err := meter.Int64Counter("procura_rfq_distributions_total")
	if err != nil {
		return nil, err
	}
	rfqItems, err := meter.Int64Counter("procura_rfq_items_total")
	if err != nil {
		return nil, err
	}
	vendorRequests, err := meter.Int64Counter("procura_rfq_vendor_requests_total")
	if err != nil {
		return nil, err
	}
	vendorResponses, err := meter.Int64Counter("procura_vendor_responses_total")
	if err != nil {
		return nil, err
	}
	emailOutcomes, err := meter.Int64Counter("procura_rfq_emails_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		rfqDistributions: rfqDistributions,
		rfqItems:         rfqItems,
		vendorRequests:   vendorRequests,
		vendorResponses:  vendorResponses,
		emailOutcomes:    emailOutcomes,
	}, nil
}

// RecordDistribution increments distribution counts.
func (m *Metrics) RecordDistribution(ctx context.Context, vendors, items int) {
	if m == nil {
		return
	}
	m.rfqDistributions.Add(ctx, 1)
	m.vendorRequests.Add(ctx, int64(vendors))
	m.rfqItems.Add(ctx, int64(items))
}

// RecordVendorResponse increments accepted vendor response counts.
func (m *Metrics) RecordVendorResponse(ctx context.Context) {
	if m == nil {
		return
	}
	m.vendorResponses.Add(ctx, 1)
}

// RecordEmailOutcome increments delivery outcome counts by result.
func (m *Metrics) RecordEmailOutcome(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.emailOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", strings.TrimSpace(result)),
	))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
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
