package telemetry

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// InitMeterProvider initializes the Prometheus exporter and MeterProvider.
// It returns an http.Handler for the /metrics endpoint and a shutdown function.
func InitMeterProvider(serviceName, serviceVersion string) (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
	)

	mp := metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	return promhttp.Handler(), mp.Shutdown, nil
}

// Metrics holds the storefront's business counters. A nil *Metrics records
// nothing.
type Metrics struct {
	ordersPlaced       otelmetric.Int64Counter
	orderValue         otelmetric.Float64Histogram
	submissionFailures otelmetric.Int64Counter
	cartAdds           otelmetric.Int64Counter
	authFailures       otelmetric.Int64Counter
}

func NewMetrics(meter otelmetric.Meter) (*Metrics, error) {
	ordersPlaced, err := meter.Int64Counter("storefront.orders.placed",
		otelmetric.WithDescription("Orders accepted by the order store"))
	if err != nil {
		return nil, err
	}
	orderValue, err := meter.Float64Histogram("storefront.orders.value",
		otelmetric.WithDescription("Order totals in USD"),
		otelmetric.WithUnit("USD"))
	if err != nil {
		return nil, err
	}
	submissionFailures, err := meter.Int64Counter("storefront.orders.submission_failures",
		otelmetric.WithDescription("Order submissions rejected or failed at the order store"))
	if err != nil {
		return nil, err
	}
	cartAdds, err := meter.Int64Counter("storefront.cart.items_added",
		otelmetric.WithDescription("Add-to-cart operations"))
	if err != nil {
		return nil, err
	}
	authFailures, err := meter.Int64Counter("storefront.auth.failures",
		otelmetric.WithDescription("Failed login and signup attempts by error kind"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ordersPlaced:       ordersPlaced,
		orderValue:         orderValue,
		submissionFailures: submissionFailures,
		cartAdds:           cartAdds,
		authFailures:       authFailures,
	}, nil
}

func (m *Metrics) OrderPlaced(ctx context.Context, currency string, totalUSD float64) {
	if m == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("currency", currency))
	m.ordersPlaced.Add(ctx, 1, attrs)
	m.orderValue.Record(ctx, totalUSD, attrs)
}

func (m *Metrics) SubmissionFailed(ctx context.Context) {
	if m == nil {
		return
	}
	m.submissionFailures.Add(ctx, 1)
}

func (m *Metrics) CartItemAdded(ctx context.Context) {
	if m == nil {
		return
	}
	m.cartAdds.Add(ctx, 1)
}

func (m *Metrics) AuthFailed(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.authFailures.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("kind", kind)))
}
