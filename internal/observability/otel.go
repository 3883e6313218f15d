package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"resumefit/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Metrics holds the custom metrics for enhancement workflows
type Metrics struct {
	// AI operation metrics
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AIRetryCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	// Business metrics
	EnhancementsCompleted metric.Int64Counter
	ReviewsCompleted      metric.Int64Counter
	RuleFallbacks         metric.Int64Counter
	TruthViolations       metric.Int64Counter
}

// Manager owns the OpenTelemetry tracer and meter providers for the process
type Manager struct {
	cfg              *config.Config
	serviceVersion   string
	tracerProvider   *trace.TracerProvider
	meterProvider    *sdkmetric.MeterProvider
	metrics          *Metrics
	shutdownFuncs    []func(context.Context) error
	prometheusServer *http.ServeMux
}

// NewManager sets up tracing and metrics per configuration. When
// observability is disabled the manager is inert: Tracer returns a no-op
// tracer and the metrics instance records nothing.
func NewManager(cfg *config.Config, version string) (*Manager, error) {
	m := &Manager{
		cfg:            cfg,
		serviceVersion: version,
	}
	if cfg == nil || !cfg.Observability.Enabled {
		return m, nil
	}

	if cfg.Observability.ServiceVersion != "" {
		m.serviceVersion = cfg.Observability.ServiceVersion
	}

	if err := m.initTracing(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return m, nil
}

func (m *Manager) enabled() bool {
	return m.cfg != nil && m.cfg.Observability.Enabled
}

// newResource creates the OpenTelemetry resource describing this service
func (m *Manager) newResource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(m.cfg.Observability.ServiceName),
			semconv.ServiceVersion(m.serviceVersion),
			attribute.String("service.instance.id", m.cfg.Observability.ServiceInstance),
		),
	)
}

// initTracing sets up the tracer provider
func (m *Manager) initTracing() error {
	var exporter trace.SpanExporter
	var err error

	switch {
	case m.cfg.Observability.ConsoleOutput:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case m.cfg.Observability.OTLP.Enabled:
		exporter, err = m.createOTLPTraceExporter()
	default:
		exporter = &noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := m.newResource()
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	sampleRate := m.cfg.Observability.Tracing.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(sampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	m.tracerProvider = tp
	m.shutdownFuncs = append(m.shutdownFuncs, tp.Shutdown)

	return nil
}

// initMetrics sets up the meter provider and custom instruments
func (m *Manager) initMetrics() error {
	readers, err := m.setupMetricReaders()
	if err != nil {
		return err
	}

	res, err := m.newResource()
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	m.meterProvider = mp
	m.shutdownFuncs = append(m.shutdownFuncs, mp.Shutdown)

	return m.initCustomMetrics()
}

// setupMetricReaders configures console, OTLP, and Prometheus readers
func (m *Manager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	if m.cfg.Observability.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(m.collectionInterval())))
	}

	if m.cfg.Observability.OTLP.Enabled {
		reader, err := m.createOTLPMetricsReader()
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, reader)
	}

	if m.cfg.Observability.Prometheus.Enabled {
		reader, mux, err := SetupPrometheusExporter(m.cfg.Observability.Prometheus)
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		if reader != nil {
			readers = append(readers, reader)
			m.prometheusServer = mux
			if err := StartPrometheusServer(mux, m.cfg.Observability.Prometheus.Port); err != nil {
				return nil, fmt.Errorf("failed to start Prometheus server: %w", err)
			}
		}
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}

	return readers, nil
}

// initCustomMetrics creates the enhancement workflow instruments
func (m *Manager) initCustomMetrics() error {
	meter := m.meterProvider.Meter(m.cfg.Observability.ServiceName)
	m.metrics = &Metrics{}
	var err error

	if m.metrics.AIProcessingTime, err = meter.Float64Histogram(
		"resumefit_ai_processing_duration_seconds",
		metric.WithDescription("Time spent processing AI requests"),
		metric.WithUnit("s"),
	); err != nil {
		return fmt.Errorf("failed to create AI processing time metric: %w", err)
	}

	if m.metrics.AIRequestCount, err = meter.Int64Counter(
		"resumefit_ai_requests_total",
		metric.WithDescription("Total number of AI requests"),
	); err != nil {
		return fmt.Errorf("failed to create AI request count metric: %w", err)
	}

	if m.metrics.AIErrorCount, err = meter.Int64Counter(
		"resumefit_ai_errors_total",
		metric.WithDescription("Total number of AI request errors"),
	); err != nil {
		return fmt.Errorf("failed to create AI error count metric: %w", err)
	}

	if m.metrics.AIRetryCount, err = meter.Int64Counter(
		"resumefit_ai_retries_total",
		metric.WithDescription("Total number of AI request retries"),
	); err != nil {
		return fmt.Errorf("failed to create AI retry count metric: %w", err)
	}

	if m.metrics.AITokenUsage, err = meter.Int64Histogram(
		"resumefit_ai_token_usage_total",
		metric.WithDescription("Token usage for AI requests (input, output, total)"),
		metric.WithUnit("tokens"),
	); err != nil {
		return fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	if m.metrics.EnhancementsCompleted, err = meter.Int64Counter(
		"resumefit_enhancements_total",
		metric.WithDescription("Total number of resume enhancements completed"),
	); err != nil {
		return fmt.Errorf("failed to create enhancements metric: %w", err)
	}

	if m.metrics.ReviewsCompleted, err = meter.Int64Counter(
		"resumefit_reviews_total",
		metric.WithDescription("Total number of resume reviews completed"),
	); err != nil {
		return fmt.Errorf("failed to create reviews metric: %w", err)
	}

	if m.metrics.RuleFallbacks, err = meter.Int64Counter(
		"resumefit_rule_fallbacks_total",
		metric.WithDescription("Total number of enhancements served by the rule-based fallback"),
	); err != nil {
		return fmt.Errorf("failed to create rule fallback metric: %w", err)
	}

	if m.metrics.TruthViolations, err = meter.Int64Counter(
		"resumefit_truth_violations_total",
		metric.WithDescription("Total number of enhancements rejected by the truthfulness validator"),
	); err != nil {
		return fmt.Errorf("failed to create truth violation metric: %w", err)
	}

	return nil
}

// GetMetrics returns the metrics instance; never nil
func (m *Manager) GetMetrics() *Metrics {
	if m.metrics == nil {
		return &Metrics{}
	}
	return m.metrics
}

// Tracer returns a tracer for the given instrumentation name
func (m *Manager) Tracer(name string) oteltrace.Tracer {
	if !m.enabled() {
		return noop.NewTracerProvider().Tracer(name)
	}
	return otel.Tracer(name)
}

// Shutdown flushes and stops all providers
func (m *Manager) Shutdown(ctx context.Context) error {
	for _, shutdown := range m.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// TokenUsage mirrors provider token accounting for metric recording
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// OperationResult carries an AI operation's outcome into metric recording
type OperationResult struct {
	Error      error
	TokenUsage *TokenUsage
}

// TrackAIOperation instruments an AI operation with a span, duration,
// request/error counters, and token usage
func (m *Manager) TrackAIOperation(ctx context.Context, operation string, fn func(context.Context) *OperationResult) error {
	metrics := m.GetMetrics()
	if metrics.AIProcessingTime == nil {
		result := fn(ctx)
		if result != nil {
			return result.Error
		}
		return nil
	}

	tracer := m.Tracer("resumefit.ai")
	ctx, span := tracer.Start(ctx, "ai."+operation)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	duration := time.Since(start).Seconds()

	var err error
	if result != nil {
		err = result.Error
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}

	metrics.AIProcessingTime.Record(ctx, duration, metric.WithAttributes(attrs...))
	metrics.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		metrics.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
	}

	if result != nil && result.TokenUsage != nil {
		m.recordTokenUsage(ctx, operation, result.TokenUsage)
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", result.TokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", result.TokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", result.TokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attrs...)
	return err
}

func (m *Manager) recordTokenUsage(ctx context.Context, operation string, usage *TokenUsage) {
	metrics := m.GetMetrics()
	if metrics.AITokenUsage == nil {
		return
	}
	for _, tt := range []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	} {
		metrics.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("token_type", tt.tokenType),
		))
	}
}

// RecordBusinessMetric records a workflow outcome counter
func (m *Manager) RecordBusinessMetric(ctx context.Context, metricType string, success bool, attributes ...attribute.KeyValue) {
	metrics := m.GetMetrics()
	attrs := append([]attribute.KeyValue{attribute.Bool("success", success)}, attributes...)

	var counter metric.Int64Counter
	switch metricType {
	case "enhancement_completed":
		counter = metrics.EnhancementsCompleted
	case "review_completed":
		counter = metrics.ReviewsCompleted
	case "rule_fallback":
		counter = metrics.RuleFallbacks
	case "truth_violation":
		counter = metrics.TruthViolations
	}
	if counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// noOpSpanExporter discards spans when no exporter is configured
type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// createOTLPTraceExporter creates an OTLP HTTP trace exporter
func (m *Manager) createOTLPTraceExporter() (trace.SpanExporter, error) {
	otlpConfig := m.cfg.Observability.OTLP

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

// createOTLPMetricsReader creates an OTLP HTTP metrics reader
func (m *Manager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	otlpConfig := m.cfg.Observability.OTLP

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	return sdkmetric.NewPeriodicReader(exporter,
		sdkmetric.WithInterval(m.collectionInterval())), nil
}

// collectionInterval returns the configured metrics collection interval
func (m *Manager) collectionInterval() time.Duration {
	if m.cfg != nil && m.cfg.Observability.Metrics.CollectionInterval > 0 {
		return m.cfg.Observability.Metrics.CollectionInterval
	}
	return 15 * time.Second
}
