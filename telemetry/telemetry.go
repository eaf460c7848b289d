// Package telemetry bootstraps process-level OpenTelemetry trace and log pipelines.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"github.com/amp-labs/amp-lifecycle/errors"
	"github.com/amp-labs/amp-lifecycle/shutdown"
)

// In-cluster collector endpoint assumed when running under Kubernetes
// without an explicit endpoint.
const defaultClusterEndpoint = "http://opentelemetry-collector.opentelemetry.svc.cluster.local:4318"

//nolint:gochecknoglobals // Providers are process-level singletons
var (
	tracerProvider *sdktrace.TracerProvider
	loggerProvider *sdklog.LoggerProvider
)

// Config holds the OpenTelemetry configuration.
type Config struct {
	ServiceName    string        `env:"OTEL_SERVICE_NAME"    envDefault:"amp-lifecycle"`
	ServiceVersion string        `env:"OTEL_SERVICE_VERSION" envDefault:"1.0.0"`
	Environment    string        `env:"OTEL_ENVIRONMENT"     envDefault:"development"`
	TracesEndpoint string        `env:"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"`
	LogsEndpoint   string        `env:"OTEL_EXPORTER_OTLP_LOGS_ENDPOINT"`
	Enabled        bool          `env:"OTEL_ENABLED"               envDefault:"false"`
	Timeout        time.Duration `env:"OTEL_EXPORTER_OTLP_TIMEOUT" envDefault:"5s"`
}

// LoadConfigFromEnv loads OpenTelemetry configuration from environment
// variables. Inside Kubernetes, unset endpoints fall back to the
// in-cluster collector; the log endpoint falls back to the trace one.
func LoadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse telemetry config: %w", err)
	}

	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		if cfg.TracesEndpoint == "" {
			cfg.TracesEndpoint = defaultClusterEndpoint
		}

		if cfg.LogsEndpoint == "" {
			cfg.LogsEndpoint = defaultClusterEndpoint
		}
	}

	if cfg.LogsEndpoint == "" {
		cfg.LogsEndpoint = cfg.TracesEndpoint
	}

	return &cfg, nil
}

// Initialize sets up the OpenTelemetry trace and log pipelines with the
// given configuration and registers a flush on shutdown.
func Initialize(ctx context.Context, config *Config) error {
	if !config.Enabled {
		slog.Info("OpenTelemetry is disabled")

		return nil
	}

	if config.TracesEndpoint == "" && config.LogsEndpoint == "" {
		slog.Warn("OpenTelemetry endpoints not configured, telemetry will be disabled")

		return nil
	}

	// Create resource with service information
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	if config.TracesEndpoint != "" {
		if err := initTraces(ctx, config, res); err != nil {
			return err
		}
	}

	if config.LogsEndpoint != "" {
		if err := initLogs(ctx, config, res); err != nil {
			return err
		}
	}

	timeout := config.Timeout

	shutdown.BeforeShutdown("telemetry", func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := Shutdown(flushCtx); err != nil {
			slog.Error("Telemetry shutdown failed", "error", err)
		}
	})

	slog.Info("OpenTelemetry initialized",
		"service", config.ServiceName,
		"version", config.ServiceVersion,
		"environment", config.Environment,
		"traces", config.TracesEndpoint,
		"logs", config.LogsEndpoint,
	)

	return nil
}

func initTraces(ctx context.Context, config *Config, res *resource.Resource) error {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(config.TracesEndpoint),
		otlptracehttp.WithTimeout(config.Timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	// Set the global trace provider
	otel.SetTracerProvider(tracerProvider)

	// Set the global propagator to support trace context propagation
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return nil
}

func initLogs(ctx context.Context, config *Config, res *resource.Resource) error {
	exporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpointURL(config.LogsEndpoint),
		otlploghttp.WithTimeout(config.Timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}

	loggerProvider = sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	)

	return nil
}

// SlogHandler returns a slog handler that forwards records to the OTLP
// log pipeline. Before Initialize, or when the log pipeline is not
// configured, it returns the current default handler.
func SlogHandler(name string) slog.Handler {
	if loggerProvider == nil {
		return slog.Default().Handler()
	}

	return otelslog.NewHandler(name, otelslog.WithLoggerProvider(loggerProvider))
}

// Shutdown flushes and stops the telemetry providers.
func Shutdown(ctx context.Context) error {
	var collection errors.Collection

	if tracerProvider != nil {
		slog.Info("Shutting down OpenTelemetry tracer provider")

		if err := tracerProvider.Shutdown(ctx); err != nil {
			collection.Add(fmt.Errorf("tracer provider shutdown: %w", err))
		}

		tracerProvider = nil
	}

	if loggerProvider != nil {
		slog.Info("Shutting down OpenTelemetry logger provider")

		if err := loggerProvider.Shutdown(ctx); err != nil {
			collection.Add(fmt.Errorf("logger provider shutdown: %w", err))
		}

		loggerProvider = nil
	}

	return collection.GetError()
}
