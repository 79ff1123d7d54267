package trace

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/scienceol/molbank/pkg/middleware/logger"
	"go.opentelemetry.io/contrib/instrumentation/host"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type InitConfig struct {
	ServiceName    string
	Version        string
	Env            string
	TraceEndpoint  string
	MetricEndpoint string
	TraceProject   string
	Stdout         bool
}

var (
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
)

// InitTrace 配置全局 TracerProvider 和 MeterProvider。
// 没有配置 endpoint 且没有打开 stdout 时保持 otel 默认的 noop 实现。
func InitTrace(ctx context.Context, conf *InitConfig) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", conf.ServiceName),
			attribute.String("service.version", conf.Version),
			attribute.String("deployment.environment", conf.Env),
			attribute.String("project", conf.TraceProject),
		),
		resource.WithHost(),
		resource.WithProcessRuntimeName(),
	)
	if err != nil {
		logger.Warnf(ctx, "build trace resource err: %+v", err)
		res = resource.Default()
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	if spanExporter := newSpanExporter(ctx, conf); spanExporter != nil {
		tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(spanExporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tracerProvider)
	}

	if metricExporter := newMetricExporter(ctx, conf); metricExporter != nil {
		meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
				sdkmetric.WithInterval(30*time.Second))),
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(meterProvider)

		if err := host.Start(host.WithMeterProvider(meterProvider)); err != nil {
			logger.Warnf(ctx, "start host metrics err: %+v", err)
		}
		if err := runtime.Start(runtime.WithMeterProvider(meterProvider)); err != nil {
			logger.Warnf(ctx, "start runtime metrics err: %+v", err)
		}
	}
}

func newSpanExporter(ctx context.Context, conf *InitConfig) sdktrace.SpanExporter {
	switch {
	case conf.TraceEndpoint != "":
		exp, err := otlptrace.New(ctx, otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(conf.TraceEndpoint),
			otlptracegrpc.WithInsecure(),
		))
		if err != nil {
			logger.Errorf(ctx, "init otlp trace exporter err: %+v", err)
			return nil
		}
		return exp
	case conf.Stdout:
		exp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
		if err != nil {
			logger.Errorf(ctx, "init stdout trace exporter err: %+v", err)
			return nil
		}
		return exp
	default:
		return nil
	}
}

func newMetricExporter(ctx context.Context, conf *InitConfig) sdkmetric.Exporter {
	switch {
	case conf.MetricEndpoint != "":
		exp, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(conf.MetricEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			logger.Errorf(ctx, "init otlp metric exporter err: %+v", err)
			return nil
		}
		return exp
	case conf.Stdout:
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stdout))
		if err != nil {
			logger.Errorf(ctx, "init stdout metric exporter err: %+v", err)
			return nil
		}
		return exp
	default:
		return nil
	}
}

func CloseTrace() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if tracerProvider != nil {
		errs = append(errs, tracerProvider.Shutdown(ctx))
	}
	if meterProvider != nil {
		errs = append(errs, meterProvider.Shutdown(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		logger.Errorf(ctx, "close trace err: %+v", err)
	}
}
