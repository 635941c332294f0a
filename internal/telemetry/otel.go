package telemetry

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const serviceName = "tutor-llm"

// ShutdownFunc vacía y cierra los exportadores.
type ShutdownFunc func(ctx context.Context) error

// Init registra proveedores globales de trazas y métricas que escriben en archivos
// rotados. Con traceFile vacío no hace nada: quedan los proveedores no-op de otel.
func Init(ctx context.Context, traceFile string) (ShutdownFunc, error) {
	if traceFile == "" {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	traceWriter := newRotatingFile(traceFile)
	traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(traceWriter))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)

	metricWriter := newRotatingFile(metricsPath(traceFile))
	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(metricWriter))
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
			sdkmetric.WithInterval(30*time.Second))),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	return func(ctx context.Context) error {
		return errors.Join(
			tp.Shutdown(ctx),
			mp.Shutdown(ctx),
			traceWriter.Close(),
			metricWriter.Close(),
		)
	}, nil
}

// metricsPath deriva el archivo de métricas del de trazas: traces.log -> traces.metrics.log.
func metricsPath(traceFile string) string {
	if i := strings.LastIndex(traceFile, "."); i > strings.LastIndex(traceFile, "/") {
		return traceFile[:i] + ".metrics" + traceFile[i:]
	}
	return traceFile + ".metrics"
}
