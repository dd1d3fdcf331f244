package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 向导相关指标
	GuardDecisionTotal  metric.Int64Counter
	StepCommitTotal     metric.Int64Counter
	StepCommitDuration  metric.Float64Histogram
	StepValidationTotal metric.Int64Counter
	ProgressCacheTotal  metric.Int64Counter

	// 远端后端调用
	BackendRequestTotal    metric.Int64Counter
	BackendRequestDuration metric.Float64Histogram

	// HTTP 相关指标
	HTTPServerRequestTotal   metric.Int64Counter
	HTTPServerDuration       metric.Float64Histogram
	HTTPServerRequestSize    metric.Int64Histogram
	HTTPServerResponseSize   metric.Int64Histogram
	HTTPServerActiveRequests metric.Int64UpDownCounter
}

var (
	// 全局指标实例，InitMetrics 之前为 nil，所有记录函数都会直接返回
	metrics *OTelMetrics
	meter   = otel.Meter("carona-condominio")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	m, err := newOTelMetrics(meter)
	if err != nil {
		return err
	}
	metrics = m
	return nil
}

func newOTelMetrics(meter metric.Meter) (*OTelMetrics, error) {
	var err error
	m := &OTelMetrics{}

	m.GuardDecisionTotal, err = meter.Int64Counter(
		"wizard_guard_decisions_total",
		metric.WithDescription("Total number of wizard guard decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}

	m.StepCommitTotal, err = meter.Int64Counter(
		"wizard_step_commits_total",
		metric.WithDescription("Total number of wizard step commits"),
		metric.WithUnit("{commit}"),
	)
	if err != nil {
		return nil, err
	}

	m.StepCommitDuration, err = meter.Float64Histogram(
		"wizard_step_commit_duration_seconds",
		metric.WithDescription("Time spent committing a wizard step in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.StepValidationTotal, err = meter.Int64Counter(
		"wizard_step_validation_failures_total",
		metric.WithDescription("Total number of rejected wizard step submissions"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}

	m.ProgressCacheTotal, err = meter.Int64Counter(
		"wizard_progress_cache_lookups_total",
		metric.WithDescription("Progress cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	m.BackendRequestTotal, err = meter.Int64Counter(
		"backend_requests_total",
		metric.WithDescription("Total number of remote backend requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.BackendRequestDuration, err = meter.Float64Histogram(
		"backend_request_duration_seconds",
		metric.WithDescription("Remote backend request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPServerRequestTotal, err = meter.Int64Counter(
		"http.server.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPServerDuration, err = meter.Float64Histogram(
		"http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPServerRequestSize, err = meter.Int64Histogram(
		"http.server.request.size",
		metric.WithDescription("HTTP request size"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPServerResponseSize, err = meter.Int64Histogram(
		"http.server.response.size",
		metric.WithDescription("HTTP response size"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPServerActiveRequests, err = meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordGuardDecision 记录守卫结果：allow / redirect / login
func (m *OTelMetrics) RecordGuardDecision(ctx context.Context, route, decision string) {
	m.GuardDecisionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("decision", decision),
	))
}

// RecordStepCommit 记录一次步骤提交
func (m *OTelMetrics) RecordStepCommit(ctx context.Context, position int, status string, duration float64) {
	attrs := metric.WithAttributes(
		attribute.Int("position", position),
		attribute.String("status", status),
	)
	m.StepCommitTotal.Add(ctx, 1, attrs)
	m.StepCommitDuration.Record(ctx, duration, attrs)
}

func (m *OTelMetrics) RecordStepValidationFailure(ctx context.Context, position int) {
	m.StepValidationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("position", position),
	))
}

// RecordProgressCache hit / miss
func (m *OTelMetrics) RecordProgressCache(ctx context.Context, result string) {
	m.ProgressCacheTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
}

// RecordBackendRequest 记录远端调用，status 为 HTTP 状态码，网络错误时为 0
func (m *OTelMetrics) RecordBackendRequest(ctx context.Context, operation string, status int, duration float64) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Int("status_code", status),
	)
	m.BackendRequestTotal.Add(ctx, 1, attrs)
	m.BackendRequestDuration.Record(ctx, duration, attrs)
}

// RecordHTTPRequest 记录一次 HTTP 请求
func (m *OTelMetrics) RecordHTTPRequest(ctx context.Context, labels []attribute.KeyValue, duration float64, requestSize, responseSize int64) {
	attrs := metric.WithAttributes(labels...)
	m.HTTPServerRequestTotal.Add(ctx, 1, attrs)
	m.HTTPServerDuration.Record(ctx, duration, attrs)

	if requestSize > 0 {
		m.HTTPServerRequestSize.Record(ctx, requestSize, attrs)
	}
	if responseSize > 0 {
		m.HTTPServerResponseSize.Record(ctx, responseSize, attrs)
	}
}

func (m *OTelMetrics) AddActiveRequest(ctx context.Context, delta int64) {
	m.HTTPServerActiveRequests.Add(ctx, delta)
}
