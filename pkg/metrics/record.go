package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// 以下函数在指标未初始化时什么都不做，业务代码可以直接调用

func RecordGuardDecision(ctx context.Context, route, decision string) {
	if m := GetMetrics(); m != nil {
		m.RecordGuardDecision(ctx, route, decision)
	}
}

func RecordStepCommit(ctx context.Context, position int, status string, duration float64) {
	if m := GetMetrics(); m != nil {
		m.RecordStepCommit(ctx, position, status, duration)
	}
}

func RecordStepValidationFailure(ctx context.Context, position int) {
	if m := GetMetrics(); m != nil {
		m.RecordStepValidationFailure(ctx, position)
	}
}

func RecordProgressCache(ctx context.Context, hit bool) {
	m := GetMetrics()
	if m == nil {
		return
	}
	if hit {
		m.RecordProgressCache(ctx, "hit")
	} else {
		m.RecordProgressCache(ctx, "miss")
	}
}

func RecordBackendRequest(ctx context.Context, operation string, status int, duration float64) {
	if m := GetMetrics(); m != nil {
		m.RecordBackendRequest(ctx, operation, status, duration)
	}
}

func RecordHTTPRequest(ctx context.Context, labels []attribute.KeyValue, duration float64, requestSize, responseSize int64) {
	if m := GetMetrics(); m != nil {
		m.RecordHTTPRequest(ctx, labels, duration, requestSize, responseSize)
	}
}

func AddActiveRequest(ctx context.Context, delta int64) {
	if m := GetMetrics(); m != nil {
		m.AddActiveRequest(ctx, delta)
	}
}
