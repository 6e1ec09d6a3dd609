// Package metrics Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gogwan"

var (
	// HTTPRequests 请求计数，按路由、方法、状态码
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests",
	}, []string{"route", "method", "status"})

	// HTTPLatency 请求耗时
	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"route", "method"})

	// FeatureUsage 功能调用，result 为 success 或 error
	FeatureUsage = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "feature",
		Name:      "calls_total",
		Help:      "Feature invocations by result",
	}, []string{"feature", "result"})

	// GenerationLatency 模型生成耗时
	GenerationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "generation",
		Name:      "duration_seconds",
		Help:      "Model generation latency in seconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"kind", "provider"})

	// FortuneComputations 四柱计算次数，calendar 为 solar 或 lunar
	FortuneComputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "saju",
		Name:      "computations_total",
		Help:      "Four-pillar computations by input calendar",
	}, []string{"calendar"})

	// InterpretationCache 解读缓存命中情况，result 为 hit 或 miss
	InterpretationCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "saju",
		Name:      "interpretation_cache_total",
		Help:      "Interpretation cache lookups by result",
	}, []string{"result"})
)

// Result 把 error 转成标签值
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
