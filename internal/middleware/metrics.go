package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 服务指标
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	willActions  *prometheus.CounterVec
	actionTime   *prometheus.HistogramVec
	chainPolls   *prometheus.CounterVec
	priceUpdates *prometheus.CounterVec
	sessions     prometheus.Gauge
}

// NewMetrics 创建并注册指标
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "digitalwill_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "digitalwill_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		willActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "digitalwill_will_actions_total",
			Help: "Will contract actions by action and outcome.",
		}, []string{"action", "status"}),
		actionTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "digitalwill_will_action_duration_seconds",
			Help:    "Will contract action latency including confirmation.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"action"}),
		chainPolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "digitalwill_chain_polls_total",
			Help: "get_will polls by result.",
		}, []string{"result"}),
		priceUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "digitalwill_price_updates_total",
			Help: "Price refreshes by outcome.",
		}, []string{"status"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "digitalwill_wallet_sessions",
			Help: "Connected wallet sessions.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.willActions, m.actionTime,
		m.chainPolls, m.priceUpdates, m.sessions,
	)
	return m
}

// Registry 指标注册表
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 处理器
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return gin.WrapH(h)
}

// Middleware HTTP 请求指标
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// ObserveAction 记录合约操作结果
func (m *Metrics) ObserveAction(action, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.willActions.WithLabelValues(action, status).Inc()
	m.actionTime.WithLabelValues(action).Observe(d.Seconds())
}

// ObservePoll 记录轮询结果: present, absent, malformed, error
func (m *Metrics) ObservePoll(result string) {
	if m == nil {
		return
	}
	m.chainPolls.WithLabelValues(result).Inc()
}

// ObservePriceUpdate 记录价格刷新结果
func (m *Metrics) ObservePriceUpdate(status string) {
	if m == nil {
		return
	}
	m.priceUpdates.WithLabelValues(status).Inc()
}

// SessionOpened / SessionClosed 会话计数
func (m *Metrics) SessionOpened() {
	if m != nil {
		m.sessions.Inc()
	}
}

func (m *Metrics) SessionClosed() {
	if m != nil {
		m.sessions.Dec()
	}
}
