package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics are the store-level counters and histograms exposed on
// /metrics next to the HTTP metrics.
type BusinessMetrics struct {
	ProductViews    *prometheus.CounterVec // source: detail, featured, category
	ProductSearches *prometheus.CounterVec // filter_type: search, category, price, none

	CartMutations *prometheus.CounterVec
	CartValue     *prometheus.HistogramVec

	CouponEvaluations *prometheus.CounterVec // outcome: applied or the rejection reason
	CouponRedemptions *prometheus.CounterVec

	OrdersCreated      *prometheus.CounterVec
	OrderValue         *prometheus.HistogramVec
	OrderStatusChanges *prometheus.CounterVec

	ReviewsSubmitted *prometheus.CounterVec // action: create, update
	ReviewsApproved  *prometheus.CounterVec

	Signups     *prometheus.CounterVec // source: register, admin, bootstrap
	Logins      *prometheus.CounterVec
	LoginFailed *prometheus.CounterVec

	SyncRuns     *prometheus.CounterVec // kind: categories, products
	SyncImported *prometheus.CounterVec
	SyncDuration *prometheus.HistogramVec

	FakeStoreLatency *prometheus.HistogramVec
}

var (
	moneyBuckets    = []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000}
	upstreamBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30}
)

// metricSet registers everything under <namespace>_business_.
type metricSet struct {
	factory   promauto.Factory
	namespace string
}

func (s metricSet) counter(name, help string, labels ...string) *prometheus.CounterVec {
	return s.factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: s.namespace,
		Subsystem: "business",
		Name:      name,
		Help:      help,
	}, labels)
}

func (s metricSet) histogram(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return s.factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: s.namespace,
		Subsystem: "business",
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
}

// NewBusinessMetrics registers the metrics with reg, or with the default
// registry when reg is nil.
func NewBusinessMetrics(namespace string, reg prometheus.Registerer) *BusinessMetrics {
	if namespace == "" {
		namespace = "emporium"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := metricSet{factory: promauto.With(reg), namespace: namespace}

	return &BusinessMetrics{
		ProductViews:    s.counter("product_views_total", "Product detail reads", "source"),
		ProductSearches: s.counter("product_searches_total", "Product listings by filter", "filter_type"),

		CartMutations: s.counter("cart_mutations_total", "Cart mutations by operation and outcome", "operation", "result"),
		CartValue:     s.histogram("cart_total_amount", "Cart totals seen at price preview", moneyBuckets, "coupon_applied"),

		CouponEvaluations: s.counter("coupon_evaluations_total", "Coupon checks by outcome", "outcome"),
		CouponRedemptions: s.counter("coupon_redemptions_total", "Coupons redeemed by placed orders", "code"),

		OrdersCreated:      s.counter("orders_created_total", "Orders placed", "with_coupon"),
		OrderValue:         s.histogram("order_total_amount", "Order totals after discount", moneyBuckets, "with_coupon"),
		OrderStatusChanges: s.counter("order_status_changes_total", "Order status transitions by target status", "status"),

		ReviewsSubmitted: s.counter("reviews_submitted_total", "Reviews created or edited", "action"),
		ReviewsApproved:  s.counter("reviews_approved_total", "Reviews approved by staff", "rating"),

		Signups:     s.counter("signups_total", "Accounts created", "role", "source"),
		Logins:      s.counter("logins_total", "Successful logins", "role"),
		LoginFailed: s.counter("login_failed_total", "Failed login attempts", "reason"),

		SyncRuns:     s.counter("sync_runs_total", "Catalog sync runs by kind and result", "kind", "result"),
		SyncImported: s.counter("sync_imported_total", "Rows created by catalog sync", "kind"),
		SyncDuration: s.histogram("sync_duration_seconds", "Catalog sync run duration", prometheus.DefBuckets, "kind"),

		FakeStoreLatency: s.histogram("fakestore_api_duration_seconds", "FakeStore API request latency", upstreamBuckets, "endpoint", "result"),
	}
}

// Business is the process-wide set. It stays nil until
// InitBusinessMetrics runs, so callers guard with a nil check.
var Business *BusinessMetrics

// InitBusinessMetrics sets Business, registering on the default registry.
func InitBusinessMetrics(namespace string) *BusinessMetrics {
	Business = NewBusinessMetrics(namespace, nil)
	return Business
}
