package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bakehouse", Name: "http_requests_total", Help: "Number of handled HTTP requests by method, route and status."},
		[]string{"method", "route", "status"},
	)
	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bakehouse", Name: "uploads_total", Help: "Number of image uploads by storage backend and result."},
		[]string{"backend", "result"},
	)
	StoreWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bakehouse", Name: "store_writes_total", Help: "Number of document rewrites by document and result."},
		[]string{"document", "result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(Uploads)
	reg.MustRegister(StoreWrites)
}
