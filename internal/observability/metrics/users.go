package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UserRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_requests_total",
			Help: "Total number of user service requests",
		},
		[]string{"method", "path"},
	)

	UserRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "user_requests_in_flight",
			Help: "Number of user service requests currently being processed",
		},
	)

	UserRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "user_request_duration_seconds",
			Help:    "Duration of user service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	UsersRegisteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "users_registered_total",
			Help: "Total number of successfully registered users",
		},
	)

	RegistrationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_failures_total",
			Help: "Total number of failed registrations by reason",
		},
		[]string{"reason"},
	)

	OpaqueIDResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opaque_id_resolutions_total",
			Help: "Total number of opaque id resolutions by result",
		},
		[]string{"result"},
	)

	OpaqueIDMaterializationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "opaque_id_materializations_total",
			Help: "Total number of opaque ids persisted after user creation",
		},
	)
)
