// Package metrics holds the Prometheus collectors shared by the domain packages.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CodesIssued counts one-time codes handed to a delivery channel, by channel.
	CodesIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homehelp_otp_codes_issued_total",
			Help: "Total number of one-time codes issued",
		},
		[]string{"channel"},
	)

	// CodeVerifications counts verification attempts by outcome.
	CodeVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homehelp_otp_verifications_total",
			Help: "Total number of one-time code verifications by result",
		},
		[]string{"result"},
	)

	// CouponsApplied counts coupon applications by result.
	CouponsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homehelp_coupons_applied_total",
			Help: "Total number of coupon applications by result",
		},
		[]string{"result"},
	)

	// BookingsCreated counts confirmed booking requests.
	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homehelp_bookings_created_total",
			Help: "Total number of bookings created",
		},
	)

	// HTTPRequests counts served requests by method, route and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homehelp_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)
