package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// authAttempts counts lifecycle operations by outcome so dashboards can
// separate user error (invalid_token, incorrect_password) from faults.
var authAttempts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storify_auth_attempts_total",
		Help: "Account lifecycle operations by operation and result.",
	},
	[]string{"operation", "result"},
)
