// Package services – business metrics
//
// Prometheus counters for marketplace throughput. HTTP-level metrics live in
// the middleware package; these counters track the two business events worth
// alerting on regardless of transport: distribution fan-out and claim
// outcomes.
package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// leadsDistributed counts access rows fanned out to tenants, one
	// increment per matched tenant in a distribution run.
	leadsDistributed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leadhub_leads_distributed_total",
		Help: "Total number of tenant access rows created or refreshed by distribution.",
	})

	// claimAttempts counts claim calls by outcome (claimed, already_claimed,
	// locked, missing_access, rejected).
	claimAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadhub_lead_claims_total",
		Help: "Total number of lead claim attempts by outcome.",
	}, []string{"outcome"})
)
