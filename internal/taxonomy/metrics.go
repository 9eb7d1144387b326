// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// resolutionTotal counts public path resolutions by the state that
	// produced the answer.
	resolutionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taxonomy_resolution_total",
		Help: "Category path resolutions by outcome",
	}, []string{"outcome"})

	// resolutionFailures counts store failures swallowed by the fallback chain.
	resolutionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taxonomy_resolution_store_failures_total",
		Help: "Store failures degraded to a miss during resolution, by step",
	}, []string{"step"})

	// mutationTotal counts admin mutations by action and result.
	mutationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taxonomy_mutation_total",
		Help: "Category mutations by action and result",
	}, []string{"action", "result"})
)

// mutationResult maps an error onto a low-cardinality metric label.
func mutationResult(err error) string {
	var (
		ve *ValidationError
		ce *ConflictError
		cy *CycleError
		nf *NotFoundError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "invalid"
	case errors.As(err, &ce):
		return "conflict"
	case errors.As(err, &cy):
		return "cycle"
	case errors.As(err, &nf):
		return "not_found"
	default:
		return "error"
	}
}
