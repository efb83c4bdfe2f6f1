// Package metrics exposes Prometheus metrics for launch phase tracking.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"mintwatch/internal/domain"
)

var (
	// CurrentPhase is 1 for the phase a launch is in and 0 for every other phase.
	CurrentPhase = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mintwatch_launch_phase",
		Help: "Current classified phase per launch (1 = active).",
	}, []string{"launch", "phase"})

	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mintwatch_phase_transitions_total",
		Help: "Total number of observed phase transitions, by from and to phase.",
	}, []string{"from", "to"})

	SnapshotErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mintwatch_snapshot_errors_total",
		Help: "Total number of failed account snapshot fetches, by launch.",
	}, []string{"launch"})
)

// SetPhase marks p as the active phase of launch.
func SetPhase(launch string, p domain.Phase) {
	for _, candidate := range domain.Phases() {
		v := 0.0
		if candidate == p {
			v = 1
		}
		CurrentPhase.WithLabelValues(launch, candidate.String()).Set(v)
	}
}

// ForgetLaunch drops all series of a launch that is no longer tracked.
func ForgetLaunch(launch string) {
	CurrentPhase.DeletePartialMatch(prometheus.Labels{"launch": launch})
	SnapshotErrorsTotal.DeleteLabelValues(launch)
}

func RecordTransition(t domain.Transition) {
	TransitionsTotal.WithLabelValues(t.From.String(), t.To.String()).Inc()
}
