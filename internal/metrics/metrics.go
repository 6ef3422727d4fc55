// Package metrics exposes game counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resolution triggers
const (
	TriggerDeadline = "deadline"
	TriggerEarly    = "early"
)

// Metrics holds the counters for one registry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	votesCast       *prometheus.CounterVec
	votesRejected   *prometheus.CounterVec
	windowsResolved *prometheus.CounterVec
	resolveFaults   *prometheus.CounterVec
	decayTicks      prometheus.Counter
	commands        *prometheus.CounterVec
}

// New registers the game counters on a fresh registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		votesCast: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crowdplay_votes_cast_total",
				Help: "Total number of accepted votes, partitioned by game mode.",
			},
			[]string{"mode"},
		),
		votesRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crowdplay_votes_rejected_total",
				Help: "Total number of rejected votes, partitioned by game mode and reason.",
			},
			[]string{"mode", "reason"},
		),
		windowsResolved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crowdplay_windows_resolved_total",
				Help: "Total number of resolved voting windows, partitioned by mode and trigger.",
			},
			[]string{"mode", "trigger"},
		),
		resolveFaults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crowdplay_resolve_faults_total",
				Help: "Total number of resolutions that failed and reset their session.",
			},
			[]string{"mode"},
		),
		decayTicks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "crowdplay_pet_decay_ticks_total",
				Help: "Total number of pet decay ticks applied.",
			},
		),
		commands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crowdplay_commands_total",
				Help: "Total number of routed chat commands, partitioned by command.",
			},
			[]string{"command"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) VoteCast(mode string) {
	if m == nil {
		return
	}
	m.votesCast.WithLabelValues(mode).Inc()
}

func (m *Metrics) VoteRejected(mode, reason string) {
	if m == nil {
		return
	}
	m.votesRejected.WithLabelValues(mode, reason).Inc()
}

func (m *Metrics) WindowResolved(mode, trigger string) {
	if m == nil {
		return
	}
	m.windowsResolved.WithLabelValues(mode, trigger).Inc()
}

func (m *Metrics) ResolveFault(mode string) {
	if m == nil {
		return
	}
	m.resolveFaults.WithLabelValues(mode).Inc()
}

func (m *Metrics) DecayTick() {
	if m == nil {
		return
	}
	m.decayTicks.Inc()
}

func (m *Metrics) CommandRouted(command string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command).Inc()
}
