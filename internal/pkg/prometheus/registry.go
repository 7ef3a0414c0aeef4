package prometheus

import "github.com/prometheus/client_golang/prometheus"

var registry = prometheus.NewRegistry()

// Counters for the agent-builder loop and the trigger scheduler.
var (
	BuilderConversations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "agentdeck",
		Subsystem: "builder",
		Name:      "conversations_total",
		Help:      "Builder conversations started.",
	})
	BuilderIterations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "agentdeck",
		Subsystem: "builder",
		Name:      "iterations_total",
		Help:      "Provider calls made by the builder loop.",
	})
	BuilderFinalSpecs = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "agentdeck",
		Subsystem: "builder",
		Name:      "final_specs_total",
		Help:      "Conversations that produced a final agent spec.",
	})
	BuilderWarnings = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "agentdeck",
		Subsystem: "builder",
		Name:      "warnings_total",
		Help:      "Warning events emitted (invalid spec, iteration ceiling).",
	})
	TriggerFires = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentdeck",
		Subsystem: "trigger",
		Name:      "fires_total",
		Help:      "Scheduled trigger fire attempts by result.",
	}, []string{"result"})
)

func init() {
	registry.MustRegister(
		BuilderConversations,
		BuilderIterations,
		BuilderFinalSpecs,
		BuilderWarnings,
		TriggerFires,
	)
}

func GetRegistry() *prometheus.Registry {
	return registry
}
