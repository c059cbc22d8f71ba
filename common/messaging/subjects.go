package messaging

// Subject constants for the ranwatch message bus.
// Follow the pattern: {domain}.{resource}.{action}
const (
	// KPM indication subject - per-report telemetry published by the E2
	// termination (or the kpm-seeder tool in test rigs). Publishers append
	// their agent ID as the final token.
	SubjectTelemetryKPMIndication = "telemetry.kpm.indication"

	// Wildcard the detector subscribes on to receive every agent's reports.
	SubjectTelemetryKPMIndicationAll = "telemetry.kpm.indication.>"

	// Verdict lifecycle subjects - published by the detector after each
	// processed batch.
	SubjectDetectorVerdictsCreated = "detector.verdicts.created"
)

// Queue group names for load-balanced consumers.
// Workers in the same queue group share messages (each message processed once).
const (
	QueueDetectorWorkers = "detector-workers"
)

// AgentIndicationSubject returns the indication subject scoped to one E2 agent.
// Example: telemetry.kpm.indication.gnbd_001_001_00019b_0
func AgentIndicationSubject(agentID string) string {
	return SubjectTelemetryKPMIndication + "." + agentID
}
