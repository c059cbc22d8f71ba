package cmd

import (
	"fmt"
	"time"

	"github.com/ranwatch-systems/ranwatch/tools/kpm-seeder/profiles"
)

// ueMeasurement mirrors the per-UE block of the detector's indication wire
// format.
type ueMeasurement struct {
	GranularityPeriod int                `json:"granul_period"`
	MeasData          map[string]float64 `json:"meas_data"`
}

// indication mirrors the KPM indication wire format published by the E2
// termination.
type indication struct {
	AgentID        string                   `json:"e2_agent_id"`
	SubscriptionID string                   `json:"subscription_id"`
	Timestamp      time.Time                `json:"timestamp"`
	UEMeasData     map[string]ueMeasurement `json:"ue_meas_data"`
}

// fleet is the static assignment of traffic profiles to simulated UEs.
type fleet struct {
	agents []agent
}

type agent struct {
	id  string
	ues []ue
}

type ue struct {
	id      string
	profile profiles.Profile
}

// buildFleet assigns each UE a profile from the selection, round-robin, so a
// mixed selection yields mixed traffic in every cell.
func buildFleet(selection []profiles.Profile) fleet {
	f := fleet{agents: make([]agent, agentCount)}
	next := 0
	for a := range f.agents {
		f.agents[a].id = fmt.Sprintf("gnbd_%03d_%03d_%06x_%d",
			1, a+1, faker.Number(0x1000, 0xffffff), 0)
		f.agents[a].ues = make([]ue, uesPerAgent)
		for u := range f.agents[a].ues {
			f.agents[a].ues[u] = ue{
				id:      fmt.Sprintf("%d", a*uesPerAgent+u),
				profile: selection[next%len(selection)],
			}
			next++
		}
	}
	return f
}

// indicationAt samples one report for an agent.
func indicationAt(a agent, at time.Time) indication {
	ind := indication{
		AgentID:        a.id,
		SubscriptionID: fmt.Sprintf("sub-%s", a.id),
		Timestamp:      at,
		UEMeasData:     make(map[string]ueMeasurement, len(a.ues)),
	}
	for _, u := range a.ues {
		ind.UEMeasData[u.id] = ueMeasurement{
			GranularityPeriod: 1000,
			MeasData:          u.profile.Sample(faker),
		}
	}
	return ind
}
