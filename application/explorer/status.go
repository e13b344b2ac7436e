package explorer

import (
	"time"

	"explorer-backend/domain/exploration"
)

// sampleKeyLimit bounds the per-domain sample listing in status snapshots.
const sampleKeyLimit = 3

// DomainStats summarizes one domain for the status endpoint.
type DomainStats struct {
	TotalEntities  int      `json:"total_entities"`
	SampleEntities []string `json:"sample_entities"`
}

// DiscoverySummary condenses the last discovery report for status payloads.
type DiscoverySummary struct {
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	FinishedAt time.Time `json:"finished_at"`
}

// StatusSnapshot is the full status payload. Pure read, no mutation.
type StatusSnapshot struct {
	UniverseStatistics map[exploration.Domain]DomainStats `json:"universe_statistics"`
	TotalDiscoveries   int                                `json:"total_discoveries"`
	AutonomousInsights int                                `json:"autonomous_insights"`
	ExplorationState   exploration.ExplorationState       `json:"exploration_state"`
	LastDiscovery      *DiscoverySummary                  `json:"last_discovery,omitempty"`
	Timestamp          time.Time                          `json:"timestamp"`
}

// Status produces a point-in-time snapshot of the universe: per-domain
// counts with sample keys, overall totals, and the exploration state.
func (e *Engine) Status() StatusSnapshot {
	snap := e.store.Snapshot()

	stats := make(map[exploration.Domain]DomainStats, len(snap.Domains))
	total := 0
	for domain, entities := range snap.Domains {
		limit := sampleKeyLimit
		if limit > len(entities) {
			limit = len(entities)
		}
		samples := make([]string, 0, limit)
		for _, entity := range entities[:limit] {
			samples = append(samples, entity.Key())
		}
		stats[domain] = DomainStats{
			TotalEntities:  len(entities),
			SampleEntities: samples,
		}
		total += len(entities)
	}

	status := StatusSnapshot{
		UniverseStatistics: stats,
		TotalDiscoveries:   total,
		AutonomousInsights: e.store.InsightCount(),
		ExplorationState:   snap.State,
		Timestamp:          time.Now().UTC(),
	}

	if snap.Report != nil {
		skipped := 0
		for _, res := range snap.Report.Results {
			skipped += len(res.Skipped)
		}
		status.LastDiscovery = &DiscoverySummary{
			Succeeded:  snap.Report.Succeeded(),
			Failed:     snap.Report.Failed(),
			Skipped:    skipped,
			FinishedAt: snap.Report.FinishedAt,
		}
	}

	return status
}
