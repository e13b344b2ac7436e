package exploration

import "time"

// ExplorationState is the singleton record overwritten on every refresh.
type ExplorationState struct {
	TotalDiscoveries int       `json:"total_discoveries"`
	UniverseSize     int       `json:"universe_size"`
	LastUpdate       time.Time `json:"last_update"`
}

// ExploreResult reports the outcome of one refresh cycle.
type ExploreResult struct {
	NewDiscoveries    int       `json:"new_discoveries"`
	PatternsFound     int       `json:"patterns_found"`
	InsightsGenerated int       `json:"insights_generated"`
	Timestamp         time.Time `json:"timestamp"`
}
