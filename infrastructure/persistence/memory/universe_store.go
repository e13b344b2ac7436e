// Package memory provides the in-memory persistence for the explorer: the
// universe mapping, the rolling insight list, and the exploration state.
// Nothing here survives a restart; bootstrap repopulates from scratch.
package memory

import (
	"sync"

	"explorer-backend/domain/exploration"
)

// domainBucket keeps a domain's entities together with their insertion
// order, so sample listings are stable.
type domainBucket struct {
	keys     []string
	entities map[string]exploration.Entity
}

// UniverseStore owns all mutable explorer state. The explorer run loop is
// the only writer; readers take immutable snapshots instead of scanning the
// live maps, so a refresh can never produce a torn read.
type UniverseStore struct {
	mu          sync.RWMutex
	domains     map[exploration.Domain]*domainBucket
	insights    []exploration.Insight
	state       exploration.ExplorationState
	report      *exploration.DiscoveryReport
	insightCap  int
	insightTrim int
}

// NewUniverseStore creates an empty store. When the insight list grows past
// cap it is truncated to the most recent trim entries.
func NewUniverseStore(insightCap, insightTrim int) *UniverseStore {
	return &UniverseStore{
		domains:     make(map[exploration.Domain]*domainBucket),
		insightCap:  insightCap,
		insightTrim: insightTrim,
	}
}

// ReplaceDomain swaps in a domain's full entity set. Entities within the
// domain keep the order they were discovered in.
func (s *UniverseStore) ReplaceDomain(domain exploration.Domain, entities []exploration.Entity) {
	bucket := &domainBucket{
		keys:     make([]string, 0, len(entities)),
		entities: make(map[string]exploration.Entity, len(entities)),
	}
	for _, e := range entities {
		key := e.Key()
		if _, exists := bucket.entities[key]; !exists {
			bucket.keys = append(bucket.keys, key)
		}
		bucket.entities[key] = e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.domains[domain] = bucket
}

// DomainEntities returns a domain's entities in insertion order.
func (s *UniverseStore) DomainEntities(domain exploration.Domain) []exploration.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket, exists := s.domains[domain]
	if !exists {
		return nil
	}
	entities := make([]exploration.Entity, 0, len(bucket.keys))
	for _, key := range bucket.keys {
		entities = append(entities, bucket.entities[key])
	}
	return entities
}

// DomainCount returns the number of entities in one domain.
func (s *UniverseStore) DomainCount(domain exploration.Domain) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if bucket, exists := s.domains[domain]; exists {
		return len(bucket.keys)
	}
	return 0
}

// TotalEntities returns the entity count across all domains.
func (s *UniverseStore) TotalEntities() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, bucket := range s.domains {
		total += len(bucket.keys)
	}
	return total
}

// SampleKeys returns up to limit entity keys from a domain in insertion order.
func (s *UniverseStore) SampleKeys(domain exploration.Domain, limit int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket, exists := s.domains[domain]
	if !exists {
		return []string{}
	}
	if limit > len(bucket.keys) {
		limit = len(bucket.keys)
	}
	keys := make([]string, limit)
	copy(keys, bucket.keys[:limit])
	return keys
}

// Snapshot captures an immutable view of the universe. Entities are shared
// by pointer but are never mutated after discovery, so the snapshot stays
// consistent while a refresh replaces domains underneath it.
func (s *UniverseStore) Snapshot() *UniverseSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &UniverseSnapshot{
		Domains: make(map[exploration.Domain][]exploration.Entity, len(s.domains)),
		State:   s.state,
		Report:  s.report,
	}
	for domain, bucket := range s.domains {
		entities := make([]exploration.Entity, 0, len(bucket.keys))
		for _, key := range bucket.keys {
			entities = append(entities, bucket.entities[key])
		}
		snap.Domains[domain] = entities
	}
	return snap
}

// AppendInsight appends one insight to the rolling list.
func (s *UniverseStore) AppendInsight(insight exploration.Insight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insights = append(s.insights, insight)
}

// TrimInsights enforces the cap: when the list exceeds it, only the most
// recent trim entries are retained. Called at the top of a generation cycle.
func (s *UniverseStore) TrimInsights() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.insights) > s.insightCap {
		tail := make([]exploration.Insight, s.insightTrim)
		copy(tail, s.insights[len(s.insights)-s.insightTrim:])
		s.insights = tail
	}
}

// RecentInsights returns up to limit of the most recent insights in append
// order.
func (s *UniverseStore) RecentInsights(limit int) []exploration.Insight {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if len(s.insights) > limit {
		start = len(s.insights) - limit
	}
	recent := make([]exploration.Insight, len(s.insights)-start)
	copy(recent, s.insights[start:])
	return recent
}

// InsightCount returns the current length of the insight list.
func (s *UniverseStore) InsightCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.insights)
}

// SetState overwrites the exploration state.
func (s *UniverseStore) SetState(state exploration.ExplorationState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// State returns the current exploration state.
func (s *UniverseStore) State() exploration.ExplorationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetReport records the most recent discovery report.
func (s *UniverseStore) SetReport(report *exploration.DiscoveryReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = report
}

// Report returns the most recent discovery report, nil before bootstrap.
func (s *UniverseStore) Report() *exploration.DiscoveryReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// UniverseSnapshot is a point-in-time, read-only view of the store.
type UniverseSnapshot struct {
	Domains map[exploration.Domain][]exploration.Entity
	State   exploration.ExplorationState
	Report  *exploration.DiscoveryReport
}

// TotalEntities returns the entity count across the snapshot's domains.
func (s *UniverseSnapshot) TotalEntities() int {
	total := 0
	for _, entities := range s.Domains {
		total += len(entities)
	}
	return total
}
