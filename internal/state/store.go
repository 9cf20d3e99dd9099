// Package state holds the uploaded record collections and per-kind filter
// state shared by the HTTP handlers, importer and scheduler.
package state

import (
	"sync"
	"time"

	"safety-analytics-go/internal/actions"
	"safety-analytics-go/internal/filter"
	"safety-analytics-go/internal/types"
)

// Snapshot is a consistent copy of every collection.
type Snapshot struct {
	Injuries    []types.InjuryRecord
	NearMisses  []types.NearMissRecord
	Inspections []types.InspectionRecord
}

// Status summarizes one collection.
type Status struct {
	Kind     types.RecordKind  `json:"kind"`
	Count    int               `json:"count"`
	LoadedAt *time.Time        `json:"loaded_at,omitempty"`
	Filters  types.FilterState `json:"filters"`
}

// Store guards the collections with a RWMutex. Collections are only ever
// replaced whole; readers get copies.
type Store struct {
	mu          sync.RWMutex
	injuries    []types.InjuryRecord
	nearMisses  []types.NearMissRecord
	inspections []types.InspectionRecord
	filters     map[types.RecordKind]types.FilterState
	loadedAt    map[types.RecordKind]time.Time

	Actions *actions.Tracker
}

func New() *Store {
	return &Store{
		filters:  map[types.RecordKind]types.FilterState{},
		loadedAt: map[types.RecordKind]time.Time{},
		Actions:  actions.NewTracker(),
	}
}

// Kinds lists the collection kinds in display order.
func Kinds() []types.RecordKind {
	return []types.RecordKind{types.KindInjury, types.KindNearMiss, types.KindInspection}
}

func ValidKind(k types.RecordKind) bool {
	switch k {
	case types.KindInjury, types.KindNearMiss, types.KindInspection:
		return true
	}
	return false
}

func (s *Store) SetInjuries(records []types.InjuryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.injuries = clone(records)
	s.loadedAt[types.KindInjury] = time.Now()
}

func (s *Store) SetNearMisses(records []types.NearMissRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nearMisses = clone(records)
	s.loadedAt[types.KindNearMiss] = time.Now()
}

func (s *Store) SetInspections(records []types.InspectionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inspections = clone(records)
	s.loadedAt[types.KindInspection] = time.Now()
}

// All returns every record, ignoring filters.
func (s *Store) All() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Injuries:    clone(s.injuries),
		NearMisses:  clone(s.nearMisses),
		Inspections: clone(s.inspections),
	}
}

// View returns each collection through its current filter.
func (s *Store) View() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Injuries:    filter.Apply(s.injuries, s.filters[types.KindInjury]),
		NearMisses:  filter.Apply(s.nearMisses, s.filters[types.KindNearMiss]),
		Inspections: filter.Apply(s.inspections, s.filters[types.KindInspection]),
	}
}

func (s *Store) Filters(kind types.RecordKind) types.FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters[kind]
}

// MergeFilters overlays f onto the kind's filter and returns the result.
func (s *Store) MergeFilters(kind types.RecordKind, f types.FilterState) types.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := s.filters[kind].Merge(f)
	s.filters[kind] = merged
	return merged
}

func (s *Store) ResetFilters(kind types.RecordKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.filters, kind)
}

func (s *Store) Status() []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[types.RecordKind]int{
		types.KindInjury:     len(s.injuries),
		types.KindNearMiss:   len(s.nearMisses),
		types.KindInspection: len(s.inspections),
	}
	out := make([]Status, 0, len(counts))
	for _, k := range Kinds() {
		st := Status{Kind: k, Count: counts[k], Filters: s.filters[k]}
		if t, ok := s.loadedAt[k]; ok {
			st.LoadedAt = &t
		}
		out = append(out, st)
	}
	return out
}

// Clear drops every collection, filter and action.
func (s *Store) Clear() {
	s.mu.Lock()
	s.injuries = nil
	s.nearMisses = nil
	s.inspections = nil
	s.filters = map[types.RecordKind]types.FilterState{}
	s.loadedAt = map[types.RecordKind]time.Time{}
	s.mu.Unlock()
	s.Actions.Reset()
}

func clone[T any](in []T) []T {
	return append(make([]T, 0, len(in)), in...)
}
