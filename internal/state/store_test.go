package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"safety-analytics-go/internal/actions"
	"safety-analytics-go/internal/types"
)

func TestReplaceAndCopy(t *testing.T) {
	s := New()
	in := []types.InjuryRecord{{CaseNumber: "C-1", Site: "DFW7"}}
	s.SetInjuries(in)
	in[0].Site = "changed"

	got := s.All().Injuries
	require.Len(t, got, 1)
	assert.Equal(t, "DFW7", got[0].Site)

	got[0].Site = "also changed"
	assert.Equal(t, "DFW7", s.All().Injuries[0].Site)

	s.SetInjuries([]types.InjuryRecord{{CaseNumber: "C-2"}, {CaseNumber: "C-3"}})
	assert.Len(t, s.All().Injuries, 2)
}

func TestFilteredView(t *testing.T) {
	s := New()
	s.SetInjuries([]types.InjuryRecord{{Site: "DFW7"}, {Site: "SEA1"}})
	s.SetNearMisses([]types.NearMissRecord{{Site: "DFW7"}, {Site: "SEA1"}})

	merged := s.MergeFilters(types.KindInjury, types.FilterState{Site: "SEA1"})
	assert.Equal(t, "SEA1", merged.Site)

	v := s.View()
	assert.Len(t, v.Injuries, 1)
	assert.Len(t, v.NearMisses, 2, "near-miss filters are independent")

	s.MergeFilters(types.KindInjury, types.FilterState{Site: "all"})
	assert.Len(t, s.View().Injuries, 2)

	s.MergeFilters(types.KindInjury, types.FilterState{Site: "SEA1", Search: "x"})
	s.ResetFilters(types.KindInjury)
	assert.Equal(t, types.FilterState{}, s.Filters(types.KindInjury))
}

func TestStatusAndClear(t *testing.T) {
	s := New()
	s.SetInspections([]types.InspectionRecord{{InspectionID: "INSP-1"}})
	_, err := s.Actions.Create(actions.NewAction{Action: "x"})
	require.NoError(t, err)

	st := s.Status()
	require.Len(t, st, 3)
	assert.Equal(t, types.KindInspection, st[2].Kind)
	assert.Equal(t, 1, st[2].Count)
	assert.NotNil(t, st[2].LoadedAt)
	assert.Nil(t, st[0].LoadedAt)

	s.Clear()
	assert.Empty(t, s.All().Inspections)
	assert.Zero(t, s.Actions.Stats().Total)
	assert.Nil(t, s.Status()[2].LoadedAt)
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetNearMisses([]types.NearMissRecord{{Site: "A"}, {Site: "B"}})
		}()
		go func() {
			defer wg.Done()
			n := len(s.View().NearMisses)
			assert.True(t, n == 0 || n == 2)
		}()
	}
	wg.Wait()
}

func TestValidKind(t *testing.T) {
	assert.True(t, ValidKind(types.KindNearMiss))
	assert.False(t, ValidKind("audits"))
}
