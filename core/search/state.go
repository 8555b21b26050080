package search

import (
	"sort"
	"strconv"
	"strings"
)

// Key is the canonical, order-independent identity of an accumulated set of
// mutations. Two states with the same electrified and split sets produce the
// same key regardless of the order the actions were applied in.
type Key string

// State tracks the mutations accumulated within one trial generation. The
// sets only grow; no action is ever undone.
type State struct {
	electrified map[int64]struct{}
	split       map[int64]struct{}
}

// NewState returns an empty mutation state.
func NewState() *State {
	return &State{
		electrified: make(map[int64]struct{}),
		split:       make(map[int64]struct{}),
	}
}

// Electrify records that the station was electrified.
func (s *State) Electrify(stationID int64) {
	s.electrified[stationID] = struct{}{}
}

// Split records that the rotation was split.
func (s *State) Split(rotationID int64) {
	s.split[rotationID] = struct{}{}
}

// Electrified reports whether the station was already electrified in this
// generation.
func (s *State) Electrified(stationID int64) bool {
	_, ok := s.electrified[stationID]
	return ok
}

// ElectrifiedIDs returns the electrified station ids in ascending order.
func (s *State) ElectrifiedIDs() []int64 { return sortedIDs(s.electrified) }

// SplitIDs returns the split rotation ids in ascending order.
func (s *State) SplitIDs() []int64 { return sortedIDs(s.split) }

// Key computes the canonical key of the current sets.
func (s *State) Key() Key {
	var b strings.Builder
	b.WriteString("e:")
	writeIDs(&b, s.ElectrifiedIDs())
	b.WriteString("|s:")
	writeIDs(&b, s.SplitIDs())
	return Key(b.String())
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func writeIDs(b *strings.Builder, ids []int64) {
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
}
