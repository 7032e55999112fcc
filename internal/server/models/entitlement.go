package models

import "time"

// EntitlementSet is the per-user set of purchased or granted tracks.
// Tracks holds unique ids in grant order; entries are only ever removed by
// an explicit administrative revoke.
type EntitlementSet struct {
	UserID    string    `json:"user_id"`
	Tracks    []Track   `json:"tracks"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contains reports whether the set already holds t.
func (s *EntitlementSet) Contains(t Track) bool {
	return ContainsTrack(s.Tracks, t)
}

// Add appends t if absent and reports whether it was newly added.
func (s *EntitlementSet) Add(t Track) bool {
	if s.Contains(t) {
		return false
	}
	s.Tracks = append(s.Tracks, t)
	return true
}

// Remove deletes t if present and reports whether it was actually removed.
func (s *EntitlementSet) Remove(t Track) bool {
	for i, existing := range s.Tracks {
		if existing == t {
			s.Tracks = append(s.Tracks[:i], s.Tracks[i+1:]...)
			return true
		}
	}
	return false
}
