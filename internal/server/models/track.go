// Package models contains the domain records persisted in the key-value
// store: users, entitlement sets, access codes, profiles and journal entries.
package models

import (
	"fmt"
	"strings"
)

// Track identifies one of the four fixed 30-day programs.
type Track string

const (
	TrackMoney      Track = "Money"
	TrackEgo        Track = "Ego"
	TrackDiscipline Track = "Discipline"
	TrackFocus      Track = "Focus"
)

// TrackDays is the length of every program.
const TrackDays = 30

// AllTracks returns the closed track enumeration in catalog order.
func AllTracks() []Track {
	return []Track{TrackMoney, TrackEgo, TrackDiscipline, TrackFocus}
}

// IsValid reports whether t is one of the four known tracks.
func (t Track) IsValid() bool {
	switch t {
	case TrackMoney, TrackEgo, TrackDiscipline, TrackFocus:
		return true
	}
	return false
}

// ValidateTracks checks every id against the track enumeration and returns
// a descriptive error naming all offending ids. The whole input is rejected
// if any id is unknown.
func ValidateTracks(tracks []Track) error {
	var unknown []string
	for _, t := range tracks {
		if !t.IsValid() {
			unknown = append(unknown, string(t))
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown tracks: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// ContainsTrack reports whether set contains t.
func ContainsTrack(set []Track, t Track) bool {
	for _, s := range set {
		if s == t {
			return true
		}
	}
	return false
}
