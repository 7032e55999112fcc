package models

import "time"

// JournalEntry is the free-text note a user keeps for one day of a track.
// There is at most one entry per (user, track, day); re-saving overwrites
// Text and UpdatedAt but preserves the original CreatedAt.
type JournalEntry struct {
	Track     Track     `json:"track"`
	Day       int       `json:"day"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
