package models

import "time"

// Profile tracks a user's progress through the 30-day programs.
//
// CurrentDay is meaningful only while CurrentTrack is set; an idle profile
// carries CurrentTrack=="" and CurrentDay==0. A track appears in
// CompletedTracks at most once, appended when its 30th day is completed.
type Profile struct {
	UserID              string    `json:"user_id"`
	CurrentTrack        Track     `json:"current_track,omitempty"`
	CurrentDay          int       `json:"current_day"`
	Streak              int       `json:"streak"`
	TotalDaysCompleted  int       `json:"total_days_completed"`
	CompletedTracks     []Track   `json:"completed_tracks"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NewProfile returns the default profile created at signup.
func NewProfile(userID string) *Profile {
	return &Profile{
		UserID:          userID,
		CompletedTracks: []Track{},
		UpdatedAt:       time.Now(),
	}
}

// Idle reports whether no track is in progress.
func (p *Profile) Idle() bool {
	return p.CurrentTrack == ""
}

// Completed reports whether t has already been finished.
func (p *Profile) Completed(t Track) bool {
	return ContainsTrack(p.CompletedTracks, t)
}
