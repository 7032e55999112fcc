package models

import "time"

// AccessCode is a redeemable token that grants one or more tracks.
//
// UsageCount never exceeds UsageLimit and never decreases. A code is
// refused once exhausted, expired, or deactivated; deactivation is
// irreversible by redemption.
type AccessCode struct {
	Code       string     `json:"code"`
	Tracks     []Track    `json:"tracks"`
	UsageLimit int        `json:"usage_limit"`
	UsageCount int        `json:"usage_count"`
	ExpiresAt  time.Time  `json:"expires_at"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedBy string     `json:"last_used_by,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// Exhausted reports whether the usage cap has been reached.
func (c *AccessCode) Exhausted() bool {
	return c.UsageCount >= c.UsageLimit
}

// Expired reports whether the code is past its expiry at the given time.
func (c *AccessCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
