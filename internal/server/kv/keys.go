package kv

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/trackpass/internal/server/models"
)

// Key scheme. Every record type owns one prefix so administrative listings
// can use ScanPrefix without touching unrelated records.

// AdminsKey holds the dynamic admin email list.
const AdminsKey = "admins"

// AccessCodePrefix groups all access-code records.
const AccessCodePrefix = "accesscode:"

func UserKey(userID string) string {
	return "user:" + userID
}

// UserEmailKey is the login index mapping a lowercased email to a user id.
func UserEmailKey(email string) string {
	return "user:email:" + strings.ToLower(email)
}

func EntitlementsKey(userID string) string {
	return "entitlements:" + userID
}

func ProfileKey(userID string) string {
	return "profile:" + userID
}

func PreferencesKey(userID string) string {
	return "prefs:" + userID
}

func AccessCodeKey(code string) string {
	return AccessCodePrefix + code
}

// JournalKey zero-pads the day so prefix scans come back in day order.
func JournalKey(userID string, track models.Track, day int) string {
	return fmt.Sprintf("%s%02d", JournalPrefix(userID, track), day)
}

// JournalPrefix groups one user's entries for one track.
func JournalPrefix(userID string, track models.Track) string {
	return fmt.Sprintf("journal:%s:%s:", userID, track)
}
