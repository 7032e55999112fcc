package models

// Preferences holds per-user settings. Sub-sections are explicit structs;
// updates are merged field-by-field against the stored value, never via a
// generic deep merge of arbitrary keys.
type Preferences struct {
	Notifications NotificationPreferences `json:"notifications"`
	Display       DisplayPreferences      `json:"display"`
}

type NotificationPreferences struct {
	DailyReminder bool `json:"daily_reminder"`
	ReminderHour  int  `json:"reminder_hour"`
}

type DisplayPreferences struct {
	Theme    string `json:"theme"`
	Language string `json:"language"`
}

// DefaultPreferences returns the settings every profile starts with, also
// used as the read-path fallback when storage fails.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Notifications: NotificationPreferences{
			DailyReminder: true,
			ReminderHour:  8,
		},
		Display: DisplayPreferences{
			Theme:    "system",
			Language: "en",
		},
	}
}

// PreferencesPatch is a partial update. Nil sub-sections and nil fields
// leave the stored value untouched.
type PreferencesPatch struct {
	Notifications *NotificationPreferencesPatch `json:"notifications,omitempty"`
	Display       *DisplayPreferencesPatch      `json:"display,omitempty"`
}

type NotificationPreferencesPatch struct {
	DailyReminder *bool `json:"daily_reminder,omitempty"`
	ReminderHour  *int  `json:"reminder_hour,omitempty"`
}

type DisplayPreferencesPatch struct {
	Theme    *string `json:"theme,omitempty"`
	Language *string `json:"language,omitempty"`
}

// Apply merges the patch into p, one field at a time.
func (p *Preferences) Apply(patch *PreferencesPatch) {
	if patch == nil {
		return
	}
	if n := patch.Notifications; n != nil {
		if n.DailyReminder != nil {
			p.Notifications.DailyReminder = *n.DailyReminder
		}
		if n.ReminderHour != nil {
			p.Notifications.ReminderHour = *n.ReminderHour
		}
	}
	if d := patch.Display; d != nil {
		if d.Theme != nil {
			p.Display.Theme = *d.Theme
		}
		if d.Language != nil {
			p.Display.Language = *d.Language
		}
	}
}
