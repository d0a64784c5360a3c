package models

import "time"

const (
	// TrialClientLimit is the lifetime number of clients an unsubscribed
	// account may add.
	TrialClientLimit = 50

	// DefaultAlertThresholdDays flags clients whose last interaction is
	// older than this many days (and whose reminder has passed).
	DefaultAlertThresholdDays = 15

	MinAlertThresholdDays = 1
	MaxAlertThresholdDays = 30

	// DefaultDailyAlertHour is the local hour of the daily aggregate alert.
	DefaultDailyAlertHour = 9

	DefaultPhonePrefix = "+33"
)

// DefaultSMSTemplate and DefaultEmailTemplate are the follow-up messages
// shipped with the app. "[Nom du Client]" is replaced by the client name.
const (
	DefaultSMSTemplate = "Bonjour [Nom du Client],\n\n" +
		"Nous avons essayé de vous joindre à plusieurs reprises pour discuter de l'avancement de votre projet...\n\n" +
		"Celui-ci est-il toujours d'actualité ?\n\n" +
		"Nous restons à votre disposition pour toutes questions techniques, ou pour toutes modifications de votre projet.\n\n" +
		"Cordialement,"

	DefaultEmailTemplate = "Bonjour [Nom du Client],\n\n" +
		"Nous avons essayé de vous joindre à plusieurs reprises pour discuter de l'avancement de votre projet...\n\n" +
		"Celui-ci est-il toujours d'actualité ?\n\n"
)

// Settings is the single persisted row of user-tunable configuration plus
// the subscription state. TotalClientsAdded only ever grows; deleting a
// client does not decrement it.
type Settings struct {
	AlertThresholdDays int        `json:"alert_threshold_days"`
	DefaultPhonePrefix string     `json:"default_phone_prefix"`
	SMSTemplate        string     `json:"sms_template"`
	EmailTemplate      string     `json:"email_template"`
	ShowSorting        bool       `json:"show_sorting"`
	ShowProductFilter  bool       `json:"show_product_filter"`
	IsSubscribed       bool       `json:"is_subscribed"`
	TotalClientsAdded  int        `json:"total_clients_added"`
	DailyAlertHour     int        `json:"daily_alert_hour"`
	LastDailyAlertDate *time.Time `json:"last_daily_alert_date"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// DefaultSettings returns the settings a fresh store starts with.
func DefaultSettings() *Settings {
	return &Settings{
		AlertThresholdDays: DefaultAlertThresholdDays,
		DefaultPhonePrefix: DefaultPhonePrefix,
		SMSTemplate:        DefaultSMSTemplate,
		EmailTemplate:      DefaultEmailTemplate,
		DailyAlertHour:     DefaultDailyAlertHour,
	}
}

// ClampThreshold bounds a requested alert threshold to the allowed range.
func ClampThreshold(days int) int {
	if days < MinAlertThresholdDays {
		return MinAlertThresholdDays
	}
	if days > MaxAlertThresholdDays {
		return MaxAlertThresholdDays
	}
	return days
}

// DailyAlertSentToday reports whether the aggregate alert already went out
// on the calendar day of now.
func (s *Settings) DailyAlertSentToday(now time.Time) bool {
	if s.LastDailyAlertDate == nil {
		return false
	}
	y1, m1, d1 := s.LastDailyAlertDate.Local().Date()
	y2, m2, d2 := now.Local().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
