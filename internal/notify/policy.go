package notify

import "time"

const day = 24 * time.Hour

// ReorderCooldown is the minimum gap between two unforced reorder notifications for a product.
const ReorderCooldown = time.Hour

// DaysBetween returns the absolute number of whole days between a and b.
// Partial days are truncated, not rounded.
func DaysBetween(a, b time.Time) int {
	diff := b.Sub(a)
	if diff < 0 {
		diff = -diff
	}
	return int(diff / day)
}

// HasExpired reports whether the calendar date of now is strictly after the
// calendar date of expirationDate. Time of day is ignored; both dates are read
// in now's location.
func HasExpired(expirationDate, now time.Time) bool {
	return calendarDate(now).After(calendarDate(expirationDate.In(now.Location())))
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NotificationInterval is the wait between expiry reminders. It shrinks as the
// expiry date gets closer.
func NotificationInterval(daysLeft int) time.Duration {
	switch {
	case daysLeft >= 30:
		return 72 * time.Hour
	case daysLeft >= 10:
		return 48 * time.Hour
	case daysLeft >= 5:
		return 24 * time.Hour
	case daysLeft >= 2:
		return 5 * time.Hour
	default:
		return time.Hour
	}
}

func ShouldSendExpiryNotification(lastSent *time.Time, now time.Time, interval time.Duration) bool {
	if lastSent == nil {
		return true
	}
	return now.Sub(*lastSent) >= interval
}

// ShouldSendReorderNotification applies a flat one hour cooldown that forceCheck bypasses.
func ShouldSendReorderNotification(lastSent *time.Time, now time.Time, forceCheck bool) bool {
	if lastSent == nil || forceCheck {
		return true
	}
	return now.Sub(*lastSent) >= ReorderCooldown
}
