package constants

import "time"

// RFC 3339 date-time format string.
// Use this format for all date-time serialization and communication with external systems.
const RFC3339DateTimeFormat = "2006-01-02T15:04:05Z07:00"

// ISOTimestampFormat renders UTC instants with millisecond precision, the
// shape browsers produce with Date.prototype.toISOString.
const ISOTimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// ISODateFormat is the calendar-date layout used in export file names.
const ISODateFormat = "2006-01-02"

// Default rate limiting configuration
const (
	// DefaultRateLimitRequests is the default number of requests allowed per time window
	DefaultRateLimitRequests = 100
	// DefaultRateLimitWindowMinutes is the default time window for rate limiting
	DefaultRateLimitWindowMinutes = 1
	// SignupRateLimitRequests caps waitlist submissions per client per minute.
	SignupRateLimitRequests = 30
)

// Waitlist storage defaults
const (
	DefaultWaitlistSlotKey = "pledg_waitlist_entries"
	WaitlistExportPrefix   = "pledg_waitlist_"
	RecentSubmissionWindow = 7 * 24 * time.Hour
)

// DefaultRateLimitWindow returns the default rate limit window duration
func DefaultRateLimitWindow() time.Duration {
	return time.Duration(DefaultRateLimitWindowMinutes) * time.Minute
}
