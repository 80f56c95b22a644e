// Package timezone pins every wall-clock computation to APP_TIMEZONE.
//
// Bookings are stored as a calendar day plus 12-hour clock times, so "today"
// and "now" must be read in the campus timezone rather than the host's. The
// zone is loaded lazily from configuration on first use.
package timezone
