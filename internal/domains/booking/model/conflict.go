package model

import (
	"fmt"

	"elc/shared/timeslot"

	"github.com/rs/zerolog/log"
)

// DetectConflict returns ErrSlotConflict when requested overlaps any blocking
// booking in existing. Callers pass bookings for the same room and date.
//
// A stored booking whose clock text no longer parses falls back to its
// derived minute columns so that it keeps blocking its slot.
func DetectConflict(requested timeslot.Interval, existing []Booking) error {
	for _, booking := range existing {
		if !booking.Blocking() {
			continue
		}

		interval, err := booking.Interval()
		if err != nil {
			log.Warn().Err(err).Str("booking_id", booking.ID).Msg("stored booking time is malformed, using derived minutes")

			interval = timeslot.Interval{Start: booking.StartMinute, End: booking.EndMinute}
		}

		if !interval.Valid() {
			continue
		}

		if requested.Overlaps(interval) {
			return fmt.Errorf("%w: %s is already %s", ErrSlotConflict, interval, booking.Status)
		}
	}

	return nil
}
