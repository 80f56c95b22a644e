package timezone

import (
	"sync"
	"time"

	"elc/config"
	"elc/shared/constant"

	"github.com/rs/zerolog/log"
)

var (
	appLocation *time.Location
	loadOnce    sync.Once
)

// Load resolves an IANA zone name, falling back to UTC when the name is empty
// or unknown.
func Load(name string) *time.Location {
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")

		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().
			Err(err).
			Str("timezone", name).
			Msg("Failed to load timezone, falling back to UTC. Use IANA names like 'Asia/Manila' or 'UTC'")

		return time.UTC
	}

	return loc
}

// GetLocation returns the zone from APP_TIMEZONE, loading it on first use.
func GetLocation() *time.Location {
	loadOnce.Do(func() {
		appLocation = Load(config.Get().App.Timezone)

		log.Info().Str("timezone", appLocation.String()).Msg("Application timezone initialized")
	})

	return appLocation
}

func Now() time.Time {
	return time.Now().In(GetLocation())
}

func ToAppTime(t time.Time) time.Time {
	return t.In(GetLocation())
}

// Parse reads value as a wall time in the application timezone.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, GetLocation()) //nolint:wrapcheck
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// ParseDay reads a YYYY-MM-DD calendar day as local midnight.
func ParseDay(value string) (time.Time, error) {
	return Parse(constant.DayFormat, value)
}

// Day returns the calendar day t falls on in the application timezone.
func Day(t time.Time) string {
	return Format(t, constant.DayFormat)
}
