package clock_test

import (
	"testing"
	"time"

	"elc/shared/clock"
	"elc/shared/timezone"

	"github.com/stretchr/testify/assert"
)

func TestManual(t *testing.T) {
	start := time.Date(2025, time.March, 10, 9, 55, 0, 0, time.UTC)
	manual := clock.NewManual(start)

	assert.Equal(t, start, manual.Now())
	assert.Equal(t, start.Add(12*time.Minute), manual.Advance(12*time.Minute))

	manual.Set(start.Add(time.Hour))
	assert.Equal(t, start.Add(time.Hour), manual.Now())
}

func TestNew_UsesApplicationTimezone(t *testing.T) {
	now := clock.New().Now()

	assert.Equal(t, timezone.GetLocation().String(), now.Location().String())
	assert.WithinDuration(t, time.Now(), now, time.Second)
}
