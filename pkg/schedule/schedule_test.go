package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecochain/ecochain/pkg/models"
)

func TestValidateTimeOfDay(t *testing.T) {
	for _, valid := range []string{"00:00", "09:30", "9:30", "23:59"} {
		assert.NoError(t, ValidateTimeOfDay(valid), valid)
	}
	for _, invalid := range []string{"", "24:00", "12:60", "noon", "12", "12:5"} {
		assert.Error(t, ValidateTimeOfDay(invalid), invalid)
	}
}

func TestNextSyncDaily(t *testing.T) {
	// 2023-06-15 was a Thursday.
	now := time.Date(2023, 6, 15, 10, 0, 0, 0, time.UTC)

	t.Run("time of day still ahead", func(t *testing.T) {
		next := NextSync(now, models.Schedule{Enabled: true, Frequency: models.FrequencyDaily, Time: "14:00"})
		assert.Equal(t, time.Date(2023, 6, 15, 14, 0, 0, 0, time.UTC), next)
	})

	t.Run("time of day already past rolls to tomorrow", func(t *testing.T) {
		next := NextSync(now, models.Schedule{Enabled: true, Frequency: models.FrequencyDaily, Time: "09:00"})
		assert.Equal(t, time.Date(2023, 6, 16, 9, 0, 0, 0, time.UTC), next)
	})
}

func TestNextSyncWeekly(t *testing.T) {
	// Thursday 10:00; daily step lands on Friday 09:00 (weekday 5),
	// then the weekly roll adds 7-5 days, landing on Sunday.
	now := time.Date(2023, 6, 15, 10, 0, 0, 0, time.UTC)
	next := NextSync(now, models.Schedule{Enabled: true, Frequency: models.FrequencyWeekly, Time: "09:00"})
	assert.Equal(t, time.Date(2023, 6, 18, 9, 0, 0, 0, time.UTC), next)
	assert.Equal(t, time.Sunday, next.Weekday())
}

func TestNextSyncMonthly(t *testing.T) {
	now := time.Date(2023, 6, 15, 10, 0, 0, 0, time.UTC)
	next := NextSync(now, models.Schedule{Enabled: true, Frequency: models.FrequencyMonthly, Time: "09:00"})
	assert.Equal(t, time.Date(2023, 7, 16, 9, 0, 0, 0, time.UTC), next)
}

func TestApplyInvariant(t *testing.T) {
	now := time.Date(2023, 6, 15, 10, 0, 0, 0, time.UTC)

	ds := &models.DataSource{Schedule: models.Schedule{Enabled: true, Frequency: models.FrequencyDaily, Time: "09:00"}}
	Apply(ds, now)
	require.NotNil(t, ds.NextSync)
	assert.Equal(t, time.Date(2023, 6, 16, 9, 0, 0, 0, time.UTC), *ds.NextSync)

	ds.Schedule.Enabled = false
	Apply(ds, now)
	assert.Nil(t, ds.NextSync)
}
