package services_test

import (
	"testing"
	"time"

	"newsroom/internal/db/dbtest"
	"newsroom/internal/services"
	"newsroom/internal/services/mailtest"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerRegistersDigest(t *testing.T) {
	conn := dbtest.New(t)
	stats := services.NewDailyStatistics(conn, mailtest.NewMailService(mailtest.New()), "", time.UTC, nil)

	s := services.NewScheduler(time.UTC, nil)
	assert.NoError(t, s.ScheduleDigest("0 8 * * *", stats))
	assert.NoError(t, s.ScheduleDigest("@daily", stats))
	assert.Error(t, s.ScheduleDigest("not a cron", stats))
	assert.Equal(t, 2, s.Entries())

	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}
