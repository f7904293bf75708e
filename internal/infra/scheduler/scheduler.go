package scheduler

import (
	"context"
	"time"

	"neurolux_bot/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderScheduler runs the daily "don't forget to post" job for users with
// a stale active test. It is plain infrastructure around the cron engine; all
// decisions live in the ReminderService.
type ReminderScheduler struct {
	cronEngine *cron.Cron
	reminders  *app.ReminderService
	logger     *logrus.Entry
	cronSpec   string
}

func NewReminderScheduler(reminders *app.ReminderService, logger *logrus.Entry, cronSpec string) *ReminderScheduler {
	return &ReminderScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		reminders:  reminders,
		logger:     logger,
		cronSpec:   cronSpec,
	}
}

func (s *ReminderScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Info("Cron job triggered for daily reminders")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.reminders.SendDailyReminders(ctx); err != nil {
			s.logger.WithError(err).Error("Daily reminder run failed")
		}
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Reminder scheduler started")
	return nil
}

func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop() // waits for running jobs
	<-ctx.Done()
	s.logger.Info("Reminder scheduler gracefully stopped")
}
