package app

import (
	"context"
	"fmt"
	"time"

	domainTelegram "neurolux_bot/internal/domain/telegram"
	"neurolux_bot/internal/domain/trial"

	"github.com/sirupsen/logrus"
)

// staleAfter is how long an active attempt may sit untouched before the user
// gets a nudge to post the current day's video.
const staleAfter = 24 * time.Hour

// ReminderService nudges users whose active test went quiet. It runs from the
// cron scheduler and is deliberately outside the dialogue engine: it only
// reads attempts and sends messages, never touches sessions or state.
type ReminderService struct {
	attempts trial.Repository
	tg       domainTelegram.Client
	logger   *logrus.Entry
}

func NewReminderService(ar trial.Repository, tg domainTelegram.Client, logger *logrus.Entry) *ReminderService {
	return &ReminderService{attempts: ar, tg: tg, logger: logger}
}

// SendDailyReminders messages every user whose active attempt has not been
// touched for staleAfter. Send failures are logged per user and do not stop
// the batch.
func (s *ReminderService) SendDailyReminders(ctx context.Context) error {
	cutoff := time.Now().Add(-staleAfter)
	attempts, err := s.attempts.ListStale(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list stale attempts: %w", err)
	}

	sent := 0
	for _, a := range attempts {
		if err := s.tg.SendMessage(a.UserID, fmt.Sprintf(TextReminderDayFmt, a.Day), nil); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"user_id":    a.UserID,
				"attempt_id": a.ID,
			}).Warn("Failed to send reminder")
			continue
		}
		sent++
	}

	s.logger.WithFields(logrus.Fields{
		"stale":     len(attempts),
		"delivered": sent,
	}).Info("Daily reminder batch finished")
	return nil
}
