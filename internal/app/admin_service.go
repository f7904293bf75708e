package app

import (
	"context"
	"fmt"

	domainTelegram "neurolux_bot/internal/domain/telegram"
	"neurolux_bot/internal/domain/trial"
	"neurolux_bot/internal/domain/user"
	idb "neurolux_bot/internal/infra/database"
)

// Custom application-level errors for the operator relay surface
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as the operator")

// AdminService implements the operator-only relay surface: pass-through
// messages to a target user and diagnostic report dumps. Unlike ordinary user
// flows, its errors may be echoed back to the operator verbatim.
type AdminService struct {
	users       user.Repository
	attempts    trial.Repository
	stats       trial.StatsRepository
	tg          domainTelegram.Client
	adminChatID int64
}

func NewAdminService(
	ur user.Repository,
	ar trial.Repository,
	sr trial.StatsRepository,
	tg domainTelegram.Client,
	adminChatID int64,
) *AdminService {
	return &AdminService{
		users:       ur,
		attempts:    ar,
		stats:       sr,
		tg:          tg,
		adminChatID: adminChatID,
	}
}

func (s *AdminService) authorize(performingID int64) error {
	if performingID != s.adminChatID {
		return ErrAdminNotAuthorized
	}
	return nil
}

// RelayText sends a text message to the target user verbatim.
func (s *AdminService) RelayText(ctx context.Context, performingID, targetID int64, text string) error {
	if err := s.authorize(performingID); err != nil {
		return err
	}
	if err := s.tg.SendMessage(targetID, text, nil); err != nil {
		return fmt.Errorf("failed to relay text to user %d: %w", targetID, err)
	}
	return nil
}

// RelayVideo forwards a previously seen video to the target user by file ID.
func (s *AdminService) RelayVideo(ctx context.Context, performingID, targetID int64, fileID, caption string) error {
	if err := s.authorize(performingID); err != nil {
		return err
	}
	if err := s.tg.SendVideo(targetID, fileID, caption); err != nil {
		return fmt.Errorf("failed to relay video to user %d: %w", targetID, err)
	}
	return nil
}

// ReportOf builds the diagnostic dump of a user's most recent attempt: the
// funnel answers plus the aggregate report over whatever day stats exist.
func (s *AdminService) ReportOf(ctx context.Context, performingID, targetID int64) (string, error) {
	if err := s.authorize(performingID); err != nil {
		return "", err
	}

	attempt, err := s.attempts.Latest(ctx, targetID)
	if err != nil {
		if err == idb.ErrAttemptNotFound {
			return fmt.Sprintf("У пользователя %d нет тестов.", targetID), nil
		}
		return "", fmt.Errorf("failed to load latest attempt of user %d: %w", targetID, err)
	}

	rows, err := s.stats.ListByAttempt(ctx, attempt.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load day stats of attempt %d: %w", attempt.ID, err)
	}

	display := fmt.Sprintf("id=%d", targetID)
	if u, err := s.users.GetByID(ctx, targetID); err == nil {
		display = fmt.Sprintf("%s | id=%d", u.DisplayName(), targetID)
	}

	status := "в процессе"
	if attempt.IsDone {
		status = "завершён"
	}
	return fmt.Sprintf(
		"User: %s\nТест #%d (%s), день %d\nNiche: %s\nTikTok: %s\nGoal: %s\n\n%s",
		display, attempt.ID, status, attempt.Day,
		nullableOrDash(attempt.Niche.Valid, attempt.Niche.String),
		nullableOrDash(attempt.AccountLink.Valid, attempt.AccountLink.String),
		nullableOrDash(attempt.Goal.Valid, attempt.Goal.String),
		trial.MakeReport(rows),
	), nil
}

func nullableOrDash(valid bool, v string) string {
	if !valid || v == "" {
		return "—"
	}
	return v
}
