package app

import (
	"context"
	"fmt"
	"strconv"

	"neurolux_bot/internal/domain/dialog"
	"neurolux_bot/internal/domain/subscription"
	domainTelegram "neurolux_bot/internal/domain/telegram"
	"neurolux_bot/internal/domain/trial"
	"neurolux_bot/internal/domain/user"
	idb "neurolux_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// DialogService is the dialogue engine. It owns the per-user funnel state
// machine: every inbound message or button press is matched against the
// user's current state, validated, made durable, and answered with the next
// prompt. Operator notifications are best-effort and never fail a user flow.
type DialogService struct {
	users    user.Repository
	attempts trial.Repository
	stats    trial.StatsRepository
	subs     subscription.Repository
	sessions dialog.Manager
	tg       domainTelegram.Client
	logger   *logrus.Entry

	adminChatID     int64
	managerUsername string
}

func NewDialogService(
	ur user.Repository,
	ar trial.Repository,
	sr trial.StatsRepository,
	subs subscription.Repository,
	sessions dialog.Manager,
	tg domainTelegram.Client,
	logger *logrus.Entry,
	adminChatID int64,
	managerUsername string,
) *DialogService {
	return &DialogService{
		users:           ur,
		attempts:        ar,
		stats:           sr,
		subs:            subs,
		sessions:        sessions,
		tg:              tg,
		logger:          logger,
		adminChatID:     adminChatID,
		managerUsername: managerUsername,
	}
}

// send delivers a prompt to the user. All bot replies use Markdown like the
// rest of the copy.
func (s *DialogService) send(userID int64, text string, markup *telebot.ReplyMarkup) error {
	opts := &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}
	if markup != nil {
		opts.ReplyMarkup = markup
	}
	return s.tg.SendMessage(userID, text, opts)
}

// notifyOperator forwards a summary to the operator chat. A delivery failure
// is logged and swallowed: the user-facing flow already committed its writes
// and must not be affected.
func (s *DialogService) notifyOperator(text string) {
	if err := s.tg.SendMessage(s.adminChatID, text, nil); err != nil {
		s.logger.WithError(err).Warn("Failed to notify operator")
	}
}

// internalError reports a persistence failure to the user without advancing
// the funnel, so the same input can simply be retried.
func (s *DialogService) internalError(userID int64, op string, err error) error {
	s.logger.WithError(err).WithFields(logrus.Fields{
		"user_id": userID,
		"op":      op,
	}).Error("Persistence failure in dialogue flow")
	return s.send(userID, TextInternalError, nil)
}

func safeUsername(u string) string {
	if u == "" {
		return "—"
	}
	return "@" + u
}

// lastAttemptSummary renders the niche/link/goal of the user's most recent
// attempt for operator summaries, with dashes when nothing is known.
func (s *DialogService) lastAttemptSummary(ctx context.Context, userID int64) string {
	niche, link, goal := "—", "—", "—"
	if a, err := s.attempts.Latest(ctx, userID); err == nil {
		if a.Niche.Valid {
			niche = a.Niche.String
		}
		if a.AccountLink.Valid {
			link = a.AccountLink.String
		}
		if a.Goal.Valid {
			goal = a.Goal.String
		}
	} else if err != idb.ErrAttemptNotFound {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to load latest attempt for summary")
	}
	return fmt.Sprintf("Niche: %s\nTikTok: %s\nGoal: %s", niche, link, goal)
}

// ShowMainMenu handles /start and return-to-menu: it force-clears any
// in-progress session, upserts the user, and re-displays the root menu.
func (s *DialogService) ShowMainMenu(ctx context.Context, userID int64, username string) error {
	s.sessions.Clear(userID)
	if err := s.users.Upsert(ctx, userID, username); err != nil {
		return s.internalError(userID, "user.upsert", err)
	}
	return s.send(userID, TextStart, mainMenuKeyboard(s.managerUsername))
}

func (s *DialogService) ShowFreeIntro(userID int64) error {
	return s.send(userID, TextFreeIntro, freeIntroKeyboard(s.managerUsername))
}

func (s *DialogService) ShowRules(userID int64) error {
	return s.send(userID, TextFreeRules, nil)
}

func (s *DialogService) ShowPremiumPage(userID int64) error {
	return s.send(userID, TextPremiumPage, premiumKeyboard(s.managerUsername))
}

func (s *DialogService) ShowLuxPage(userID int64) error {
	return s.send(userID, TextLuxPage, luxKeyboard(s.managerUsername))
}

// BeginFreeTest starts a new attempt, force-completing a prior unfinished one,
// and enters the niche step.
func (s *DialogService) BeginFreeTest(ctx context.Context, userID int64) error {
	if _, err := s.attempts.Start(ctx, userID); err != nil {
		return s.internalError(userID, "attempt.start", err)
	}
	s.sessions.Clear(userID)
	s.sessions.SetState(userID, dialog.StateNiche)
	return s.send(userID, TextAskNiche, nicheKeyboard())
}

// ChooseNiche is the button branch of the niche step. Free text arriving in
// the same state goes through HandleIncoming; both are equally valid.
func (s *DialogService) ChooseNiche(ctx context.Context, userID int64, niche string) error {
	if s.sessions.Get(userID).State != dialog.StateNiche {
		// stale button from an old message
		return s.send(userID, TextMenuFallback, nil)
	}
	return s.acceptNiche(ctx, userID, niche)
}

func (s *DialogService) acceptNiche(ctx context.Context, userID int64, niche string) error {
	if err := s.attempts.SetField(ctx, userID, trial.FieldNiche, niche); err != nil {
		return s.internalError(userID, "attempt.set_niche", err)
	}
	s.sessions.SetState(userID, dialog.StateAccountLink)
	return s.send(userID, TextAskAccountLink, nil)
}

// ChooseGoal is the button branch of the goal step.
func (s *DialogService) ChooseGoal(ctx context.Context, userID int64, goal string) error {
	if s.sessions.Get(userID).State != dialog.StateGoal {
		return s.send(userID, TextMenuFallback, nil)
	}
	return s.acceptGoal(ctx, userID, goal)
}

func (s *DialogService) acceptGoal(ctx context.Context, userID int64, goal string) error {
	if err := s.attempts.SetField(ctx, userID, trial.FieldGoal, goal); err != nil {
		return s.internalError(userID, "attempt.set_goal", err)
	}
	s.sessions.SetState(userID, dialog.StateMaterial)
	return s.send(userID, TextAskMaterial, nil)
}

// PostedToday re-enters the day loop after the "I posted" button.
func (s *DialogService) PostedToday(ctx context.Context, userID int64) error {
	attempt, err := s.attempts.Active(ctx, userID)
	if err != nil {
		if err == idb.ErrAttemptNotFound {
			return s.send(userID, TextNoActiveTest, mainMenuKeyboard(s.managerUsername))
		}
		return s.internalError(userID, "attempt.active", err)
	}
	s.sessions.SetState(userID, dialog.StateDayLink)
	return s.send(userID, fmt.Sprintf(TextAskDayLinkFmt, attempt.Day), nil)
}

// RequestPremium is the single-step premium path: record the intent, tell the
// operator, point the user at the manager. No state machine involved.
func (s *DialogService) RequestPremium(ctx context.Context, userID int64, username string) error {
	if err := s.subs.Upsert(ctx, userID, subscription.PlanPremium); err != nil {
		return s.internalError(userID, "subscription.upsert", err)
	}

	s.notifyOperator(fmt.Sprintf(
		"🟦 Premium запрос\nUser: %s | id=%d\n%s\nStatus: pending\nAction: свяжись лично и договорись об оплате/старте.",
		safeUsername(username), userID, s.lastAttemptSummary(ctx, userID),
	))

	if err := s.send(userID, TextManagerInstruction, managerOnlyKeyboard(s.managerUsername)); err != nil {
		return err
	}
	return s.send(userID, TextPremiumRequestSent, managerOnlyKeyboard(s.managerUsername))
}

// BeginLux enters the lux questionnaire.
func (s *DialogService) BeginLux(userID int64) error {
	s.sessions.Clear(userID)
	s.sessions.SetState(userID, dialog.StateLuxGoal)
	return s.send(userID, TextAskLuxGoal, nil)
}

// HandleIncoming drives the funnel with a free-form inbound message. The
// user's current state decides what the payload may be; anything else gets a
// corrective retry prompt and the state does not advance.
func (s *DialogService) HandleIncoming(ctx context.Context, userID int64, username string, in dialog.Incoming) error {
	sess := s.sessions.Get(userID)

	switch sess.State {
	case dialog.StateIdle:
		return s.send(userID, TextMenuFallback, mainMenuKeyboard(s.managerUsername))

	case dialog.StateNiche:
		if !in.IsText() {
			return s.send(userID, TextRetryNiche, nicheKeyboard())
		}
		return s.acceptNiche(ctx, userID, in.Text)

	case dialog.StateAccountLink:
		if !in.IsText() {
			return s.send(userID, TextRetryLink, nil)
		}
		if err := s.attempts.SetField(ctx, userID, trial.FieldAccountLink, in.Text); err != nil {
			return s.internalError(userID, "attempt.set_account_link", err)
		}
		s.sessions.SetState(userID, dialog.StateGoal)
		return s.send(userID, TextAskGoal, goalKeyboard())

	case dialog.StateGoal:
		if !in.IsText() {
			return s.send(userID, TextRetryGoal, goalKeyboard())
		}
		return s.acceptGoal(ctx, userID, in.Text)

	case dialog.StateMaterial:
		return s.handleMaterial(ctx, userID, username, in)

	case dialog.StateDayLink:
		if !in.IsText() {
			return s.send(userID, TextRetryLink, nil)
		}
		s.sessions.Update(userID, func(sess *dialog.Session) {
			sess.Scratch.PostLink = in.Text
			sess.State = dialog.StateStatsViews
		})
		return s.send(userID, TextAskViews, nil)

	case dialog.StateStatsViews:
		return s.acceptStat(userID, in, TextRetryViews, TextAskLikes, dialog.StateStatsLikes,
			func(sess *dialog.Session, v int64) { sess.Scratch.Views = v })

	case dialog.StateStatsLikes:
		return s.acceptStat(userID, in, TextRetryLikes, TextAskComments, dialog.StateStatsComments,
			func(sess *dialog.Session, v int64) { sess.Scratch.Likes = v })

	case dialog.StateStatsComments:
		return s.acceptStat(userID, in, TextRetryComments, TextAskFollows, dialog.StateStatsFollows,
			func(sess *dialog.Session, v int64) { sess.Scratch.Comments = v })

	case dialog.StateStatsFollows:
		return s.finishDay(ctx, userID, username, in, sess.Scratch)

	case dialog.StateLuxGoal:
		if !in.IsText() {
			return s.send(userID, TextRetryLuxGoal, nil)
		}
		s.sessions.Update(userID, func(sess *dialog.Session) {
			sess.Scratch.LuxGoal = in.Text
			sess.State = dialog.StateLuxVolume
		})
		return s.send(userID, TextAskLuxVolume, nil)

	case dialog.StateLuxVolume:
		volume, ok := parseLuxVolume(in)
		if !ok {
			return s.send(userID, TextRetryLuxVolume, nil)
		}
		s.sessions.Update(userID, func(sess *dialog.Session) {
			sess.Scratch.LuxVolume = volume
			sess.State = dialog.StateLuxAccountLink
		})
		return s.send(userID, TextAskLuxLink, nil)

	case dialog.StateLuxAccountLink:
		if !in.IsText() {
			return s.send(userID, TextRetryLuxLink, nil)
		}
		return s.finishLux(ctx, userID, username, in.Text, sess.Scratch)

	default:
		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"state":   string(sess.State),
		}).Warn("Message arrived in unknown dialogue state, resetting session")
		s.sessions.Clear(userID)
		return s.send(userID, TextMenuFallback, mainMenuKeyboard(s.managerUsername))
	}
}

// handleMaterial collects the source video and its text description in either
// order. The step completes only when both are present; until then each turn
// acknowledges what was received and names what is still missing.
func (s *DialogService) handleMaterial(ctx context.Context, userID int64, username string, in dialog.Incoming) error {
	switch {
	case in.VideoFileID != "":
		s.sessions.Update(userID, func(sess *dialog.Session) {
			sess.Scratch.MaterialVideo = in.VideoFileID
		})
	case in.IsText():
		s.sessions.Update(userID, func(sess *dialog.Session) {
			sess.Scratch.MaterialNote = in.Text
		})
	default:
		return s.send(userID, TextRetryMaterial, nil)
	}

	scratch := s.sessions.Get(userID).Scratch
	if scratch.MaterialVideo == "" {
		return s.send(userID, TextMaterialNeedVideo, nil)
	}
	if scratch.MaterialNote == "" {
		return s.send(userID, TextMaterialNeedNote, nil)
	}

	if err := s.attempts.SetField(ctx, userID, trial.FieldMaterialVideo, scratch.MaterialVideo); err != nil {
		return s.internalError(userID, "attempt.set_material_video", err)
	}
	if err := s.attempts.SetField(ctx, userID, trial.FieldMaterialNote, scratch.MaterialNote); err != nil {
		return s.internalError(userID, "attempt.set_material_note", err)
	}
	if err := s.attempts.SetDay(ctx, userID, 1); err != nil {
		return s.internalError(userID, "attempt.set_day", err)
	}

	s.notifyOperator(fmt.Sprintf(
		"🎬 Исходник получен\nUser: %s | id=%d\n%s\nNote: %s",
		safeUsername(username), userID, s.lastAttemptSummary(ctx, userID), scratch.MaterialNote,
	))
	// the operator works from the video itself, not just the summary
	if err := s.tg.SendVideo(s.adminChatID, scratch.MaterialVideo,
		fmt.Sprintf("Исходник %s | id=%d", safeUsername(username), userID)); err != nil {
		s.logger.WithError(err).Warn("Failed to forward source video to operator")
	}

	s.sessions.Clear(userID)
	return s.send(userID, TextDayOneStarted, dayActionsKeyboard())
}

// acceptStat validates one numeric statistics answer, stores it to scratch and
// advances to the next field in the fixed views→likes→comments→follows order.
func (s *DialogService) acceptStat(
	userID int64,
	in dialog.Incoming,
	retryText, nextPrompt string,
	nextState dialog.State,
	store func(*dialog.Session, int64),
) error {
	v, ok := parseCount(in)
	if !ok {
		return s.send(userID, retryText, nil)
	}
	s.sessions.Update(userID, func(sess *dialog.Session) {
		store(sess, v)
		sess.State = nextState
	})
	return s.send(userID, nextPrompt, nil)
}

// finishDay persists the collected day statistics and either starts the next
// day or completes the attempt and emits the aggregate report.
func (s *DialogService) finishDay(ctx context.Context, userID int64, username string, in dialog.Incoming, scratch dialog.Scratch) error {
	follows, ok := parseCount(in)
	if !ok {
		return s.send(userID, TextRetryFollows, nil)
	}

	attempt, err := s.attempts.Active(ctx, userID)
	if err != nil {
		if err == idb.ErrAttemptNotFound {
			s.sessions.Clear(userID)
			return s.send(userID, TextNoActiveTest, mainMenuKeyboard(s.managerUsername))
		}
		return s.internalError(userID, "attempt.active", err)
	}

	stat := &trial.DayStat{
		AttemptID: attempt.ID,
		UserID:    userID,
		Day:       attempt.Day,
		PostLink:  scratch.PostLink,
		Views:     scratch.Views,
		Likes:     scratch.Likes,
		Comments:  scratch.Comments,
		Follows:   follows,
	}
	if err := s.stats.Upsert(ctx, stat); err != nil {
		return s.internalError(userID, "stats.upsert", err)
	}

	if attempt.Day < trial.LastDay {
		if err := s.attempts.SetDay(ctx, userID, attempt.Day+1); err != nil {
			return s.internalError(userID, "attempt.set_day", err)
		}
		s.sessions.Clear(userID)
		return s.send(userID, fmt.Sprintf(TextStatsSavedFmt, attempt.Day, attempt.Day+1), dayActionsKeyboard())
	}

	// Load the rows before closing the attempt: a failed read here leaves the
	// attempt open and the session in place, so the user can retry into the
	// report instead of losing it.
	rows, err := s.stats.ListByAttempt(ctx, attempt.ID)
	if err != nil {
		return s.internalError(userID, "stats.list", err)
	}
	report := trial.MakeReport(rows)

	if err := s.attempts.Finish(ctx, userID); err != nil {
		return s.internalError(userID, "attempt.finish", err)
	}
	s.sessions.Clear(userID)

	s.notifyOperator(fmt.Sprintf(
		"🟩 Free тест завершён\nUser: %s | id=%d\n%s\nAction: можно дожимать на Premium (основной) / Lux (апгрейд).",
		safeUsername(username), userID, s.lastAttemptSummary(ctx, userID),
	))

	if err := s.send(userID, report, nil); err != nil {
		return err
	}
	return s.send(userID, TextAfterTestSummary, afterTestKeyboard(s.managerUsername))
}

// finishLux is the terminal lux step: record the intent, summarize the whole
// questionnaire for the operator, and hand the user over to the manager.
func (s *DialogService) finishLux(ctx context.Context, userID int64, username, link string, scratch dialog.Scratch) error {
	if err := s.subs.Upsert(ctx, userID, subscription.PlanLux); err != nil {
		return s.internalError(userID, "subscription.upsert", err)
	}
	s.sessions.Clear(userID)

	s.notifyOperator(fmt.Sprintf(
		"👑 Lux запрос\nUser: %s | id=%d\nGoal: %s\nVolume: %d/мес\nAccount: %s\n%s\nStatus: pending\nAction: свяжись лично и уточни детали/цену.",
		safeUsername(username), userID, scratch.LuxGoal, scratch.LuxVolume, link,
		s.lastAttemptSummary(ctx, userID),
	))

	if err := s.send(userID, TextManagerInstruction, managerOnlyKeyboard(s.managerUsername)); err != nil {
		return err
	}
	if err := s.send(userID, TextLuxRequestSent, managerOnlyKeyboard(s.managerUsername)); err != nil {
		return err
	}
	return s.send(userID, TextBackToMenu, mainMenuKeyboard(s.managerUsername))
}

// parseCount accepts a non-negative base-10 integer in text form.
func parseCount(in dialog.Incoming) (int64, bool) {
	if !in.IsText() {
		return 0, false
	}
	v, err := strconv.ParseInt(in.Text, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// parseLuxVolume accepts exactly one of the offered monthly volumes.
func parseLuxVolume(in dialog.Incoming) (int, bool) {
	if !in.IsText() {
		return 0, false
	}
	switch in.Text {
	case "10":
		return 10, true
	case "20":
		return 20, true
	case "30":
		return 30, true
	default:
		return 0, false
	}
}
