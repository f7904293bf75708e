package app

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"neurolux_bot/internal/domain/dialog"
	"neurolux_bot/internal/domain/subscription"
	"neurolux_bot/internal/domain/trial"
	"neurolux_bot/internal/domain/user"
	idb "neurolux_bot/internal/infra/database"
	"neurolux_bot/internal/infra/session"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

const (
	testAdminID = int64(999)
	testUserID  = int64(42)
	testManager = "manager"
)

// --- in-memory fakes -------------------------------------------------------

type memUsers struct {
	names map[int64]string
}

var _ user.Repository = (*memUsers)(nil)

func newMemUsers() *memUsers { return &memUsers{names: map[int64]string{}} }

func (m *memUsers) Upsert(ctx context.Context, id int64, username string) error {
	if username != "" || m.names[id] == "" {
		m.names[id] = username
	}
	return nil
}

func (m *memUsers) GetByID(ctx context.Context, id int64) (*user.User, error) {
	name, ok := m.names[id]
	if !ok {
		return nil, idb.ErrUserNotFound
	}
	return &user.User{ID: id, Username: sql.NullString{String: name, Valid: name != ""}}, nil
}

type memAttempts struct {
	seq      int64
	attempts []*trial.Attempt
}

var _ trial.Repository = (*memAttempts)(nil)

func newMemAttempts() *memAttempts { return &memAttempts{} }

func (m *memAttempts) active(userID int64) *trial.Attempt {
	for i := len(m.attempts) - 1; i >= 0; i-- {
		if m.attempts[i].UserID == userID && !m.attempts[i].IsDone {
			return m.attempts[i]
		}
	}
	return nil
}

func (m *memAttempts) Start(ctx context.Context, userID int64) (*trial.Attempt, error) {
	for _, a := range m.attempts {
		if a.UserID == userID {
			a.IsDone = true
		}
	}
	m.seq++
	a := &trial.Attempt{ID: m.seq, UserID: userID, Day: 1, UpdatedAt: time.Now()}
	m.attempts = append(m.attempts, a)
	return a, nil
}

func (m *memAttempts) Active(ctx context.Context, userID int64) (*trial.Attempt, error) {
	if a := m.active(userID); a != nil {
		return a, nil
	}
	return nil, idb.ErrAttemptNotFound
}

func (m *memAttempts) Latest(ctx context.Context, userID int64) (*trial.Attempt, error) {
	for i := len(m.attempts) - 1; i >= 0; i-- {
		if m.attempts[i].UserID == userID {
			return m.attempts[i], nil
		}
	}
	return nil, idb.ErrAttemptNotFound
}

func (m *memAttempts) SetField(ctx context.Context, userID int64, field trial.Field, value string) error {
	a := m.active(userID)
	if a == nil {
		return nil // no-op, as in the SQL implementation
	}
	v := sql.NullString{String: value, Valid: true}
	switch field {
	case trial.FieldNiche:
		a.Niche = v
	case trial.FieldAccountLink:
		a.AccountLink = v
	case trial.FieldGoal:
		a.Goal = v
	case trial.FieldMaterialVideo:
		a.MaterialVideo = v
	case trial.FieldMaterialNote:
		a.MaterialNote = v
	default:
		return idb.ErrUnknownField
	}
	a.UpdatedAt = time.Now()
	return nil
}

func (m *memAttempts) SetDay(ctx context.Context, userID int64, day int) error {
	if a := m.active(userID); a != nil {
		a.Day = day
		a.UpdatedAt = time.Now()
	}
	return nil
}

func (m *memAttempts) Finish(ctx context.Context, userID int64) error {
	if a := m.active(userID); a != nil {
		a.IsDone = true
	}
	return nil
}

func (m *memAttempts) ListStale(ctx context.Context, cutoff time.Time) ([]*trial.Attempt, error) {
	out := []*trial.Attempt{}
	for _, a := range m.attempts {
		if !a.IsDone && a.UpdatedAt.Before(cutoff) {
			out = append(out, a)
		}
	}
	return out, nil
}

type memStats struct {
	rows     map[int64]map[int]*trial.DayStat // attemptID → day → stat
	failList error
}

var _ trial.StatsRepository = (*memStats)(nil)

func newMemStats() *memStats { return &memStats{rows: map[int64]map[int]*trial.DayStat{}} }

func (m *memStats) Upsert(ctx context.Context, stat *trial.DayStat) error {
	byDay, ok := m.rows[stat.AttemptID]
	if !ok {
		byDay = map[int]*trial.DayStat{}
		m.rows[stat.AttemptID] = byDay
	}
	c := *stat
	byDay[stat.Day] = &c
	return nil
}

func (m *memStats) ListByAttempt(ctx context.Context, attemptID int64) ([]*trial.DayStat, error) {
	if m.failList != nil {
		return nil, m.failList
	}
	out := []*trial.DayStat{}
	for _, s := range m.rows[attemptID] {
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func (m *memStats) count(attemptID int64) int { return len(m.rows[attemptID]) }

type memSubs struct {
	intents map[int64]*subscription.Intent
}

var _ subscription.Repository = (*memSubs)(nil)

func newMemSubs() *memSubs { return &memSubs{intents: map[int64]*subscription.Intent{}} }

func (m *memSubs) Upsert(ctx context.Context, userID int64, plan subscription.Plan) error {
	m.intents[userID] = &subscription.Intent{
		UserID: userID, Plan: plan, Status: subscription.StatusPending, UpdatedAt: time.Now(),
	}
	return nil
}

func (m *memSubs) GetByUserID(ctx context.Context, userID int64) (*subscription.Intent, error) {
	if i, ok := m.intents[userID]; ok {
		return i, nil
	}
	return nil, idb.ErrIntentNotFound
}

type sentMessage struct {
	To   int64
	Text string
}

type fakeClient struct {
	messages []sentMessage
	videos   []sentMessage // Text carries the file ID
	failFor  map[int64]error
}

func newFakeClient() *fakeClient { return &fakeClient{failFor: map[int64]error{}} }

func (f *fakeClient) SendMessage(to int64, text string, _ *telebot.SendOptions) error {
	if err, ok := f.failFor[to]; ok {
		return err
	}
	f.messages = append(f.messages, sentMessage{To: to, Text: text})
	return nil
}

func (f *fakeClient) SendVideo(to int64, fileID string, _ string) error {
	if err, ok := f.failFor[to]; ok {
		return err
	}
	f.videos = append(f.videos, sentMessage{To: to, Text: fileID})
	return nil
}

func (f *fakeClient) textsTo(id int64) []string {
	out := []string{}
	for _, m := range f.messages {
		if m.To == id {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeClient) lastTo(t *testing.T, id int64) string {
	t.Helper()
	msgs := f.textsTo(id)
	require.NotEmpty(t, msgs, "expected at least one message to %d", id)
	return msgs[len(msgs)-1]
}

// --- fixture ---------------------------------------------------------------

type engineFixture struct {
	svc      *DialogService
	users    *memUsers
	attempts *memAttempts
	stats    *memStats
	subs     *memSubs
	sessions *session.MemoryManager
	tg       *fakeClient
}

func newEngine(t *testing.T) *engineFixture {
	t.Helper()
	f := &engineFixture{
		users:    newMemUsers(),
		attempts: newMemAttempts(),
		stats:    newMemStats(),
		subs:     newMemSubs(),
		sessions: session.NewMemoryManager(),
		tg:       newFakeClient(),
	}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel) // keep test output quiet
	f.svc = NewDialogService(
		f.users, f.attempts, f.stats, f.subs, f.sessions, f.tg,
		logrus.NewEntry(log), testAdminID, testManager,
	)
	return f
}

func text(s string) dialog.Incoming { return dialog.Incoming{Text: s} }

func video(id string) dialog.Incoming { return dialog.Incoming{VideoFileID: id} }

var voice = dialog.Incoming{HasOtherMedia: true}

// walkToMaterialDone drives a fresh user through niche/link/goal/material.
func (f *engineFixture) walkToMaterialDone(t *testing.T, ctx context.Context) *trial.Attempt {
	t.Helper()
	require.NoError(t, f.svc.BeginFreeTest(ctx, testUserID))
	require.NoError(t, f.svc.ChooseNiche(ctx, testUserID, "Бизнес"))
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "alice", text("https://tiktok.com/@acct")))
	require.NoError(t, f.svc.ChooseGoal(ctx, testUserID, "Заявки"))
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "alice", video("vid-1")))
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "alice", text("крючок про цену")))

	a, err := f.attempts.Active(ctx, testUserID)
	require.NoError(t, err)
	return a
}

// submitDay drives one day-loop iteration with the given numbers.
func (f *engineFixture) submitDay(t *testing.T, ctx context.Context, link string, views, likes, comments, follows int64) {
	t.Helper()
	require.NoError(t, f.svc.PostedToday(ctx, testUserID))
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "alice", text(link)))
	for _, n := range []int64{views, likes, comments, follows} {
		require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "alice", text(fmt.Sprintf("%d", n))))
	}
}

// --- tests -----------------------------------------------------------------

func TestDialogService_FreeTestFullWalk(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)

	a := f.walkToMaterialDone(t, ctx)
	assert.Equal(t, "Бизнес", a.Niche.String)
	assert.Equal(t, "https://tiktok.com/@acct", a.AccountLink.String)
	assert.Equal(t, "Заявки", a.Goal.String)
	assert.Equal(t, "vid-1", a.MaterialVideo.String)
	assert.Equal(t, "крючок про цену", a.MaterialNote.String)
	assert.Equal(t, 1, a.Day)
	assert.False(t, f.sessions.InProgress(testUserID), "session must be cleared after material step")

	// operator got the submission summary and the video itself
	opMsgs := f.tg.textsTo(testAdminID)
	require.Len(t, opMsgs, 1)
	assert.Contains(t, opMsgs[0], "Исходник получен")
	assert.Contains(t, opMsgs[0], "@alice")
	require.Len(t, f.tg.videos, 1)
	assert.Equal(t, testAdminID, f.tg.videos[0].To)
	assert.Equal(t, "vid-1", f.tg.videos[0].Text)

	// three days of stats; day counter must step 1→2→3
	f.submitDay(t, ctx, "https://tiktok.com/v1", 5000, 100, 10, 2)
	assert.Equal(t, 2, a.Day)
	assert.False(t, a.IsDone)

	f.submitDay(t, ctx, "https://tiktok.com/v2", 15000, 300, 40, 5)
	assert.Equal(t, 3, a.Day)
	assert.False(t, a.IsDone)

	f.submitDay(t, ctx, "https://tiktok.com/v3", 1000, 20, 1, 0)
	assert.True(t, a.IsDone, "attempt must complete after the third day's stats")
	assert.False(t, f.sessions.InProgress(testUserID))
	assert.Equal(t, 3, f.stats.count(a.ID))

	// mean = 7000 → adequate, best day = 2 with 15000 views
	report := ""
	for _, m := range f.tg.textsTo(testUserID) {
		if strings.Contains(m, "Отчёт по 3-дневному тесту") {
			report = m
		}
	}
	require.NotEmpty(t, report, "user must receive the aggregate report")
	assert.Contains(t, report, "*7000*")
	assert.Contains(t, report, "Лучший день: *2*")
	assert.Contains(t, report, trial.VerdictAdequate)

	// operator: material summary + completion summary, nothing else
	opMsgs = f.tg.textsTo(testAdminID)
	require.Len(t, opMsgs, 2)
	assert.Contains(t, opMsgs[1], "Free тест завершён")
}

func TestDialogService_StatsValidationRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)

	a := f.walkToMaterialDone(t, ctx)
	require.NoError(t, f.svc.PostedToday(ctx, testUserID))
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "alice", text("https://tiktok.com/v1")))

	for _, bad := range []dialog.Incoming{text("abc"), text("-5"), text("12.5"), voice} {
		require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "alice", bad))
		assert.Equal(t, TextRetryViews, f.tg.lastTo(t, testUserID))
		assert.Equal(t, dialog.StateStatsViews, f.sessions.Get(testUserID).State,
			"state must not advance on invalid input")
	}
	assert.Equal(t, 0, f.stats.count(a.ID), "no stats row may be persisted before the sequence completes")

	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "alice", text("5000")))
	assert.Equal(t, dialog.StateStatsLikes, f.sessions.Get(testUserID).State)
}

func TestDialogService_RestartForceCompletesPriorAttempt(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)

	require.NoError(t, f.svc.BeginFreeTest(ctx, testUserID))
	first, err := f.attempts.Active(ctx, testUserID)
	require.NoError(t, err)

	require.NoError(t, f.svc.BeginFreeTest(ctx, testUserID))
	second, err := f.attempts.Active(ctx, testUserID)
	require.NoError(t, err)

	assert.True(t, first.IsDone, "prior attempt must be force-completed")
	assert.NotEqual(t, first.ID, second.ID)

	active := 0
	for _, a := range f.attempts.attempts {
		if !a.IsDone {
			active++
		}
	}
	assert.Equal(t, 1, active, "exactly one attempt per user may be active")
}

func TestDialogService_LuxFlow(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)

	require.NoError(t, f.svc.BeginLux(testUserID))
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "bob", text("sales")))
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "bob", text("20")))
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "bob", text("https://example.com/acct")))

	intent, err := f.subs.GetByUserID(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, subscription.PlanLux, intent.Plan)
	assert.Equal(t, subscription.StatusPending, intent.Status)

	opMsgs := f.tg.textsTo(testAdminID)
	require.Len(t, opMsgs, 1, "operator must be notified exactly once")
	assert.Contains(t, opMsgs[0], "sales")
	assert.Contains(t, opMsgs[0], "20/мес")
	assert.Contains(t, opMsgs[0], "https://example.com/acct")

	assert.False(t, f.sessions.InProgress(testUserID))
}

func TestDialogService_LuxVolumeValidation(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)

	require.NoError(t, f.svc.BeginLux(testUserID))
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "bob", text("brand")))

	for _, bad := range []string{"15", "0", "двадцать", ""} {
		in := text(bad)
		require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "bob", in))
		assert.Equal(t, TextRetryLuxVolume, f.tg.lastTo(t, testUserID))
		assert.Equal(t, dialog.StateLuxVolume, f.sessions.Get(testUserID).State)
	}

	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "bob", text("30")))
	assert.Equal(t, dialog.StateLuxAccountLink, f.sessions.Get(testUserID).State)
}

func TestDialogService_VoiceWhileLinkExpected(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)

	require.NoError(t, f.svc.BeginFreeTest(ctx, testUserID))
	require.NoError(t, f.svc.ChooseNiche(ctx, testUserID, "Блог"))
	require.Equal(t, dialog.StateAccountLink, f.sessions.Get(testUserID).State)

	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "alice", voice))

	assert.Equal(t, TextRetryLink, f.tg.lastTo(t, testUserID))
	assert.Equal(t, dialog.StateAccountLink, f.sessions.Get(testUserID).State, "state must be unchanged")

	a, err := f.attempts.Active(ctx, testUserID)
	require.NoError(t, err)
	assert.False(t, a.AccountLink.Valid, "link field must remain unset")
}

func TestDialogService_PremiumIsSingleStep(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)

	require.NoError(t, f.svc.RequestPremium(ctx, testUserID, "carol"))

	intent, err := f.subs.GetByUserID(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, subscription.PlanPremium, intent.Plan)
	assert.Equal(t, subscription.StatusPending, intent.Status)
	assert.False(t, f.sessions.InProgress(testUserID), "premium must not open a funnel session")

	opMsgs := f.tg.textsTo(testAdminID)
	require.Len(t, opMsgs, 1)
	assert.Contains(t, opMsgs[0], "Premium запрос")
	assert.Contains(t, opMsgs[0], "@carol")
}

func TestDialogService_IdleInputGetsMenuFallback(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)

	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "dave", text("привет")))
	assert.Equal(t, TextMenuFallback, f.tg.lastTo(t, testUserID))

	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "dave", voice))
	assert.Equal(t, TextMenuFallback, f.tg.lastTo(t, testUserID))
}

func TestDialogService_OperatorNotifyFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)
	f.tg.failFor[testAdminID] = fmt.Errorf("telegram: 403 forbidden")

	require.NoError(t, f.svc.BeginLux(testUserID))
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "bob", text("sales")))
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "bob", text("10")))
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "bob", text("https://example.com/acct")))

	// the user-facing transaction stays committed and confirmed
	intent, err := f.subs.GetByUserID(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, subscription.PlanLux, intent.Plan)

	joined := strings.Join(f.tg.textsTo(testUserID), "\n")
	assert.Contains(t, joined, TextLuxRequestSent)
}

func TestDialogService_MaterialRequiresVideoAndNote(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)

	require.NoError(t, f.svc.BeginFreeTest(ctx, testUserID))
	require.NoError(t, f.svc.ChooseNiche(ctx, testUserID, "Эксперт"))
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "alice", text("https://tiktok.com/@a")))
	require.NoError(t, f.svc.ChooseGoal(ctx, testUserID, "Просмотры"))

	// note first: step must not complete, the missing piece is named
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "alice", text("описание исходника")))
	assert.Equal(t, TextMaterialNeedVideo, f.tg.lastTo(t, testUserID))
	assert.Equal(t, dialog.StateMaterial, f.sessions.Get(testUserID).State)

	// junk in between is re-prompted, collected answers survive
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "alice", voice))
	assert.Equal(t, TextRetryMaterial, f.tg.lastTo(t, testUserID))

	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "alice", video("vid-9")))

	a, err := f.attempts.Active(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, "vid-9", a.MaterialVideo.String)
	assert.Equal(t, "описание исходника", a.MaterialNote.String)
	assert.Equal(t, 1, a.Day)
	assert.False(t, f.sessions.InProgress(testUserID))
}

func TestDialogService_MenuForceClearsSession(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)

	require.NoError(t, f.svc.BeginFreeTest(ctx, testUserID))
	require.True(t, f.sessions.InProgress(testUserID))

	require.NoError(t, f.svc.ShowMainMenu(ctx, testUserID, "alice"))
	assert.False(t, f.sessions.InProgress(testUserID))

	// a message after the reset falls back to the menu hint
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "alice", text("Бизнес")))
	assert.Equal(t, TextMenuFallback, f.tg.lastTo(t, testUserID))
}

func TestDialogService_VideoForwardFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)
	f.tg.failFor[testAdminID] = fmt.Errorf("telegram: 403 forbidden")

	a := f.walkToMaterialDone(t, ctx)

	// the flow committed despite the operator chat being unreachable
	assert.Equal(t, 1, a.Day)
	assert.Equal(t, "vid-1", a.MaterialVideo.String)
	assert.False(t, f.sessions.InProgress(testUserID))
	assert.Equal(t, TextDayOneStarted, f.tg.lastTo(t, testUserID))
	assert.Empty(t, f.tg.videos)
}

func TestDialogService_ReportLoadFailureLeavesAttemptOpen(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)

	a := f.walkToMaterialDone(t, ctx)
	f.submitDay(t, ctx, "https://tiktok.com/v1", 5000, 100, 10, 2)
	f.submitDay(t, ctx, "https://tiktok.com/v2", 15000, 300, 40, 5)

	// final day: everything up to the last answer, then the report read fails
	require.NoError(t, f.svc.PostedToday(ctx, testUserID))
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "alice", text("https://tiktok.com/v3")))
	for _, n := range []string{"1000", "20", "1"} {
		require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "alice", text(n)))
	}
	f.stats.failList = fmt.Errorf("driver: bad connection")
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "alice", text("0")))

	assert.Equal(t, TextInternalError, f.tg.lastTo(t, testUserID))
	assert.False(t, a.IsDone, "attempt must stay open when the report cannot be built")
	assert.Equal(t, dialog.StateStatsFollows, f.sessions.Get(testUserID).State,
		"session must survive so the answer can be retried")

	// the same answer succeeds once the store recovers
	f.stats.failList = nil
	require.NoError(t, f.svc.HandleIncoming(ctx, testUserID, "alice", text("0")))

	assert.True(t, a.IsDone)
	assert.False(t, f.sessions.InProgress(testUserID))
	joined := strings.Join(f.tg.textsTo(testUserID), "\n")
	assert.Contains(t, joined, "Отчёт по 3-дневному тесту")
}

func TestDialogService_StaleButtonsGetFallback(t *testing.T) {
	ctx := context.Background()
	f := newEngine(t)

	// niche button with no funnel in progress
	require.NoError(t, f.svc.ChooseNiche(ctx, testUserID, "Бизнес"))
	assert.Equal(t, TextMenuFallback, f.tg.lastTo(t, testUserID))

	// goal button while the engine expects a niche
	require.NoError(t, f.svc.BeginFreeTest(ctx, testUserID))
	require.NoError(t, f.svc.ChooseGoal(ctx, testUserID, "Заявки"))
	assert.Equal(t, TextMenuFallback, f.tg.lastTo(t, testUserID))
	assert.Equal(t, dialog.StateNiche, f.sessions.Get(testUserID).State)
}
