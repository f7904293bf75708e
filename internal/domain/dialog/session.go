package dialog

// State identifies the funnel step the engine expects the user's next input
// to answer. StateIdle means no funnel is in progress.
type State string

const (
	StateIdle State = "idle"

	// Free test funnel
	StateNiche         State = "free:niche"
	StateAccountLink   State = "free:account_link"
	StateGoal          State = "free:goal"
	StateMaterial      State = "free:material"
	StateDayLink       State = "free:day_link"
	StateStatsViews    State = "free:stats_views"
	StateStatsLikes    State = "free:stats_likes"
	StateStatsComments State = "free:stats_comments"
	StateStatsFollows  State = "free:stats_follows"

	// Lux upsell funnel
	StateLuxGoal        State = "lux:goal"
	StateLuxVolume      State = "lux:volume"
	StateLuxAccountLink State = "lux:account_link"
)

// Scratch keeps the answers collected so far within the current step sequence.
// The fields are typed on purpose: the engine only ever reads back what it
// wrote itself, so there is no free-form key/value bag to mistype.
type Scratch struct {
	// material step; both must be present before the step completes
	MaterialVideo string
	MaterialNote  string

	// day statistics sequence
	PostLink string
	Views    int64
	Likes    int64
	Comments int64

	// lux questionnaire
	LuxGoal   string
	LuxVolume int
}

// Session is the ephemeral per-user dialogue record. It lives in process
// memory only and is destroyed on funnel completion, /start, or
// return-to-menu.
type Session struct {
	State   State
	Scratch Scratch
}

// Manager owns the dialogue sessions of all users. Implementations must be
// safe for concurrent use, because the transport may deliver updates for
// different users in parallel.
type Manager interface {
	// Get returns a copy of the user's session, or an idle one if none exists.
	Get(userID int64) Session
	// SetState moves the user to the given state, keeping the scratch data.
	SetState(userID int64, st State)
	// Update applies fn to the user's session under the manager's lock.
	Update(userID int64, fn func(*Session))
	// Clear destroys the user's session entirely.
	Clear(userID int64)
	// InProgress reports whether the user has an active non-idle state.
	InProgress(userID int64) bool
}
