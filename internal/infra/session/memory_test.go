package session

import (
	"sync"
	"testing"

	"neurolux_bot/internal/domain/dialog"

	"github.com/stretchr/testify/assert"
)

func TestMemoryManager_GetReturnsIdleForUnknownUser(t *testing.T) {
	m := NewMemoryManager()

	s := m.Get(1)
	assert.Equal(t, dialog.StateIdle, s.State)
	assert.False(t, m.InProgress(1))
}

func TestMemoryManager_SetStatePreservesScratch(t *testing.T) {
	m := NewMemoryManager()

	m.SetState(1, dialog.StateStatsViews)
	m.Update(1, func(s *dialog.Session) {
		s.Scratch.PostLink = "https://tiktok.com/v"
		s.Scratch.Views = 5000
	})
	m.SetState(1, dialog.StateStatsLikes)

	s := m.Get(1)
	assert.Equal(t, dialog.StateStatsLikes, s.State)
	assert.Equal(t, "https://tiktok.com/v", s.Scratch.PostLink)
	assert.Equal(t, int64(5000), s.Scratch.Views)
}

func TestMemoryManager_GetReturnsCopy(t *testing.T) {
	m := NewMemoryManager()
	m.SetState(1, dialog.StateNiche)

	s := m.Get(1)
	s.State = dialog.StateLuxGoal
	s.Scratch.LuxGoal = "mutated"

	assert.Equal(t, dialog.StateNiche, m.Get(1).State)
	assert.Empty(t, m.Get(1).Scratch.LuxGoal)
}

func TestMemoryManager_ClearDropsStateAndScratch(t *testing.T) {
	m := NewMemoryManager()
	m.SetState(1, dialog.StateDayLink)
	m.Update(1, func(s *dialog.Session) { s.Scratch.PostLink = "x" })

	m.Clear(1)

	assert.False(t, m.InProgress(1))
	s := m.Get(1)
	assert.Equal(t, dialog.StateIdle, s.State)
	assert.Empty(t, s.Scratch.PostLink)
}

func TestMemoryManager_UsersAreIsolated(t *testing.T) {
	m := NewMemoryManager()
	m.SetState(1, dialog.StateNiche)
	m.SetState(2, dialog.StateLuxGoal)

	m.Clear(1)

	assert.False(t, m.InProgress(1))
	assert.Equal(t, dialog.StateLuxGoal, m.Get(2).State)
}

func TestMemoryManager_ConcurrentAccess(t *testing.T) {
	m := NewMemoryManager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		userID := int64(i % 5)
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.SetState(userID, dialog.StateStatsViews)
			m.Update(userID, func(s *dialog.Session) { s.Scratch.Views++ })
			m.Get(userID)
			m.InProgress(userID)
		}()
	}
	wg.Wait()

	for id := int64(0); id < 5; id++ {
		assert.Equal(t, dialog.StateStatsViews, m.Get(id).State)
		assert.Equal(t, int64(10), m.Get(id).Scratch.Views)
	}
}
