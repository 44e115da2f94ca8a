package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rorupuntou/World-IDle-sub000/internal/catalog"
	"github.com/rorupuntou/World-IDle-sub000/internal/config"
	"github.com/rorupuntou/World-IDle-sub000/internal/game"
	"github.com/rorupuntou/World-IDle-sub000/internal/store"
)

const testWallet = "0xabcdef0123456789abcdef0123456789abcdef01"

func newTestManager(t *testing.T) (*Manager, *store.Store, *game.FakeClock) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "players.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	clk := game.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	m := NewManager(st, config.DefaultBalance(), clk, nil)
	t.Cleanup(func() { m.CloseAll(context.Background()) })
	return m, st, clk
}

func TestManager_ReusesSessionPerWallet(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	s1, err := m.Get(ctx, testWallet)
	require.NoError(t, err)
	s2, err := m.Get(ctx, "  "+testWallet+" ")
	require.NoError(t, err)
	assert.Same(t, s1, s2)

	_, err = m.Get(ctx, "")
	assert.ErrorIs(t, err, store.ErrNoWallet)
}

func TestManager_PeekDoesNotCreate(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, ok := m.Peek(testWallet)
	assert.False(t, ok)

	s, err := m.Get(context.Background(), testWallet)
	require.NoError(t, err)
	got, ok := m.Peek(testWallet)
	assert.True(t, ok)
	assert.Same(t, s, got)
}

func TestSession_DoAccruesFirst(t *testing.T) {
	m, _, clk := newTestManager(t)
	s, err := m.Get(context.Background(), testWallet)
	require.NoError(t, err)

	require.NoError(t, s.Do(func(e *game.Engine) error {
		e.Click()
		return nil
	}))

	// Rejections surface through Do unchanged.
	err = s.Do(func(e *game.Engine) error {
		_, err := e.PurchaseProducer(catalog.ProducerAutoTapper, 0)
		return err
	})
	assert.ErrorIs(t, err, game.ErrBadQuantity)

	clk.Advance(10 * time.Second)
	var soft, rate float64
	s.View(func(e *game.Engine) {
		soft = e.Game().SoftCurrency
		rate = e.Rates().Total
	})
	assert.Equal(t, 0.0, rate)
	assert.Equal(t, 1.0, soft)
}

func TestSession_FlushPersistsAcrossManagers(t *testing.T) {
	m, st, clk := newTestManager(t)
	ctx := context.Background()

	s, err := m.Get(ctx, testWallet)
	require.NoError(t, err)
	require.NoError(t, s.Do(func(e *game.Engine) error {
		for i := 0; i < 20; i++ {
			e.Click()
		}
		_, err := e.PurchaseProducer(catalog.ProducerAutoTapper, 1)
		return err
	}))
	s.Flush(ctx)
	m.Drop(ctx, testWallet)

	m2 := NewManager(st, config.DefaultBalance(), clk, nil)
	t.Cleanup(func() { m2.CloseAll(ctx) })
	s2, err := m2.Get(ctx, testWallet)
	require.NoError(t, err)

	s2.View(func(e *game.Engine) {
		assert.Equal(t, int64(20), e.Stats().LifetimeClicks)
		ps, ok := e.Producer(catalog.ProducerAutoTapper)
		require.True(t, ok)
		assert.Equal(t, 1, ps.Owned)
		assert.Equal(t, 5.0, e.Game().SoftCurrency)
	})
}

func TestSession_CloseFlushes(t *testing.T) {
	m, st, _ := newTestManager(t)
	ctx := context.Background()

	s, err := m.Get(ctx, testWallet)
	require.NoError(t, err)
	require.NoError(t, s.Do(func(e *game.Engine) error {
		e.Click()
		return nil
	}))
	m.CloseAll(ctx)

	p, err := st.Load(ctx, testWallet)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, p.Snapshot)
	assert.Equal(t, int64(1), p.Snapshot.Stats.LifetimeClicks)
}

func TestSession_ViewDoesNotMarkDirty(t *testing.T) {
	m, st, _ := newTestManager(t)
	ctx := context.Background()

	s, err := m.Get(ctx, testWallet)
	require.NoError(t, err)
	s.View(func(e *game.Engine) {})
	s.Flush(ctx)

	p, err := st.Load(ctx, testWallet)
	require.NoError(t, err)
	assert.Nil(t, p, "clean session should not have written a row")
}

func TestSession_ViewOnlyAccrualIsPersisted(t *testing.T) {
	m, st, clk := newTestManager(t)
	ctx := context.Background()

	s, err := m.Get(ctx, testWallet)
	require.NoError(t, err)
	require.NoError(t, s.Do(func(e *game.Engine) error {
		for i := 0; i < 20; i++ {
			e.Click()
		}
		_, err := e.PurchaseProducer(catalog.ProducerAutoTapper, 1)
		return err
	}))
	s.Flush(ctx)

	// A wallet watching the state stream never issues another action; the
	// production its producers accrue must still reach the store.
	clk.Advance(2 * time.Hour)
	var soft float64
	s.View(func(e *game.Engine) { soft = e.Game().SoftCurrency })
	assert.InDelta(t, 725.0, soft, 1e-9)
	s.Flush(ctx)

	p, err := st.Load(ctx, testWallet)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, p.Snapshot)
	assert.InDelta(t, 725.0, p.Snapshot.Game.SoftCurrency, 1e-9)
}

func TestManager_RestoresReferralBoost(t *testing.T) {
	m, st, _ := newTestManager(t)
	ctx := context.Background()

	boost := 0.25
	require.NoError(t, st.Save(ctx, testWallet, store.SaveRequest{ReferralBoost: &boost}))

	s, err := m.Get(ctx, testWallet)
	require.NoError(t, err)
	s.View(func(e *game.Engine) {
		assert.Equal(t, 0.25, e.Game().PermanentReferralBoost)
	})
}
