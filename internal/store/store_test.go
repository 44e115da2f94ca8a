package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rorupuntou/World-IDle-sub000/internal/game"
)

const testWallet = "0xAbCdEf0123456789aBcDeF0123456789AbCdEf01"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "players.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testSnapshot() *game.Snapshot {
	return &game.Snapshot{
		Game: game.GameState{
			SoftCurrency:           1234.5,
			BonusCurrency:          10,
			ClickBaseValue:         1,
			PermanentBoostBonus:    0.2,
			PermanentReferralBoost: 0.15,
			LastSavedAt:            time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		Producers: []game.ProducerState{
			{ID: 1, Owned: 10, UnitCost: 60},
			{ID: 2, Owned: 3, UnitCost: 152},
		},
		Upgrades:   []game.UpgradeState{{ID: 101, Purchased: true}},
		KnownTiers: map[int]int{1: 1},
	}
}

func TestLoad_NewPlayerIsNil(t *testing.T) {
	s := openTestStore(t)
	p, err := s.Load(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestLoad_EmptyWallet(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Load(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNoWallet)
	assert.ErrorIs(t, s.Save(context.Background(), "", SaveRequest{}), ErrNoWallet)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	snap := testSnapshot()
	bal := 7.0

	require.NoError(t, s.Save(ctx, testWallet, SaveRequest{Snapshot: snap, PrestigeBalance: &bal}))

	p, err := s.Load(ctx, testWallet)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, p.Snapshot)
	assert.Equal(t, NormalizeWallet(testWallet), p.Wallet)
	assert.Equal(t, 7.0, p.PrestigeBalance)
	assert.Equal(t, *snap, *p.Snapshot)
	assert.False(t, p.UpdatedAt.IsZero())
}

func TestSave_ReferralBoostLivesInColumn(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testWallet, SaveRequest{Snapshot: testSnapshot()}))

	// The boost is stripped from the stored blob and kept in its column.
	var boostInBlob float64
	row := s.db.QueryRow(`SELECT permanent_referral_boost FROM players WHERE wallet = ?`,
		NormalizeWallet(testWallet))
	require.NoError(t, row.Scan(&boostInBlob))
	assert.Equal(t, 0.15, boostInBlob)

	// Overwriting the column does not require rewriting the blob, and the
	// column wins on load.
	newBoost := 0.25
	require.NoError(t, s.Save(ctx, testWallet, SaveRequest{ReferralBoost: &newBoost}))

	p, err := s.Load(ctx, testWallet)
	require.NoError(t, err)
	assert.Equal(t, 0.25, p.ReferralBoost)
	assert.Equal(t, 0.25, p.Snapshot.Game.PermanentReferralBoost)
}

func TestSave_PartialUpdateLeavesRestAlone(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	bal := 3.0
	require.NoError(t, s.Save(ctx, testWallet, SaveRequest{Snapshot: testSnapshot(), PrestigeBalance: &bal}))

	count := 4
	by := "0xREF"
	claimAt := time.Date(2025, 7, 1, 8, 30, 0, 0, time.UTC)
	earnings := 99_000.0
	require.NoError(t, s.Save(ctx, testWallet, SaveRequest{
		ReferralCount:     &count,
		ReferredBy:        &by,
		LastClaimAt:       &claimAt,
		LastClaimEarnings: &earnings,
	}))

	p, err := s.Load(ctx, testWallet)
	require.NoError(t, err)
	assert.Equal(t, 3.0, p.PrestigeBalance)
	require.NotNil(t, p.Snapshot)
	assert.Equal(t, 1234.5, p.Snapshot.Game.SoftCurrency)
	assert.Equal(t, 4, p.ReferralCount)
	assert.Equal(t, "0xref", p.ReferredBy)
	assert.True(t, claimAt.Equal(p.LastClaimAt))
	assert.Equal(t, 99_000.0, p.LastClaimEarnings)
}

func TestWalletKeysAreCaseInsensitive(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	bal := 5.0
	require.NoError(t, s.Save(ctx, "0xABCD", SaveRequest{PrestigeBalance: &bal}))

	p, err := s.Load(ctx, "  0xabcd ")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 5.0, p.PrestigeBalance)
}

func TestSnapshotBlobIsCompressed(t *testing.T) {
	snap := testSnapshot()
	blob, err := encodeSnapshot(snap)
	require.NoError(t, err)
	// gzip magic bytes
	require.GreaterOrEqual(t, len(blob), 2)
	assert.Equal(t, byte(0x1f), blob[0])
	assert.Equal(t, byte(0x8b), blob[1])

	got, err := decodeSnapshot(blob)
	require.NoError(t, err)
	assert.Equal(t, *snap, *got)
}
