package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	_ "modernc.org/sqlite"

	"github.com/rorupuntou/World-IDle-sub000/internal/game"
)

var ErrNoWallet = errors.New("wallet address is required")

// Store is the persistence bridge: one row per wallet, upserted whole,
// last-write-wins. The snapshot travels as a gzip-compressed JSON blob;
// fields that must survive snapshot resets (prestige balance, referral
// boost, claim bookkeeping) live in dedicated columns.
type Store struct {
	db *sql.DB
}

// Player is one loaded row.
type Player struct {
	Wallet            string
	Snapshot          *game.Snapshot
	PrestigeBalance   float64
	ReferralBoost     float64
	ReferredBy        string
	ReferralCount     int
	LastClaimAt       time.Time
	LastClaimEarnings float64
	UpdatedAt         time.Time
}

// SaveRequest is a partial update; nil fields leave the stored value alone.
type SaveRequest struct {
	Snapshot          *game.Snapshot
	PrestigeBalance   *float64
	ReferralBoost     *float64
	ReferredBy        *string
	ReferralCount     *int
	LastClaimAt       *time.Time
	LastClaimEarnings *float64
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func initPragmas(db *sql.DB) error {
	for _, p := range []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA busy_timeout=5000;`,
	} {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS players (
	wallet                   TEXT PRIMARY KEY,
	snapshot                 BLOB,
	prestige_balance         REAL NOT NULL DEFAULT 0,
	permanent_referral_boost REAL NOT NULL DEFAULT 0,
	referred_by              TEXT NOT NULL DEFAULT '',
	referral_count           INTEGER NOT NULL DEFAULT 0,
	last_claim_at            TEXT NOT NULL DEFAULT '',
	last_claim_earnings      REAL NOT NULL DEFAULT 0,
	updated_at               TEXT NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// NormalizeWallet lowercases and trims a wallet address; addresses are
// case-insensitive keys.
func NormalizeWallet(wallet string) string {
	return strings.ToLower(strings.TrimSpace(wallet))
}

// Load returns the row for a wallet, or nil for a new player.
func (s *Store) Load(ctx context.Context, wallet string) (*Player, error) {
	wallet = NormalizeWallet(wallet)
	if wallet == "" {
		return nil, ErrNoWallet
	}
	row := s.db.QueryRowContext(ctx, `
SELECT snapshot, prestige_balance, permanent_referral_boost, referred_by,
       referral_count, last_claim_at, last_claim_earnings, updated_at
FROM players WHERE wallet = ?`, wallet)

	var (
		blob        []byte
		p           = Player{Wallet: wallet}
		lastClaimAt string
		updatedAt   string
	)
	err := row.Scan(&blob, &p.PrestigeBalance, &p.ReferralBoost, &p.ReferredBy,
		&p.ReferralCount, &lastClaimAt, &p.LastClaimEarnings, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(blob) > 0 {
		snap, err := decodeSnapshot(blob)
		if err != nil {
			return nil, fmt.Errorf("decode snapshot for %s: %w", wallet, err)
		}
		// The referral boost column is authoritative; reinject it.
		snap.Game.PermanentReferralBoost = p.ReferralBoost
		p.Snapshot = snap
	}
	if lastClaimAt != "" {
		p.LastClaimAt, _ = time.Parse(time.RFC3339Nano, lastClaimAt)
	}
	if updatedAt != "" {
		p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	}
	return &p, nil
}

// Save upserts the provided fields for a wallet. When a snapshot is given,
// its referral boost is extracted to the dedicated column (unless the request
// sets the column explicitly) and stripped from the blob.
func (s *Store) Save(ctx context.Context, wallet string, req SaveRequest) error {
	wallet = NormalizeWallet(wallet)
	if wallet == "" {
		return ErrNoWallet
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO players (wallet, updated_at) VALUES (?, ?)
		 ON CONFLICT(wallet) DO UPDATE SET updated_at = excluded.updated_at`,
		wallet, now); err != nil {
		return err
	}

	if req.Snapshot != nil {
		snap := *req.Snapshot
		boost := snap.Game.PermanentReferralBoost
		snap.Game.PermanentReferralBoost = 0
		blob, err := encodeSnapshot(&snap)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE players SET snapshot = ? WHERE wallet = ?`, blob, wallet); err != nil {
			return err
		}
		if req.ReferralBoost == nil {
			req.ReferralBoost = &boost
		}
	}
	if req.PrestigeBalance != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE players SET prestige_balance = ? WHERE wallet = ?`, *req.PrestigeBalance, wallet); err != nil {
			return err
		}
	}
	if req.ReferralBoost != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE players SET permanent_referral_boost = ? WHERE wallet = ?`, *req.ReferralBoost, wallet); err != nil {
			return err
		}
	}
	if req.ReferredBy != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE players SET referred_by = ? WHERE wallet = ?`, NormalizeWallet(*req.ReferredBy), wallet); err != nil {
			return err
		}
	}
	if req.ReferralCount != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE players SET referral_count = ? WHERE wallet = ?`, *req.ReferralCount, wallet); err != nil {
			return err
		}
	}
	if req.LastClaimAt != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE players SET last_claim_at = ? WHERE wallet = ?`,
			req.LastClaimAt.UTC().Format(time.RFC3339Nano), wallet); err != nil {
			return err
		}
	}
	if req.LastClaimEarnings != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE players SET last_claim_earnings = ? WHERE wallet = ?`, *req.LastClaimEarnings, wallet); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func encodeSnapshot(snap *game.Snapshot) ([]byte, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(raw); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeSnapshot(blob []byte) (*game.Snapshot, error) {
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	raw, err := io.ReadAll(gz)
	if err != nil {
		return nil, err
	}
	var snap game.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
