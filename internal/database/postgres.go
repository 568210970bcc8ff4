package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool against url and verifies it with a ping.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Migrate creates the tables this service needs. Idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS profiles (
	client_id    TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS match_results (
	game_id     TEXT PRIMARY KEY,
	room_id     TEXT NOT NULL,
	winner_id   TEXT,
	turns       INT NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// PostgresProfileStore implements ProfileStore on a pgx pool.
type PostgresProfileStore struct {
	pool *pgxpool.Pool
	temp func() string
}

// NewPostgresProfileStore wraps pool. tempName provisions display names for
// unknown clients; nil picks a generic default.
func NewPostgresProfileStore(pool *pgxpool.Pool, tempName func() string) *PostgresProfileStore {
	if tempName == nil {
		tempName = func() string { return "Player" }
	}
	return &PostgresProfileStore{pool: pool, temp: tempName}
}

func (s *PostgresProfileStore) Get(ctx context.Context, clientID string) (Profile, error) {
	var p Profile
	err := s.pool.QueryRow(ctx,
		`SELECT client_id, display_name, created_at, updated_at FROM profiles WHERE client_id = $1`,
		clientID,
	).Scan(&p.ClientID, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *PostgresProfileStore) GetOrCreate(ctx context.Context, clientID string) (Profile, error) {
	p, err := s.Get(ctx, clientID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return Profile{}, err
	}
	now := time.Now().UTC()
	p = Profile{ClientID: clientID, DisplayName: s.temp(), CreatedAt: now, UpdatedAt: now}
	// ON CONFLICT keeps a concurrently-created row and its name.
	err = s.pool.QueryRow(ctx,
		`INSERT INTO profiles (client_id, display_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)
		 ON CONFLICT (client_id) DO UPDATE SET client_id = EXCLUDED.client_id
		 RETURNING client_id, display_name, created_at, updated_at`,
		clientID, p.DisplayName, now,
	).Scan(&p.ClientID, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Profile{}, fmt.Errorf("create profile: %w", err)
	}
	return p, nil
}

func (s *PostgresProfileStore) SetDisplayName(ctx context.Context, clientID, displayName string) (Profile, error) {
	now := time.Now().UTC()
	var p Profile
	err := s.pool.QueryRow(ctx,
		`INSERT INTO profiles (client_id, display_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)
		 ON CONFLICT (client_id) DO UPDATE SET display_name = $2, updated_at = $3
		 RETURNING client_id, display_name, created_at, updated_at`,
		clientID, displayName, now,
	).Scan(&p.ClientID, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Profile{}, fmt.Errorf("set display name: %w", err)
	}
	return p, nil
}

// MatchResult records a finished game for later stats.
type MatchResult struct {
	GameID     string
	RoomID     string
	WinnerID   string
	Turns      int
	FinishedAt time.Time
}

// SaveMatchResult persists one finished match. A repeated game id overwrites
// the earlier row, keeping the call idempotent on retries.
func SaveMatchResult(ctx context.Context, pool *pgxpool.Pool, r MatchResult) error {
	_, err := pool.Exec(ctx,
		`INSERT INTO match_results (game_id, room_id, winner_id, turns, finished_at)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		 ON CONFLICT (game_id) DO UPDATE SET winner_id = NULLIF($3, ''), turns = $4, finished_at = $5`,
		r.GameID, r.RoomID, r.WinnerID, r.Turns, r.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("save match result: %w", err)
	}
	return nil
}
