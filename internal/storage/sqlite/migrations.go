package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
//
// Rooms are stored document-style: the member list and balance history are
// JSON columns rewritten together on every update, so a room write is always
// a single-row replacement. The version column backs conditional updates.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    openid TEXT PRIMARY KEY,
    nickname TEXT NOT NULL,
    avatar_url TEXT NOT NULL DEFAULT '',
    secret_hash TEXT NOT NULL DEFAULT '',
    total_games INTEGER NOT NULL DEFAULT 0,
    total_wins INTEGER NOT NULL DEFAULT 0,
    total_losses INTEGER NOT NULL DEFAULT 0,
    total_score_change REAL NOT NULL DEFAULT 0,
    total_money_change REAL NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS rooms (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    room_name TEXT NOT NULL,
    game_type TEXT NOT NULL DEFAULT 'majiang',
    settlement_mode TEXT NOT NULL DEFAULT 'score',
    base_point INTEGER NOT NULL DEFAULT 1,
    status TEXT NOT NULL DEFAULT 'active',
    invite_code TEXT NOT NULL,
    total_rounds INTEGER NOT NULL DEFAULT 0,
    members TEXT NOT NULL DEFAULT '[]',
    balance_history TEXT NOT NULL DEFAULT '[]',
    version INTEGER NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL,
    settled_at INTEGER
);

CREATE TABLE IF NOT EXISTS game_records (
    id TEXT PRIMARY KEY,
    room_id TEXT NOT NULL,
    round_number INTEGER NOT NULL,
    scores TEXT NOT NULL DEFAULT '[]',
    is_balanced INTEGER NOT NULL DEFAULT 0,
    played_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS friends (
    owner_id TEXT NOT NULL,
    friend_openid TEXT NOT NULL,
    nickname TEXT NOT NULL DEFAULT '',
    avatar_url TEXT NOT NULL DEFAULT '',
    frequency INTEGER NOT NULL DEFAULT 0,
    games_played INTEGER NOT NULL DEFAULT 0,
    wins INTEGER NOT NULL DEFAULT 0,
    losses INTEGER NOT NULL DEFAULT 0,
    total_score_change REAL NOT NULL DEFAULT 0,
    last_played_at INTEGER NOT NULL,
    added_at INTEGER NOT NULL,
    PRIMARY KEY (owner_id, friend_openid)
);

CREATE TABLE IF NOT EXISTS personal_records (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    game_type TEXT NOT NULL,
    settlement_mode TEXT NOT NULL DEFAULT 'score',
    players TEXT NOT NULL DEFAULT '[]',
    note TEXT,
    played_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rooms_status ON rooms(status);
CREATE INDEX IF NOT EXISTS idx_rooms_invite_code ON rooms(invite_code, status);
CREATE INDEX IF NOT EXISTS idx_game_records_room_id ON game_records(room_id);
CREATE INDEX IF NOT EXISTS idx_personal_records_owner_id ON personal_records(owner_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
