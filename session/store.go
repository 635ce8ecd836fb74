package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// StoredState is the durable snapshot of one session: which bot it
// belongs to, its current state, and its global-variable values.
type StoredState struct {
	SessionID string
	BotName   string
	StateName string
	Globals   map[string]string
}

// dbConn is the slice of *pgx.Conn / *pgxpool.Pool that Store needs;
// pgxmock.PgxConnIface satisfies it too, which is what the test suite
// substitutes instead of a live database.
type dbConn interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Store persists Session state to Postgres so a host process can restart
// without losing in-flight conversations.
type Store struct {
	conn dbConn
}

// NewStore wraps conn (a *pgx.Conn, *pgxpool.Pool, or test double) as a
// Store.
func NewStore(conn dbConn) *Store {
	return &Store{conn: conn}
}

// Migrate applies pending schema migrations from sourceURL (e.g.
// "file://migrations") to the database at dsn.
func Migrate(sourceURL, dsn string) error {
	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return fmt.Errorf("open migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Save upserts a session's current snapshot.
func (s *Store) Save(ctx context.Context, st StoredState) error {
	globalsJSON, err := json.Marshal(st.Globals)
	if err != nil {
		return fmt.Errorf("marshal globals: %w", err)
	}
	_, err = s.conn.Exec(ctx, `
		INSERT INTO dialogue_sessions (session_id, bot_name, state_name, globals)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO UPDATE
		SET bot_name = EXCLUDED.bot_name,
		    state_name = EXCLUDED.state_name,
		    globals = EXCLUDED.globals,
		    updated_at = now()
	`, st.SessionID, st.BotName, st.StateName, globalsJSON)
	if err != nil {
		return fmt.Errorf("save session %s: %w", st.SessionID, err)
	}
	return nil
}

// Load fetches the stored snapshot for sessionID.
func (s *Store) Load(ctx context.Context, sessionID string) (*StoredState, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT session_id, bot_name, state_name, globals
		FROM dialogue_sessions
		WHERE session_id = $1
	`, sessionID)

	var st StoredState
	var globalsJSON []byte
	if err := row.Scan(&st.SessionID, &st.BotName, &st.StateName, &globalsJSON); err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if err := json.Unmarshal(globalsJSON, &st.Globals); err != nil {
		return nil, fmt.Errorf("unmarshal globals: %w", err)
	}
	return &st, nil
}
