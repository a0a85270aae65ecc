package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schmanat/gatehouse"
)

// Store defines a public type used by gatehouse APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	pool   *pgxpool.Pool
	schema string
}

// Option configures the store.
type Option func(*Store) error

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the PostgreSQL schema the users table lives in (default
// "gatehouse"). The name is validated as a legal identifier so it can be
// interpolated into statements safely.
func WithSchema(schema string) Option {
	return func(s *Store) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("postgres: empty schema")
		}
		if !identRe.MatchString(schema) {
			return fmt.Errorf("postgres: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewStore describes the newstore operation and its observable behavior.
//
// NewStore may return an error when input validation, dependency calls, or security checks fail.
func NewStore(pool *pgxpool.Pool, opts ...Option) (*Store, error) {
	st := &Store{
		pool:   pool,
		schema: "gatehouse",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("postgres: nil pool")
	}
	return st, nil
}

const userColumns = `id, username, password, display_name, language,
	login_count, locked, disable, start_at, stop_at,
	current_login, last_login, group_ids, allow_login`

func (s *Store) table() string {
	return fmt.Sprintf("%q.users", s.schema)
}

// FindByUsername describes the findbyusername operation and its observable behavior.
//
// FindByUsername may return an error when input validation, dependency calls, or security checks fail.
func (s *Store) FindByUsername(ctx context.Context, username string) (gatehouse.UserRecord, error) {
	if s == nil || s.pool == nil {
		return gatehouse.UserRecord{}, fmt.Errorf("postgres: nil store")
	}

	q := fmt.Sprintf("SELECT %s FROM %s WHERE username = $1", userColumns, s.table())
	return s.scanOne(s.pool.QueryRow(ctx, q, username))
}

// FindByID describes the findbyid operation and its observable behavior.
//
// FindByID may return an error when input validation, dependency calls, or security checks fail.
func (s *Store) FindByID(ctx context.Context, id string) (gatehouse.UserRecord, error) {
	if s == nil || s.pool == nil {
		return gatehouse.UserRecord{}, fmt.Errorf("postgres: nil store")
	}

	q := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", userColumns, s.table())
	return s.scanOne(s.pool.QueryRow(ctx, q, id))
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
func (s *Store) Save(ctx context.Context, u gatehouse.UserRecord) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("postgres: nil store")
	}

	q := fmt.Sprintf(`UPDATE %s SET
		username = $2, password = $3, display_name = $4, language = $5,
		login_count = $6, locked = $7, disable = $8, start_at = $9,
		stop_at = $10, current_login = $11, last_login = $12,
		group_ids = $13, allow_login = $14
		WHERE id = $1`, s.table())

	tag, err := s.pool.Exec(ctx, q,
		u.ID, u.Username, u.Password, u.DisplayName, u.Language,
		u.LoginCount, u.Locked, u.Disable, u.Start,
		u.Stop, u.CurrentLogin, u.LastLogin,
		u.Groups, u.AllowLogin,
	)
	if err != nil {
		return fmt.Errorf("postgres: save user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return gatehouse.ErrPrincipalNotFound
	}
	return nil
}

// Insert creates a new user row. Importer implementations use it to register
// records discovered from external directories before the login re-lookup.
func (s *Store) Insert(ctx context.Context, u gatehouse.UserRecord) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("postgres: nil store")
	}

	q := fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		s.table(), userColumns)

	if _, err := s.pool.Exec(ctx, q,
		u.ID, u.Username, u.Password, u.DisplayName, u.Language,
		u.LoginCount, u.Locked, u.Disable, u.Start,
		u.Stop, u.CurrentLogin, u.LastLogin,
		u.Groups, u.AllowLogin,
	); err != nil {
		return fmt.Errorf("postgres: insert user: %w", err)
	}
	return nil
}

func (s *Store) scanOne(row pgx.Row) (gatehouse.UserRecord, error) {
	var u gatehouse.UserRecord
	err := row.Scan(
		&u.ID, &u.Username, &u.Password, &u.DisplayName, &u.Language,
		&u.LoginCount, &u.Locked, &u.Disable, &u.Start,
		&u.Stop, &u.CurrentLogin, &u.LastLogin,
		&u.Groups, &u.AllowLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return gatehouse.UserRecord{}, gatehouse.ErrPrincipalNotFound
		}
		return gatehouse.UserRecord{}, fmt.Errorf("postgres: scan user: %w", err)
	}
	return u, nil
}
