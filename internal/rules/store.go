package rules

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"reelsort/internal/config"
	"reelsort/internal/services"
)

// ErrRuleNotFound marks lookups for rule IDs that do not exist.
var ErrRuleNotFound = errors.New("rule not found")

// Store persists transfer rules in SQLite. A file lock next to the database
// keeps concurrent invocations from interleaving writes.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// Open connects to the rule database, creating it and its schema on first
// use.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.RuleDBPath()
	lock := flock.New(dbPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire rule db lock: %w", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrStorage, "rules", "open",
			"rule database is in use by another process", nil)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, lock: lock, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close releases the database and its file lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// Create validates and inserts a rule, assigning its ID and timestamps.
func (s *Store) Create(ctx context.Context, rule Rule, validateTemplate TemplateValidator) (*Rule, error) {
	rule.normalize()
	if err := rule.Validate(validateTemplate); err != nil {
		return nil, err
	}

	rule.ID = uuid.NewString()
	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	conditions, err := marshalConditions(rule.Conditions)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO transfer_rules (
            id, name, priority, enabled, media_type, storage_type,
            conditions_json, template, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.Name, rule.Priority, boolToInt(rule.Enabled),
		rule.MediaType, rule.StorageType, conditions, rule.Template,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert rule: %w", err)
	}
	return &rule, nil
}

// Update validates and replaces an existing rule's definition, preserving
// its creation time.
func (s *Store) Update(ctx context.Context, rule Rule, validateTemplate TemplateValidator) (*Rule, error) {
	rule.normalize()
	if err := rule.Validate(validateTemplate); err != nil {
		return nil, err
	}

	conditions, err := marshalConditions(rule.Conditions)
	if err != nil {
		return nil, err
	}
	rule.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE transfer_rules SET
            name = ?, priority = ?, enabled = ?, media_type = ?,
            storage_type = ?, conditions_json = ?, template = ?, updated_at = ?
        WHERE id = ?`,
		rule.Name, rule.Priority, boolToInt(rule.Enabled), rule.MediaType,
		rule.StorageType, conditions, rule.Template,
		rule.UpdatedAt.Format(time.RFC3339Nano), rule.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update rule: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRuleNotFound, rule.ID)
	}
	return s.Get(ctx, rule.ID)
}

// SetEnabled flips a rule's enabled flag.
func (s *Store) SetEnabled(ctx context.Context, id string, enabled bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE transfer_rules SET enabled = ?, updated_at = ? WHERE id = ?",
		boolToInt(enabled), time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("set rule enabled: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}
	return nil
}

// Delete removes a rule permanently.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transfer_rules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}
	return nil
}

// Get loads a single rule by ID.
func (s *Store) Get(ctx context.Context, id string) (*Rule, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// List returns every rule, enabled or not, in evaluation order.
func (s *Store) List(ctx context.Context) ([]Rule, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY priority ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var result []Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rule)
	}
	return result, rows.Err()
}

// Snapshot loads the enabled rules as an immutable evaluation-ordered view.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	all, err := s.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(all), nil
}

const selectColumns = `SELECT id, name, priority, enabled, media_type,
    storage_type, conditions_json, template, created_at, updated_at
    FROM transfer_rules`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*Rule, error) {
	var (
		rule       Rule
		enabled    int
		conditions string
		created    string
		updated    string
	)
	err := row.Scan(&rule.ID, &rule.Name, &rule.Priority, &enabled,
		&rule.MediaType, &rule.StorageType, &conditions, &rule.Template,
		&created, &updated)
	if err != nil {
		return nil, err
	}
	rule.Enabled = enabled != 0
	if err := json.Unmarshal([]byte(conditions), &rule.Conditions); err != nil {
		return nil, fmt.Errorf("decode rule conditions: %w", err)
	}
	rule.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	rule.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &rule, nil
}

func marshalConditions(conditions []Condition) (string, error) {
	if conditions == nil {
		conditions = []Condition{}
	}
	data, err := json.Marshal(conditions)
	if err != nil {
		return "", fmt.Errorf("encode rule conditions: %w", err)
	}
	return string(data), nil
}

func (r *Rule) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Template = strings.TrimSpace(r.Template)
	r.MediaType = strings.ToLower(strings.TrimSpace(r.MediaType))
	if r.MediaType == "" {
		r.MediaType = "all"
	}
	r.StorageType = strings.ToLower(strings.TrimSpace(r.StorageType))
	if r.StorageType == "" {
		r.StorageType = "all"
	}
	for i := range r.Conditions {
		r.Conditions[i].Field = strings.ToLower(strings.TrimSpace(r.Conditions[i].Field))
		r.Conditions[i].Operator = strings.ToLower(strings.TrimSpace(r.Conditions[i].Operator))
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
