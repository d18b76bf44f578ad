package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// CommandRecord is one emitted command as stored in the history.
type CommandRecord struct {
	ID        string
	Command   string
	LeftHand  string
	RightHand string
	Transport string
	Error     string // empty when delivery succeeded
	SentAt    time.Time
}

// Delivered reports whether the transport accepted the command.
func (c *CommandRecord) Delivered() bool {
	return c.Error == ""
}

// CommandRepository provides access to the command history.
type CommandRepository struct {
	db *sql.DB
}

// Commands returns the command repository for this store.
func (s *Store) Commands() *CommandRepository {
	return &CommandRepository{db: s.db}
}

// Create inserts a record, assigning an ID and timestamp when they are unset.
// Times are stored in UTC so that sent_at sorts and compares chronologically.
func (r *CommandRepository) Create(c *CommandRecord) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.SentAt.IsZero() {
		c.SentAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO commands (id, command, left_hand, right_hand, transport, error, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Command, c.LeftHand, c.RightHand, c.Transport, c.Error, c.SentAt.UTC(),
	)
	return err
}

// GetByID retrieves a record by its ID.
func (r *CommandRepository) GetByID(id string) (*CommandRecord, error) {
	c := &CommandRecord{}

	err := r.db.QueryRow(
		`SELECT id, command, left_hand, right_hand, transport, error, sent_at
		 FROM commands WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.Command, &c.LeftHand, &c.RightHand, &c.Transport, &c.Error, &c.SentAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return c, nil
}

// List returns up to limit records, newest first. A non-positive limit returns all.
func (r *CommandRepository) List(limit int) ([]*CommandRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, command, left_hand, right_hand, transport, error, sent_at
		 FROM commands ORDER BY sent_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*CommandRecord
	for rows.Next() {
		c := &CommandRecord{}
		if err := rows.Scan(&c.ID, &c.Command, &c.LeftHand, &c.RightHand, &c.Transport, &c.Error, &c.SentAt); err != nil {
			return nil, err
		}
		records = append(records, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Count returns the number of stored records.
func (r *CommandRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM commands`).Scan(&n)
	return n, err
}

// DeleteBefore removes records sent before t and returns how many were removed.
func (r *CommandRepository) DeleteBefore(t time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM commands WHERE sent_at < ?`, t.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
