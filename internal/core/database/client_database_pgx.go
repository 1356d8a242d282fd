package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/config"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/core"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/models"
)

const uniqueViolation = "23505"

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Implementing the db interface for users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users
			(id, name, email, password_hash,
			 emergency_contact_name, emergency_contact_relationship, emergency_contact_phone,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now()), COALESCE($9, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.EmergencyContact.Name, user.EmergencyContact.Relationship, user.EmergencyContact.PhoneNumber,
		user.CreatedAt, user.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return core.ErrDuplicateEmail
	}
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, name, email, password_hash,
		       emergency_contact_name, emergency_contact_relationship, emergency_contact_phone,
		       created_at, updated_at
		FROM users WHERE email = $1
	`
	return c.scanUser(c.db.QueryRowContext(ctx, q, email))
}

func (c *DatabaseClient) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const q = `
		SELECT id, name, email, password_hash,
		       emergency_contact_name, emergency_contact_relationship, emergency_contact_phone,
		       created_at, updated_at
		FROM users WHERE id = $1
	`
	return c.scanUser(c.db.QueryRowContext(ctx, q, id))
}

func (c *DatabaseClient) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.EmergencyContact.Name, &u.EmergencyContact.Relationship, &u.EmergencyContact.PhoneNumber,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Implementing the db interface for chat sessions

func (c *DatabaseClient) CreateSession(ctx context.Context, session *models.ChatSession) error {
	if session == nil {
		return errors.New("nil session")
	}
	msgs, err := json.Marshal(session.Messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}
	const q = `
		INSERT INTO chat_sessions (id, user_id, messages, status, started_at)
		VALUES ($1, $2, $3::jsonb, $4, COALESCE($5, now()))
	`
	_, err = c.db.ExecContext(ctx, q,
		session.ID, session.UserID, string(msgs), session.Status, session.StartedAt)
	return err
}

func (c *DatabaseClient) GetSessionByID(ctx context.Context, id string) (*models.ChatSession, error) {
	const q = `
		SELECT id, user_id, messages, status, summary, severity_rating,
		       escalation_triggered, started_at, ended_at
		FROM chat_sessions
		WHERE id = $1
	`
	var (
		s        models.ChatSession
		rawMsgs  []byte
		summary  sql.NullString
		severity sql.NullInt64
		endedAt  sql.NullTime
	)
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.UserID, &rawMsgs, &s.Status, &summary, &severity,
		&s.EscalationTriggered, &s.StartedAt, &endedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawMsgs, &s.Messages); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}
	s.Summary = summary.String
	s.SeverityRating = int(severity.Int64)
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}
	return &s, nil
}

// ListSessionsByUser returns the user's sessions newest-first. Message logs
// are deliberately omitted from list views.
func (c *DatabaseClient) ListSessionsByUser(ctx context.Context, userID string) ([]models.ChatSession, error) {
	const q = `
		SELECT id, user_id, status, summary, severity_rating,
		       escalation_triggered, started_at, ended_at
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY started_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatSession
	for rows.Next() {
		var (
			s        models.ChatSession
			summary  sql.NullString
			severity sql.NullInt64
			endedAt  sql.NullTime
		)
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.Status, &summary, &severity,
			&s.EscalationTriggered, &s.StartedAt, &endedAt,
		); err != nil {
			return nil, err
		}
		s.Summary = summary.String
		s.SeverityRating = int(severity.Int64)
		if endedAt.Valid {
			t := endedAt.Time
			s.EndedAt = &t
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AppendMessages relies on a single conditional UPDATE so an append racing a
// session end loses cleanly instead of resurrecting an ended session.
func (c *DatabaseClient) AppendMessages(ctx context.Context, sessionID string, msgs []models.Message) (int, error) {
	if len(msgs) == 0 {
		return 0, errors.New("no messages to append")
	}
	payload, err := json.Marshal(msgs)
	if err != nil {
		return 0, fmt.Errorf("marshal messages: %w", err)
	}
	const q = `
		UPDATE chat_sessions
		SET messages = messages || $2::jsonb
		WHERE id = $1 AND status = 'active'
		RETURNING jsonb_array_length(messages)
	`
	var count int
	err = c.db.QueryRowContext(ctx, q, sessionID, string(payload)).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, core.ErrSessionEnded
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CloseSession performs the one-shot active -> ended transition.
func (c *DatabaseClient) CloseSession(ctx context.Context, sessionID, summary string, severityRating int) error {
	const q = `
		UPDATE chat_sessions
		SET status = 'ended', summary = $2, severity_rating = $3, ended_at = now()
		WHERE id = $1 AND status = 'active'
	`
	res, err := c.db.ExecContext(ctx, q, sessionID, summary, severityRating)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrSessionEnded
	}
	return nil
}

func (c *DatabaseClient) MarkEscalationTriggered(ctx context.Context, sessionID string) error {
	const q = `
		UPDATE chat_sessions
		SET escalation_triggered = TRUE
		WHERE id = $1
	`
	_, err := c.db.ExecContext(ctx, q, sessionID)
	return err
}

// Implementing the db interface for escalation logs

func (c *DatabaseClient) CreateEscalationLog(ctx context.Context, entry *models.EscalationLog) error {
	if entry == nil {
		return errors.New("nil escalation log")
	}
	const q = `
		INSERT INTO escalation_logs
			(id, user_id, session_id, severity_rating, phone_number_called,
			 call_sid, result, error_message, user_name, triggered_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, NULLIF($8, ''), $9, COALESCE($10, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		entry.ID, entry.UserID, entry.SessionID, entry.SeverityRating, entry.PhoneNumberCalled,
		entry.CallSid, entry.Result, entry.ErrorMessage, entry.UserName, entry.TriggeredAt)
	return err
}

// SettleEscalationLog writes the final result of an attempt. Only pending
// rows are touched, so a settled entry is never rewritten.
func (c *DatabaseClient) SettleEscalationLog(ctx context.Context, id, result, callSid, errorMessage string) error {
	const q = `
		UPDATE escalation_logs
		SET result = $2, call_sid = NULLIF($3, ''), error_message = NULLIF($4, '')
		WHERE id = $1 AND result = 'pending'
	`
	res, err := c.db.ExecContext(ctx, q, id, result, callSid, errorMessage)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("escalation log not pending: %s", id)
	}
	return nil
}
