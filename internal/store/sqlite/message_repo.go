package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"gossip/internal/domain"
)

const messageCols = `id, text, image, video, location, sender_id, recipient_id, group_id, client_msg_id, state, created_at`

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	loc, err := locationJSON(m.Location)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO messages (text, image, video, location, sender_id, recipient_id, group_id, client_msg_id, state, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		m.Text, m.Image, m.Video, loc, m.SenderID, m.RecipientID, m.GroupID,
		m.ClientMsgID, string(m.State), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	m.ID = id
	return nil
}

func (r *MessageRepo) ListBetween(ctx context.Context, userID, remoteUserID int64, limit int) ([]*domain.Message, error) {
	query := `
		SELECT ` + messageCols + `
		FROM messages
		WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
		ORDER BY created_at DESC
	`
	args := []any{userID, remoteUserID, remoteUserID, userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.list(ctx, query, args...)
}

func (r *MessageRepo) ListForGroup(ctx context.Context, groupID int64) ([]*domain.Message, error) {
	query := `SELECT ` + messageCols + ` FROM messages WHERE group_id = ? ORDER BY created_at ASC`
	return r.list(ctx, query, groupID)
}

func (r *MessageRepo) LatestForRecipient(ctx context.Context, recipientID int64, state domain.DeliveryState) (*domain.Message, error) {
	// ordered by insertion; created_at is client-supplied and a skewed
	// clock must not misdirect the acknowledgement
	query := `
		SELECT ` + messageCols + `
		FROM messages
		WHERE recipient_id = ? AND state = ?
		ORDER BY id DESC
		LIMIT 1
	`
	return r.one(ctx, query, recipientID, string(state))
}

func (r *MessageRepo) LatestBetween(ctx context.Context, userID, remoteUserID int64) (*domain.Message, error) {
	query := `
		SELECT ` + messageCols + `
		FROM messages
		WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.one(ctx, query, userID, remoteUserID, remoteUserID, userID)
}

func (r *MessageRepo) SetState(ctx context.Context, messageID int64, state domain.DeliveryState) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET state = ? WHERE id = ?`, string(state), messageID)
	if err != nil {
		return fmt.Errorf("set state: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MessageRepo) one(ctx context.Context, query string, args ...any) (*domain.Message, error) {
	m, err := scanMessageRow(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan message: %w", err)
	}
	return m, nil
}

func (r *MessageRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		m, err := scanMessageRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func scanMessageRow(row rowScanner) (*domain.Message, error) {
	var (
		m           domain.Message
		image       sql.NullString
		video       sql.NullString
		location    sql.NullString
		recipientID sql.NullInt64
		groupID     sql.NullInt64
		state       string
	)
	err := row.Scan(
		&m.ID, &m.Text, &image, &video, &location, &m.SenderID,
		&recipientID, &groupID, &m.ClientMsgID, &state, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if image.Valid {
		m.Image = &image.String
	}
	if video.Valid {
		m.Video = &video.String
	}
	if location.Valid && location.String != "" {
		var loc domain.Location
		if err := json.Unmarshal([]byte(location.String), &loc); err != nil {
			return nil, fmt.Errorf("decode location: %w", err)
		}
		m.Location = &loc
	}
	if recipientID.Valid {
		m.RecipientID = &recipientID.Int64
	}
	if groupID.Valid {
		m.GroupID = &groupID.Int64
	}
	m.State = domain.DeliveryState(state)
	return &m, nil
}

func locationJSON(loc *domain.Location) (*string, error) {
	if loc == nil {
		return nil, nil
	}
	b, err := json.Marshal(loc)
	if err != nil {
		return nil, fmt.Errorf("encode location: %w", err)
	}
	s := string(b)
	return &s, nil
}
