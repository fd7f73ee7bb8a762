package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/smsinbox/server/internal/common"
)

const messageCols = `id, from_number, to_number, body, twilio_sid, phone_number_id, received_at`

// NewMessage carries the fields of an inbound SMS to be persisted.
type NewMessage struct {
	From          string
	To            string
	Body          string
	TwilioSID     string
	PhoneNumberID string
}

// MessagePage is one page of messages plus paging metadata.
type MessagePage struct {
	Data       []Message         `json:"data"`
	Pagination common.Pagination `json:"pagination"`
}

func scanMessage(row pgx.Row) (*Message, error) {
	var m Message
	var sid sql.NullString
	err := row.Scan(&m.ID, &m.From, &m.To, &m.Body, &sid, &m.PhoneNumberID, &m.ReceivedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	m.TwilioSID = sid.String
	return &m, nil
}

// CreateMessage inserts exactly one row for an inbound SMS. No dedup is done
// on the carrier sid: a carrier retry of the same notification produces a
// second row.
func (s *Store) CreateMessage(ctx context.Context, nm NewMessage) (*Message, error) {
	var sid sql.NullString
	if nm.TwilioSID != "" {
		sid = sql.NullString{String: nm.TwilioSID, Valid: true}
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO messages (id, from_number, to_number, body, twilio_sid, phone_number_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+messageCols,
		uuid.NewString(), nm.From, nm.To, nm.Body, sid, nm.PhoneNumberID,
	)
	m, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return m, nil
}

func (s *Store) GetMessage(ctx context.Context, id string) (*Message, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+messageCols+` FROM messages WHERE id = $1`, id)
	return scanMessage(row)
}

// ListMessagesByPhone returns one page of a phone number's messages, newest
// first.
func (s *Store) ListMessagesByPhone(ctx context.Context, phoneNumberID string, page, limit int) (*MessagePage, error) {
	page, limit = common.ClampPage(page, limit)

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM messages WHERE phone_number_id = $1`, phoneNumberID,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+messageCols+` FROM messages
		 WHERE phone_number_id = $1
		 ORDER BY received_at DESC
		 LIMIT $2 OFFSET $3`,
		phoneNumberID, limit, (page-1)*limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &MessagePage{
		Data: msgs,
		Pagination: common.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: common.TotalPages(total, limit),
		},
	}, nil
}

// RecentMessages returns the newest messages across all numbers.
func (s *Store) RecentMessages(ctx context.Context, limit int) ([]Message, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+messageCols+` FROM messages ORDER BY received_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

func (s *Store) DeleteMessage(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
