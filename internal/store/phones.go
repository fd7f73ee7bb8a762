package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const phoneCols = `id, number, country, country_code, is_active, created_at, updated_at`

func scanPhone(row pgx.Row) (*PhoneNumber, error) {
	var p PhoneNumber
	err := row.Scan(&p.ID, &p.Number, &p.Country, &p.CountryCode, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePhone inserts a new active phone number and returns the stored row.
func (s *Store) CreatePhone(ctx context.Context, number, country, countryCode string) (*PhoneNumber, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO phone_numbers (id, number, country, country_code)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+phoneCols,
		uuid.NewString(), number, country, countryCode,
	)
	p, err := scanPhone(row)
	if err != nil {
		return nil, fmt.Errorf("create phone: %w", err)
	}
	return p, nil
}

// ListPhones returns all active numbers, newest first.
func (s *Store) ListPhones(ctx context.Context) ([]PhoneNumber, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+phoneCols+` FROM phone_numbers WHERE is_active ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list phones: %w", err)
	}
	defer rows.Close()

	phones := []PhoneNumber{}
	for rows.Next() {
		p, err := scanPhone(rows)
		if err != nil {
			return nil, err
		}
		phones = append(phones, *p)
	}
	return phones, rows.Err()
}

func (s *Store) GetPhone(ctx context.Context, id string) (*PhoneNumber, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+phoneCols+` FROM phone_numbers WHERE id = $1`, id)
	return scanPhone(row)
}

// GetPhoneByNumber resolves a carrier-supplied E.164 number to its row.
func (s *Store) GetPhoneByNumber(ctx context.Context, number string) (*PhoneNumber, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+phoneCols+` FROM phone_numbers WHERE number = $1`, number)
	return scanPhone(row)
}

func (s *Store) DeletePhone(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM phone_numbers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete phone: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
