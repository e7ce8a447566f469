package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/villabook/internal/models"
	"github.com/iudanet/villabook/internal/server/storage"
)

const villaColumns = `id, name, location, description, price_per_night, max_guests, bedrooms, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// ListVillas returns villas matching the filter
func (s *Storage) ListVillas(ctx context.Context, filter models.VillaFilter) ([]*models.Villa, error) {
	var (
		conds []string
		args  []any
	)

	if loc := strings.TrimSpace(filter.Location); loc != "" {
		conds = append(conds, `LOWER(location) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(loc))+"%")
	}
	if filter.MinGuests > 0 {
		conds = append(conds, `max_guests >= ?`)
		args = append(args, filter.MinGuests)
	}

	query := `SELECT ` + villaColumns + ` FROM villas`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query villas: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	villas := make([]*models.Villa, 0)
	for rows.Next() {
		villa, err := scanVilla(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan villa: %w", err)
		}
		villas = append(villas, villa)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return villas, nil
}

// GetVilla retrieves villa by ID
func (s *Storage) GetVilla(ctx context.Context, id string) (*models.Villa, error) {
	query := `SELECT ` + villaColumns + ` FROM villas WHERE id = ?`

	villa, err := scanVilla(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrVillaNotFound
		}
		return nil, fmt.Errorf("failed to get villa: %w", err)
	}

	return villa, nil
}

func scanVilla(row rowScanner) (*models.Villa, error) {
	villa := &models.Villa{}
	var createdAt int64

	if err := row.Scan(
		&villa.ID,
		&villa.Name,
		&villa.Location,
		&villa.Description,
		&villa.PricePerNight,
		&villa.MaxGuests,
		&villa.Bedrooms,
		&createdAt,
	); err != nil {
		return nil, err
	}

	villa.CreatedAt = fromUnix(createdAt)
	return villa, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
