package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/bookit/internal/database"
	"github.com/iliyamo/bookit/internal/model"
)

// ExperienceRepo reads the experience catalog.
type ExperienceRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewExperienceRepo returns an ExperienceRepo bound to the given database.
func NewExperienceRepo(db *sql.DB, d database.Dialect) *ExperienceRepo {
	return &ExperienceRepo{db: db, dialect: d}
}

// ExperienceFilter narrows List. Zero values mean "no filter"; a Category
// of "all" is treated the same as an empty one.
type ExperienceFilter struct {
	Category string
	Search   string
	MinPrice *float64
	MaxPrice *float64
}

const experienceColumns = `id, title, description, location, price, duration, category,
       rating, reviews, max_group_size, images, highlights, included, created_at, updated_at`

// List returns experiences matching the filter, newest first.
func (r *ExperienceRepo) List(ctx context.Context, f ExperienceFilter) ([]model.Experience, error) {
	q := `SELECT ` + experienceColumns + ` FROM experiences WHERE 1=1`
	var args []any
	if f.Category != "" && !strings.EqualFold(f.Category, "all") {
		q += ` AND category = ?`
		args = append(args, f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		// LOWER on both sides keeps the match case-insensitive on MySQL and PostgreSQL alike.
		// '!' as escape character reads the same in both dialects' string literals.
		q += ` AND (LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!' OR LOWER(location) LIKE ? ESCAPE '!')`
		pattern := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if f.MinPrice != nil {
		q += ` AND price >= ?`
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q += ` AND price <= ?`
		args = append(args, *f.MaxPrice)
	}
	q += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Experience, 0)
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// GetByID returns a single experience or ErrNotFound.
func (r *ExperienceRepo) GetByID(ctx context.Context, id string) (*model.Experience, error) {
	q := `SELECT ` + experienceColumns + ` FROM experiences WHERE id = ?`
	e, err := scanExperience(r.db.QueryRowContext(ctx, r.dialect.Rebind(q), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExperience(s rowScanner) (*model.Experience, error) {
	var (
		e                            model.Experience
		images, highlights, included []byte
	)
	if err := s.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.Price, &e.Duration, &e.Category,
		&e.Rating, &e.Reviews, &e.MaxGroupSize, &images, &highlights, &included,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if e.Images, err = decodeList(images); err != nil {
		return nil, fmt.Errorf("experience %s images: %w", e.ID, err)
	}
	if e.Highlights, err = decodeList(highlights); err != nil {
		return nil, fmt.Errorf("experience %s highlights: %w", e.ID, err)
	}
	if e.Included, err = decodeList(included); err != nil {
		return nil, fmt.Errorf("experience %s included: %w", e.ID, err)
	}
	return &e, nil
}

// decodeList turns a JSON array column into a non-nil slice.
// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func decodeList(raw []byte) ([]string, error) {
	out := []string{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// EncodeList is the inverse of decodeList, used when writing catalog rows.
func EncodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}
