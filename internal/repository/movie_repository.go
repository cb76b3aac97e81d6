package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/moviego/internal/database"
	"github.com/iliyamo/moviego/internal/model"
)

// MovieRepo reads the movie catalog. Listings only ever include active
// movies and are ordered by rating (best first) with id as tie breaker.
type MovieRepo struct {
	store *database.Store
	Clock func() time.Time
}

func NewMovieRepo(store *database.Store) *MovieRepo {
	return &MovieRepo{store: store, Clock: time.Now}
}

const movieColumns = `id, title, genre, duration_min, rating, synopsis, poster_url,
	release_date, language, director, cast_members, is_active, created_at`

const movieOrder = " ORDER BY rating DESC, id ASC"

// ListActive returns every active movie.
func (r *MovieRepo) ListActive(ctx context.Context) ([]model.Movie, error) {
	return r.list(ctx, "SELECT "+movieColumns+" FROM movies WHERE is_active = 1"+movieOrder)
}

// Search returns active movies whose title or genre contains term, ignoring
// case. Wildcards in term match literally. A blank term lists everything.
func (r *MovieRepo) Search(ctx context.Context, term string) ([]model.Movie, error) {
	if strings.TrimSpace(term) == "" {
		return r.ListActive(ctx)
	}
	p := likePattern(term)
	// sqlite LOWER only folds ASCII, so non-ASCII text matches case-sensitively
	return r.list(ctx, "SELECT "+movieColumns+` FROM movies
		WHERE is_active = 1 AND (LOWER(title) LIKE ? ESCAPE '!' OR LOWER(genre) LIKE ? ESCAPE '!')`+movieOrder, p, p)
}

// FilterByGenre returns active movies whose genre list contains genre.
func (r *MovieRepo) FilterByGenre(ctx context.Context, genre string) ([]model.Movie, error) {
	if strings.TrimSpace(genre) == "" {
		return r.ListActive(ctx)
	}
	return r.list(ctx, "SELECT "+movieColumns+` FROM movies
		WHERE is_active = 1 AND LOWER(genre) LIKE ? ESCAPE '!'`+movieOrder, likePattern(genre))
}

// GetByID returns the movie with id, active or not, or nil, nil when absent.
func (r *MovieRepo) GetByID(ctx context.Context, id int64) (*model.Movie, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	m, err := scanMovie(db.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Count returns the number of movie rows, active or not.
func (r *MovieRepo) Count(ctx context.Context) (int, error) {
	db, err := r.store.DB()
	if err != nil {
		return 0, err
	}
	var n int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&n)
	return n, err
}

// CreateTx inserts m within tx and sets its ID.
func (r *MovieRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.Movie) error {
	now := r.Clock().UTC().Truncate(time.Second)
	res, err := tx.ExecContext(ctx, `INSERT INTO movies
		(title, genre, duration_min, rating, synopsis, poster_url, release_date, language, director, cast_members, is_active, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.Title, m.Genre, m.DurationMin, m.Rating, m.Synopsis, m.PosterURL, m.ReleaseDate,
		m.Language, m.Director, m.Cast, boolInt(m.IsActive), database.FormatTime(now))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	m.CreatedAt = now
	return nil
}

func (r *MovieRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Movie, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movies := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

func scanMovie(row rowScanner) (model.Movie, error) {
	var m model.Movie
	var created string
	err := row.Scan(&m.ID, &m.Title, &m.Genre, &m.DurationMin, &m.Rating, &m.Synopsis, &m.PosterURL,
		&m.ReleaseDate, &m.Language, &m.Director, &m.Cast, &m.IsActive, &created)
	if err != nil {
		return model.Movie{}, err
	}
	m.CreatedAt = database.ParseTime(created)
	return m, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
