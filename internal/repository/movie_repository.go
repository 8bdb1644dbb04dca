package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/video-rental/internal/model"
)

// MovieSort lists the sortable movie fields.
var MovieSort = SortSpec{
	Default: "title",
	Columns: map[string]string{
		"title":           "title",
		"numberInStock":   "number_in_stock",
		"dailyRentalRate": "daily_rental_rate",
		"genre":           "genre_name",
	},
}

// MovieRepo encapsulates all database queries related to movies.  The
// stock counter is only changed through DecrementStockTx and
// IncrementStockTx, which run inside the rental service's transactions.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

const movieColumns = "id, title, genre_id, genre_name, number_in_stock, daily_rental_rate"

func scanMovie(s scanner) (*model.Movie, error) {
	var m model.Movie
	if err := s.Scan(&m.ID, &m.Title, &m.Genre.ID, &m.Genre.Name, &m.NumberInStock, &m.DailyRentalRate); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new movie, genre snapshot included, and populates its ID.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO movies (title, genre_id, genre_name, number_in_stock, daily_rental_rate)
		 VALUES (?, ?, ?, ?, ?)`,
		m.Title, m.Genre.ID, m.Genre.Name, m.NumberInStock, m.DailyRentalRate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// GetByID fetches a movie by id or returns ErrMovieNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx,
		"SELECT "+movieColumns+" FROM movies WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	return m, err
}

// List returns all movies in the requested order.
func (r *MovieRepo) List(ctx context.Context, sort string) ([]*model.Movie, error) {
	orderBy, err := MovieSort.OrderBy(sort)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, "SELECT "+movieColumns+" FROM movies"+orderBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Update overwrites every field of the movie identified by m.ID.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE movies
		 SET title = ?, genre_id = ?, genre_name = ?, number_in_stock = ?, daily_rental_rate = ?
		 WHERE id = ?`,
		m.Title, m.Genre.ID, m.Genre.Name, m.NumberInStock, m.DailyRentalRate, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// Delete removes a movie and returns it as it was.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) (m *model.Movie, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	m, err = scanMovie(tx.QueryRowContext(ctx,
		"SELECT "+movieColumns+" FROM movies WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id); err != nil {
		return nil, err
	}
	return m, nil
}

// DecrementStockTx takes one copy out of stock within the caller's
// transaction.  The guard on number_in_stock makes concurrent rentals of
// the last copy safe: only one of them matches the row.  ErrConflict is
// returned when no copy was left (or the movie no longer exists).
func (r *MovieRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE movies SET number_in_stock = number_in_stock - 1 WHERE id = ? AND number_in_stock > 0", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

// IncrementStockTx puts one copy back into stock within the caller's
// transaction.  It returns ErrMovieNotFound when the movie was deleted.
func (r *MovieRepo) IncrementStockTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE movies SET number_in_stock = number_in_stock + 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}
