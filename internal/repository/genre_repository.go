package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/video-rental/internal/model"
)

// GenreSort lists the sortable genre fields.
var GenreSort = SortSpec{
	Default: "name",
	Columns: map[string]string{"name": "name"},
}

// GenreRepo encapsulates all database queries related to genres.
type GenreRepo struct {
	db *sql.DB
}

// NewGenreRepo constructs a GenreRepo with the provided DB handle.
func NewGenreRepo(db *sql.DB) *GenreRepo {
	return &GenreRepo{db: db}
}

func scanGenre(s scanner) (*model.Genre, error) {
	var g model.Genre
	if err := s.Scan(&g.ID, &g.Name); err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts a new genre and populates its ID.
func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
	res, err := r.db.ExecContext(ctx, "INSERT INTO genres (name) VALUES (?)", g.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// GetByID fetches a genre by id or returns ErrGenreNotFound.
func (r *GenreRepo) GetByID(ctx context.Context, id uint64) (*model.Genre, error) {
	g, err := scanGenre(r.db.QueryRowContext(ctx, "SELECT id, name FROM genres WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGenreNotFound
	}
	return g, err
}

// List returns all genres in the requested order.
func (r *GenreRepo) List(ctx context.Context, sort string) ([]*model.Genre, error) {
	orderBy, err := GenreSort.OrderBy(sort)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM genres"+orderBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Genre{}
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// UpdateName renames a genre.  Movies keep the name they were saved with.
func (r *GenreRepo) UpdateName(ctx context.Context, id uint64, name string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE genres SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGenreNotFound
	}
	return nil
}

// Delete removes a genre and returns it as it was.
func (r *GenreRepo) Delete(ctx context.Context, id uint64) (g *model.Genre, err error) {
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

	g, err = scanGenre(tx.QueryRowContext(ctx, "SELECT id, name FROM genres WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGenreNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM genres WHERE id = ?", id); err != nil {
		return nil, err
	}
	return g, nil
}
