package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/video-rental/internal/model"
)

// RentalSort lists the sortable rental fields.  Newest rentals come first
// by default.
var RentalSort = SortSpec{
	Default: "-dateOut",
	Columns: map[string]string{
		"dateOut":      "date_out",
		"dateReturned": "date_returned",
		"rentalFee":    "rental_fee",
	},
}

// RentalRepo provides persistence for rentals.  A rental row carries
// copies of the customer and movie columns taken when it was created, so
// none of its queries join other tables.
type RentalRepo struct {
	db *sql.DB
}

// NewRentalRepo returns a new RentalRepo bound to the given database.
func NewRentalRepo(db *sql.DB) *RentalRepo { return &RentalRepo{db: db} }

const rentalColumns = `id, customer_id, customer_name, customer_phone, customer_is_gold,
	movie_id, movie_title, movie_daily_rental_rate, date_out, date_returned, rental_fee`

func scanRental(s scanner) (*model.Rental, error) {
	var (
		r        model.Rental
		returned sql.NullTime
		fee      sql.NullFloat64
	)
	err := s.Scan(
		&r.ID, &r.Customer.ID, &r.Customer.Name, &r.Customer.Phone, &r.Customer.IsGold,
		&r.Movie.ID, &r.Movie.Title, &r.Movie.DailyRentalRate, &r.DateOut, &returned, &fee,
	)
	if err != nil {
		return nil, err
	}
	r.DateOut = r.DateOut.UTC()
	if returned.Valid {
		t := returned.Time.UTC()
		r.DateReturned = &t
	}
	if fee.Valid {
		f := fee.Float64
		r.RentalFee = &f
	}
	return &r, nil
}

// CreateTx inserts a new rental within the scope of an existing
// transaction and populates the generated ID.  The caller must commit or
// rollback the transaction.
func (r *RentalRepo) CreateTx(ctx context.Context, tx *sql.Tx, rental *model.Rental) error {
	const q = `INSERT INTO rentals
		(customer_id, customer_name, customer_phone, customer_is_gold,
		 movie_id, movie_title, movie_daily_rental_rate, date_out)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		rental.Customer.ID, rental.Customer.Name, rental.Customer.Phone, rental.Customer.IsGold,
		rental.Movie.ID, rental.Movie.Title, rental.Movie.DailyRentalRate, rental.DateOut.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rental.ID = uint64(id)
	return nil
}

// GetByID fetches a rental by id or returns ErrRentalNotFound.
func (r *RentalRepo) GetByID(ctx context.Context, id uint64) (*model.Rental, error) {
	rental, err := scanRental(r.db.QueryRowContext(ctx,
		"SELECT "+rentalColumns+" FROM rentals WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRentalNotFound
	}
	return rental, err
}

// List returns all rentals in the requested order.
func (r *RentalRepo) List(ctx context.Context, sort string) ([]*model.Rental, error) {
	orderBy, err := RentalSort.OrderBy(sort)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, "SELECT "+rentalColumns+" FROM rentals"+orderBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Rental{}
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rental)
	}
	return out, rows.Err()
}

// FindByCustomerAndMovie looks up a rental by its customer and movie
// snapshot ids.  When the pair has several rentals the open one wins,
// then the most recent.  ErrRentalNotFound is returned when none match.
func (r *RentalRepo) FindByCustomerAndMovie(ctx context.Context, customerID, movieID uint64) (*model.Rental, error) {
	const q = `SELECT ` + rentalColumns + `
		FROM rentals
		WHERE customer_id = ? AND movie_id = ?
		ORDER BY CASE WHEN date_returned IS NULL THEN 0 ELSE 1 END, date_out DESC, id DESC
		LIMIT 1`
	rental, err := scanRental(r.db.QueryRowContext(ctx, q, customerID, movieID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRentalNotFound
	}
	return rental, err
}

// MarkReturnedTx sets the return date and fee of an open rental within the
// caller's transaction.  ErrConflict is returned when the rental was
// already returned, which also covers two returns racing each other.
func (r *RentalRepo) MarkReturnedTx(ctx context.Context, tx *sql.Tx, id uint64, returnedAt time.Time, fee float64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE rentals SET date_returned = ?, rental_fee = ? WHERE id = ? AND date_returned IS NULL",
		returnedAt.UTC(), fee, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}
