package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/video-rental/internal/model"
)

// CustomerSort lists the sortable customer fields.
var CustomerSort = SortSpec{
	Default: "name",
	Columns: map[string]string{"name": "name", "phone": "phone", "isGold": "is_gold"},
}

// CustomerRepo encapsulates all database queries related to customers.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo constructs a CustomerRepo with the provided DB handle.
func NewCustomerRepo(db *sql.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

const customerColumns = "id, name, phone, is_gold"

func scanCustomer(s scanner) (*model.Customer, error) {
	var c model.Customer
	if err := s.Scan(&c.ID, &c.Name, &c.Phone, &c.IsGold); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new customer and populates its ID.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO customers (name, phone, is_gold) VALUES (?, ?, ?)",
		c.Name, c.Phone, c.IsGold)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches a customer by id.  It returns ErrCustomerNotFound if no
// row exists.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (*model.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	return c, err
}

// List returns every customer ordered by the requested sort field.
func (r *CustomerRepo) List(ctx context.Context, sort string) ([]*model.Customer, error) {
	orderBy, err := CustomerSort.OrderBy(sort)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, "SELECT "+customerColumns+" FROM customers"+orderBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update overwrites every field of the customer identified by c.ID.
func (r *CustomerRepo) Update(ctx context.Context, c *model.Customer) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE customers SET name = ?, phone = ?, is_gold = ? WHERE id = ?",
		c.Name, c.Phone, c.IsGold, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// Delete removes a customer and returns the row as it was.  Rentals keep
// their own copy of the customer and are not touched.
func (r *CustomerRepo) Delete(ctx context.Context, id uint64) (c *model.Customer, err error) {
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

	c, err = scanCustomer(tx.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", id); err != nil {
		return nil, err
	}
	return c, nil
}
