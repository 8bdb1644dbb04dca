package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/repository"
	"github.com/iliyamo/video-rental/internal/testutil"
)

func TestSortSpecOrderBy(t *testing.T) {
	sorts := repository.SortSpec{Default: "name", Columns: map[string]string{"name": "name", "isGold": "is_gold"}}

	got, err := sorts.OrderBy("")
	require.NoError(t, err)
	assert.Equal(t, " ORDER BY name ASC, id ASC", got)

	got, err = sorts.OrderBy("-isGold")
	require.NoError(t, err)
	assert.Equal(t, " ORDER BY is_gold DESC, id DESC", got)

	_, err = sorts.OrderBy("name; DROP TABLE customers")
	assert.ErrorIs(t, err, repository.ErrInvalidSort)
}

func TestCustomerRepoCRUD(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCustomerRepo(testutil.NewSQLite(t))

	bob := &model.Customer{Name: "Bobby", Phone: "555-0100"}
	require.NoError(t, repo.Create(ctx, bob))
	require.NotZero(t, bob.ID)
	alice := &model.Customer{Name: "Alice", Phone: "555-0101", IsGold: true}
	require.NoError(t, repo.Create(ctx, alice))

	list, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alice", list[0].Name)

	got, err := repo.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, bob, got)

	bob.IsGold = true
	require.NoError(t, repo.Update(ctx, bob))
	// unchanged values still count as a match
	require.NoError(t, repo.Update(ctx, bob))

	removed, err := repo.Delete(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, removed.IsGold)

	_, err = repo.GetByID(ctx, bob.ID)
	assert.ErrorIs(t, err, repository.ErrCustomerNotFound)
	_, err = repo.Delete(ctx, bob.ID)
	assert.ErrorIs(t, err, repository.ErrCustomerNotFound)
	assert.ErrorIs(t, repo.Update(ctx, bob), repository.ErrCustomerNotFound)
}

func TestMovieStockGuards(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLite(t)
	movies := repository.NewMovieRepo(db)

	m := &model.Movie{Title: "Alien", Genre: model.GenreSnapshot{ID: 1, Name: "Horror"}, NumberInStock: 1, DailyRentalRate: 2}
	require.NoError(t, movies.Create(ctx, m))

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, movies.DecrementStockTx(ctx, tx, m.ID))
	assert.ErrorIs(t, movies.DecrementStockTx(ctx, tx, m.ID), repository.ErrConflict)
	require.NoError(t, tx.Commit())

	got, err := movies.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumberInStock)

	tx, err = db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, movies.IncrementStockTx(ctx, tx, m.ID))
	assert.ErrorIs(t, movies.IncrementStockTx(ctx, tx, m.ID+100), repository.ErrMovieNotFound)
	require.NoError(t, tx.Commit())

	got, err = movies.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumberInStock)
}

func TestRentalRepoPrefersOpenRental(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLite(t)
	rentals := repository.NewRentalRepo(db)

	base := time.Now().UTC().Truncate(time.Second)
	newRental := func(out time.Time) *model.Rental {
		return &model.Rental{
			Customer: model.CustomerSnapshot{ID: 1, Name: "Alice", Phone: "12345"},
			Movie:    model.MovieSnapshot{ID: 2, Title: "Alien", DailyRentalRate: 2},
			DateOut:  out,
		}
	}
	closed := newRental(base.Add(-time.Hour))
	open := newRental(base.Add(-48 * time.Hour))

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, rentals.CreateTx(ctx, tx, closed))
	require.NoError(t, rentals.CreateTx(ctx, tx, open))
	require.NoError(t, rentals.MarkReturnedTx(ctx, tx, closed.ID, base, 2))
	assert.ErrorIs(t, rentals.MarkReturnedTx(ctx, tx, closed.ID, base, 4), repository.ErrConflict)
	require.NoError(t, tx.Commit())

	found, err := rentals.FindByCustomerAndMovie(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, open.ID, found.ID)
	assert.False(t, found.Returned())
	assert.True(t, found.DateOut.Equal(open.DateOut))

	returned, err := rentals.GetByID(ctx, closed.ID)
	require.NoError(t, err)
	require.NotNil(t, returned.DateReturned)
	require.NotNil(t, returned.RentalFee)
	assert.Equal(t, 2.0, *returned.RentalFee)

	list, err := rentals.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, closed.ID, list[0].ID, "newest dateOut first")

	_, err = rentals.FindByCustomerAndMovie(ctx, 1, 3)
	assert.ErrorIs(t, err, repository.ErrRentalNotFound)
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	users := repository.NewUserRepo(testutil.NewSQLite(t))

	u, err := users.Create(ctx, "Alice Admin", " Alice@Example.com ", "12345", 4)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.False(t, u.IsAdmin)

	_, err = users.Create(ctx, "Alice Again", "alice@example.com", "12345", 4)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, users.SetAdmin(ctx, "ALICE@example.com", true))
	got, err := users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)

	assert.ErrorIs(t, users.SetAdmin(ctx, "nobody@example.com", true), repository.ErrUserNotFound)
	_, err = users.GetByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
