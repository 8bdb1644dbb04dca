package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/video-rental/internal/metrics"
	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/queue"
	"github.com/iliyamo/video-rental/internal/repository"
	"github.com/iliyamo/video-rental/internal/testutil"
)

type recordingPublisher struct {
	mu       sync.Mutex
	created  []queue.RentalCreatedEvent
	returned []queue.RentalReturnedEvent
	err      error
}

func (p *recordingPublisher) RentalCreated(_ context.Context, ev queue.RentalCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, ev)
	return p.err
}

func (p *recordingPublisher) RentalReturned(_ context.Context, ev queue.RentalReturnedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.returned = append(p.returned, ev)
	return p.err
}

type fixture struct {
	db       *sql.DB
	svc      *RentalService
	pub      *recordingPublisher
	customer *model.Customer
	movie    *model.Movie
}

func newFixture(t *testing.T, stock int) *fixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.NewSQLite(t)

	customer := &model.Customer{Name: "Alice Smith", Phone: "555-0100"}
	require.NoError(t, repository.NewCustomerRepo(db).Create(ctx, customer))
	movie := &model.Movie{
		Title:           "The Terminator",
		Genre:           model.GenreSnapshot{ID: 1, Name: "Action"},
		NumberInStock:   stock,
		DailyRentalRate: 2,
	}
	require.NoError(t, repository.NewMovieRepo(db).Create(ctx, movie))

	pub := &recordingPublisher{}
	svc := NewRentalService(db, pub, metrics.New(prometheus.NewRegistry()), zap.NewNop())
	return &fixture{db: db, svc: svc, pub: pub, customer: customer, movie: movie}
}

func (f *fixture) stock(t *testing.T) int {
	t.Helper()
	m, err := repository.NewMovieRepo(f.db).GetByID(context.Background(), f.movie.ID)
	require.NoError(t, err)
	return m.NumberInStock
}

func (f *fixture) rentalCount(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM rentals`).Scan(&n))
	return n
}

func TestRentalFee(t *testing.T) {
	out := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		in   time.Time
		rate float64
		want float64
	}{
		{"same moment", out, 2, 2},
		{"same day", out.Add(23 * time.Hour), 2, 2},
		{"one day", out.Add(24 * time.Hour), 2, 2},
		{"seven days", out.Add(7 * 24 * time.Hour), 2, 14},
		{"partial day is dropped", out.Add(7*24*time.Hour + 20*time.Hour), 2, 14},
		{"fractional rate", out.Add(3 * 24 * time.Hour), 0.1, 0.3},
		{"free movie", out.Add(3 * 24 * time.Hour), 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RentalFee(out, tc.in, tc.rate))
		})
	}
}

func TestCreateDecrementsStock(t *testing.T) {
	f := newFixture(t, 1)

	r, err := f.svc.Create(context.Background(), f.customer.ID, f.movie.ID)
	require.NoError(t, err)
	assert.NotZero(t, r.ID)
	assert.Equal(t, f.customer.Snapshot(), r.Customer)
	assert.Equal(t, f.movie.Snapshot(), r.Movie)
	assert.Nil(t, r.DateReturned)
	assert.Nil(t, r.RentalFee)

	assert.Equal(t, 0, f.stock(t))
	assert.Equal(t, 1, f.rentalCount(t))
	require.Len(t, f.pub.created, 1)
	assert.Equal(t, r.ID, f.pub.created[0].RentalID)
}

func TestCreateWithoutStock(t *testing.T) {
	f := newFixture(t, 0)

	_, err := f.svc.Create(context.Background(), f.customer.ID, f.movie.ID)
	assert.ErrorIs(t, err, ErrNotInStock)
	assert.Equal(t, 0, f.rentalCount(t))
	assert.Empty(t, f.pub.created)
}

func TestCreateUnknownIDs(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.svc.Create(context.Background(), f.customer.ID+100, f.movie.ID)
	assert.ErrorIs(t, err, repository.ErrCustomerNotFound)
	_, err = f.svc.Create(context.Background(), f.customer.ID, f.movie.ID+100)
	assert.ErrorIs(t, err, repository.ErrMovieNotFound)
	assert.Equal(t, 1, f.stock(t))
}

func TestCreateSurvivesPublisherFailure(t *testing.T) {
	f := newFixture(t, 1)
	f.pub.err = errors.New("broker down")

	_, err := f.svc.Create(context.Background(), f.customer.ID, f.movie.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.rentalCount(t))
}

func TestConcurrentCreateNeverOversells(t *testing.T) {
	f := newFixture(t, 3)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), f.customer.ID, f.movie.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, ErrNotInStock) {
				fail++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	assert.Equal(t, 5, fail)
	assert.Equal(t, 0, f.stock(t))
	assert.Equal(t, 3, f.rentalCount(t))
}

func TestReturnChargesPerDay(t *testing.T) {
	f := newFixture(t, 1)
	start := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return start }

	r, err := f.svc.Create(context.Background(), f.customer.ID, f.movie.ID)
	require.NoError(t, err)

	f.svc.now = func() time.Time { return start.Add(7*24*time.Hour + time.Minute) }
	returned, err := f.svc.Return(context.Background(), f.customer.ID, f.movie.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, returned.ID)
	require.NotNil(t, returned.RentalFee)
	assert.Equal(t, 14.0, *returned.RentalFee)
	require.NotNil(t, returned.DateReturned)
	assert.Equal(t, 1, f.stock(t))

	stored, err := repository.NewRentalRepo(f.db).GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, 14.0, *stored.RentalFee)
	require.Len(t, f.pub.returned, 1)
	assert.Equal(t, 14.0, f.pub.returned[0].RentalFee)
}

func TestReturnTwiceIsRejected(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.customer.ID, f.movie.ID)
	require.NoError(t, err)
	first, err := f.svc.Return(ctx, f.customer.ID, f.movie.ID)
	require.NoError(t, err)

	f.svc.now = func() time.Time { return time.Now().Add(30 * 24 * time.Hour) }
	_, err = f.svc.Return(ctx, f.customer.ID, f.movie.ID)
	assert.ErrorIs(t, err, ErrAlreadyReturned)

	stored, err := repository.NewRentalRepo(f.db).GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.RentalFee, *stored.RentalFee)
	assert.Equal(t, 1, f.stock(t))
}

func TestReturnUnknownRental(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.svc.Return(context.Background(), f.customer.ID, f.movie.ID)
	assert.ErrorIs(t, err, repository.ErrRentalNotFound)
}

func TestReturnAfterMovieDeleted(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.customer.ID, f.movie.ID)
	require.NoError(t, err)
	_, err = repository.NewMovieRepo(f.db).Delete(ctx, f.movie.ID)
	require.NoError(t, err)

	r, err := f.svc.Return(ctx, f.customer.ID, f.movie.ID)
	require.NoError(t, err)
	assert.True(t, r.Returned())
}
