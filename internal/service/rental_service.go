package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/video-rental/internal/metrics"
	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/queue"
	"github.com/iliyamo/video-rental/internal/repository"
)

// RentalService opens and closes rentals.  Each operation touches the
// rental row and the movie stock inside one transaction.
type RentalService struct {
	db        *sql.DB
	customers *repository.CustomerRepo
	movies    *repository.MovieRepo
	rentals   *repository.RentalRepo

	events  EventPublisher
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

// NewRentalService wires the workflow to db.  A nil publisher drops events.
func NewRentalService(db *sql.DB, events EventPublisher, m *metrics.Metrics, log *zap.Logger) *RentalService {
	if events == nil {
		events = NopPublisher{}
	}
	return &RentalService{
		db:        db,
		customers: repository.NewCustomerRepo(db),
		movies:    repository.NewMovieRepo(db),
		rentals:   repository.NewRentalRepo(db),
		events:    events,
		metrics:   m,
		log:       log.Named("rentals"),
		now:       time.Now,
	}
}

// timestamp returns the current time at the precision both stores keep.
func (s *RentalService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// Create opens a rental of movieID for customerID.  It returns
// repository.ErrCustomerNotFound or repository.ErrMovieNotFound when either
// is missing, and ErrNotInStock when no copy is available, including when
// a concurrent rental took the last one.
func (s *RentalService) Create(ctx context.Context, customerID, movieID uint64) (*model.Rental, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	movie, err := s.movies.GetByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if movie.NumberInStock <= 0 {
		s.metrics.OutOfStock()
		return nil, ErrNotInStock
	}

	rental := &model.Rental{
		Customer: customer.Snapshot(),
		Movie:    movie.Snapshot(),
		DateOut:  s.timestamp(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin rental tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.rentals.CreateTx(ctx, tx, rental); err != nil {
		return nil, fmt.Errorf("insert rental: %w", err)
	}
	if err := s.movies.DecrementStockTx(ctx, tx, movie.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.metrics.OutOfStock()
			return nil, ErrNotInStock
		}
		return nil, fmt.Errorf("decrement stock: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit rental: %w", err)
	}

	s.metrics.RentalCreated()
	s.log.Info("rental created",
		zap.Uint64("rental_id", rental.ID),
		zap.Uint64("customer_id", customer.ID),
		zap.Uint64("movie_id", movie.ID))

	ev := queue.RentalCreatedEvent{
		RentalID:        rental.ID,
		CustomerID:      rental.Customer.ID,
		CustomerName:    rental.Customer.Name,
		MovieID:         rental.Movie.ID,
		MovieTitle:      rental.Movie.Title,
		DailyRentalRate: rental.Movie.DailyRentalRate,
		DateOut:         rental.DateOut.Format(time.RFC3339),
	}
	if err := s.events.RentalCreated(ctx, ev); err != nil {
		s.log.Warn("publish rental.created failed", zap.Uint64("rental_id", rental.ID), zap.Error(err))
	}
	return rental, nil
}

// Return closes the rental of movieID by customerID, charging the fee
// for the days it was out.  It returns repository.ErrRentalNotFound when
// the customer never rented the movie and ErrAlreadyReturned when the
// rental was already closed.
func (s *RentalService) Return(ctx context.Context, customerID, movieID uint64) (*model.Rental, error) {
	rental, err := s.rentals.FindByCustomerAndMovie(ctx, customerID, movieID)
	if err != nil {
		return nil, err
	}
	if rental.Returned() {
		return nil, ErrAlreadyReturned
	}

	returnedAt := s.timestamp()
	fee := RentalFee(rental.DateOut, returnedAt, rental.Movie.DailyRentalRate)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin return tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.rentals.MarkReturnedTx(ctx, tx, rental.ID, returnedAt, fee); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyReturned
		}
		return nil, fmt.Errorf("mark returned: %w", err)
	}
	if err := s.movies.IncrementStockTx(ctx, tx, rental.Movie.ID); err != nil {
		if !errors.Is(err, repository.ErrMovieNotFound) {
			return nil, fmt.Errorf("increment stock: %w", err)
		}
		s.log.Warn("returned movie no longer exists, stock not restored",
			zap.Uint64("rental_id", rental.ID), zap.Uint64("movie_id", rental.Movie.ID))
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit return: %w", err)
	}

	rental.DateReturned = &returnedAt
	rental.RentalFee = &fee

	s.metrics.RentalReturned(fee)
	s.log.Info("rental returned",
		zap.Uint64("rental_id", rental.ID),
		zap.Float64("fee", fee))

	ev := queue.RentalReturnedEvent{
		RentalID:     rental.ID,
		CustomerID:   rental.Customer.ID,
		CustomerName: rental.Customer.Name,
		MovieID:      rental.Movie.ID,
		MovieTitle:   rental.Movie.Title,
		RentalFee:    fee,
		DateOut:      rental.DateOut.Format(time.RFC3339),
		DateReturned: returnedAt.Format(time.RFC3339),
	}
	if err := s.events.RentalReturned(ctx, ev); err != nil {
		s.log.Warn("publish rental.returned failed", zap.Uint64("rental_id", rental.ID), zap.Error(err))
	}
	return rental, nil
}

// RentalFee charges rate for every whole day between out and in.  A
// rental returned within its first day still pays one day.  The result is
// rounded to cents.
func RentalFee(out, in time.Time, rate float64) float64 {
	days := math.Floor(in.Sub(out).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return math.Round(days*rate*100) / 100
}
