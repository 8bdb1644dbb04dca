// Package queue defines the rental events exchanged over RabbitMQ and the
// background consumer that records them.
package queue

// Queue names.  Each event type is published to the default exchange with
// its queue name as the routing key.
const (
    RentalCreatedQueue  = "rental.created"
    RentalReturnedQueue = "rental.returned"
)

// RentalCreatedEvent is published after a rental has been committed.  It
// carries the snapshot values so consumers never need to query the store.
type RentalCreatedEvent struct {
    RentalID        uint64  `json:"rental_id"`
    CustomerID      uint64  `json:"customer_id"`
    CustomerName    string  `json:"customer_name"`
    MovieID         uint64  `json:"movie_id"`
    MovieTitle      string  `json:"movie_title"`
    DailyRentalRate float64 `json:"daily_rental_rate"`
    DateOut         string  `json:"date_out"` // RFC3339, UTC
}

// RentalReturnedEvent is published after a return has been committed.
type RentalReturnedEvent struct {
    RentalID     uint64  `json:"rental_id"`
    CustomerID   uint64  `json:"customer_id"`
    CustomerName string  `json:"customer_name"`
    MovieID      uint64  `json:"movie_id"`
    MovieTitle   string  `json:"movie_title"`
    RentalFee    float64 `json:"rental_fee"`
    DateOut      string  `json:"date_out"`
    DateReturned string  `json:"date_returned"`
}
