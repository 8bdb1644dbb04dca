package model

import "time"

// CustomerSnapshot is the copy of a customer stored inside a rental.
type CustomerSnapshot struct {
    ID     uint64 `json:"id"`     // rentals.customer_id
    Name   string `json:"name"`   // rentals.customer_name
    Phone  string `json:"phone"`  // rentals.customer_phone
    IsGold bool   `json:"isGold"` // rentals.customer_is_gold
}

// MovieSnapshot is the copy of a movie stored inside a rental.  The
// rental fee is computed from this rate, not from the live movie.
type MovieSnapshot struct {
    ID              uint64  `json:"id"`              // rentals.movie_id
    Title           string  `json:"title"`           // rentals.movie_title
    DailyRentalRate float64 `json:"dailyRentalRate"` // rentals.movie_daily_rental_rate
}

// Rental records one copy of a movie handed out to a customer.
// DateReturned and RentalFee are either both nil (open rental) or both
// set (returned rental); a rental is returned at most once.
type Rental struct {
    ID           uint64           `json:"id"`                     // rentals.id
    Customer     CustomerSnapshot `json:"customer"`               // rentals.customer_*
    Movie        MovieSnapshot    `json:"movie"`                  // rentals.movie_*
    DateOut      time.Time        `json:"dateOut"`                // rentals.date_out
    DateReturned *time.Time       `json:"dateReturned,omitempty"` // rentals.date_returned (nullable)
    RentalFee    *float64         `json:"rentalFee,omitempty"`    // rentals.rental_fee (nullable)
}

// Returned reports whether the rental has already been processed.
func (r Rental) Returned() bool {
    return r.DateReturned != nil
}
