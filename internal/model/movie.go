package model

// Movie represents a row in the `movies` table.  NumberInStock is only
// changed by the rental workflow: it goes down by one when a rental is
// opened and up by one when the rental is returned.
//
// Fields:
//  ID              – primary key identifier.
//  Title           – movie title.
//  Genre           – snapshot of the genre taken when the movie was saved.
//  NumberInStock   – copies available for rent (0–255).
//  DailyRentalRate – price per rental day (0–255).
type Movie struct {
    ID              uint64        `json:"id"`              // movies.id
    Title           string        `json:"title"`           // movies.title
    Genre           GenreSnapshot `json:"genre"`           // movies.genre_id, movies.genre_name
    NumberInStock   int           `json:"numberInStock"`   // movies.number_in_stock
    DailyRentalRate float64       `json:"dailyRentalRate"` // movies.daily_rental_rate
}

// Snapshot copies the movie fields that a rental embeds.
func (m Movie) Snapshot() MovieSnapshot {
    return MovieSnapshot{ID: m.ID, Title: m.Title, DailyRentalRate: m.DailyRentalRate}
}
