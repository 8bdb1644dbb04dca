package model

// Genre represents a row in the `genres` table.
type Genre struct {
    ID   uint64 `json:"id"`   // genres.id
    Name string `json:"name"` // genres.name
}

// GenreSnapshot is the copy of a genre embedded in a movie.  Renaming
// or deleting the genre afterwards leaves the movie untouched.
type GenreSnapshot struct {
    ID   uint64 `json:"id"`   // movies.genre_id
    Name string `json:"name"` // movies.genre_name
}

// Snapshot copies the genre into its embedded form.
func (g Genre) Snapshot() GenreSnapshot {
    return GenreSnapshot{ID: g.ID, Name: g.Name}
}
