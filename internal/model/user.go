package model

// User represents an application user record as stored in the
// `users` table.  The password hash never leaves the server: it is
// excluded from JSON and handlers build explicit response bodies.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  IsAdmin      – grants access to admin-only routes.
type User struct {
    ID           uint64 `json:"id"`      // users.id
    Name         string `json:"name"`    // users.name
    Email        string `json:"email"`   // users.email
    PasswordHash string `json:"-"`       // users.password_hash
    IsAdmin      bool   `json:"isAdmin"` // users.is_admin
}
