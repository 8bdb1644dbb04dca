package model

// Customer represents a row in the `customers` table.  A customer can
// rent movies; every rental keeps its own copy of the customer fields
// (see CustomerSnapshot) so later edits do not rewrite rental history.
//
// Fields:
//  ID     – primary key identifier.
//  Name   – display name of the customer.
//  Phone  – contact phone number.
//  IsGold – whether the customer has gold membership.
type Customer struct {
    ID     uint64 `json:"id"`     // customers.id
    Name   string `json:"name"`   // customers.name
    Phone  string `json:"phone"`  // customers.phone
    IsGold bool   `json:"isGold"` // customers.is_gold
}

// Snapshot copies the customer fields that a rental embeds.
func (c Customer) Snapshot() CustomerSnapshot {
    return CustomerSnapshot{ID: c.ID, Name: c.Name, Phone: c.Phone, IsGold: c.IsGold}
}
