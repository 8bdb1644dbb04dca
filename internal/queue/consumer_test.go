package queue

import (
    "encoding/json"
    "os"
    "path/filepath"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"
)

func TestHandleAppendsAuditLines(t *testing.T) {
    dir := filepath.Join(t.TempDir(), "logs")
    c := NewConsumer("amqp://unused", dir, zap.NewNop())

    created, err := json.Marshal(RentalCreatedEvent{
        RentalID: 7, CustomerID: 1, CustomerName: "Alice", MovieID: 2, MovieTitle: "Alien",
        DailyRentalRate: 2, DateOut: "2026-01-01T10:00:00Z",
    })
    require.NoError(t, err)
    returned, err := json.Marshal(RentalReturnedEvent{
        RentalID: 7, CustomerID: 1, CustomerName: "Alice", MovieID: 2, MovieTitle: "Alien",
        RentalFee: 14, DateOut: "2026-01-01T10:00:00Z", DateReturned: "2026-01-08T10:00:00Z",
    })
    require.NoError(t, err)

    require.NoError(t, c.Handle(RentalCreatedQueue, created))
    require.NoError(t, c.Handle(RentalReturnedQueue, returned))

    raw, err := os.ReadFile(filepath.Join(dir, AuditLogName))
    require.NoError(t, err)
    lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
    require.Len(t, lines, 2)
    assert.Contains(t, lines[0], "Rental created | rental_id=7")
    assert.Contains(t, lines[0], `movie="Alien"`)
    assert.Contains(t, lines[1], "Rental returned | rental_id=7")
    assert.Contains(t, lines[1], "fee=14.00")
}

func TestHandleRejectsBadInput(t *testing.T) {
    c := NewConsumer("amqp://unused", t.TempDir(), zap.NewNop())

    assert.Error(t, c.Handle(RentalCreatedQueue, []byte("{")))
    assert.Error(t, c.Handle("booking.confirmed", []byte("{}")))
}
