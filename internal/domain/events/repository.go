package events

import (
	"context"
	"errors"

	"github.com/eventmanager/server/internal/api/pagination"
)

var ErrNotFound = errors.New("event not found")

// Event is the stored record. Country and Capacity are optional; pointers
// keep "absent" explicit through every layer instead of leaning on zero
// values.
type Event struct {
	ID       int64
	Name     string
	Location string
	Country  *string
	Capacity *int32
}

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Event, error)
	// List applies the resolved sort column and page window. Unpaginated
	// queries return the full collection.
	List(ctx context.Context, query pagination.Query, sort SortKey) (pagination.PagedResult[Event], error)
	// Create persists the event and returns it with the server-assigned ID.
	Create(ctx context.Context, event Event) (*Event, error)
	// Update replaces all fields of the row with event.ID and reports
	// whether a row matched.
	Update(ctx context.Context, event Event) (bool, error)
	// Delete removes the row and reports whether one matched.
	Delete(ctx context.Context, id int64) (bool, error)
}
