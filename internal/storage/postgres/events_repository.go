package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventmanager/server/internal/api/pagination"
	"github.com/eventmanager/server/internal/domain/events"
	"github.com/jackc/pgx/v5"
)

var _ events.Repository = (*EventRepository)(nil)

// orderClauses holds the only ORDER BY fragments List will ever emit. Sort
// keys are resolved by the domain layer against a fixed set, so nothing
// user-supplied is interpolated here.
var orderClauses = map[events.SortKey]struct{ asc, desc string }{
	events.SortByID:       {"id ASC", "id DESC"},
	events.SortByName:     {"name ASC, id ASC", "name DESC, id ASC"},
	events.SortByLocation: {"location ASC, id ASC", "location DESC, id ASC"},
	events.SortByCountry:  {"country ASC NULLS LAST, id ASC", "country DESC NULLS LAST, id ASC"},
	events.SortByCapacity: {"capacity ASC NULLS LAST, id ASC", "capacity DESC NULLS LAST, id ASC"},
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT id, name, location, country, capacity
  FROM events
 WHERE id = $1
`, id)

	var event events.Event
	if err := row.Scan(&event.ID, &event.Name, &event.Location, &event.Country, &event.Capacity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &event, nil
}

func (r *EventRepository) List(ctx context.Context, query pagination.Query, sort events.SortKey) (pagination.PagedResult[events.Event], error) {
	q := r.queryer()

	var totalCount int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM events`).Scan(&totalCount); err != nil {
		return pagination.PagedResult[events.Event]{}, fmt.Errorf("count events: %w", err)
	}

	clause, ok := orderClauses[sort]
	if !ok {
		clause = orderClauses[events.SortByID]
	}
	orderBy := clause.asc
	if query.Descending {
		orderBy = clause.desc
	}

	sql := `
SELECT id, name, location, country, capacity
  FROM events
 ORDER BY ` + orderBy
	args := []any{}
	if query.Paged() {
		offset, limit := query.Window()
		sql += `
 OFFSET $1 LIMIT $2`
		args = append(args, offset, limit)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return pagination.PagedResult[events.Event]{}, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := make([]events.Event, 0)
	for rows.Next() {
		var event events.Event
		if err := rows.Scan(&event.ID, &event.Name, &event.Location, &event.Country, &event.Capacity); err != nil {
			return pagination.PagedResult[events.Event]{}, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, event)
	}
	if err := rows.Err(); err != nil {
		return pagination.PagedResult[events.Event]{}, fmt.Errorf("iterate events: %w", err)
	}

	return pagination.NewPagedResult(items, totalCount, query), nil
}

func (r *EventRepository) Create(ctx context.Context, event events.Event) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO events (name, location, country, capacity)
VALUES ($1, $2, $3, $4)
RETURNING id
`, event.Name, event.Location, event.Country, event.Capacity)

	if err := row.Scan(&event.ID); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return &event, nil
}

func (r *EventRepository) Update(ctx context.Context, event events.Event) (bool, error) {
	tag, err := r.queryer().Exec(ctx, `
UPDATE events
   SET name = $2, location = $3, country = $4, capacity = $5
 WHERE id = $1
`, event.ID, event.Name, event.Location, event.Country, event.Capacity)
	if err != nil {
		return false, fmt.Errorf("update event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *EventRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
