package events

import (
	"context"
	"sort"
	"testing"

	"github.com/eventmanager/server/internal/api/pagination"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	nextID int64
	items  map[int64]Event
}

func newMemoryRepo(events ...Event) *memoryRepo {
	repo := &memoryRepo{nextID: 1, items: make(map[int64]Event)}
	for _, e := range events {
		e.ID = repo.nextID
		repo.items[e.ID] = e
		repo.nextID++
	}
	return repo
}

func (r *memoryRepo) GetByID(_ context.Context, id int64) (*Event, error) {
	event, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &event, nil
}

func (r *memoryRepo) List(_ context.Context, query pagination.Query, key SortKey) (pagination.PagedResult[Event], error) {
	items := make([]Event, 0, len(r.items))
	for _, e := range r.items {
		items = append(items, e)
	}
	sort.Slice(items, func(i, j int) bool {
		less := items[i].ID < items[j].ID
		if key == SortByName {
			less = items[i].Name < items[j].Name
		}
		if query.Descending {
			return !less
		}
		return less
	})

	total := int64(len(items))
	if query.Paged() {
		offset, limit := query.Window()
		if offset > len(items) {
			items = nil
		} else {
			end := offset + limit
			if end > len(items) {
				end = len(items)
			}
			items = items[offset:end]
		}
	}
	return pagination.NewPagedResult(items, total, query), nil
}

func (r *memoryRepo) Create(_ context.Context, event Event) (*Event, error) {
	event.ID = r.nextID
	r.nextID++
	r.items[event.ID] = event
	return &event, nil
}

func (r *memoryRepo) Update(_ context.Context, event Event) (bool, error) {
	if _, ok := r.items[event.ID]; !ok {
		return false, nil
	}
	r.items[event.ID] = event
	return true, nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func three() *memoryRepo {
	return newMemoryRepo(
		Event{Name: "Alpha", Location: "Oslo"},
		Event{Name: "Beta", Location: "Lund"},
		Event{Name: "Gamma", Location: "Turku"},
	)
}

func TestListSecondPageOfThree(t *testing.T) {
	svc := NewService(three(), zerolog.Nop())
	page, pageSize := 2, 1
	query := pagination.Query{Page: &page, PageSize: &pageSize}

	result, err := svc.List(context.Background(), query)

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.EqualValues(t, 2, result.Items[0].ID)
	require.EqualValues(t, 3, result.TotalCount)
	require.Equal(t, 2, result.Page)
	require.Equal(t, 1, result.PageSize)
}

func TestListUnpaginatedReturnsAll(t *testing.T) {
	svc := NewService(three(), zerolog.Nop())

	result, err := svc.List(context.Background(), pagination.Query{})

	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	require.EqualValues(t, 3, result.TotalCount)
	require.Equal(t, 1, result.Page)
	require.Equal(t, 3, result.PageSize)
}

func TestListInvalidSortColumn(t *testing.T) {
	svc := NewService(three(), zerolog.Nop())

	_, err := svc.List(context.Background(), pagination.Query{SortBy: "DROP TABLE"})

	var sortErr SortError
	require.ErrorAs(t, err, &sortErr)
}

func TestCreateAssignsID(t *testing.T) {
	svc := NewService(newMemoryRepo(), zerolog.Nop())

	created, err := svc.Create(context.Background(), Event{Name: "Test", Location: "Loc"})

	require.NoError(t, err)
	require.NotZero(t, created.ID)

	fetched, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Test", fetched.Name)
	require.Equal(t, "Loc", fetched.Location)
	require.Nil(t, fetched.Country)
	require.Nil(t, fetched.Capacity)
}

func TestUpdateMissingEvent(t *testing.T) {
	svc := NewService(newMemoryRepo(), zerolog.Nop())

	_, err := svc.Update(context.Background(), Event{ID: 42, Name: "X", Location: "Y"})

	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReplacesAllFields(t *testing.T) {
	repo := three()
	svc := NewService(repo, zerolog.Nop())
	country := "Norway"

	updated, err := svc.Update(context.Background(), Event{ID: 1, Name: "Alpha 2", Location: "Bergen", Country: &country})

	require.NoError(t, err)
	require.Equal(t, "Alpha 2", updated.Name)

	fetched, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Bergen", fetched.Location)
	require.Equal(t, "Norway", *fetched.Country)
	require.Nil(t, fetched.Capacity)
}

func TestDeleteThenGet(t *testing.T) {
	svc := NewService(three(), zerolog.Nop())

	require.NoError(t, svc.Delete(context.Background(), 2))

	_, err := svc.GetByID(context.Background(), 2)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMissingEvent(t *testing.T) {
	svc := NewService(newMemoryRepo(), zerolog.Nop())

	require.ErrorIs(t, svc.Delete(context.Background(), 7), ErrNotFound)
}
