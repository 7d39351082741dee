package events

import (
	"context"
	"fmt"

	"github.com/eventmanager/server/internal/api/pagination"
	"github.com/rs/zerolog"
)

// Service is thin CRUD orchestration over the repository; the only domain
// logic is sort-key resolution for listings.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

// List resolves the requested sort column against the allowed set before the
// query runs; unknown columns fail with SortError.
func (s *Service) List(ctx context.Context, query pagination.Query) (pagination.PagedResult[Event], error) {
	sort, err := ResolveSortKey(query.SortBy)
	if err != nil {
		s.logger.Warn().Str("sort_by", query.SortBy).Msg("invalid sort property requested")
		return pagination.PagedResult[Event]{}, err
	}

	result, err := s.repo.List(ctx, query, sort)
	if err != nil {
		return pagination.PagedResult[Event]{}, err
	}

	s.logger.Info().
		Int("count", len(result.Items)).
		Int("page", result.Page).
		Int("page_size", result.PageSize).
		Str("sort_by", string(sort)).
		Bool("descending", query.Descending).
		Msg("listed events")
	return result, nil
}

func (s *Service) Create(ctx context.Context, event Event) (*Event, error) {
	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.Info().Int64("event_id", created.ID).Msg("created event")
	return created, nil
}

// Update performs a full replace of the stored record.
func (s *Service) Update(ctx context.Context, event Event) (*Event, error) {
	matched, err := s.repo.Update(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if !matched {
		s.logger.Warn().Int64("event_id", event.ID).Msg("update target not found")
		return nil, ErrNotFound
	}
	s.logger.Info().Int64("event_id", event.ID).Msg("updated event")
	return &event, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if !deleted {
		s.logger.Warn().Int64("event_id", id).Msg("delete target not found")
		return ErrNotFound
	}
	s.logger.Info().Int64("event_id", id).Msg("deleted event")
	return nil
}
