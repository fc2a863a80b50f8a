package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"habitpact/pkg/mq"
)

// ReplayService republishes outbox events that exhausted their retries.
type ReplayService struct {
	repo      *Repository
	publisher *mq.Publisher
}

func NewReplayService(repo *Repository, publisher *mq.Publisher) *ReplayService {
	return &ReplayService{
		repo:      repo,
		publisher: publisher,
	}
}

// ReplayEvent republishes a single event by id.
func (s *ReplayService) ReplayEvent(ctx context.Context, eventID int64) error {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}

	var payload interface{}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	ctx = extractTraceIDFromPayload(ctx, event.Payload)
	if err := s.publisher.PublishWithContext(ctx, event.RoutingKey, payload); err != nil {
		if markErr := s.repo.MarkAsFailed(ctx, eventID, 5); markErr != nil {
			return fmt.Errorf("failed to publish and mark as failed: %w (mark error: %v)", err, markErr)
		}
		return fmt.Errorf("failed to publish: %w", err)
	}

	if err := s.repo.MarkAsSent(ctx, eventID); err != nil {
		return fmt.Errorf("failed to mark as sent: %w", err)
	}

	return nil
}

// ReplayFailedEvents republishes all parked events, returning how many succeeded.
func (s *ReplayService) ReplayFailedEvents(ctx context.Context, limit int) (int, error) {
	events, err := s.repo.GetFailedEvents(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to get failed events: %w", err)
	}

	successCount := 0
	for _, event := range events {
		if err := s.ReplayEvent(ctx, event.ID); err != nil {
			continue
		}
		successCount++
	}

	return successCount, nil
}
