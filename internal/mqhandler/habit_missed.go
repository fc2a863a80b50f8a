package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"habitpact/internal/events"
	"habitpact/internal/model"
	"habitpact/pkg/util"
)

// NotificationStore is the persistence surface for in-app notifications.
type NotificationStore interface {
	Insert(ctx context.Context, n *model.Notification) error
}

// EventGate is the once-only claim surface (Redis deduper underneath).
type EventGate interface {
	AcquireOnce(ctx context.Context, scope, key string) bool
	Release(ctx context.Context, scope, key string)
}

// RetryTracker counts redelivery attempts per event.
type RetryTracker interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// DLQPublisher parks messages that cannot be processed.
type DLQPublisher interface {
	PublishToDLQ(routingKey string, payload []byte, originalError string) error
}

// HabitMissedHandler consumes habit.missed events: it writes in-app
// notifications for the owner and partner and forwards the event to the
// external webhook. The gate claim is released when processing fails, so
// a redelivery gets a real retry instead of a dedup hit; poison messages
// go to the DLQ instead of cycling forever.
type HabitMissedHandler struct {
	notifications NotificationStore
	deduper       EventGate
	retries       RetryTracker
	publisher     DLQPublisher
	webhook       *WebhookSender
	logger        *zap.Logger
	maxRetries    int64
}

func NewHabitMissedHandler(
	notifications NotificationStore,
	deduper EventGate,
	retries RetryTracker,
	publisher DLQPublisher,
	webhook *WebhookSender,
	logger *zap.Logger,
) *HabitMissedHandler {
	return &HabitMissedHandler{
		notifications: notifications,
		deduper:       deduper,
		retries:       retries,
		publisher:     publisher,
		webhook:       webhook,
		logger:        logger,
		maxRetries:    5,
	}
}

const handlerName = "habit_missed"

// Handle processes one delivery. A nil return acks the message; an error
// nacks it back onto the queue.
func (h *HabitMissedHandler) Handle(ctx context.Context, data json.RawMessage) error {
	var payload events.HabitMissedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		// Malformed forever; park it and move on.
		h.toDLQ(data, fmt.Sprintf("json decode: %v", err))
		return nil
	}

	eventKey := payload.EventKey()
	if !h.deduper.AcquireOnce(ctx, handlerName, eventKey) {
		return nil
	}

	if err := h.process(ctx, payload); err != nil {
		// Give the claim back so the redelivery is processed, not
		// swallowed as a duplicate.
		h.deduper.Release(ctx, handlerName, eventKey)
		return h.handleFailure(ctx, data, eventKey, err)
	}

	h.retries.Reset(ctx, util.FormatRetryKey(handlerName, eventKey))
	return nil
}

func (h *HabitMissedHandler) process(ctx context.Context, p events.HabitMissedPayload) error {
	ownerMsg := fmt.Sprintf("You missed %q on %s — %d charged to your ledger.", p.HabitName, p.DateKey, p.Amount)
	err := h.notifications.Insert(ctx, &model.Notification{
		UserID:  p.UserID,
		Type:    model.NotificationTypeHabitMissed,
		Message: ownerMsg,
	})
	if err != nil {
		return fmt.Errorf("failed to notify owner: %w", err)
	}

	if p.PartnerID != nil {
		partnerMsg := fmt.Sprintf("%s missed %q on %s — %d added to your ledger.", p.UserName, p.HabitName, p.DateKey, p.Amount)
		err := h.notifications.Insert(ctx, &model.Notification{
			UserID:  *p.PartnerID,
			Type:    model.NotificationTypeHabitMissed,
			Message: partnerMsg,
		})
		if err != nil {
			return fmt.Errorf("failed to notify partner: %w", err)
		}
	}

	if err := h.webhook.Send(ctx, p); err != nil {
		return err
	}

	return nil
}

// handleFailure decides between requeue and DLQ based on the error class
// and the retry budget.
func (h *HabitMissedHandler) handleFailure(ctx context.Context, data json.RawMessage, eventKey string, cause error) error {
	retryable, errType := util.IsRetryableError(cause)

	count, err := h.retries.IncrementAndGet(ctx, util.FormatRetryKey(handlerName, eventKey))
	if err != nil {
		h.logger.Warn("retry counter unavailable, requeueing",
			zap.String("event_key", eventKey),
			zap.Error(err),
		)
		return cause
	}

	if util.ShouldRetry(count, h.maxRetries, retryable) {
		h.logger.Warn("habit.missed processing failed, will retry",
			zap.String("event_key", eventKey),
			zap.String("error_type", errType),
			zap.Int64("attempt", count),
			zap.Error(cause),
		)
		return cause
	}

	h.logger.Error("habit.missed processing abandoned",
		zap.String("event_key", eventKey),
		zap.String("error_type", errType),
		zap.Int64("attempts", count),
		zap.Error(cause),
	)
	h.toDLQ(data, cause.Error())
	return nil
}

func (h *HabitMissedHandler) toDLQ(data json.RawMessage, reason string) {
	if err := h.publisher.PublishToDLQ(events.HabitMissedKey, data, reason); err != nil {
		h.logger.Error("failed to publish to DLQ",
			zap.String("routing_key", events.HabitMissedKey),
			zap.Error(err),
		)
	}
}
