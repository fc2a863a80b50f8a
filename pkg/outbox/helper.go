package outbox

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"habitpact/pkg/trace"
)

// InsertEventInTx marshals a payload and stages it inside the caller's
// transaction. The trace_id from ctx, when present, rides along in the
// payload so consumers can correlate.
func InsertEventInTx(
	ctx context.Context,
	tx pgx.Tx,
	repo *Repository,
	aggregateType string,
	aggregateID *int64,
	routingKey string,
	payload interface{},
) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if traceID := trace.FromContext(ctx); traceID != "" {
		payloadJSON = attachTraceID(payloadJSON, traceID)
	}

	event := &Event{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		RoutingKey:    routingKey,
		Payload:       payloadJSON,
		Status:        "pending",
	}

	return repo.InsertEvent(ctx, tx, event)
}

func attachTraceID(payload []byte, traceID string) []byte {
	var m map[string]interface{}
	if err := json.Unmarshal(payload, &m); err != nil {
		return payload
	}
	m["trace_id"] = traceID
	out, err := json.Marshal(m)
	if err != nil {
		return payload
	}
	return out
}
