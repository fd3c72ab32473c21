package repository

import (
	"context"
	"time"
)

// Store is the document store holding booking records. Documents go in and
// come out as plain maps; interpretation belongs to the normalize package.
// Every document returned carries its storage key under "docId".
type Store interface {
	List(ctx context.Context) ([]map[string]any, error)
	FindByDocID(ctx context.Context, docID string) (map[string]any, error)
	// Write merges partial into an existing document.
	Write(ctx context.Context, docID string, partial map[string]any) error
	Create(ctx context.Context, doc map[string]any) (string, error)
	DeleteAll(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

const docIDField = "docId"

// withTimeout bounds ctx by timeout without extending a tighter deadline the
// caller already set.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func withoutDocID(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == docIDField {
			continue
		}
		out[k] = v
	}
	return out
}
