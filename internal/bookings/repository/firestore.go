package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	bookingerrors "cleanroom/internal/bookings/errors"
	"cleanroom/pkg/config"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type firestoreStore struct {
	cfg        *config.Config
	collection *firestore.CollectionRef
}

// NewFirestoreStore uses the Firestore document id as docId.
func NewFirestoreStore(cfg *config.Config) Store {
	return &firestoreStore{
		cfg:        cfg,
		collection: cfg.Client.Firestore.Collection(cfg.FirestoreCollection),
	}
}

func (r *firestoreStore) List(ctx context.Context) ([]map[string]any, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	iter := r.collection.Documents(ctx)
	defer iter.Stop()

	var docs []map[string]any
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list bookings: %w", err)
		}
		docs = append(docs, snapshotData(snap))
	}
	return docs, nil
}

func (r *firestoreStore) FindByDocID(ctx context.Context, docID string) (map[string]any, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	snap, err := r.collection.Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, bookingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return snapshotData(snap), nil
}

func (r *firestoreStore) Write(ctx context.Context, docID string, partial map[string]any) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.Doc(docID).Update(ctx, updates(partial))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return bookingerrors.ErrNotFound
		}
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

func (r *firestoreStore) Create(ctx context.Context, doc map[string]any) (string, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	data := withoutDocID(doc)
	if docID, _ := doc[docIDField].(string); docID != "" {
		if _, err := r.collection.Doc(docID).Create(ctx, data); err != nil {
			return "", fmt.Errorf("failed to create booking: %w", err)
		}
		return docID, nil
	}

	ref, _, err := r.collection.Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("failed to create booking: %w", err)
	}
	return ref.ID, nil
}

func (r *firestoreStore) DeleteAll(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	refs, err := r.collection.DocumentRefs(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to list bookings for deletion: %w", err)
	}
	if len(refs) == 0 {
		return 0, nil
	}

	bw := r.cfg.Client.Firestore.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("failed to queue booking deletion: %w", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var deleted int64
	var firstErr error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		deleted++
	}
	if firstErr != nil {
		return deleted, fmt.Errorf("failed to delete %d of %d bookings: %w", len(jobs)-int(deleted), len(jobs), firstErr)
	}
	return deleted, nil
}

func (r *firestoreStore) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	iter := r.collection.Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

func snapshotData(snap *firestore.DocumentSnapshot) map[string]any {
	data := snap.Data()
	if data == nil {
		data = map[string]any{}
	}
	data[docIDField] = snap.Ref.ID
	return data
}

// updates turns a partial document into field updates in a stable order.
// Nested maps replace the stored value as a whole.
func updates(partial map[string]any) []firestore.Update {
	keys := make([]string, 0, len(partial))
	for k := range partial {
		if k == docIDField {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]firestore.Update, 0, len(keys))
	for _, k := range keys {
		out = append(out, firestore.Update{Path: k, Value: partial[k]})
	}
	return out
}
