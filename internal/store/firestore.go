package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store on Cloud Firestore. Consistency is
// per-document; multi-document flows in the services above remain
// check-then-mutate with last-write-wins.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) doc(p DocPath) (*firestore.DocumentRef, error) {
	if p.Invalid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, p.String())
	}
	ref := s.client.Doc(p.String())
	if ref == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, p.String())
	}
	return ref, nil
}

func (s *FirestoreStore) Get(ctx context.Context, p DocPath) (*Document, error) {
	ref, err := s.doc(p)
	if err != nil {
		return nil, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (s *FirestoreStore) Set(ctx context.Context, p DocPath, data map[string]interface{}) error {
	ref, err := s.doc(p)
	if err != nil {
		return err
	}
	_, err = ref.Set(ctx, data)
	return err
}

func (s *FirestoreStore) Update(ctx context.Context, p DocPath, updates map[string]interface{}) error {
	ref, err := s.doc(p)
	if err != nil {
		return err
	}
	fields := make([]firestore.Update, 0, len(updates))
	for k, v := range updates {
		fields = append(fields, firestore.Update{Path: k, Value: v})
	}
	if _, err := ref.Update(ctx, fields); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, p DocPath) error {
	ref, err := s.doc(p)
	if err != nil {
		return err
	}
	_, err = ref.Delete(ctx)
	return err
}

func (s *FirestoreStore) Add(ctx context.Context, c CollectionPath, data map[string]interface{}) (string, error) {
	if c.Invalid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, c.String())
	}
	ref, _, err := s.client.Collection(c.String()).Add(ctx, data)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Documents(ctx context.Context, c CollectionPath) ([]Document, error) {
	if c.Invalid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, c.String())
	}
	iter := s.client.Collection(c.String()).Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}
