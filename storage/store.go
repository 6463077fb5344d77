// Package storage provides the per-category document store backed by NATS
// JetStream KV. Each category maps to one KV bucket; keys are project IDs
// and values are JSON-encoded domain documents. A Put is a single atomic
// keyed write, so readers never observe a partially written document and
// concurrent upserts to the same key resolve to last-write-wins.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/spherex/doc-portal/domain"
)

// Bucket names for each document category.
const (
	BucketModuleSpecs       = "PORTAL_SSDC_MS"
	BucketProjectManagement = "PORTAL_SSDC_PM"
	BucketInterfaces        = "PORTAL_SSDC_IF"
	BucketDataProducts      = "PORTAL_SSDC_DP"
	BucketTestReports       = "PORTAL_SSDC_TR"
	BucketTechnicalNotes    = "PORTAL_SSDC_TN"
	BucketOperationsNotes   = "PORTAL_SSDC_OP"
)

// bucketNames maps categories to their KV bucket names.
var bucketNames = map[domain.Category]string{
	domain.CategoryModuleSpec:        BucketModuleSpecs,
	domain.CategoryProjectManagement: BucketProjectManagement,
	domain.CategoryInterface:         BucketInterfaces,
	domain.CategoryDataProduct:       BucketDataProducts,
	domain.CategoryTestReport:        BucketTestReports,
	domain.CategoryTechnicalNote:     BucketTechnicalNotes,
	domain.CategoryOperationsNote:    BucketOperationsNotes,
}

// KVBucket is the slice of the JetStream KV surface the store uses.
// jetstream.KeyValue satisfies it; an in-memory implementation backs local
// mode and tests.
type KVBucket interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Keys(ctx context.Context, opts ...jetstream.WatchOpt) ([]string, error)
}

// CategoryStore persists one category's documents keyed by project ID.
type CategoryStore[T domain.Keyed] struct {
	kv KVBucket
}

// NewCategoryStore creates a store over the given bucket.
func NewCategoryStore[T domain.Keyed](kv KVBucket) *CategoryStore[T] {
	return &CategoryStore[T]{kv: kv}
}

// Upsert inserts the document or fully replaces the stored document with the
// same project ID. The last completed call for a key wins.
func (s *CategoryStore[T]) Upsert(ctx context.Context, doc T) error {
	key := doc.Key()
	if key == "" {
		return ErrMissingKey
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	if _, err := s.kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("store document %s: %w", key, err)
	}

	return nil
}

// Get retrieves one document by project ID.
func (s *CategoryStore[T]) Get(ctx context.Context, projectID string) (T, error) {
	var doc T

	entry, err := s.kv.Get(ctx, projectID)
	if err != nil {
		if isNotFound(err) {
			return doc, ErrNotFound
		}
		return doc, fmt.Errorf("get document %s: %w", projectID, err)
	}

	if err := json.Unmarshal(entry.Value(), &doc); err != nil {
		return doc, fmt.Errorf("unmarshal document %s: %w", projectID, err)
	}

	return doc, nil
}

// GetAll returns every document in the category sorted by project ID.
// Entries deleted between the key listing and the read are skipped.
func (s *CategoryStore[T]) GetAll(ctx context.Context) ([]T, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("list document keys: %w", err)
	}
	sort.Strings(keys)

	docs := make([]T, 0, len(keys))
	for _, key := range keys {
		doc, err := s.Get(ctx, key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// Repository aggregates the category stores, one per document category.
type Repository struct {
	ModuleSpecs       *CategoryStore[domain.ModuleSpecDocument]
	ProjectManagement *CategoryStore[domain.ProjectManagementDocument]
	Interfaces        *CategoryStore[domain.InterfaceDocument]
	DataProducts      *CategoryStore[domain.DataProductDocument]
	TestReports       *CategoryStore[domain.TestReportDocument]
	TechnicalNotes    *CategoryStore[domain.TechnicalNoteDocument]
	OperationsNotes   *CategoryStore[domain.OperationsNoteDocument]
}

// NewRepository creates a Repository over JetStream KV, creating the
// category buckets if they don't exist. The buckets outlive any single
// process: the web-serving and ingestion processes share them.
func NewRepository(ctx context.Context, js jetstream.JetStream) (*Repository, error) {
	buckets := make(map[domain.Category]KVBucket, len(bucketNames))
	for category, name := range bucketNames {
		kv, err := getOrCreateBucket(ctx, js, name)
		if err != nil {
			return nil, fmt.Errorf("create %s bucket: %w", category, err)
		}
		buckets[category] = kv
	}
	return newRepository(buckets), nil
}

// NewMemoryRepository creates a Repository over in-memory buckets for local
// development and tests.
func NewMemoryRepository() *Repository {
	buckets := make(map[domain.Category]KVBucket, len(bucketNames))
	for category, name := range bucketNames {
		buckets[category] = newMemBucket(name)
	}
	return newRepository(buckets)
}

func newRepository(buckets map[domain.Category]KVBucket) *Repository {
	return &Repository{
		ModuleSpecs:       NewCategoryStore[domain.ModuleSpecDocument](buckets[domain.CategoryModuleSpec]),
		ProjectManagement: NewCategoryStore[domain.ProjectManagementDocument](buckets[domain.CategoryProjectManagement]),
		Interfaces:        NewCategoryStore[domain.InterfaceDocument](buckets[domain.CategoryInterface]),
		DataProducts:      NewCategoryStore[domain.DataProductDocument](buckets[domain.CategoryDataProduct]),
		TestReports:       NewCategoryStore[domain.TestReportDocument](buckets[domain.CategoryTestReport]),
		TechnicalNotes:    NewCategoryStore[domain.TechnicalNoteDocument](buckets[domain.CategoryTechnicalNote]),
		OperationsNotes:   NewCategoryStore[domain.OperationsNoteDocument](buckets[domain.CategoryOperationsNote]),
	}
}

// Documents returns all documents in a category as a JSON-serializable
// slice. Used by the read-side API where the variant type is dynamic.
func (r *Repository) Documents(ctx context.Context, category domain.Category) (any, error) {
	switch category {
	case domain.CategoryModuleSpec:
		return r.ModuleSpecs.GetAll(ctx)
	case domain.CategoryProjectManagement:
		return r.ProjectManagement.GetAll(ctx)
	case domain.CategoryInterface:
		return r.Interfaces.GetAll(ctx)
	case domain.CategoryDataProduct:
		return r.DataProducts.GetAll(ctx)
	case domain.CategoryTestReport:
		return r.TestReports.GetAll(ctx)
	case domain.CategoryTechnicalNote:
		return r.TechnicalNotes.GetAll(ctx)
	case domain.CategoryOperationsNote:
		return r.OperationsNotes.GetAll(ctx)
	default:
		return nil, fmt.Errorf("unknown category: %s", category)
	}
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("Doc portal %s storage", strings.ToLower(name)),
	})
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) ||
		(err != nil && strings.Contains(err.Error(), "key not found"))
}
