package docstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps every collection in process memory.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]interface{}
	subs        map[*Subscription]memoryQuery
	now         func() time.Time
	newID       func() string
}

type memoryQuery struct {
	collection string
	filters    []Filter
}

// MemoryOption customizes a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock sets the time source used for ServerTimestamp.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) {
		m.now = now
	}
}

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(newID func() string) MemoryOption {
	return func(m *MemoryStore) {
		m.newID = newID
	}
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		collections: make(map[string]map[string]map[string]interface{}),
		subs:        make(map[*Subscription]memoryQuery),
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryStore) Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.newID()
	doc := make(map[string]interface{}, len(fields))
	now := m.now()
	for k, v := range fields {
		doc[k] = resolveValue(nil, v, now)
	}
	m.collection(collection)[id] = doc
	m.notify(collection)
	return id, nil
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.collection(collection)[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Data: copyMap(data)}, nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, updates []Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.collection(collection)[id]
	if !ok {
		return fmt.Errorf("update %s/%s: %w", collection, id, ErrNotFound)
	}
	m.apply(doc, updates, m.now())
	m.notify(collection)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.collection(collection)
	if _, ok := docs[id]; !ok {
		return nil
	}
	delete(docs, id)
	m.notify(collection)
	return nil
}

func (m *MemoryStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.matching(collection, filters), nil
}

func (m *MemoryStore) Subscribe(ctx context.Context, collection string, filters ...Filter) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sub *Subscription
	sub = newSubscription(ctx, func() {
		m.mu.Lock()
		delete(m.subs, sub)
		m.mu.Unlock()
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-sub.Done():
		return sub, nil
	default:
	}
	m.subs[sub] = memoryQuery{collection: collection, filters: filters}
	sub.deliver(Snapshot{Documents: m.matching(collection, filters), ReadAt: m.now()})
	return sub, nil
}

func (m *MemoryStore) Batch() Batch {
	return &memoryBatch{store: m}
}

// Close ends every open subscription.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	subs := make([]*Subscription, 0, len(m.subs))
	for s := range m.subs {
		subs = append(subs, s)
	}
	m.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
	return nil
}

// Len returns the number of documents in a collection.
func (m *MemoryStore) Len(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.collections[collection])
}

type memoryWrite struct {
	collection string
	id         string
	updates    []Update
}

type memoryBatch struct {
	store  *MemoryStore
	writes []memoryWrite
}

func (b *memoryBatch) Update(collection, id string, updates []Update) {
	b.writes = append(b.writes, memoryWrite{collection: collection, id: id, updates: updates})
}

func (b *memoryBatch) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := b.store
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range b.writes {
		if _, ok := m.collection(w.collection)[w.id]; !ok {
			return fmt.Errorf("batch update %s/%s: %w", w.collection, w.id, ErrNotFound)
		}
	}

	now := m.now()
	touched := make(map[string]bool)
	for _, w := range b.writes {
		m.apply(m.collections[w.collection][w.id], w.updates, now)
		touched[w.collection] = true
	}
	for collection := range touched {
		m.notify(collection)
	}
	return nil
}

func (m *MemoryStore) collection(name string) map[string]map[string]interface{} {
	docs, ok := m.collections[name]
	if !ok {
		docs = make(map[string]map[string]interface{})
		m.collections[name] = docs
	}
	return docs
}

func (m *MemoryStore) apply(doc map[string]interface{}, updates []Update, now time.Time) {
	for _, u := range updates {
		doc[u.Field] = resolveValue(doc[u.Field], u.Value, now)
	}
}

// matching returns copies of the documents that pass every filter, ordered by id.
func (m *MemoryStore) matching(collection string, filters []Filter) []Document {
	docs := m.collections[collection]
	out := make([]Document, 0, len(docs))
	for id, data := range docs {
		if matches(data, filters) {
			out = append(out, Document{ID: id, Data: copyMap(data)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MemoryStore) notify(collection string) {
	now := m.now()
	for sub, q := range m.subs {
		if q.collection != collection {
			continue
		}
		sub.deliver(Snapshot{Documents: m.matching(collection, q.filters), ReadAt: now})
	}
}

func matches(data map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		v, ok := data[f.Field]
		if !ok || !reflect.DeepEqual(v, f.Value) {
			return false
		}
	}
	return true
}

func resolveValue(current, v interface{}, now time.Time) interface{} {
	switch val := v.(type) {
	case serverTimestamp:
		return now
	case arrayUnion:
		existing, _ := current.([]interface{})
		merged := make([]interface{}, 0, len(existing)+len(val.values))
		merged = append(merged, existing...)
		for _, item := range val.values {
			if !containsValue(merged, item) {
				merged = append(merged, copyValue(item))
			}
		}
		return merged
	}
	return copyValue(v)
}

func containsValue(items []interface{}, v interface{}) bool {
	for _, item := range items {
		if reflect.DeepEqual(item, v) {
			return true
		}
	}
	return false
}

func copyMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return copyMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	}
	return v
}
