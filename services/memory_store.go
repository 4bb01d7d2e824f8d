package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"ripple_server/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MemoryStore is the in-process Store used by tests. It mirrors the
// DynamoStore semantics (conditional writes, atomic counters, key-ordered
// pagination) behind a mutex.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[Key]map[string]types.AttributeValue
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[Key]map[string]types.AttributeValue)}
}

func itemKey(item map[string]types.AttributeValue) Key {
	return Key{PK: attrS(item, "PK"), SK: attrS(item, "SK")}
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	dup := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		dup[k] = v
	}
	return dup
}

// Put writes an item unconditionally.
func (ms *MemoryStore) Put(ctx context.Context, item map[string]types.AttributeValue) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.items[itemKey(item)] = copyItem(item)
	return nil
}

// PutIfAbsent writes an item only if the key is not taken.
func (ms *MemoryStore) PutIfAbsent(ctx context.Context, item map[string]types.AttributeValue) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	key := itemKey(item)
	if _, ok := ms.items[key]; ok {
		return ErrItemExists
	}
	ms.items[key] = copyItem(item)
	return nil
}

// Get returns the stored item, or nil when absent.
func (ms *MemoryStore) Get(ctx context.Context, key Key) (map[string]types.AttributeValue, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	item, ok := ms.items[key]
	if !ok {
		return nil, nil
	}
	return copyItem(item), nil
}

// Update applies SET/REMOVE clauses, creating the item if needed, and returns
// the new image.
func (ms *MemoryStore) Update(ctx context.Context, key Key, set map[string]types.AttributeValue, remove []string) (map[string]types.AttributeValue, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, ok := ms.items[key]
	if !ok {
		item = map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: key.PK},
			"SK": &types.AttributeValueMemberS{Value: key.SK},
		}
	}
	for attr, value := range set {
		item[attr] = value
	}
	for _, attr := range remove {
		delete(item, attr)
	}
	ms.items[key] = item
	return copyItem(item), nil
}

// Add atomically adds delta to a numeric attribute, creating the item or the
// attribute as needed.
func (ms *MemoryStore) Add(ctx context.Context, key Key, attr string, delta int) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, ok := ms.items[key]
	if !ok {
		item = map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: key.PK},
			"SK": &types.AttributeValueMemberS{Value: key.SK},
		}
		ms.items[key] = item
	}
	current := 0
	if n, ok := item[attr].(*types.AttributeValueMemberN); ok {
		current, _ = strconv.Atoi(n.Value)
	}
	item[attr] = &types.AttributeValueMemberN{Value: strconv.Itoa(current + delta)}
	return nil
}

// DeleteIfPresent removes the item and reports whether it existed.
func (ms *MemoryStore) DeleteIfPresent(ctx context.Context, key Key) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.items[key]; !ok {
		return false, nil
	}
	delete(ms.items, key)
	return true, nil
}

// Query mirrors the DynamoDB key-condition read: partition equality, optional
// begins_with on the sort key, sort-key ordering, exclusive start key and a
// page-limit with last evaluated key.
func (ms *MemoryStore) Query(ctx context.Context, q Query) ([]map[string]types.AttributeValue, map[string]string, error) {
	pkName, skName := "PK", "SK"
	if q.Index != "" {
		pkName, skName = models.GSI1PK, models.GSI1SK
	}

	ms.mu.RLock()
	var matches []map[string]types.AttributeValue
	for _, item := range ms.items {
		if attrS(item, pkName) != q.Partition {
			continue
		}
		if q.Index != "" && item[skName] == nil {
			continue
		}
		if q.SortPrefix != "" && !strings.HasPrefix(attrS(item, skName), q.SortPrefix) {
			continue
		}
		skip := false
		for _, absent := range q.Absent {
			if _, ok := item[absent]; ok {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		matches = append(matches, copyItem(item))
	}
	ms.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		a, b := attrS(matches[i], skName), attrS(matches[j], skName)
		if a != b {
			return a < b
		}
		return attrS(matches[i], "SK") < attrS(matches[j], "SK")
	})
	if q.Descending {
		for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
			matches[i], matches[j] = matches[j], matches[i]
		}
	}

	matches = startAfter(matches, q.StartKey)

	if q.Limit > 0 && int32(len(matches)) > q.Limit {
		page := matches[:q.Limit]
		last := page[len(page)-1]
		lastKey := map[string]string{
			"PK": attrS(last, "PK"),
			"SK": attrS(last, "SK"),
		}
		if q.Index != "" {
			lastKey[models.GSI1PK] = attrS(last, models.GSI1PK)
			lastKey[models.GSI1SK] = attrS(last, models.GSI1SK)
		}
		return page, lastKey, nil
	}
	return matches, nil, nil
}

// Count returns the number of items matching q, ignoring limit and cursor.
func (ms *MemoryStore) Count(ctx context.Context, q Query) (int, error) {
	q.Limit = 0
	q.StartKey = nil
	items, _, err := ms.Query(ctx, q)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// Scan mirrors the substring-filtered scan used by profile search.
func (ms *MemoryStore) Scan(ctx context.Context, q ScanQuery) ([]map[string]types.AttributeValue, map[string]string, error) {
	ms.mu.RLock()
	var matches []map[string]types.AttributeValue
	for _, item := range ms.items {
		if !strings.HasPrefix(attrS(item, "SK"), q.SortKeyPrefix) {
			continue
		}
		hit := false
		for _, field := range q.Fields {
			if strings.Contains(attrS(item, field), q.Needle) {
				hit = true
				break
			}
		}
		if hit {
			matches = append(matches, copyItem(item))
		}
	}
	ms.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if a, b := attrS(matches[i], "PK"), attrS(matches[j], "PK"); a != b {
			return a < b
		}
		return attrS(matches[i], "SK") < attrS(matches[j], "SK")
	})

	matches = startAfter(matches, q.StartKey)

	if q.Limit > 0 && int32(len(matches)) > q.Limit {
		page := matches[:q.Limit]
		last := page[len(page)-1]
		return page, map[string]string{
			"PK": attrS(last, "PK"),
			"SK": attrS(last, "SK"),
		}, nil
	}
	return matches, nil, nil
}

// BatchDelete removes the given keys.
func (ms *MemoryStore) BatchDelete(ctx context.Context, keys []Key) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for _, key := range keys {
		delete(ms.items, key)
	}
	return nil
}

// startAfter drops everything up to and including the start-key item.
func startAfter(items []map[string]types.AttributeValue, startKey map[string]string) []map[string]types.AttributeValue {
	if len(startKey) == 0 {
		return items
	}
	for i, item := range items {
		if attrS(item, "PK") == startKey["PK"] && attrS(item, "SK") == startKey["SK"] {
			return items[i+1:]
		}
	}
	return items
}
