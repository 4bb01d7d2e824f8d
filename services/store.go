package services

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Key addresses one item in the table.
type Key struct {
	PK string
	SK string
}

// Query describes a key-condition read against the table or GSI1.
type Query struct {
	// Index selects a secondary index; empty means the base table.
	Index string

	// Partition is the partition-key value (PK, or gsi1pk on an index).
	Partition string

	// SortPrefix optionally restricts the sort key with begins_with.
	SortPrefix string

	// Limit caps the page size; 0 means no limit.
	Limit int32

	// Descending reverses the sort-key order (newest first for time keys).
	Descending bool

	// StartKey resumes after a previously returned last key (decoded cursor).
	StartKey map[string]string

	// Absent lists attributes that must not exist on returned items.
	Absent []string
}

// ScanQuery describes a substring-filtered scan, used for profile search.
type ScanQuery struct {
	// SortKeyPrefix restricts the scan to items whose SK begins with it.
	SortKeyPrefix string

	// Fields are checked with contains(field, Needle); a match on any field
	// keeps the item.
	Fields []string

	// Needle is the (already lowercased) substring to match.
	Needle string

	Limit    int32
	StartKey map[string]string
}

// Store is the capability interface over the shared key-value table. The
// production implementation is DynamoStore; MemoryStore provides the same
// semantics in process for tests. The implementation is chosen by dependency
// injection at startup, never by environment sniffing inside services.
type Store interface {
	// Put writes an item unconditionally.
	Put(ctx context.Context, item map[string]types.AttributeValue) error

	// PutIfAbsent writes an item only if no item with the same key exists,
	// returning ErrItemExists when the conditional write loses.
	PutIfAbsent(ctx context.Context, item map[string]types.AttributeValue) error

	// Get returns the item for key, or nil when absent.
	Get(ctx context.Context, key Key) (map[string]types.AttributeValue, error)

	// Update applies a partial update (SET set..., REMOVE remove...) and
	// returns the new item image.
	Update(ctx context.Context, key Key, set map[string]types.AttributeValue, remove []string) (map[string]types.AttributeValue, error)

	// Add atomically adds delta to a numeric attribute.
	Add(ctx context.Context, key Key, attr string, delta int) error

	// DeleteIfPresent deletes the item and reports whether it existed.
	DeleteIfPresent(ctx context.Context, key Key) (bool, error)

	// Query runs a key-condition read and returns the page plus the last
	// evaluated key ("" cursor when the result set is exhausted).
	Query(ctx context.Context, q Query) ([]map[string]types.AttributeValue, map[string]string, error)

	// Count returns the number of items matching q, ignoring q.Limit.
	Count(ctx context.Context, q Query) (int, error)

	// Scan runs a substring-filtered scan page.
	Scan(ctx context.Context, q ScanQuery) ([]map[string]types.AttributeValue, map[string]string, error)

	// BatchDelete removes the given keys in bounded batches.
	BatchDelete(ctx context.Context, keys []Key) error
}

// attrS extracts a string attribute from an item, or "".
func attrS(item map[string]types.AttributeValue, name string) string {
	if attr, ok := item[name]; ok {
		if v, ok := attr.(*types.AttributeValueMemberS); ok {
			return v.Value
		}
	}
	return ""
}
