package services

import (
	"context"
	"fmt"
	"testing"

	"ripple_server/models"
	"ripple_server/utils"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func strAttr(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func testItem(pk, sk string, extra map[string]string) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK": strAttr(pk),
		"SK": strAttr(sk),
	}
	for k, v := range extra {
		item[k] = strAttr(v)
	}
	return item
}

func TestPutIfAbsentConflict(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := testItem("USER#did:plc:a", "USER#did:plc:a", map[string]string{"handle": "alice.test"})
	if err := store.PutIfAbsent(ctx, first); err != nil {
		t.Fatalf("first write failed: %v", err)
	}

	second := testItem("USER#did:plc:a", "USER#did:plc:a", map[string]string{"handle": "mallory.test"})
	if err := store.PutIfAbsent(ctx, second); err != ErrItemExists {
		t.Fatalf("expected ErrItemExists, got %v", err)
	}

	// The losing write must not clobber the original.
	item, err := store.Get(ctx, Key{PK: "USER#did:plc:a", SK: "USER#did:plc:a"})
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got := attrS(item, "handle"); got != "alice.test" {
		t.Errorf("expected original handle to survive, got %q", got)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := NewMemoryStore()
	item, err := store.Get(context.Background(), Key{PK: "USER#nope", SK: "USER#nope"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item != nil {
		t.Errorf("expected nil for missing item, got %v", item)
	}
}

func TestDeleteIfPresent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := Key{PK: "LIKE#at://did:plc:a/social.ripple.feed.post/abc", SK: "USER#did:plc:b"}

	existed, err := store.DeleteIfPresent(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if existed {
		t.Error("expected existed=false for missing item")
	}

	if err := store.Put(ctx, testItem(key.PK, key.SK, nil)); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	existed, err = store.DeleteIfPresent(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !existed {
		t.Error("expected existed=true after put")
	}
}

func TestAddCountsAtomically(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := Key{PK: "USER#did:plc:a", SK: "USER#did:plc:a"}

	for i := 0; i < 3; i++ {
		if err := store.Add(ctx, key, "followerCount", 1); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}
	if err := store.Add(ctx, key, "followerCount", -1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	item, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	n, ok := item["followerCount"].(*types.AttributeValueMemberN)
	if !ok {
		t.Fatalf("expected numeric attribute, got %T", item["followerCount"])
	}
	if n.Value != "2" {
		t.Errorf("expected followerCount=2, got %s", n.Value)
	}
}

func TestQueryOrderingAndPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, rkey := range []string{"aaa", "ccc", "bbb"} {
		item := testItem("REPO#did:plc:a", models.PrefixRecord+models.CollectionPost+"#"+rkey, map[string]string{"rkey": rkey})
		if err := store.Put(ctx, item); err != nil {
			t.Fatalf("put failed: %v", err)
		}
	}
	// An unrelated record under the same partition must not match the prefix.
	if err := store.Put(ctx, testItem("REPO#did:plc:a", "REC#other.collection#zzz", nil)); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	items, lastKey, err := store.Query(ctx, Query{
		Partition:  "REPO#did:plc:a",
		SortPrefix: models.PrefixRecord + models.CollectionPost + "#",
		Descending: true,
	})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if lastKey != nil {
		t.Errorf("expected no last key without a limit, got %v", lastKey)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, want := range []string{"ccc", "bbb", "aaa"} {
		if got := attrS(items[i], "rkey"); got != want {
			t.Errorf("position %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestQueryPaginationDrainsAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	total := 7
	for i := 0; i < total; i++ {
		sk := fmt.Sprintf("FOLLOW#did:plc:u%02d", i)
		if err := store.Put(ctx, testItem("USER#did:plc:a", sk, nil)); err != nil {
			t.Fatalf("put failed: %v", err)
		}
	}

	var seen []string
	cursor := ""
	for pages := 0; ; pages++ {
		if pages > total {
			t.Fatal("pagination did not terminate")
		}
		items, lastKey, err := store.Query(ctx, Query{
			Partition:  "USER#did:plc:a",
			SortPrefix: models.PrefixFollow,
			Limit:      3,
			StartKey:   utils.DecodeCursor(cursor),
		})
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		for _, item := range items {
			seen = append(seen, attrS(item, "SK"))
		}
		if lastKey == nil {
			break
		}
		cursor = utils.EncodeCursor(lastKey)
	}

	if len(seen) != total {
		t.Fatalf("expected %d items across pages, got %d", total, len(seen))
	}
	for i := 1; i < len(seen); i++ {
		if seen[i-1] >= seen[i] {
			t.Errorf("pages out of order: %q before %q", seen[i-1], seen[i])
		}
	}
}

func TestQueryAbsentFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Put(ctx, testItem("REPO#did:plc:a", "REC#social.ripple.feed.post#aaa", nil)); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	reply := testItem("REPO#did:plc:a", "REC#social.ripple.feed.post#bbb", map[string]string{
		"replyRoot": "at://did:plc:x/social.ripple.feed.post/root",
	})
	if err := store.Put(ctx, reply); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	items, _, err := store.Query(ctx, Query{
		Partition: "REPO#did:plc:a",
		Absent:    []string{"replyRoot"},
	})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 top-level item, got %d", len(items))
	}
	if got := attrS(items[0], "SK"); got != "REC#social.ripple.feed.post#aaa" {
		t.Errorf("wrong item survived the filter: %q", got)
	}
}

func TestScanSubstringMatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	profiles := []struct {
		did      string
		username string
	}{
		{"did:plc:a", "alice"},
		{"did:plc:b", "malice"},
		{"did:plc:c", "bob"},
	}
	for _, p := range profiles {
		item := testItem(models.PrefixUser+p.did, models.PrefixUser+p.did, map[string]string{
			"searchUsername": p.username,
		})
		if err := store.Put(ctx, item); err != nil {
			t.Fatalf("put failed: %v", err)
		}
	}

	items, _, err := store.Scan(ctx, ScanQuery{
		SortKeyPrefix: models.PrefixUser,
		Fields:        []string{"searchUsername"},
		Needle:        "lice",
	})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(items))
	}
}
