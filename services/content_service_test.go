package services

import (
	"context"
	"errors"
	"sort"
	"testing"

	"ripple_server/utils"
)

type contentFixture struct {
	store    *MemoryStore
	profiles *ProfileService
	content  *ContentService
	social   *SocialService
}

func newContentFixture(t *testing.T) *contentFixture {
	t.Helper()
	store := NewMemoryStore()
	identity := &IdentityService{Store: store}
	profiles := &ProfileService{Store: store, Identity: identity}
	f := &contentFixture{
		store:    store,
		profiles: profiles,
		content:  &ContentService{Store: store, Profiles: profiles},
		social:   &SocialService{Store: store},
	}
	mustCreateProfile(t, profiles, "did:plc:alice", "alice.test", "Alice")
	mustCreateProfile(t, profiles, "did:plc:bob", "bob.test", "Bob")
	return f
}

func TestCreatePostBumpsPostCount(t *testing.T) {
	ctx := context.Background()
	f := newContentFixture(t)

	uri, err := f.content.CreatePost(ctx, "did:plc:alice", "hello world", nil, nil)
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	if _, _, _, err := utils.ParseRecordURI(uri); err != nil {
		t.Fatalf("create returned a malformed URI: %q", uri)
	}

	profile, err := f.profiles.GetProfile(ctx, "did:plc:alice")
	if err != nil {
		t.Fatalf("get profile failed: %v", err)
	}
	if profile.PostCount != 1 {
		t.Errorf("expected postCount=1, got %d", profile.PostCount)
	}
}

func TestGetPostByURIAndByKey(t *testing.T) {
	ctx := context.Background()
	f := newContentFixture(t)

	uri, err := f.content.CreatePost(ctx, "did:plc:alice", "hello", nil, nil)
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	_, _, rkey, _ := utils.ParseRecordURI(uri)

	byURI, err := f.content.GetPost(ctx, uri, "")
	if err != nil {
		t.Fatalf("get by URI failed: %v", err)
	}
	byKey, err := f.content.GetPost(ctx, rkey, "did:plc:alice")
	if err != nil {
		t.Fatalf("get by rkey failed: %v", err)
	}
	if byURI.URI != byKey.URI {
		t.Errorf("URI and rkey reads disagree: %q vs %q", byURI.URI, byKey.URI)
	}
	if byURI.AuthorUsername != "alice" {
		t.Errorf("expected resolved author, got %q", byURI.AuthorUsername)
	}
}

func TestGetPostMalformedRef(t *testing.T) {
	f := newContentFixture(t)
	tests := []struct {
		name     string
		ref      string
		ownerDID string
	}{
		{"garbage URI", "at://nope", ""},
		{"bare rkey without owner", "3jui7kd54zh2y", ""},
		{"missing record", "at://did:plc:alice/social.ripple.feed.post/zzzzzzzzzzzzz", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.content.GetPost(context.Background(), tt.ref, tt.ownerDID); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestGlobalFeedNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newContentFixture(t)

	var uris []string
	for _, text := range []string{"one", "two", "three"} {
		uri, err := f.content.CreatePost(ctx, "did:plc:alice", text, nil, nil)
		if err != nil {
			t.Fatalf("create post failed: %v", err)
		}
		uris = append(uris, uri)
	}

	// Feed order is descending by record key.
	sort.Sort(sort.Reverse(sort.StringSlice(uris)))

	page, err := f.content.ListGlobalFeed(ctx, 10, "")
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if len(page.Posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(page.Posts))
	}
	for i, want := range uris {
		if page.Posts[i].URI != want {
			t.Errorf("position %d: expected %q, got %q", i, want, page.Posts[i].URI)
		}
	}
}

func TestListOwnerPostsExcludesReplies(t *testing.T) {
	ctx := context.Background()
	f := newContentFixture(t)

	rootURI, err := f.content.CreatePost(ctx, "did:plc:alice", "root", nil, nil)
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	if _, err := f.content.CreateComment(ctx, "did:plc:alice", "self reply", rootURI, rootURI); err != nil {
		t.Fatalf("create comment failed: %v", err)
	}

	page, err := f.content.ListOwnerPosts(ctx, "did:plc:alice", 10, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page.Posts) != 1 {
		t.Fatalf("expected only the top-level post, got %d", len(page.Posts))
	}
	if page.Posts[0].URI != rootURI {
		t.Errorf("wrong post listed: %q", page.Posts[0].URI)
	}
}

func TestCommentsCollapseToRoot(t *testing.T) {
	ctx := context.Background()
	f := newContentFixture(t)

	rootURI, err := f.content.CreatePost(ctx, "did:plc:alice", "root", nil, nil)
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	firstURI, err := f.content.CreateComment(ctx, "did:plc:bob", "first", rootURI, rootURI)
	if err != nil {
		t.Fatalf("first comment failed: %v", err)
	}
	// Replying to a reply threads under the same root.
	secondURI, err := f.content.CreateComment(ctx, "did:plc:alice", "second", firstURI, firstURI)
	if err != nil {
		t.Fatalf("nested comment failed: %v", err)
	}

	page, err := f.content.ListComments(ctx, rootURI, 10, "")
	if err != nil {
		t.Fatalf("list comments failed: %v", err)
	}
	if len(page.Posts) != 2 {
		t.Fatalf("expected both replies under the root, got %d", len(page.Posts))
	}
	for _, post := range page.Posts {
		if post.ReplyRoot != rootURI {
			t.Errorf("reply %q has root %q, expected %q", post.URI, post.ReplyRoot, rootURI)
		}
	}
	// Thread order is ascending by record key.
	var rkeys []string
	for _, post := range page.Posts {
		rkeys = append(rkeys, post.RKey)
	}
	if !sort.StringsAreSorted(rkeys) {
		t.Errorf("thread order not ascending: %v", rkeys)
	}
	_ = secondURI
}

func TestCreateCommentInvalidRoot(t *testing.T) {
	f := newContentFixture(t)
	if _, err := f.content.CreateComment(context.Background(), "did:plc:alice", "hi", "not-a-uri", "not-a-uri"); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}

func TestViewCountsComputedFromEdges(t *testing.T) {
	ctx := context.Background()
	f := newContentFixture(t)

	uri, err := f.content.CreatePost(ctx, "did:plc:alice", "popular", nil, nil)
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	if err := f.social.Like(ctx, uri, "did:plc:bob"); err != nil {
		t.Fatalf("like failed: %v", err)
	}
	if err := f.social.Like(ctx, uri, "did:plc:alice"); err != nil {
		t.Fatalf("like failed: %v", err)
	}
	if _, err := f.content.CreateComment(ctx, "did:plc:bob", "nice", uri, uri); err != nil {
		t.Fatalf("comment failed: %v", err)
	}

	view, err := f.content.GetPost(ctx, uri, "")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if view.LikeCount != 2 {
		t.Errorf("expected likeCount=2, got %d", view.LikeCount)
	}
	if view.CommentCount != 1 {
		t.Errorf("expected commentCount=1, got %d", view.CommentCount)
	}
}

func TestDeletePostCascades(t *testing.T) {
	ctx := context.Background()
	f := newContentFixture(t)

	uri, err := f.content.CreatePost(ctx, "did:plc:alice", "doomed", nil, nil)
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	var replies []string
	for i := 0; i < 3; i++ {
		reply, err := f.content.CreateComment(ctx, "did:plc:bob", "reply", uri, uri)
		if err != nil {
			t.Fatalf("comment failed: %v", err)
		}
		replies = append(replies, reply)
	}
	if err := f.social.Like(ctx, uri, "did:plc:bob"); err != nil {
		t.Fatalf("like failed: %v", err)
	}
	if err := f.social.Like(ctx, uri, "did:plc:alice"); err != nil {
		t.Fatalf("like failed: %v", err)
	}

	if err := f.content.DeletePost(ctx, uri, ""); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := f.content.GetPost(ctx, uri, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected post gone, got %v", err)
	}
	for _, reply := range replies {
		if _, err := f.content.GetPost(ctx, reply, ""); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected reply %q gone, got %v", reply, err)
		}
	}
	likers, err := f.social.ListLikers(ctx, uri, 10, "")
	if err != nil {
		t.Fatalf("list likers failed: %v", err)
	}
	if len(likers.DIDs) != 0 {
		t.Errorf("expected likes gone, got %v", likers.DIDs)
	}

	profile, err := f.profiles.GetProfile(ctx, "did:plc:alice")
	if err != nil {
		t.Fatalf("get profile failed: %v", err)
	}
	if profile.PostCount != 0 {
		t.Errorf("expected postCount back to 0, got %d", profile.PostCount)
	}
}

func TestDeleteCommentLeavesThread(t *testing.T) {
	ctx := context.Background()
	f := newContentFixture(t)

	rootURI, err := f.content.CreatePost(ctx, "did:plc:alice", "root", nil, nil)
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	keep, err := f.content.CreateComment(ctx, "did:plc:bob", "keep", rootURI, rootURI)
	if err != nil {
		t.Fatalf("comment failed: %v", err)
	}
	drop, err := f.content.CreateComment(ctx, "did:plc:bob", "drop", rootURI, rootURI)
	if err != nil {
		t.Fatalf("comment failed: %v", err)
	}

	if err := f.content.DeleteComment(ctx, drop, ""); err != nil {
		t.Fatalf("delete comment failed: %v", err)
	}

	page, err := f.content.ListComments(ctx, rootURI, 10, "")
	if err != nil {
		t.Fatalf("list comments failed: %v", err)
	}
	if len(page.Posts) != 1 || page.Posts[0].URI != keep {
		t.Fatalf("expected only the surviving reply, got %+v", page.Posts)
	}
	if _, err := f.content.GetPost(ctx, rootURI, ""); err != nil {
		t.Errorf("root post must survive: %v", err)
	}
}

func TestDeletedAuthorStillReadable(t *testing.T) {
	ctx := context.Background()
	f := newContentFixture(t)

	uri, err := f.content.CreatePost(ctx, "did:plc:alice", "posted before leaving", nil, nil)
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	if err := f.profiles.SoftDeleteProfile(ctx, "did:plc:alice", "deleted-12345678"); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	view, err := f.content.GetPost(ctx, uri, "")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if view.AuthorUsername != "deleted-12345678" {
		t.Errorf("expected anonymized author, got %q", view.AuthorUsername)
	}
}
