package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"ripple_server/models"
	"ripple_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ContentService manages posts and reply-posts as AT-protocol records in per-
// owner repositories, plus the global feed and reply-thread projections.
type ContentService struct {
	Store    Store
	Profiles *ProfileService
}

// PostPage is one page of post views.
type PostPage struct {
	Posts  []models.PostView `json:"posts"`
	Cursor string            `json:"cursor,omitempty"`
}

func postKey(ownerDID, rkey string) Key {
	return Key{
		PK: models.PrefixRepo + ownerDID,
		SK: models.PrefixRecord + models.CollectionPost + "#" + rkey,
	}
}

// resolveRef accepts either a full record URI or a bare rkey plus owner DID.
func resolveRef(uriOrKey, ownerDID string) (did, rkey string, err error) {
	if strings.HasPrefix(uriOrKey, "at://") {
		did, _, rkey, err = utils.ParseRecordURI(uriOrKey)
		return did, rkey, err
	}
	if ownerDID == "" || uriOrKey == "" {
		return "", "", utils.ErrInvalidURI
	}
	return ownerDID, uriOrKey, nil
}

// CreatePost creates a top-level post in the owner's repository and projects
// it onto the global feed. Returns the record's durable URI.
func (cs *ContentService) CreatePost(ctx context.Context, ownerDID, text string, embed *models.PostEmbed, facets []models.Facet) (string, error) {
	if ownerDID == "" {
		return "", ErrInvalidReference
	}
	rkey := utils.GenerateRecordKey()
	uri := utils.BuildRecordURI(ownerDID, models.CollectionPost, rkey)
	key := postKey(ownerDID, rkey)

	post := models.Post{
		PK:         key.PK,
		SK:         key.SK,
		GSI1PK:     models.FeedPartition,
		GSI1SK:     rkey,
		URI:        uri,
		OwnerDID:   ownerDID,
		Collection: models.CollectionPost,
		RKey:       rkey,
		Text:       text,
		Embed:      embed,
		Facets:     facets,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	item, err := attributevalue.MarshalMap(post)
	if err != nil {
		return "", fmt.Errorf("failed to marshal post: %w", err)
	}
	if err := cs.Store.Put(ctx, item); err != nil {
		return "", err
	}
	if err := cs.Store.Add(ctx, profileKey(ownerDID), "postCount", 1); err != nil {
		return "", err
	}

	log.Printf("✅ Post created: %s", uri)
	return uri, nil
}

// CreateComment creates a reply-post. The thread model is two levels deep:
// when the parent is itself a reply, the new record collapses onto the
// parent's root so every reply in a thread shares one root URI.
func (cs *ContentService) CreateComment(ctx context.Context, ownerDID, text, rootURI, parentURI string) (string, error) {
	if ownerDID == "" {
		return "", ErrInvalidReference
	}
	if _, _, _, err := utils.ParseRecordURI(rootURI); err != nil {
		return "", ErrInvalidReference
	}
	parentDID, parentRKey, err := resolveRef(parentURI, "")
	if err != nil {
		return "", ErrInvalidReference
	}

	if parentItem, err := cs.Store.Get(ctx, postKey(parentDID, parentRKey)); err != nil {
		return "", err
	} else if parentItem != nil {
		if parentRoot := attrS(parentItem, "replyRoot"); parentRoot != "" {
			rootURI = parentRoot
		}
	}

	rkey := utils.GenerateRecordKey()
	uri := utils.BuildRecordURI(ownerDID, models.CollectionPost, rkey)
	key := postKey(ownerDID, rkey)

	comment := models.Post{
		PK:          key.PK,
		SK:          key.SK,
		GSI1PK:      models.PrefixPost + rootURI,
		GSI1SK:      rkey,
		URI:         uri,
		OwnerDID:    ownerDID,
		Collection:  models.CollectionPost,
		RKey:        rkey,
		Text:        text,
		ReplyRoot:   rootURI,
		ReplyParent: parentURI,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	item, err := attributevalue.MarshalMap(comment)
	if err != nil {
		return "", fmt.Errorf("failed to marshal comment: %w", err)
	}
	if err := cs.Store.Put(ctx, item); err != nil {
		return "", err
	}
	return uri, nil
}

// GetPost retrieves a single post view. Malformed references behave as not
// found rather than raising.
func (cs *ContentService) GetPost(ctx context.Context, uriOrKey, ownerDID string) (*models.PostView, error) {
	did, rkey, err := resolveRef(uriOrKey, ownerDID)
	if err != nil {
		return nil, ErrNotFound
	}
	item, err := cs.Store.Get(ctx, postKey(did, rkey))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	var post models.Post
	if err := attributevalue.UnmarshalMap(item, &post); err != nil {
		return nil, fmt.Errorf("failed to unmarshal post: %w", err)
	}
	view, err := cs.buildView(ctx, &post, map[string]*models.Profile{})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ListOwnerPosts lists an owner's top-level posts, newest first.
func (cs *ContentService) ListOwnerPosts(ctx context.Context, ownerDID string, limit int32, cursor string) (*PostPage, error) {
	items, lastKey, err := cs.Store.Query(ctx, Query{
		Partition:  models.PrefixRepo + ownerDID,
		SortPrefix: models.PrefixRecord + models.CollectionPost + "#",
		Limit:      limit,
		Descending: true,
		StartKey:   utils.DecodeCursor(cursor),
		Absent:     []string{"replyRoot"},
	})
	if err != nil {
		return nil, err
	}
	return cs.buildPage(ctx, items, lastKey)
}

// ListGlobalFeed lists all top-level posts across repositories, newest first.
func (cs *ContentService) ListGlobalFeed(ctx context.Context, limit int32, cursor string) (*PostPage, error) {
	items, lastKey, err := cs.Store.Query(ctx, Query{
		Index:      models.GSI1,
		Partition:  models.FeedPartition,
		Limit:      limit,
		Descending: true,
		StartKey:   utils.DecodeCursor(cursor),
	})
	if err != nil {
		return nil, err
	}
	return cs.buildPage(ctx, items, lastKey)
}

// ListComments lists the replies under a root post in thread order.
func (cs *ContentService) ListComments(ctx context.Context, rootURI string, limit int32, cursor string) (*PostPage, error) {
	if _, _, _, err := utils.ParseRecordURI(rootURI); err != nil {
		return nil, ErrNotFound
	}
	items, lastKey, err := cs.Store.Query(ctx, Query{
		Index:     models.GSI1,
		Partition: models.PrefixPost + rootURI,
		Limit:     limit,
		StartKey:  utils.DecodeCursor(cursor),
	})
	if err != nil {
		return nil, err
	}
	return cs.buildPage(ctx, items, lastKey)
}

// DeletePost hard-deletes a post together with every reply in its thread and
// every like on it, in bounded delete batches.
func (cs *ContentService) DeletePost(ctx context.Context, uriOrKey, ownerDID string) error {
	did, rkey, err := resolveRef(uriOrKey, ownerDID)
	if err != nil {
		return ErrNotFound
	}
	key := postKey(did, rkey)
	item, err := cs.Store.Get(ctx, key)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	uri := attrS(item, "uri")

	keys := []Key{key}

	// Every reply whose root is this post.
	replies, err := cs.queryAll(ctx, Query{Index: models.GSI1, Partition: models.PrefixPost + uri})
	if err != nil {
		return err
	}
	for _, reply := range replies {
		keys = append(keys, itemKey(reply))
	}

	// Every like on this post.
	likes, err := cs.queryAll(ctx, Query{Partition: models.PrefixLike + uri})
	if err != nil {
		return err
	}
	for _, like := range likes {
		keys = append(keys, itemKey(like))
	}

	if err := cs.Store.BatchDelete(ctx, keys); err != nil {
		return err
	}
	if err := cs.Store.Add(ctx, profileKey(did), "postCount", -1); err != nil {
		return err
	}

	log.Printf("🗑️ Post deleted: %s (%d replies, %d likes)", uri, len(replies), len(likes))
	return nil
}

// DeleteComment hard-deletes a single reply-post and its likes.
func (cs *ContentService) DeleteComment(ctx context.Context, uriOrKey, ownerDID string) error {
	did, rkey, err := resolveRef(uriOrKey, ownerDID)
	if err != nil {
		return ErrNotFound
	}
	key := postKey(did, rkey)
	item, err := cs.Store.Get(ctx, key)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	uri := attrS(item, "uri")

	keys := []Key{key}
	likes, err := cs.queryAll(ctx, Query{Partition: models.PrefixLike + uri})
	if err != nil {
		return err
	}
	for _, like := range likes {
		keys = append(keys, itemKey(like))
	}
	return cs.Store.BatchDelete(ctx, keys)
}

// queryAll drains a query across result pages.
func (cs *ContentService) queryAll(ctx context.Context, q Query) ([]map[string]types.AttributeValue, error) {
	var all []map[string]types.AttributeValue
	for {
		items, lastKey, err := cs.Store.Query(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if lastKey == nil {
			return all, nil
		}
		q.StartKey = lastKey
	}
}

func (cs *ContentService) buildPage(ctx context.Context, items []map[string]types.AttributeValue, lastKey map[string]string) (*PostPage, error) {
	page := &PostPage{Cursor: utils.EncodeCursor(lastKey)}
	authors := map[string]*models.Profile{}
	for _, item := range items {
		var post models.Post
		if err := attributevalue.UnmarshalMap(item, &post); err != nil {
			continue
		}
		view, err := cs.buildView(ctx, &post, authors)
		if err != nil {
			return nil, err
		}
		page.Posts = append(page.Posts, *view)
	}
	return page, nil
}

// buildView assembles the read model: author identity is resolved from the
// current profile and the counts are computed from related items, so the view
// never trusts a denormalized snapshot or a drifting stored counter.
func (cs *ContentService) buildView(ctx context.Context, post *models.Post, authors map[string]*models.Profile) (*models.PostView, error) {
	author, cached := authors[post.OwnerDID]
	if !cached {
		profile, err := cs.Profiles.GetProfile(ctx, post.OwnerDID)
		if err != nil && err != ErrNotFound {
			return nil, err
		}
		author = profile
		authors[post.OwnerDID] = author
	}

	likeCount, err := cs.Store.Count(ctx, Query{Partition: models.PrefixLike + post.URI})
	if err != nil {
		return nil, err
	}
	commentCount, err := cs.Store.Count(ctx, Query{Index: models.GSI1, Partition: models.PrefixPost + post.URI})
	if err != nil {
		return nil, err
	}

	view := &models.PostView{
		URI:          post.URI,
		OwnerDID:     post.OwnerDID,
		RKey:         post.RKey,
		Text:         post.Text,
		Embed:        post.Embed,
		Facets:       post.Facets,
		ReplyRoot:    post.ReplyRoot,
		ReplyParent:  post.ReplyParent,
		LikeCount:    likeCount,
		CommentCount: commentCount,
		CreatedAt:    post.CreatedAt,
	}
	if author != nil {
		view.AuthorUsername = author.Username
		view.AuthorDisplayName = author.DisplayName
	}
	return view, nil
}
