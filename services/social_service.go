package services

import (
	"context"
	"log"
	"strings"
	"time"

	"ripple_server/models"
	"ripple_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

// SocialService manages like and follow edges. Both edge kinds are idempotent:
// a duplicate write loses the conditional create and becomes a silent no-op,
// and only a write that actually created or removed an edge touches the
// stored follower counters.
type SocialService struct {
	Store Store
}

// UserPage is one page of user DIDs (likers, followers or following).
type UserPage struct {
	DIDs   []string `json:"dids"`
	Cursor string   `json:"cursor,omitempty"`
}

func likeKey(postURI, userDID string) Key {
	return Key{PK: models.PrefixLike + postURI, SK: models.PrefixUser + userDID}
}

func followKey(followerDID, followingDID string) Key {
	return Key{PK: models.PrefixUser + followerDID, SK: models.PrefixFollow + followingDID}
}

// Like records a like edge. Liking an already-liked post is a no-op.
func (ss *SocialService) Like(ctx context.Context, postURI, userDID string) error {
	if postURI == "" || userDID == "" {
		return ErrInvalidReference
	}
	key := likeKey(postURI, userDID)
	like := models.Like{
		PK:        key.PK,
		SK:        key.SK,
		PostURI:   postURI,
		UserDID:   userDID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	item, err := attributevalue.MarshalMap(like)
	if err != nil {
		return err
	}
	if err := ss.Store.PutIfAbsent(ctx, item); err != nil {
		if err == ErrItemExists {
			return nil
		}
		return err
	}
	return nil
}

// Unlike removes a like edge. Removing a non-existent edge is a no-op.
func (ss *SocialService) Unlike(ctx context.Context, postURI, userDID string) error {
	_, err := ss.Store.DeleteIfPresent(ctx, likeKey(postURI, userDID))
	return err
}

// IsLiked reports whether the user has liked the post.
func (ss *SocialService) IsLiked(ctx context.Context, postURI, userDID string) (bool, error) {
	item, err := ss.Store.Get(ctx, likeKey(postURI, userDID))
	if err != nil {
		return false, err
	}
	return item != nil, nil
}

// ListLikers pages through the users who liked a post.
func (ss *SocialService) ListLikers(ctx context.Context, postURI string, limit int32, cursor string) (*UserPage, error) {
	items, lastKey, err := ss.Store.Query(ctx, Query{
		Partition:  models.PrefixLike + postURI,
		SortPrefix: models.PrefixUser,
		Limit:      limit,
		StartKey:   utils.DecodeCursor(cursor),
	})
	if err != nil {
		return nil, err
	}
	page := &UserPage{Cursor: utils.EncodeCursor(lastKey)}
	for _, item := range items {
		page.DIDs = append(page.DIDs, attrS(item, "userDid"))
	}
	return page, nil
}

// Follow records a follow edge and bumps both follower counters. A duplicate
// follow is absorbed without re-applying the counter increments.
func (ss *SocialService) Follow(ctx context.Context, followerDID, followingDID string) error {
	if followerDID == "" || followingDID == "" || followerDID == followingDID {
		return ErrInvalidReference
	}
	key := followKey(followerDID, followingDID)
	follow := models.Follow{
		PK:           key.PK,
		SK:           key.SK,
		GSI1PK:       models.PrefixFollow + followingDID,
		GSI1SK:       models.PrefixUser + followerDID,
		FollowerDID:  followerDID,
		FollowingDID: followingDID,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	item, err := attributevalue.MarshalMap(follow)
	if err != nil {
		return err
	}
	if err := ss.Store.PutIfAbsent(ctx, item); err != nil {
		if err == ErrItemExists {
			return nil
		}
		return err
	}

	// The edge write won; apply the counters exactly once.
	if err := ss.Store.Add(ctx, profileKey(followerDID), "followingCount", 1); err != nil {
		return err
	}
	if err := ss.Store.Add(ctx, profileKey(followingDID), "followerCount", 1); err != nil {
		return err
	}
	log.Printf("✅ Follow created: %s -> %s", followerDID, followingDID)
	return nil
}

// Unfollow removes a follow edge. When no edge exists nothing is decremented
// and the call still succeeds.
func (ss *SocialService) Unfollow(ctx context.Context, followerDID, followingDID string) error {
	existed, err := ss.Store.DeleteIfPresent(ctx, followKey(followerDID, followingDID))
	if err != nil {
		return err
	}
	if !existed {
		return nil
	}
	if err := ss.Store.Add(ctx, profileKey(followerDID), "followingCount", -1); err != nil {
		return err
	}
	return ss.Store.Add(ctx, profileKey(followingDID), "followerCount", -1)
}

// IsFollowing reports whether follower follows following.
func (ss *SocialService) IsFollowing(ctx context.Context, followerDID, followingDID string) (bool, error) {
	item, err := ss.Store.Get(ctx, followKey(followerDID, followingDID))
	if err != nil {
		return false, err
	}
	return item != nil, nil
}

// ListFollowers pages through the users following userDID, via the reverse
// projection on GSI1.
func (ss *SocialService) ListFollowers(ctx context.Context, userDID string, limit int32, cursor string) (*UserPage, error) {
	items, lastKey, err := ss.Store.Query(ctx, Query{
		Index:     models.GSI1,
		Partition: models.PrefixFollow + userDID,
		Limit:     limit,
		StartKey:  utils.DecodeCursor(cursor),
	})
	if err != nil {
		return nil, err
	}
	page := &UserPage{Cursor: utils.EncodeCursor(lastKey)}
	for _, item := range items {
		page.DIDs = append(page.DIDs, attrS(item, "followerDid"))
	}
	return page, nil
}

// ListFollowing pages through the users userDID follows.
func (ss *SocialService) ListFollowing(ctx context.Context, userDID string, limit int32, cursor string) (*UserPage, error) {
	items, lastKey, err := ss.Store.Query(ctx, Query{
		Partition:  models.PrefixUser + userDID,
		SortPrefix: models.PrefixFollow,
		Limit:      limit,
		StartKey:   utils.DecodeCursor(cursor),
	})
	if err != nil {
		return nil, err
	}
	page := &UserPage{Cursor: utils.EncodeCursor(lastKey)}
	for _, item := range items {
		did := attrS(item, "followingDid")
		if did == "" {
			did = strings.TrimPrefix(attrS(item, "SK"), models.PrefixFollow)
		}
		page.DIDs = append(page.DIDs, did)
	}
	return page, nil
}
