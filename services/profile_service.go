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

// ProfileService manages the primary profile entity and its derived search
// projections.
type ProfileService struct {
	Store    Store
	Identity *IdentityService
}

// ProfilePage is one page of search results.
type ProfilePage struct {
	Profiles []models.Profile `json:"profiles"`
	Cursor   string           `json:"cursor,omitempty"`
}

func profileKey(did string) Key {
	return Key{PK: models.PrefixUser + did, SK: models.PrefixUser + did}
}

// usernameFromHandle strips the domain suffix from a handle; search only ever
// matches against the local part.
func usernameFromHandle(handle string) string {
	if i := strings.IndexByte(handle, '.'); i > 0 {
		return handle[:i]
	}
	return handle
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateProfile registers a new profile for a DID. A second create for the
// same DID fails with ErrAlreadyRegistered.
func (ps *ProfileService) CreateProfile(ctx context.Context, profile models.Profile) (*models.Profile, error) {
	if profile.DID == "" {
		return nil, ErrInvalidReference
	}
	now := time.Now().UTC().Format(time.RFC3339)

	key := profileKey(profile.DID)
	profile.PK = key.PK
	profile.SK = key.SK
	profile.Username = usernameFromHandle(profile.Handle)
	profile.AccountStatus = models.AccountStatusActive
	profile.SearchUsername = strings.ToLower(profile.Username)
	profile.SearchDisplayName = strings.ToLower(profile.DisplayName)
	if profile.Email != "" {
		profile.NormalizedEmail = normalizeEmail(profile.Email)
		profile.SearchEmail = profile.NormalizedEmail
	}
	profile.CreatedAt = now
	profile.UpdatedAt = now

	item, err := attributevalue.MarshalMap(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := ps.Store.PutIfAbsent(ctx, item); err != nil {
		if err == ErrItemExists {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}

	log.Printf("✅ Profile created for %s (%s)", profile.DID, profile.Handle)
	return &profile, nil
}

// GetProfile retrieves a profile by DID, returning ErrNotFound when absent.
func (ps *ProfileService) GetProfile(ctx context.Context, did string) (*models.Profile, error) {
	item, err := ps.Store.Get(ctx, profileKey(did))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	var profile models.Profile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &profile, nil
}

// UpdateProfile rewrites only the fields present in the partial update,
// refreshing updatedAt and every derived search projection affected by a
// changed field. Deleted profiles cannot be updated.
func (ps *ProfileService) UpdateProfile(ctx context.Context, did string, update models.ProfileUpdate) (*models.Profile, error) {
	current, err := ps.GetProfile(ctx, did)
	if err != nil {
		return nil, err
	}
	if current.AccountStatus == models.AccountStatusDeleted {
		return nil, ErrAccountDeleted
	}

	set := map[string]types.AttributeValue{}
	str := func(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }

	if update.Handle != nil {
		username := usernameFromHandle(*update.Handle)
		set["handle"] = str(*update.Handle)
		set["username"] = str(username)
		set["searchUsername"] = str(strings.ToLower(username))
	}
	if update.DisplayName != nil {
		set["displayName"] = str(*update.DisplayName)
		set["searchDisplayName"] = str(strings.ToLower(*update.DisplayName))
	}
	if update.Bio != nil {
		set["bio"] = str(*update.Bio)
	}
	if update.AvatarURL != nil {
		set["avatarUrl"] = str(*update.AvatarURL)
	}
	if update.BannerURL != nil {
		set["bannerUrl"] = str(*update.BannerURL)
	}
	if update.Email != nil {
		normalized := normalizeEmail(*update.Email)
		set["email"] = str(*update.Email)
		set["normalizedEmail"] = str(normalized)
		set["searchEmail"] = str(normalized)
	}
	set["updatedAt"] = str(time.Now().UTC().Format(time.RFC3339))

	item, err := ps.Store.Update(ctx, profileKey(did), set, nil)
	if err != nil {
		return nil, err
	}
	var profile models.Profile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated profile: %w", err)
	}
	return &profile, nil
}

// SetAccountStatus moves a profile between active and suspended. The deleted
// state is terminal and only reachable through SoftDeleteProfile.
func (ps *ProfileService) SetAccountStatus(ctx context.Context, did, status string) error {
	current, err := ps.GetProfile(ctx, did)
	if err != nil {
		return err
	}
	if current.AccountStatus == models.AccountStatusDeleted {
		return ErrAccountDeleted
	}
	_, err = ps.Store.Update(ctx, profileKey(did), map[string]types.AttributeValue{
		"accountStatus": &types.AttributeValueMemberS{Value: status},
		"updatedAt":     &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
	}, nil)
	return err
}

// SoftDeleteProfile marks the profile deleted, replaces the display identity
// with an anonymized placeholder and removes the email attributes. The
// profile item itself is never hard-deleted.
func (ps *ProfileService) SoftDeleteProfile(ctx context.Context, did, placeholder string) error {
	if _, err := ps.GetProfile(ctx, did); err != nil {
		return err
	}
	set := map[string]types.AttributeValue{
		"accountStatus":     &types.AttributeValueMemberS{Value: models.AccountStatusDeleted},
		"handle":            &types.AttributeValueMemberS{Value: placeholder},
		"username":          &types.AttributeValueMemberS{Value: placeholder},
		"displayName":       &types.AttributeValueMemberS{Value: "Deleted User"},
		"searchUsername":    &types.AttributeValueMemberS{Value: strings.ToLower(placeholder)},
		"searchDisplayName": &types.AttributeValueMemberS{Value: "deleted user"},
		"updatedAt":         &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
	}
	remove := []string{"email", "normalizedEmail", "searchEmail", "bio", "avatarUrl", "bannerUrl"}
	_, err := ps.Store.Update(ctx, profileKey(did), set, remove)
	return err
}

// SearchProfiles matches the query case-insensitively as a substring of the
// username (local part of the handle only), display name or normalized email.
// Deleted profiles are excluded; a profile matched only through its email is
// included only when that email link is verified.
func (ps *ProfileService) SearchProfiles(ctx context.Context, query string, limit int32, cursor string) (*ProfilePage, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return &ProfilePage{}, nil
	}
	if limit <= 0 {
		limit = 25
	}

	items, lastKey, err := ps.Store.Scan(ctx, ScanQuery{
		SortKeyPrefix: models.PrefixUser,
		Fields:        []string{"searchUsername", "searchDisplayName", "searchEmail"},
		Needle:        needle,
		Limit:         limit,
		StartKey:      utils.DecodeCursor(cursor),
	})
	if err != nil {
		return nil, err
	}

	page := &ProfilePage{Cursor: utils.EncodeCursor(lastKey)}
	for _, item := range items {
		var profile models.Profile
		if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
			continue
		}
		if profile.AccountStatus == models.AccountStatusDeleted {
			continue
		}
		nameMatch := strings.Contains(profile.SearchUsername, needle) ||
			strings.Contains(profile.SearchDisplayName, needle)
		if !nameMatch {
			// Email-only match: the stale profile attribute never decides,
			// the identity link must exist and be verified.
			if !strings.Contains(profile.SearchEmail, needle) {
				continue
			}
			if ps.Identity == nil || !ps.Identity.HasVerifiedEmailLink(ctx, profile.DID, profile.SearchEmail) {
				continue
			}
		}
		page.Profiles = append(page.Profiles, profile)
	}
	return page, nil
}
