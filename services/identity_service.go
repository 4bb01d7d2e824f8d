package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"ripple_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"golang.org/x/crypto/bcrypt"
)

// IdentityService manages per-profile identity links and the reverse lookup
// table that resolves a linked identifier to its owning DID in one read.
type IdentityService struct {
	Store Store
}

func linkKey(did, linkedID string) Key {
	return Key{PK: models.PrefixUser + did, SK: models.PrefixLink + linkedID}
}

func lookupKey(linkedID string) Key {
	return Key{PK: models.PrefixLink + linkedID, SK: models.PrefixLink + linkedID}
}

// CreateLink stores a new identity link for a DID. Link identity is the
// (did, linkedId) pair; writing the same pair twice overwrites it.
func (is *IdentityService) CreateLink(ctx context.Context, link models.IdentityLink) (*models.IdentityLink, error) {
	if link.DID == "" || link.LinkedID == "" {
		return nil, ErrInvalidReference
	}
	now := time.Now().UTC().Format(time.RFC3339)

	key := linkKey(link.DID, link.LinkedID)
	link.PK = key.PK
	link.SK = key.SK
	if link.Status == "" {
		link.Status = models.LinkStatusPending
	}
	link.CreatedAt = now
	link.UpdatedAt = now

	item, err := attributevalue.MarshalMap(link)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal identity link: %w", err)
	}
	if err := is.Store.Put(ctx, item); err != nil {
		return nil, err
	}
	return &link, nil
}

// GetLink fetches one identity link, returning ErrNotFound when absent.
func (is *IdentityService) GetLink(ctx context.Context, did, linkedID string) (*models.IdentityLink, error) {
	item, err := is.Store.Get(ctx, linkKey(did, linkedID))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	var link models.IdentityLink
	if err := attributevalue.UnmarshalMap(item, &link); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity link: %w", err)
	}
	return &link, nil
}

// UpdateLink applies a partial update to a link, optionally removing
// attributes, and always refreshes updatedAt.
func (is *IdentityService) UpdateLink(ctx context.Context, did, linkedID string, set map[string]types.AttributeValue, remove []string) (*models.IdentityLink, error) {
	if _, err := is.GetLink(ctx, did, linkedID); err != nil {
		return nil, err
	}
	if set == nil {
		set = map[string]types.AttributeValue{}
	}
	set["updatedAt"] = &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)}

	item, err := is.Store.Update(ctx, linkKey(did, linkedID), set, remove)
	if err != nil {
		return nil, err
	}
	var link models.IdentityLink
	if err := attributevalue.UnmarshalMap(item, &link); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated link: %w", err)
	}
	return &link, nil
}

// ListLinks returns every identity link held by a DID.
func (is *IdentityService) ListLinks(ctx context.Context, did string) ([]models.IdentityLink, error) {
	items, _, err := is.Store.Query(ctx, Query{
		Partition:  models.PrefixUser + did,
		SortPrefix: models.PrefixLink,
	})
	if err != nil {
		return nil, err
	}
	var links []models.IdentityLink
	if err := attributevalue.UnmarshalListOfMaps(items, &links); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity links: %w", err)
	}
	return links, nil
}

// CreateLookup reserves a linked identifier for a DID. The conditional create
// guarantees a linkedId maps to at most one DID; losing the write surfaces as
// ErrAlreadyRegistered, never as a generic store failure.
func (is *IdentityService) CreateLookup(ctx context.Context, lookup models.IdentityLookup) error {
	if lookup.LinkedID == "" || lookup.DID == "" {
		return ErrInvalidReference
	}
	key := lookupKey(lookup.LinkedID)
	lookup.PK = key.PK
	lookup.SK = key.SK
	if lookup.Status == "" {
		lookup.Status = models.LinkStatusVerified
	}
	lookup.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	item, err := attributevalue.MarshalMap(lookup)
	if err != nil {
		return fmt.Errorf("failed to marshal identity lookup: %w", err)
	}
	if err := is.Store.PutIfAbsent(ctx, item); err != nil {
		if err == ErrItemExists {
			log.Printf("⚠️ Lookup already registered: %s", lookup.LinkedID)
			return ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

// GetLookup resolves a linked identifier, returning ErrNotFound when absent.
func (is *IdentityService) GetLookup(ctx context.Context, linkedID string) (*models.IdentityLookup, error) {
	item, err := is.Store.Get(ctx, lookupKey(linkedID))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	var lookup models.IdentityLookup
	if err := attributevalue.UnmarshalMap(item, &lookup); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity lookup: %w", err)
	}
	return &lookup, nil
}

// UpdateLookup applies a partial update to a lookup entry.
func (is *IdentityService) UpdateLookup(ctx context.Context, linkedID string, set map[string]types.AttributeValue) (*models.IdentityLookup, error) {
	if _, err := is.GetLookup(ctx, linkedID); err != nil {
		return nil, err
	}
	if set == nil {
		set = map[string]types.AttributeValue{}
	}
	set["updatedAt"] = &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)}

	item, err := is.Store.Update(ctx, lookupKey(linkedID), set, nil)
	if err != nil {
		return nil, err
	}
	var lookup models.IdentityLookup
	if err := attributevalue.UnmarshalMap(item, &lookup); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated lookup: %w", err)
	}
	return &lookup, nil
}

// HasVerifiedEmailLink reports whether the DID holds a verified email link for
// the given normalized address. Search and login resolve email through links,
// never through the profile's own (possibly stale) email attribute.
func (is *IdentityService) HasVerifiedEmailLink(ctx context.Context, did, normalizedEmail string) bool {
	link, err := is.GetLink(ctx, did, models.LinkKindEmail+":"+normalizedEmail)
	if err != nil {
		return false
	}
	return link.Status == models.LinkStatusVerified
}

// SetLinkPassword hashes and stores a password on an email-kind link.
func (is *IdentityService) SetLinkPassword(ctx context.Context, did, linkedID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = is.UpdateLink(ctx, did, linkedID, map[string]types.AttributeValue{
		"passwordHash": &types.AttributeValueMemberS{Value: string(hash)},
		"kdfParams":    &types.AttributeValueMemberS{Value: fmt.Sprintf("bcrypt:%d", bcrypt.DefaultCost)},
	}, nil)
	return err
}

// VerifyLinkPassword checks a password against the stored hash. Mismatches
// bump the lockout counter; a success resets it.
func (is *IdentityService) VerifyLinkPassword(ctx context.Context, did, linkedID, password string) (bool, error) {
	link, err := is.GetLink(ctx, did, linkedID)
	if err != nil {
		return false, err
	}
	if link.PasswordHash == "" {
		return false, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(link.PasswordHash), []byte(password)) != nil {
		if err := is.Store.Add(ctx, linkKey(did, linkedID), "failedLogins", 1); err != nil {
			return false, err
		}
		return false, nil
	}
	if link.FailedLogins > 0 {
		if err := is.Store.Add(ctx, linkKey(did, linkedID), "failedLogins", -link.FailedLogins); err != nil {
			return false, err
		}
	}
	return true, nil
}
