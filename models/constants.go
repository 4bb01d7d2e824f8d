package models

// SocialTable is the single DynamoDB table holding every entity type.
const SocialTable = "RippleSocial"

// GSI1 re-exposes items under gsi1pk/gsi1sk for the global feed, reply-thread
// and follower lookups.
const (
	GSI1   = "gsi1-index"
	GSI1PK = "gsi1pk"
	GSI1SK = "gsi1sk"
)

// Key prefixes are part of the durable table contract. Changing any of these
// breaks compatibility with existing data.
const (
	PrefixUser   = "USER#"
	PrefixRepo   = "REPO#"
	PrefixRecord = "REC#"
	PrefixLink   = "LINK#"
	PrefixPost   = "POST#"
	PrefixLike   = "LIKE#"
	PrefixFollow = "FOLLOW#"
)

// FeedPartition is the gsi1pk shared by every top-level post.
const FeedPartition = "POST#FEED"

// CollectionPost is the record collection for posts and reply-posts.
const CollectionPost = "social.ripple.feed.post"

// Account statuses
const (
	AccountStatusActive    = "active"
	AccountStatusSuspended = "suspended"
	AccountStatusDeleted   = "deleted"
)

// Identity link kinds (the typed prefix of a linkedId)
const (
	LinkKindEmail  = "email"
	LinkKindWallet = "eip155"
	LinkKindFlow   = "flow"
	LinkKindDID    = "did"
)

// Identity link and lookup statuses
const (
	LinkStatusPending  = "pending"
	LinkStatusVerified = "verified"
	LinkStatusRevoked  = "revoked"
)
