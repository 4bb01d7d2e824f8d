package models

// PostEmbed holds optional image embeds for a post.
type PostEmbed struct {
	Images []EmbedImage `dynamodbav:"images,omitempty" json:"images,omitempty"`
}

// EmbedImage is a single embedded image.
type EmbedImage struct {
	URL string `dynamodbav:"url" json:"url"`
	Alt string `dynamodbav:"alt,omitempty" json:"alt,omitempty"`
}

// Facet is a rich-text annotation over a byte range of the post text.
type Facet struct {
	ByteStart int    `dynamodbav:"byteStart" json:"byteStart"`
	ByteEnd   int    `dynamodbav:"byteEnd" json:"byteEnd"`
	Feature   string `dynamodbav:"feature" json:"feature"`
	Value     string `dynamodbav:"value,omitempty" json:"value,omitempty"`
}

// Post is an AT-protocol record owned by one repository.
//
// PK = REPO#<ownerDid>, SK = REC#<collection>#<rkey>. Top-level posts are
// projected onto the global feed (gsi1pk = POST#FEED); reply-posts are
// projected onto their thread (gsi1pk = POST#<rootURI>). gsi1sk is the rkey,
// which is time-sortable by construction.
type Post struct {
	PK         string     `dynamodbav:"PK"`
	SK         string     `dynamodbav:"SK"`
	GSI1PK     string     `dynamodbav:"gsi1pk,omitempty"`
	GSI1SK     string     `dynamodbav:"gsi1sk,omitempty"`
	URI        string     `dynamodbav:"uri"`
	OwnerDID   string     `dynamodbav:"ownerDid"`
	Collection string     `dynamodbav:"collection"`
	RKey       string     `dynamodbav:"rkey"`
	Text       string     `dynamodbav:"text"`
	Embed      *PostEmbed `dynamodbav:"embed,omitempty"`
	Facets     []Facet    `dynamodbav:"facets,omitempty"`
	ReplyRoot  string     `dynamodbav:"replyRoot,omitempty"`
	ReplyParent string    `dynamodbav:"replyParent,omitempty"`
	CreatedAt  string     `dynamodbav:"createdAt"`
	UpdatedAt  string     `dynamodbav:"updatedAt,omitempty"`
}

// IsReply reports whether the record is a reply-post (comment).
func (p *Post) IsReply() bool {
	return p.ReplyRoot != ""
}

// PostView is the read model returned to callers. Author fields are resolved
// from the current profile at read time and the counts are computed by
// counting related items, never read from a stored counter.
type PostView struct {
	URI               string     `json:"uri"`
	OwnerDID          string     `json:"ownerDid"`
	RKey              string     `json:"rkey"`
	Text              string     `json:"text"`
	Embed             *PostEmbed `json:"embed,omitempty"`
	Facets            []Facet    `json:"facets,omitempty"`
	ReplyRoot         string     `json:"replyRoot,omitempty"`
	ReplyParent       string     `json:"replyParent,omitempty"`
	AuthorUsername    string     `json:"authorUsername,omitempty"`
	AuthorDisplayName string     `json:"authorDisplayName,omitempty"`
	LikeCount         int        `json:"likeCount"`
	CommentCount      int        `json:"commentCount"`
	CreatedAt         string     `json:"createdAt"`
}
