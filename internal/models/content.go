package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind tags a content aggregate as a discussion, debate or blog.
type Kind string

const (
	KindDiscussion Kind = "discussion"
	KindDebate     Kind = "debate"
	KindBlog       Kind = "blog"
)

// Collection returns the MongoDB collection name for the kind.
func (k Kind) Collection() string {
	switch k {
	case KindDiscussion:
		return "discussions"
	case KindDebate:
		return "debates"
	case KindBlog:
		return "blogs"
	}
	return string(k)
}

// Valid reports whether k is one of the three content kinds.
func (k Kind) Valid() bool {
	return k == KindDiscussion || k == KindDebate || k == KindBlog
}

// Comment stances on a debate.
const (
	StanceWith    = "with"
	StanceAgainst = "against"
)

// Comment is embedded in a Content aggregate and has no independent
// lifecycle. Stance is set on debate comments only.
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	UserID    uint               `json:"user_id" bson:"user_id"`
	Text      string             `json:"text" bson:"text"`
	Stance    string             `json:"stance,omitempty" bson:"stance,omitempty"`
	Likes     int                `json:"likes" bson:"likes"`
	LikedBy   []uint             `json:"liked_by" bson:"liked_by"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Content is a discussion, debate or blog post stored in MongoDB.
// The engagement fields (votes, bookmarks, views, comments) are shared
// across all three kinds.
type Content struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Kind          Kind               `json:"kind" bson:"kind"`
	Title         string             `json:"title" bson:"title"`
	Body          string             `json:"body" bson:"body"`
	Category      string             `json:"category,omitempty" bson:"category,omitempty"`
	FileURLs      []string           `json:"file_urls,omitempty" bson:"file_urls,omitempty"`
	AuthorID      uint               `json:"author_id" bson:"author_id"`
	IsPrivate     bool               `json:"is_private" bson:"is_private"`
	Passcode      string             `json:"-" bson:"passcode,omitempty"`
	Views         int                `json:"views" bson:"views"`
	Upvotes       int                `json:"upvotes" bson:"upvotes"`
	Downvotes     int                `json:"downvotes" bson:"downvotes"`
	UpvotedBy     []uint             `json:"upvoted_by" bson:"upvoted_by"`
	DownvotedBy   []uint             `json:"downvoted_by" bson:"downvoted_by"`
	BookmarkCount int                `json:"bookmark_count" bson:"bookmark_count"`
	BookmarkedBy  []uint             `json:"-" bson:"bookmarked_by"`
	Comments      []Comment          `json:"comments" bson:"comments"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// CommentByID returns a pointer into the embedded comment slice, or nil.
func (c *Content) CommentByID(id primitive.ObjectID) *Comment {
	for i := range c.Comments {
		if c.Comments[i].ID == id {
			return &c.Comments[i]
		}
	}
	return nil
}

// CreateContentRequest defines the request body for creating a
// discussion, debate or blog. Body carries the description, opening
// argument or blog text depending on the kind.
type CreateContentRequest struct {
	Title     string `json:"title" form:"title" validate:"required,min=1,max=200"`
	Body      string `json:"body" form:"body" validate:"required,min=1"`
	Category  string `json:"category" form:"category"`
	IsPrivate bool   `json:"is_private" form:"is_private"`
	Passcode  string `json:"passcode" form:"passcode"`
}

// CreateCommentRequest defines the request body for commenting on a
// content item. Stance is required for debates only.
type CreateCommentRequest struct {
	Text   string `json:"text" validate:"required,min=1,max=2000"`
	Stance string `json:"stance" validate:"omitempty,oneof=with against"`
}
