// Package engagement implements the vote/bookmark/comment state
// machine shared by discussions, debates and blogs. The three content
// kinds run the exact same transitions against their aggregates, so
// the vote counters always equal the voter-set sizes and the upvoter
// and downvoter sets stay disjoint.
package engagement

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/debatify/backend/internal/models"
	"github.com/debatify/backend/internal/notify"
	"github.com/debatify/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrCommentNotFound is returned when a comment ID does not exist in
// the aggregate.
var ErrCommentNotFound = errors.New("comment not found")

// ErrInvalidCommentID is returned for comment IDs that are not valid
// ObjectID hex.
var ErrInvalidCommentID = errors.New("invalid comment ID format")

// ErrInvalidStance is returned when a debate comment is missing a
// stance or carries one outside {with, against}.
var ErrInvalidStance = errors.New("invalid stance")

// ErrAccessDenied is returned when a private aggregate is read without
// its passcode.
var ErrAccessDenied = errors.New("access denied")

// Engine applies engagement transitions to content aggregates and
// fans out notifications for foreign-owned ones. Each operation is a
// single read-modify-write with last-write-wins semantics; concurrent
// requests by the same actor racing on the same aggregate are not
// defended against.
type Engine struct {
	contentRepository repositories.ContentRepository
	userRepository    repositories.UserRepository
	dispatcher        *notify.Dispatcher
}

// NewEngine creates a new engagement Engine
func NewEngine(contentRepo repositories.ContentRepository, userRepo repositories.UserRepository, dispatcher *notify.Dispatcher) *Engine {
	return &Engine{
		contentRepository: contentRepo,
		userRepository:    userRepo,
		dispatcher:        dispatcher,
	}
}

// VoteResult reports the counters after an up/downvote transition.
// Voted is false when the call toggled an existing vote off.
type VoteResult struct {
	Upvotes   int  `json:"upvotes"`
	Downvotes int  `json:"downvotes"`
	Voted     bool `json:"-"`
}

// BookmarkResult reports the state after a bookmark toggle.
type BookmarkResult struct {
	BookmarkCount int  `json:"bookmarkCount"`
	IsBookmarked  bool `json:"isBookmarked"`
}

// CommentLikeResult reports the state after a comment-like toggle.
type CommentLikeResult struct {
	Likes   int    `json:"likes"`
	LikedBy []uint `json:"likedBy"`
}

// Upvote applies the upvote transition: an existing upvote toggles
// off; otherwise any downvote by the actor is withdrawn first, then
// the upvote lands. The author is notified on a new vote only.
func (e *Engine) Upvote(ctx context.Context, kind models.Kind, id string, actorID uint) (*models.Content, VoteResult, error) {
	return e.vote(ctx, kind, id, actorID, true)
}

// Downvote is the mirror of Upvote.
func (e *Engine) Downvote(ctx context.Context, kind models.Kind, id string, actorID uint) (*models.Content, VoteResult, error) {
	return e.vote(ctx, kind, id, actorID, false)
}

func (e *Engine) vote(ctx context.Context, kind models.Kind, id string, actorID uint, up bool) (*models.Content, VoteResult, error) {
	content, err := e.contentRepository.GetByID(ctx, kind, id)
	if err != nil {
		return nil, VoteResult{}, err
	}

	voted := applyVote(content, actorID, up)

	if err := e.contentRepository.Replace(ctx, content); err != nil {
		return nil, VoteResult{}, err
	}

	if voted && content.AuthorID != actorID {
		verb := models.NotificationUpvote
		if !up {
			verb = models.NotificationDownvote
		}
		if actor := e.actor(actorID, verb); actor != nil {
			e.dispatcher.Dispatch(&models.Notification{
				Type:        verb,
				ActorID:     actorID,
				RecipientID: content.AuthorID,
				TargetID:    content.ID.Hex(),
				TargetKind:  string(kind),
				Message:     fmt.Sprintf("%s %sd your %s \"%s\"", actor.Username, verb, kind, content.Title),
			})
		}
	}

	return content, VoteResult{Upvotes: content.Upvotes, Downvotes: content.Downvotes, Voted: voted}, nil
}

// applyVote mutates the vote sets and counters. Returns true when a
// new vote was applied, false when an existing one toggled off.
func applyVote(c *models.Content, actorID uint, up bool) bool {
	votedBy, votes := &c.UpvotedBy, &c.Upvotes
	opposedBy, opposed := &c.DownvotedBy, &c.Downvotes
	if !up {
		votedBy, opposedBy = opposedBy, votedBy
		votes, opposed = opposed, votes
	}

	if containsUser(*votedBy, actorID) {
		*votedBy = removeUser(*votedBy, actorID)
		*votes--
		return false
	}

	if containsUser(*opposedBy, actorID) {
		*opposedBy = removeUser(*opposedBy, actorID)
		*opposed--
	}
	*votedBy = append(*votedBy, actorID)
	*votes++
	return true
}

// Bookmark toggles the actor's bookmark on the aggregate. Bookmarks
// never notify.
func (e *Engine) Bookmark(ctx context.Context, kind models.Kind, id string, actorID uint) (BookmarkResult, error) {
	content, err := e.contentRepository.GetByID(ctx, kind, id)
	if err != nil {
		return BookmarkResult{}, err
	}

	var bookmarked bool
	if containsUser(content.BookmarkedBy, actorID) {
		content.BookmarkedBy = removeUser(content.BookmarkedBy, actorID)
		if content.BookmarkCount > 0 {
			content.BookmarkCount--
		}
	} else {
		content.BookmarkedBy = append(content.BookmarkedBy, actorID)
		content.BookmarkCount++
		bookmarked = true
	}

	if err := e.contentRepository.Replace(ctx, content); err != nil {
		return BookmarkResult{}, err
	}
	return BookmarkResult{BookmarkCount: content.BookmarkCount, IsBookmarked: bookmarked}, nil
}

// Comment appends a comment with a server-assigned ID and timestamp.
// Debate comments must carry a stance of "with" or "against"; the
// stance is dropped for the other kinds. The author is notified
// unless commenting on their own item.
func (e *Engine) Comment(ctx context.Context, kind models.Kind, id string, actorID uint, text, stance string) (*models.Content, error) {
	if kind == models.KindDebate {
		if stance != models.StanceWith && stance != models.StanceAgainst {
			return nil, ErrInvalidStance
		}
	} else {
		stance = ""
	}

	content, err := e.contentRepository.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	content.Comments = append(content.Comments, models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    actorID,
		Text:      text,
		Stance:    stance,
		LikedBy:   []uint{},
		CreatedAt: time.Now(),
	})

	if err := e.contentRepository.Replace(ctx, content); err != nil {
		return nil, err
	}

	if content.AuthorID != actorID {
		if actor := e.actor(actorID, models.NotificationComment); actor != nil {
			e.dispatcher.Dispatch(&models.Notification{
				Type:        models.NotificationComment,
				ActorID:     actorID,
				RecipientID: content.AuthorID,
				TargetID:    content.ID.Hex(),
				TargetKind:  string(kind),
				Message:     fmt.Sprintf("%s commented on your %s \"%s\"", actor.Username, kind, content.Title),
			})
		}
	}

	return content, nil
}

// LikeComment toggles the actor's like on an embedded comment and
// notifies the comment's author on a new like.
func (e *Engine) LikeComment(ctx context.Context, kind models.Kind, id, commentID string, actorID uint) (CommentLikeResult, error) {
	objID, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return CommentLikeResult{}, ErrInvalidCommentID
	}

	content, err := e.contentRepository.GetByID(ctx, kind, id)
	if err != nil {
		return CommentLikeResult{}, err
	}

	comment := content.CommentByID(objID)
	if comment == nil {
		return CommentLikeResult{}, ErrCommentNotFound
	}

	if containsUser(comment.LikedBy, actorID) {
		comment.LikedBy = removeUser(comment.LikedBy, actorID)
		if comment.Likes > 0 {
			comment.Likes--
		}
	} else {
		comment.LikedBy = append(comment.LikedBy, actorID)
		comment.Likes++
		if comment.UserID != actorID {
			if actor := e.actor(actorID, models.NotificationCommentLike); actor != nil {
				e.dispatcher.Dispatch(&models.Notification{
					Type:        models.NotificationCommentLike,
					ActorID:     actorID,
					RecipientID: comment.UserID,
					TargetID:    comment.ID.Hex(),
					TargetKind:  string(kind),
					Message:     fmt.Sprintf("%s liked your comment on the %s \"%s\"", actor.Username, kind, content.Title),
				})
			}
		}
	}

	if err := e.contentRepository.Replace(ctx, content); err != nil {
		return CommentLikeResult{}, err
	}
	return CommentLikeResult{Likes: comment.Likes, LikedBy: comment.LikedBy}, nil
}

// View loads the aggregate and counts the read. Private aggregates
// require the exact passcode before anything is revealed or counted.
// A poll request (a background refresh rather than a genuine pageview)
// reads current state without touching the stored counter.
func (e *Engine) View(ctx context.Context, kind models.Kind, id string, poll bool, passcode string) (*models.Content, error) {
	content, err := e.contentRepository.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	if content.IsPrivate && content.Passcode != passcode {
		return nil, ErrAccessDenied
	}

	if !poll {
		if err := e.contentRepository.IncrementViews(ctx, kind, id); err != nil {
			return nil, err
		}
		content.Views++
	}
	return content, nil
}

// actor resolves the acting user for a notification message. A failed
// lookup skips the fanout; it never fails the mutation.
func (e *Engine) actor(actorID uint, notifType string) *models.User {
	actor, err := e.userRepository.GetUserByID(actorID)
	if err != nil {
		log.Printf("engagement: actor %d lookup failed, skipping %s notification: %v", actorID, notifType, err)
		return nil
	}
	return actor
}

func containsUser(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeUser(ids []uint, id uint) []uint {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
