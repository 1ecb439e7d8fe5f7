// Package store is the only writer of posts and comments. Every operation is a
// direct pass through to a Backend; nothing is cached between calls.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/emilythestrangee/eliza-news/backend/internal/models"
	"github.com/emilythestrangee/eliza-news/backend/internal/tokenclaim"
)

// Backend is the persistence API. FindPost returns (nil, nil) when the post
// does not exist. AppendUpvoter must add name and one point in a single step,
// and only if name is not yet an upvoter; it reports whether it did.
type Backend interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	FindPost(ctx context.Context, id string) (*models.Post, error)
	InsertPost(ctx context.Context, post *models.Post) error
	AppendUpvoter(ctx context.Context, postID, name string) (bool, error)
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
	InsertComment(ctx context.Context, comment *models.Comment) error
	CountComments(ctx context.Context, postID string) (int64, error)
	SetCommentCount(ctx context.Context, postID string, n int64) error
}

// ClaimValidator derives token badge flags from the chain.
type ClaimValidator interface {
	Validate(ctx context.Context, chain models.Chain, contract, user string) (tokenclaim.Status, error)
}

type Store struct {
	backend   Backend
	validator ClaimValidator
	log       *logrus.Entry
	now       func() time.Time
}

func New(backend Backend, validator ClaimValidator, log *logrus.Entry) *Store {
	return &Store{
		backend:   backend,
		validator: validator,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ListPosts returns every post, newest first.
func (s *Store) ListPosts(ctx context.Context) ([]models.Post, error) {
	const op = "list posts"
	posts, err := s.backend.ListPosts(ctx)
	if err != nil {
		s.log.WithError(err).Error("failed to list posts")
		return nil, remoteErr(op, "failed to fetch posts", err)
	}
	return posts, nil
}

// GetPost returns the post with its comments attached. Token badges on posts
// submitted with a wallet are re-checked on every read; a failed check clears
// both flags instead of failing the read.
func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	const op = "get post"
	post, err := s.findPost(ctx, op, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.backend.ListComments(ctx, post.ID)
	if err != nil {
		s.log.WithError(err).WithField("post_id", id).Error("failed to list comments")
		return nil, remoteErr(op, "failed to fetch comments", err)
	}
	post.Comments = comments

	if post.HasToken && post.AuthType == models.MethodWallet {
		status, err := s.lookup(ctx, post.TokenBlockchain, post.TokenContract, post.Username)
		if err != nil {
			s.log.WithError(err).WithField("post_id", id).Warn("token claim check failed, clearing badges")
			status = tokenclaim.Status{}
		}
		// Badges never exceed what the author claimed at submission.
		post.IsTokenDeployer = post.ClaimsDeployer && status.IsDeployer
		post.IsTokenHolder = post.ClaimsHolder && status.IsHolder
	}
	return post, nil
}

// CreatePost stores a new post authored by who. Author fields always come
// from who. The submitter counts as the first upvoter.
func (s *Store) CreatePost(ctx context.Context, in models.PostInput, who models.Identity) (*models.Post, error) {
	const op = "create post"
	if who.IsZero() {
		return nil, authErr(op)
	}
	in, err := cleanPostInput(op, in)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:        uuid.NewString(),
		Title:     in.Title,
		URL:       in.URL,
		Text:      in.Text,
		Points:    1,
		Username:  who.Name,
		AuthType:  who.Method,
		Upvoters:  pq.StringArray{who.Name},
		CreatedAt: s.now(),
		HasToken:  in.HasToken,
	}

	if in.HasToken {
		post.TokenTicker = in.TokenTicker
		post.TokenBlockchain = in.TokenChain
		post.TokenContract = in.TokenContract
		post.ClaimsDeployer = in.ClaimDeployer
		post.ClaimsHolder = in.ClaimHolder
		if in.ClaimDeployer || in.ClaimHolder {
			status := s.verifySubmission(ctx, in, who)
			post.IsTokenDeployer = in.ClaimDeployer && status.IsDeployer
			post.IsTokenHolder = in.ClaimHolder && status.IsHolder
		}
	}

	if err := s.backend.InsertPost(ctx, post); err != nil {
		s.log.WithError(err).WithField("username", who.Name).Error("failed to insert post")
		return nil, remoteErr(op, "failed to create post", err)
	}

	s.log.WithFields(logrus.Fields{
		"post_id": post.ID, "username": who.Name, "auth_type": who.Method, "has_token": post.HasToken,
	}).Info("post created")
	return post, nil
}

// verifySubmission checks claimed badges. Only wallet identities can be
// verified; lookup failures leave the badges unset.
func (s *Store) verifySubmission(ctx context.Context, in models.PostInput, who models.Identity) tokenclaim.Status {
	if who.Method != models.MethodWallet {
		return tokenclaim.Status{}
	}
	status, err := s.lookup(ctx, in.TokenChain, in.TokenContract, who.Name)
	if err != nil {
		s.log.WithError(err).WithField("username", who.Name).Warn("token claim check failed at submission")
		return tokenclaim.Status{}
	}
	return status
}

// lookup runs the validator unless contract cannot be an address on chain,
// in which case nothing is verified.
func (s *Store) lookup(ctx context.Context, chain models.Chain, contract, user string) (tokenclaim.Status, error) {
	if !ValidContract(chain, contract) {
		s.log.WithFields(logrus.Fields{"chain": chain, "contract": contract}).Debug("malformed token contract, skipping lookup")
		return tokenclaim.Status{}, nil
	}
	return s.validator.Validate(ctx, chain, contract, user)
}

// VerifyClaim runs the validator for the acting wallet without storing
// anything. Lookup errors are returned to the caller.
func (s *Store) VerifyClaim(ctx context.Context, chain models.Chain, contract string, who models.Identity) (tokenclaim.Status, error) {
	const op = "verify claim"
	if who.IsZero() {
		return tokenclaim.Status{}, authErr(op)
	}
	if who.Method != models.MethodWallet {
		return tokenclaim.Status{}, &Error{Kind: KindAuth, Op: op, Msg: "connect with your wallet to verify"}
	}

	chain = models.ParseChain(string(chain))
	contract = strings.TrimSpace(contract)
	if !chain.Valid() {
		return tokenclaim.Status{}, validationErr(op, "unsupported token blockchain")
	}
	if contract == "" {
		return tokenclaim.Status{}, validationErr(op, "token contract is required")
	}

	status, err := s.lookup(ctx, chain, contract, who.Name)
	if err != nil {
		s.log.WithError(err).WithField("username", who.Name).Error("token claim verification failed")
		return tokenclaim.Status{}, remoteErr(op, "error verifying token status", err)
	}
	return status, nil
}

// Upvote adds one point for who unless who already voted, in which case it
// does nothing.
func (s *Store) Upvote(ctx context.Context, id string, who models.Identity) error {
	const op = "upvote"
	if who.IsZero() {
		return authErr(op)
	}
	post, err := s.findPost(ctx, op, id)
	if err != nil {
		return err
	}
	if post.HasUpvoted(who.Name) {
		return nil
	}

	added, err := s.backend.AppendUpvoter(ctx, post.ID, who.Name)
	if err != nil {
		s.log.WithError(err).WithField("post_id", id).Error("failed to upvote")
		return remoteErr(op, "failed to upvote", err)
	}
	s.log.WithFields(logrus.Fields{"post_id": id, "username": who.Name, "counted": added}).Info("upvote")
	return nil
}

// AddComment stores a comment and then rewrites the post's comment count from
// the comments actually stored.
func (s *Store) AddComment(ctx context.Context, postID, text string, who models.Identity) (*models.Comment, error) {
	const op = "add comment"
	if who.IsZero() {
		return nil, authErr(op)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationErr(op, "comment text is required")
	}
	post, err := s.findPost(ctx, op, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:        uuid.NewString(),
		PostID:    post.ID,
		Username:  who.Name,
		AuthType:  who.Method,
		Text:      text,
		CreatedAt: s.now(),
	}
	if err := s.backend.InsertComment(ctx, comment); err != nil {
		s.log.WithError(err).WithField("post_id", postID).Error("failed to insert comment")
		return nil, remoteErr(op, "failed to add comment", err)
	}

	n, err := s.backend.CountComments(ctx, post.ID)
	if err != nil {
		s.log.WithError(err).WithField("post_id", postID).Error("failed to count comments")
		return nil, remoteErr(op, "failed to update comment count", err)
	}
	if err := s.backend.SetCommentCount(ctx, post.ID, n); err != nil {
		s.log.WithError(err).WithField("post_id", postID).Error("failed to store comment count")
		return nil, remoteErr(op, "failed to update comment count", err)
	}
	return comment, nil
}

func (s *Store) findPost(ctx context.Context, op, id string) (*models.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFoundErr(op, "post")
	}
	post, err := s.backend.FindPost(ctx, id)
	if err != nil {
		s.log.WithError(err).WithField("post_id", id).Error("failed to fetch post")
		return nil, remoteErr(op, "failed to fetch post", err)
	}
	if post == nil {
		return nil, notFoundErr(op, "post")
	}
	return post, nil
}
