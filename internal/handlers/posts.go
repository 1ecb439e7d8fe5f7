package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/eliza-news/backend/internal/middleware"
	"github.com/emilythestrangee/eliza-news/backend/internal/models"
	"github.com/emilythestrangee/eliza-news/backend/internal/ranking"
	"github.com/emilythestrangee/eliza-news/backend/internal/store"
)

type PostHandler struct {
	store *store.Store
	now   func() time.Time
}

func NewPostHandler(s *store.Store, now func() time.Time) *PostHandler {
	return &PostHandler{store: s, now: now}
}

// GetPosts returns the feed ranked by the sort query (hot, new or top).
func (h *PostHandler) GetPosts(c *gin.Context) {
	posts, err := h.store.ListPosts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	ranked := ranking.Rank(posts, ranking.ParseMode(c.Query("sort")), h.now())
	if ranked == nil {
		ranked = []models.Post{}
	}
	c.JSON(http.StatusOK, ranked)
}

// GetPost returns a single post with its comments.
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.store.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost submits a post as the acting identity.
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input models.PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	post, err := h.store.CreatePost(c.Request.Context(), input, middleware.GetIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}

	fresh, err := h.store.GetPost(c.Request.Context(), post.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fresh)
}

// UpvotePost adds the acting identity's vote and returns the stored post.
func (h *PostHandler) UpvotePost(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Upvote(c.Request.Context(), id, middleware.GetIdentity(c)); err != nil {
		respondError(c, err)
		return
	}

	post, err := h.store.GetPost(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

type verifyClaimRequest struct {
	Chain    models.Chain `json:"token_blockchain" form:"token_blockchain" binding:"required,chain"`
	Contract string       `json:"token_contract" form:"token_contract" binding:"required"`
}

// VerifyClaim checks the acting wallet against a token without storing
// anything. Chain lookup failures surface as 502.
func (h *PostHandler) VerifyClaim(c *gin.Context) {
	var input verifyClaimRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	status, err := h.store.VerifyClaim(c.Request.Context(), input.Chain, input.Contract, middleware.GetIdentity(c))
	if err != nil {
		if store.KindOf(err) == store.KindRemote {
			_ = c.Error(err)
			c.JSON(http.StatusBadGateway, gin.H{"error": errorMessage(err)})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"is_token_deployer": status.IsDeployer,
		"is_token_holder":   status.IsHolder,
	})
}
