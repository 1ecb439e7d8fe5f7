package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/eliza-news/backend/internal/middleware"
	"github.com/emilythestrangee/eliza-news/backend/internal/models"
	"github.com/emilythestrangee/eliza-news/backend/internal/store"
)

type CommentHandler struct {
	store *store.Store
}

func NewCommentHandler(s *store.Store) *CommentHandler {
	return &CommentHandler{store: s}
}

// GetComments returns the comments of a post, oldest first.
func (h *CommentHandler) GetComments(c *gin.Context) {
	post, err := h.store.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	comments := post.Comments
	if comments == nil {
		comments = []models.Comment{}
	}
	c.JSON(http.StatusOK, comments)
}

// CreateComment adds a comment and returns it with the re-read post.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var input models.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment text is required"})
		return
	}

	postID := c.Param("id")
	comment, err := h.store.AddComment(c.Request.Context(), postID, input.Text, middleware.GetIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}

	post, err := h.store.GetPost(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"comment": comment,
		"post":    post,
	})
}
