package handlers

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/emilythestrangee/eliza-news/backend/internal/identity"
	"github.com/emilythestrangee/eliza-news/backend/internal/middleware"
	"github.com/emilythestrangee/eliza-news/backend/internal/models"
	"github.com/emilythestrangee/eliza-news/backend/internal/store"
)

// Handler combines all handler types
type Handler struct {
	Auth    *AuthHandler
	Post    *PostHandler
	Comment *CommentHandler
	Page    *PageHandler
}

// Deps are the collaborators shared by the handlers. GitHub is nil when
// GitHub login is not configured.
type Deps struct {
	Store    *store.Store
	Sessions *middleware.Sessions
	Wallet   *identity.WalletVerifier
	GitHub   *identity.GitHubProvider
	Secure   bool
	Log      *logrus.Entry
	Now      func() time.Time
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(d Deps) (*Handler, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	auth := NewAuthHandler(d.Sessions, d.Wallet, d.GitHub, d.Secure, d.Log.WithField("handler", "auth"))
	page, err := NewPageHandler(d.Store, auth, d.GitHub != nil, d.Now, d.Log.WithField("handler", "page"))
	if err != nil {
		return nil, err
	}

	return &Handler{
		Auth:    auth,
		Post:    NewPostHandler(d.Store, d.Now),
		Comment: NewCommentHandler(d.Store),
		Page:    page,
	}, nil
}

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the "chain" binding tag to gin's validator.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin binding engine is not go-playground/validator")
			return
		}
		registerErr = v.RegisterValidation("chain", func(fl validator.FieldLevel) bool {
			return models.ParseChain(fl.Field().String()).Valid()
		})
	})
	return registerErr
}

// statusFor maps store error kinds to HTTP statuses.
func statusFor(err error) int {
	switch store.KindOf(err) {
	case store.KindValidation:
		return http.StatusBadRequest
	case store.KindAuth:
		return http.StatusUnauthorized
	case store.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage is the client-facing text of err.
func errorMessage(err error) string {
	var se *store.Error
	if errors.As(err, &se) {
		return se.Msg
	}
	return "Internal server error"
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), gin.H{"error": errorMessage(err)})
}

func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "chain" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported token blockchain"})
				return
			}
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
