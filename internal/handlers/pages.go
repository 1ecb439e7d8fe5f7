package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/emilythestrangee/eliza-news/backend/internal/middleware"
	"github.com/emilythestrangee/eliza-news/backend/internal/models"
	"github.com/emilythestrangee/eliza-news/backend/internal/ranking"
	"github.com/emilythestrangee/eliza-news/backend/internal/render"
	"github.com/emilythestrangee/eliza-news/backend/internal/store"
	"github.com/emilythestrangee/eliza-news/backend/internal/tokenclaim"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index.html", "item.html", "submit.html", "error.html"}

// PageHandler serves the server-rendered pages. Every form post redirects, so
// the page that follows a mutation is always a fresh read.
type PageHandler struct {
	store         *store.Store
	auth          *AuthHandler
	githubEnabled bool
	templates     map[string]*template.Template
	now           func() time.Time
	log           *logrus.Entry
}

func NewPageHandler(s *store.Store, auth *AuthHandler, githubEnabled bool, now func() time.Time, log *logrus.Entry) (*PageHandler, error) {
	funcs := render.NewTextProcessor().FuncMap(now)

	templates := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}

	return &PageHandler{
		store:         s,
		auth:          auth,
		githubEnabled: githubEnabled,
		templates:     templates,
		now:           now,
		log:           log,
	}, nil
}

// TemplateData wraps page-specific data with what the layout needs.
type TemplateData struct {
	Identity      models.Identity
	GitHubEnabled bool
	Error         string
	Data          any
}

type indexData struct {
	Posts []models.Post
	Sort  ranking.Mode
	Modes []ranking.Mode
}

type itemData struct {
	Post *models.Post
}

type submitData struct {
	Input    models.PostInput
	Chains   []models.Chain
	Status   *tokenclaim.Status
	Verified bool
}

func (h *PageHandler) render(c *gin.Context, status int, name string, data any, errMsg string) {
	tmpl, ok := h.templates[name]
	if !ok {
		c.String(http.StatusInternalServerError, "template %s not found", name)
		return
	}

	wrapped := TemplateData{
		Identity:      middleware.GetIdentity(c),
		GitHubEnabled: h.githubEnabled,
		Error:         errMsg,
		Data:          data,
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "layout", wrapped); err != nil {
		h.log.WithError(err).WithField("template", name).Error("error executing template")
		c.String(http.StatusInternalServerError, "Internal Server Error rendering template")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (h *PageHandler) renderError(c *gin.Context, err error) {
	_ = c.Error(err)
	h.render(c, statusFor(err), "error.html", nil, errorMessage(err))
}

// Index renders the ranked feed.
func (h *PageHandler) Index(c *gin.Context) {
	posts, err := h.store.ListPosts(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}

	mode := ranking.ParseMode(c.Query("sort"))
	h.render(c, http.StatusOK, "index.html", indexData{
		Posts: ranking.Rank(posts, mode, h.now()),
		Sort:  mode,
		Modes: []ranking.Mode{ranking.Hot, ranking.New, ranking.Top},
	}, "")
}

// Item renders one post with its comment thread.
func (h *PageHandler) Item(c *gin.Context) {
	post, err := h.store.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, http.StatusOK, "item.html", itemData{Post: post}, "")
}

// SubmitForm renders the submission form.
func (h *PageHandler) SubmitForm(c *gin.Context) {
	h.render(c, http.StatusOK, "submit.html", submitData{
		Input:  models.PostInput{TokenChain: models.ChainSolana},
		Chains: models.Chains,
	}, "")
}

// Submit handles both buttons of the submission form: "verify" checks the
// token claim for the connected wallet and re-renders the form, anything else
// creates the post.
func (h *PageHandler) Submit(c *gin.Context) {
	var input models.PostInput
	if err := c.ShouldBind(&input); err != nil {
		h.render(c, http.StatusBadRequest, "submit.html", submitData{Input: input, Chains: models.Chains}, "Please check the form and try again")
		return
	}
	data := submitData{Input: input, Chains: models.Chains}
	who := middleware.GetIdentity(c)

	if c.PostForm("action") == "verify" {
		status, err := h.store.VerifyClaim(c.Request.Context(), input.TokenChain, input.TokenContract, who)
		if err != nil {
			_ = c.Error(err)
			code := statusFor(err)
			if store.KindOf(err) == store.KindRemote {
				code = http.StatusBadGateway
			}
			h.render(c, code, "submit.html", data, errorMessage(err))
			return
		}
		data.Status = &status
		data.Verified = true
		h.render(c, http.StatusOK, "submit.html", data, "")
		return
	}

	post, err := h.store.CreatePost(c.Request.Context(), input, who)
	if err != nil {
		_ = c.Error(err)
		h.render(c, statusFor(err), "submit.html", data, errorMessage(err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/item/"+post.ID)
}

// Upvote votes and sends the browser back to where it came from.
func (h *PageHandler) Upvote(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Upvote(c.Request.Context(), id, middleware.GetIdentity(c)); err != nil {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, backTo(c.PostForm("next"), "/item/"+id))
}

// Comment adds a comment and returns to the thread.
func (h *PageHandler) Comment(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.store.AddComment(c.Request.Context(), id, c.PostForm("text"), middleware.GetIdentity(c)); err != nil {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/item/"+id)
}

// SignOut ends the session and returns to the feed.
func (h *PageHandler) SignOut(c *gin.Context) {
	if _, err := h.auth.signOut(c); err != nil {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// backTo only follows local paths.
func backTo(next, fallback string) string {
	if len(next) > 1 && next[0] == '/' && next[1] != '/' && next[1] != '\\' {
		return next
	}
	if next == "/" {
		return next
	}
	return fallback
}
