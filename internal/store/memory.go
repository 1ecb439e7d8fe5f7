package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/emilythestrangee/eliza-news/backend/internal/models"
)

// MemoryBackend keeps posts and comments in process memory. It backs local
// development runs and tests; data is lost on restart.
type MemoryBackend struct {
	mu       sync.Mutex
	posts    map[string]models.Post
	comments []models.Comment
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{posts: make(map[string]models.Post)}
}

// Seed adds two sample posts, the older one well past the hot-ranking floor.
func (m *MemoryBackend) Seed(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	first := models.Post{
		ID:            uuid.NewString(),
		Title:         "Programmable IP is coming to ai16zdao's ElizaOS",
		Points:        13,
		Username:      "udev4096",
		AuthType:      models.MethodGitHub,
		Upvoters:      pq.StringArray{"udev4096"},
		CommentsCount: 1,
		CreatedAt:     now.Add(-58 * time.Minute),
	}
	second := models.Post{
		ID:        uuid.NewString(),
		Title:     "AI Agent Dev School Session 3",
		Points:    189,
		Username:  "hashedan",
		AuthType:  models.MethodGitHub,
		Upvoters:  pq.StringArray{"hashedan"},
		CreatedAt: now.Add(-5 * time.Hour),
	}
	m.posts[first.ID] = first
	m.posts[second.ID] = second
	m.comments = append(m.comments, models.Comment{
		ID:        uuid.NewString(),
		PostID:    first.ID,
		Username:  "someone",
		AuthType:  models.MethodGitHub,
		Text:      "Exciting news!",
		CreatedAt: now.Add(-30 * time.Minute),
	})
}

func clonePost(p models.Post) models.Post {
	p.Upvoters = append(pq.StringArray(nil), p.Upvoters...)
	p.Comments = nil
	return p
}

func (m *MemoryBackend) ListPosts(_ context.Context) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, clonePost(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryBackend) FindPost(_ context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	cp := clonePost(p)
	return &cp, nil
}

func (m *MemoryBackend) InsertPost(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.posts[post.ID] = clonePost(*post)
	return nil
}

func (m *MemoryBackend) AppendUpvoter(_ context.Context, postID, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[postID]
	if !ok || p.HasUpvoted(name) {
		return false, nil
	}
	p.Upvoters = append(p.Upvoters, name)
	p.Points++
	m.posts[postID] = p
	return true, nil
}

func (m *MemoryBackend) ListComments(_ context.Context, postID string) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Comment
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryBackend) InsertComment(_ context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.comments = append(m.comments, *comment)
	return nil
}

func (m *MemoryBackend) CountComments(_ context.Context, postID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, c := range m.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryBackend) SetCommentCount(_ context.Context, postID string, n int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.posts[postID]; ok {
		p.CommentsCount = int(n)
		m.posts[postID] = p
	}
	return nil
}
