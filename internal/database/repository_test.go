package database

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/emilythestrangee/eliza-news/backend/internal/logger"
	"github.com/emilythestrangee/eliza-news/backend/internal/models"
	"github.com/emilythestrangee/eliza-news/backend/internal/store"
)

var _ store.Backend = (*Repository)(nil)

// setupRepository starts a throwaway PostgreSQL container. It skips when
// running with -short or when Docker is unavailable.
func setupRepository(t *testing.T) *Repository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("eliza_test"),
		tcpostgres.WithUsername("eliza"),
		tcpostgres.WithPassword("eliza"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Post{}, &models.Comment{}))

	return NewRepository(db)
}

func newPost(title, author string, created time.Time) *models.Post {
	return &models.Post{
		ID:        uuid.NewString(),
		Title:     title,
		Points:    1,
		Username:  author,
		AuthType:  models.MethodGitHub,
		Upvoters:  pq.StringArray{author},
		CreatedAt: created,
	}
}

func TestRepository_PostsRoundTrip(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	older := newPost("older", "alice", base.Add(-time.Hour))
	newer := newPost("newer", "bob", base)
	newer.HasToken = true
	newer.TokenTicker = "BONK"
	newer.TokenBlockchain = models.ChainSolana
	newer.TokenContract = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	newer.IsTokenHolder = true
	require.NoError(t, repo.InsertPost(ctx, older))
	require.NoError(t, repo.InsertPost(ctx, newer))

	posts, err := repo.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "newer", posts[0].Title)
	assert.Equal(t, "older", posts[1].Title)

	got, err := repo.FindPost(ctx, newer.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"bob"}, []string(got.Upvoters))
	assert.True(t, got.HasToken)
	assert.Equal(t, models.ChainSolana, got.TokenBlockchain)
	assert.True(t, got.IsTokenHolder)

	missing, err := repo.FindPost(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_AppendUpvoter(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	p := newPost("t", "alice", time.Now().UTC())
	require.NoError(t, repo.InsertPost(ctx, p))

	added, err := repo.AppendUpvoter(ctx, p.ID, "bob")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AppendUpvoter(ctx, p.ID, "bob")
	require.NoError(t, err)
	assert.False(t, added)

	added, err = repo.AppendUpvoter(ctx, p.ID, "alice")
	require.NoError(t, err)
	assert.False(t, added, "submitter already counted")

	got, err := repo.FindPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Points)
	assert.Equal(t, []string{"alice", "bob"}, []string(got.Upvoters))
}

func TestRepository_AppendUpvoterConcurrent(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	p := newPost("t", "alice", time.Now().UTC())
	require.NoError(t, repo.InsertPost(ctx, p))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AppendUpvoter(ctx, p.ID, "carol")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.FindPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Points)
}

func TestRepository_Comments(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)
	p := newPost("t", "alice", base)
	require.NoError(t, repo.InsertPost(ctx, p))

	for i, text := range []string{"first", "second"} {
		require.NoError(t, repo.InsertComment(ctx, &models.Comment{
			ID:        uuid.NewString(),
			PostID:    p.ID,
			Username:  "bob",
			AuthType:  models.MethodWallet,
			Text:      text,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	comments, err := repo.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)

	n, err := repo.CountComments(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, repo.SetCommentCount(ctx, p.ID, n))
	got, err := repo.FindPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentsCount)
}

func TestRepository_WithStore(t *testing.T) {
	repo := setupRepository(t)
	s := store.New(repo, nil, logger.Discard().WithField("component", "store"))
	ctx := context.Background()
	alice := models.Identity{Name: "alice", Method: models.MethodGitHub}
	bob := models.Identity{Name: "bob", Method: models.MethodGitHub}

	p, err := s.CreatePost(ctx, models.PostInput{Title: "Test"}, alice)
	require.NoError(t, err)
	require.NoError(t, s.Upvote(ctx, p.ID, bob))
	require.NoError(t, s.Upvote(ctx, p.ID, bob))
	_, err = s.AddComment(ctx, p.ID, "nice", bob)
	require.NoError(t, err)

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Points)
	assert.Equal(t, 1, got.CommentsCount)
	require.Len(t, got.Comments, 1)
}
