package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"threadline/internal/auth"
	"threadline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, repo UserRepository, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, HashedPassword: auth.HashPassword("pw")}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestPostRepository_CreateAndList(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, users, "alice")

	first := &models.Post{Content: "hello", OwnerID: owner.ID}
	require.NoError(t, posts.Create(ctx, first))
	assert.False(t, first.Edited)
	assert.WithinDuration(t, time.Now(), first.CreatedAt, 5*time.Second)

	replyTo := first.ID
	second := &models.Post{Content: "hello yourself", OwnerID: owner.ID, ReplyTo: &replyTo}
	require.NoError(t, posts.Create(ctx, second))

	all, err := posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Insertion order.
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, owner.ID, all[0].OwnerID)
	assert.Nil(t, all[0].ReplyTo)
	require.NotNil(t, all[1].ReplyTo)
	assert.Equal(t, first.ID, *all[1].ReplyTo)
}

func TestPostRepository_ReplyToUnverified(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, users, "bob")

	// reply_to is stored as given even when no such post exists.
	ghost := uint(9999)
	post := &models.Post{Content: "into the void", OwnerID: owner.ID, ReplyTo: &ghost}
	require.NoError(t, posts.Create(ctx, post))

	loaded, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.ReplyTo)
	assert.Equal(t, ghost, *loaded.ReplyTo)
}

func TestPostRepository_GetByIDNotFound(t *testing.T) {
	db := openTestDB(t)
	posts := NewPostRepository(db)

	_, err := posts.GetByID(context.Background(), 42)
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestPostRepository_UpdateContent(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, users, "carol")
	replyTo := uint(7)
	post := &models.Post{Content: "draft", OwnerID: owner.ID, ReplyTo: &replyTo}
	require.NoError(t, posts.Create(ctx, post))
	createdAt := post.CreatedAt

	require.NoError(t, posts.UpdateContent(ctx, post, "final"))
	assert.Equal(t, "final", post.Content)
	assert.True(t, post.Edited)

	loaded, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", loaded.Content)
	assert.True(t, loaded.Edited)
	// Timestamp and reply_to survive the edit untouched.
	assert.WithinDuration(t, createdAt, loaded.CreatedAt, time.Millisecond)
	require.NotNil(t, loaded.ReplyTo)
	assert.Equal(t, replyTo, *loaded.ReplyTo)

	// A second edit keeps edited=true.
	require.NoError(t, posts.UpdateContent(ctx, loaded, "final v2"))
	again, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, again.Edited)
	assert.Equal(t, "final v2", again.Content)
}
