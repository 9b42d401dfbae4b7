package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadline/internal/cache"
	"threadline/internal/config"
	"threadline/internal/notifications"
	"threadline/internal/repository"
)

func TestCreatePost(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerAndLogin(t, app, "alice", "pw")

	t.Run("Success", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/posts",
			map[string]any{"session_id": token, "content": "first post"})
		require.Equal(t, http.StatusOK, status)

		assert.Equal(t, "first post", body["content"])
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, false, body["edited"])
		assert.Nil(t, body["reply_to"])
		assert.NotEmpty(t, body["id"])
		assert.NotEmpty(t, body["timestamp"])
	})

	t.Run("Reply threading", func(t *testing.T) {
		status, parent := doJSON(t, app, http.MethodPost, "/posts",
			map[string]any{"session_id": token, "content": "parent"})
		require.Equal(t, http.StatusOK, status)

		parentID := uint(parent["id"].(float64))
		status, reply := doJSON(t, app, http.MethodPost, "/posts",
			map[string]any{"session_id": token, "content": "child", "reply_to": parentID})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, float64(parentID), reply["reply_to"])
	})

	// reply_to is stored as given; pointing at a post that does not exist
	// is not rejected.
	t.Run("Dangling reply accepted", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/posts",
			map[string]any{"session_id": token, "content": "orphan", "reply_to": 99999})
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, float64(99999), body["reply_to"])
	})

	// Empty and missing content are treated alike.
	t.Run("Missing content", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/posts",
			map[string]any{"session_id": token})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, body, "error")
	})

	t.Run("Empty content", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/posts",
			map[string]any{"session_id": token, "content": ""})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, body, "error")
	})

	t.Run("Invalid session", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/posts",
			map[string]any{"session_id": "deadbeef", "content": "nope"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid session_id", body["error"])
	})

	t.Run("Missing session", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/posts",
			map[string]any{"content": "nope"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid session_id", body["error"])
	})
}

func TestGetPosts(t *testing.T) {
	app, _ := newTestApp(t)
	aliceToken := registerAndLogin(t, app, "alice", "pw")
	bobToken := registerAndLogin(t, app, "bob", "pw")

	for i, tok := range []string{aliceToken, bobToken, aliceToken} {
		status, _ := doJSON(t, app, http.MethodPost, "/posts",
			map[string]any{"session_id": tok, "content": fmt.Sprintf("post %d", i)})
		require.Equal(t, http.StatusOK, status)
	}

	status, body := doJSON(t, app, http.MethodPost, "/get_posts",
		map[string]string{"session_id": bobToken})
	require.Equal(t, http.StatusOK, status)

	posts, ok := body["posts"].([]any)
	require.True(t, ok)
	require.Len(t, posts, 3)

	// Insertion order, with each post carrying its owner's username. The
	// feed is shared: bob's token sees alice's posts too.
	expected := []struct{ content, username string }{
		{"post 0", "alice"},
		{"post 1", "bob"},
		{"post 2", "alice"},
	}
	for i, want := range expected {
		post := posts[i].(map[string]any)
		assert.Equal(t, want.content, post["content"])
		assert.Equal(t, want.username, post["username"])
	}

	t.Run("Invalid session", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/get_posts",
			map[string]string{"session_id": "bogus"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid session_id", body["error"])
	})
}

func TestEditPost(t *testing.T) {
	app, _ := newTestApp(t)
	aliceToken := registerAndLogin(t, app, "alice", "pw")
	bobToken := registerAndLogin(t, app, "bob", "pw")

	status, created := doJSON(t, app, http.MethodPost, "/posts",
		map[string]any{"session_id": aliceToken, "content": "original", "reply_to": 7})
	require.Equal(t, http.StatusOK, status)
	postID := int(created["id"].(float64))

	// Read the stored timestamp back rather than trusting the create
	// response; both sides of the comparison should come from the store.
	status, listed := doJSON(t, app, http.MethodPost, "/get_posts",
		map[string]string{"session_id": aliceToken})
	require.Equal(t, http.StatusOK, status)
	createdAt := listed["posts"].([]any)[0].(map[string]any)["timestamp"]

	t.Run("Owner can edit", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPatch,
			fmt.Sprintf("/edit_post/%d", postID),
			map[string]any{"session_id": aliceToken, "new_content": "updated"})
		require.Equal(t, http.StatusOK, status)

		assert.Equal(t, "updated", body["content"])
		assert.Equal(t, true, body["edited"])
		// Edits never touch the creation timestamp or the thread link.
		assert.Equal(t, createdAt, body["timestamp"])
		assert.Equal(t, float64(7), body["reply_to"])
	})

	t.Run("Non-owner is rejected", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPatch,
			fmt.Sprintf("/edit_post/%d", postID),
			map[string]any{"session_id": bobToken, "new_content": "hijacked"})
		assert.Equal(t, http.StatusForbidden, status)
		assert.Contains(t, body, "error")

		// The rejected edit left the content alone.
		status, listed := doJSON(t, app, http.MethodPost, "/get_posts",
			map[string]string{"session_id": bobToken})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "updated",
			listed["posts"].([]any)[0].(map[string]any)["content"])
	})

	t.Run("Unknown post", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPatch, "/edit_post/424242",
			map[string]any{"session_id": aliceToken, "new_content": "x"})
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Invalid post ID", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPatch, "/edit_post/notanumber",
			map[string]any{"session_id": aliceToken, "new_content": "x"})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Missing new_content", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPatch,
			fmt.Sprintf("/edit_post/%d", postID),
			map[string]any{"session_id": aliceToken})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	// The route parameter wins over any post_id smuggled into the body.
	t.Run("Path parameter is authoritative", func(t *testing.T) {
		status, other := doJSON(t, app, http.MethodPost, "/posts",
			map[string]any{"session_id": bobToken, "content": "bob's post"})
		require.Equal(t, http.StatusOK, status)
		otherID := int(other["id"].(float64))

		status, body := doJSON(t, app, http.MethodPatch,
			fmt.Sprintf("/edit_post/%d", postID),
			map[string]any{"session_id": aliceToken, "post_id": otherID, "new_content": "mine"})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, float64(postID), body["id"])
	})

	t.Run("Invalid session checked before post lookup", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPatch, "/edit_post/424242",
			map[string]any{"session_id": "bogus", "new_content": "x"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid session_id", body["error"])
	})
}

// TestGetPosts_OwnerLookupPopulatesCache checks that shaping the feed goes
// through the cached user lookup rather than a join.
func TestGetPosts_OwnerLookupPopulatesCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		_ = rdb.Close()
		cache.SetClient(nil)
	})

	app, _ := newTestApp(t)
	token := registerAndLogin(t, app, "erin", "pw")

	status, created := doJSON(t, app, http.MethodPost, "/posts",
		map[string]any{"session_id": token, "content": "warm me up"})
	require.Equal(t, http.StatusOK, status)
	ownerID := uint(created["owner_id"].(float64))

	status, body := doJSON(t, app, http.MethodPost, "/get_posts",
		map[string]string{"session_id": token})
	require.Equal(t, http.StatusOK, status)
	posts := body["posts"].([]any)
	require.Len(t, posts, 1)
	assert.Equal(t, "erin", posts[0].(map[string]any)["username"])

	// The owner row landed in the cache on the way through.
	assert.True(t, mr.Exists(cache.UserKey(ownerID)))
}

// TestGetPosts_StoreError drives the handler against a failing store and
// expects the error to surface as a 500 rather than a panic or empty list.
func TestGetPosts_StoreError(t *testing.T) {
	db, mock := setupMockDB(t)

	s := &Server{
		config:   &config.Config{Env: "test"},
		db:       db,
		userRepo: repository.NewUserRepository(db),
		postRepo: repository.NewPostRepository(db),
		hub:      notifications.NewHub(),
	}
	app := fiber.New()
	s.SetupRoutes(app)

	sessionRows := sqlmock.NewRows([]string{"id", "username", "session_id"}).
		AddRow(1, "alice", "cafebabe")
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(sessionRows)
	mock.ExpectQuery(`SELECT \* FROM "posts"`).WillReturnError(fmt.Errorf("connection reset"))

	status, body := doJSON(t, app, http.MethodPost, "/get_posts",
		map[string]string{"session_id": "cafebabe"})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, body, "error")
	assert.NoError(t, mock.ExpectationsWereMet())
}
