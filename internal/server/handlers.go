package server

import (
	"context"
	"encoding/json"
	"strings"

	"threadline/internal/auth"
	"threadline/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Request bodies shared by the HTTP endpoints and the WebSocket dispatch.
// Over HTTP the edit post ID additionally arrives as a path parameter,
// which takes precedence over the body value.
type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createPostRequest struct {
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
	ReplyTo   *uint  `json:"reply_to"`
}

type listPostsRequest struct {
	SessionID string `json:"session_id"`
}

type editPostRequest struct {
	SessionID  string `json:"session_id"`
	PostID     uint   `json:"post_id"`
	NewContent string `json:"new_content"`
}

// register creates a new user with the hashed password. No session is
// issued by registration.
func (s *Server) register(ctx context.Context, req registerRequest) (fiber.Map, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, models.NewMalformedRequestError("username and password are required")
	}

	user := &models.User{
		Username:       req.Username,
		HashedPassword: auth.HashPassword(req.Password),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return fiber.Map{"status": "User registered successfully"}, nil
}

// login verifies the credentials and issues a fresh session token,
// replacing any prior token for the user. Unknown username and wrong
// password are indistinguishable to the caller.
func (s *Server) login(ctx context.Context, req loginRequest) (fiber.Map, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.VerifyPassword(user.HashedPassword, req.Password) {
		return nil, models.NewInvalidCredentialsError()
	}

	token, err := auth.NewSessionToken()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.userRepo.UpdateSession(ctx, user.ID, token); err != nil {
		return nil, err
	}

	return fiber.Map{"session_id": token}, nil
}

// resolveSession is the authorization check for every post operation.
func (s *Server) resolveSession(ctx context.Context, sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, models.NewInvalidSessionError()
	}
	user, err := s.userRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewInvalidSessionError()
	}
	return user, nil
}

// createPost stores a new post owned by the session holder. reply_to is
// stored as given, without verifying the referenced post exists.
func (s *Server) createPost(ctx context.Context, req createPostRequest) (*models.ShapedPost, error) {
	user, err := s.resolveSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	if req.Content == "" {
		return nil, models.NewMalformedRequestError("content is required")
	}

	post := &models.Post{
		Content: req.Content,
		OwnerID: user.ID,
		ReplyTo: req.ReplyTo,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	shaped := post.Shape(user.Username)
	s.fanOutPost(user.ID, shaped)
	return shaped, nil
}

// fanOutPost pushes a freshly created post to every connected WebSocket
// client. Gated behind the live_feed flag and off by default; clients
// otherwise poll via get_posts.
func (s *Server) fanOutPost(authorID uint, shaped *models.ShapedPost) {
	if !s.flags.Enabled("live_feed", authorID) {
		return
	}

	msg, err := json.Marshal(fiber.Map{"action": "new_post", "data": shaped})
	if err != nil {
		return
	}
	s.hub.BroadcastAll(msg)
}

// listPosts returns every post in insertion order. The session token only
// proves the caller is authenticated; no identity-based filtering applies.
func (s *Server) listPosts(ctx context.Context, req listPostsRequest) (fiber.Map, error) {
	if _, err := s.resolveSession(ctx, req.SessionID); err != nil {
		return nil, err
	}

	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	// Usernames are immutable, so the cached user row is always safe to
	// shape with. Memoize per request on top of the cache to avoid
	// repeated lookups for prolific posters.
	usernames := make(map[uint]string)
	shaped := make([]*models.ShapedPost, 0, len(posts))
	for i := range posts {
		name, ok := usernames[posts[i].OwnerID]
		if !ok {
			owner, err := s.userRepo.GetByID(ctx, posts[i].OwnerID)
			if err != nil {
				return nil, err
			}
			name = owner.Username
			usernames[posts[i].OwnerID] = name
		}
		shaped = append(shaped, posts[i].Shape(name))
	}

	return fiber.Map{"posts": shaped}, nil
}

// editPost replaces a post's content for its owner and marks it edited.
// Failure order: invalid session, then unknown post, then foreign owner.
func (s *Server) editPost(ctx context.Context, req editPostRequest) (*models.ShapedPost, error) {
	user, err := s.resolveSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	if post.OwnerID != user.ID {
		return nil, models.NewNotAuthorizedError("Not authorized to edit this post")
	}

	if req.NewContent == "" {
		return nil, models.NewMalformedRequestError("new_content is required")
	}

	if err := s.postRepo.UpdateContent(ctx, post, req.NewContent); err != nil {
		return nil, err
	}

	return post.Shape(user.Username), nil
}
