package server

import (
	"threadline/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /posts
// @Summary Create a post, optionally as a reply
// @Accept json
// @Produce json
// @Param request body object{session_id=string,content=string,reply_to=int} true "Post body"
// @Success 200 {object} models.ShapedPost
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewMalformedRequestError("Invalid request body"))
	}

	payload, err := s.createPost(c.Context(), req)
	if err != nil {
		return respond(c, nil, err)
	}
	return c.JSON(payload)
}

// GetPosts handles POST /get_posts
// @Summary List every post in insertion order
// @Accept json
// @Produce json
// @Param request body object{session_id=string} true "Session token"
// @Success 200 {object} object{posts=[]models.ShapedPost}
// @Failure 400 {object} models.ErrorResponse
// @Router /get_posts [post]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	var req listPostsRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewMalformedRequestError("Invalid request body"))
	}

	payload, err := s.listPosts(c.Context(), req)
	return respond(c, payload, err)
}

// EditPost handles PATCH /edit_post/:post_id. The path parameter is
// authoritative; a post_id in the body is ignored.
// @Summary Edit an owned post
// @Accept json
// @Produce json
// @Param post_id path int true "Post ID"
// @Param request body object{session_id=string,new_content=string} true "Edit body"
// @Success 200 {object} models.ShapedPost
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /edit_post/{post_id} [patch]
func (s *Server) EditPost(c *fiber.Ctx) error {
	var req editPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewMalformedRequestError("Invalid request body"))
	}

	postID, err := parsePostID(c)
	if err != nil {
		return respond(c, nil, err)
	}
	req.PostID = postID

	payload, err := s.editPost(c.Context(), req)
	if err != nil {
		return respond(c, nil, err)
	}
	return c.JSON(payload)
}
