package server

import (
	"threadline/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /register
// @Summary Register a new user
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Registration request"
// @Success 200 {object} object{status=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewMalformedRequestError("Invalid request body"))
	}

	payload, err := s.register(c.Context(), req)
	return respond(c, payload, err)
}

// Login handles POST /login
// @Summary Authenticate and obtain a session token
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Login credentials"
// @Success 200 {object} object{session_id=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewMalformedRequestError("Invalid request body"))
	}

	payload, err := s.login(c.Context(), req)
	return respond(c, payload, err)
}
