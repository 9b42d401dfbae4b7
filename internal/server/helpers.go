package server

import (
	"threadline/internal/models"

	"github.com/gofiber/fiber/v2"
)

// respond writes either the handler payload or the mapped error response.
// Every error kind carries its own HTTP status; the transport never guesses.
func respond(c *fiber.Ctx, payload any, err error) error {
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(payload)
}

// parsePostID extracts the post_id route parameter as a positive uint.
func parsePostID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("post_id")
	if err != nil || id <= 0 {
		return 0, models.NewMalformedRequestError("Invalid post ID")
	}
	return uint(id), nil
}
