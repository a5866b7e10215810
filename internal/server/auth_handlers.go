package server

import (
	"errors"

	"github.com/Pratik1374/API-GraphQL/internal/models"

	"github.com/gofiber/fiber/v2"
)

type localCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func respondAppError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return models.RespondWithError(c, appErr.HTTPStatus(), appErr)
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// LocalSignup handles POST /auth/local/signup. It creates an identity
// account only; the profile is created afterwards with the createUser
// mutation.
func (s *Server) LocalSignup(c *fiber.Ctx) error {
	var req localCredentials
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	id, err := s.rt.Local.CreateAccount(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondAppError(c, err)
	}
	token, err := s.rt.Local.IssueToken(id)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"subject": id.Subject,
		"email":   id.Email,
		"token":   token,
	})
}

// LocalToken handles POST /auth/local/token.
func (s *Server) LocalToken(c *fiber.Ctx) error {
	var req localCredentials
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	id, err := s.rt.Local.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondAppError(c, err)
	}
	token, err := s.rt.Local.IssueToken(id)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"subject": id.Subject,
		"token":   token,
	})
}
