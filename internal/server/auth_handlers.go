package server

import (
	"devcircle/internal/middleware"
	"devcircle/internal/models"
	"devcircle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SignupRequest represents the signup request body
type SignupRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	University string `json:"university"`
}

// SigninRequest accepts a username or an email as login.
type SigninRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.identity.Signup(c.UserContext(), service.SignupInput{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		University: req.University,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// Signin handles POST /api/auth/signin
func (s *Server) Signin(c *fiber.Ctx) error {
	var req SigninRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.identity.Signin(c.UserContext(), req.Login, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

// Signout handles POST /api/auth/signout
func (s *Server) Signout(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*middleware.Claims)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}
	if err := s.identity.Signout(c.UserContext(), claims); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
