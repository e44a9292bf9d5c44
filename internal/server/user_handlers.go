package server

import (
	"devcircle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdateProfileRequest is a partial update; omitted fields are left unchanged.
type UpdateProfileRequest struct {
	Username   *string `json:"username"`
	Email      *string `json:"email"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	University *string `json:"university"`
	Bio        *string `json:"bio"`
}

// SearchUsers handles GET /api/users?q=
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users, err := s.identity.Search(c.UserContext(), c.Query("q"), parsePagination(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(users)
}

// GetMe handles GET /api/users/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.identity.GetByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	profile, err := s.identity.GetProfile(c.UserContext(), c.Params("username"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

// UpdateUserProfile handles PUT /api/users/:username
func (s *Server) UpdateUserProfile(c *fiber.Ctx) error {
	actor, err := s.principal(c)
	if err != nil {
		return nil
	}
	var req UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.identity.UpdateProfile(c.UserContext(), actor, c.Params("username"), service.UpdateProfileInput{
		Username:   req.Username,
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		University: req.University,
		Bio:        req.Bio,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// GetFollowers handles GET /api/users/:username/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	users, err := s.follows.Followers(c.UserContext(), c.Params("username"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(users)
}

// GetFollowing handles GET /api/users/:username/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	users, err := s.follows.Following(c.UserContext(), c.Params("username"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(users)
}

// Follow handles POST /api/users/:username/follow
func (s *Server) Follow(c *fiber.Ctx) error {
	actor, err := s.principal(c)
	if err != nil {
		return nil
	}
	if err := s.follows.Follow(c.UserContext(), actor, c.Params("username")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"following": true})
}

// Unfollow handles DELETE /api/users/:username/follow
func (s *Server) Unfollow(c *fiber.Ctx) error {
	actor, err := s.principal(c)
	if err != nil {
		return nil
	}
	if err := s.follows.Unfollow(c.UserContext(), actor, c.Params("username")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"following": false})
}

// GetUserPosts handles GET /api/users/:username/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	posts, err := s.posts.ListUserPosts(c.UserContext(), c.Params("username"), parsePagination(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(posts)
}
