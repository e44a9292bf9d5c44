package server

import (
	"bytes"
	"encoding/json"
	"errors"

	"devcircle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// MediaList decodes media_url given as a single URL, an array of URLs or null.
type MediaList []string

func (m *MediaList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*m = nil
		return nil
	case len(data) > 0 && data[0] == '"':
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*m = MediaList{one}
		return nil
	case len(data) > 0 && data[0] == '[':
		var many []string
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		if many == nil {
			many = []string{}
		}
		*m = many
		return nil
	}
	return errors.New("media_url must be a string or an array of strings")
}

// CreatePostRequest is the body of POST /api/posts.
type CreatePostRequest struct {
	Title    string    `json:"title"`
	BodyText string    `json:"body_text"`
	MediaURL MediaList `json:"media_url"`
}

// UpdatePostRequest leaves blank title and body alone. A present media_url,
// even an empty list, replaces the stored one.
type UpdatePostRequest struct {
	Title    string     `json:"title"`
	BodyText string     `json:"body_text"`
	MediaURL *MediaList `json:"media_url"`
}

// GetGlobalFeed handles GET /api/feed/global and GET /api/posts
func (s *Server) GetGlobalFeed(c *fiber.Ctx) error {
	posts, err := s.feed.GlobalFeed(c.UserContext(), parsePagination(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(posts)
}

// GetFollowingFeed handles GET /api/feed
func (s *Server) GetFollowingFeed(c *fiber.Ctx) error {
	posts, err := s.feed.FollowingFeed(c.UserContext(), currentUserID(c), parsePagination(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	actor, err := s.principal(c)
	if err != nil {
		return nil
	}
	var req CreatePostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.posts.CreatePost(c.UserContext(), actor, service.CreatePostInput{
		Title:    req.Title,
		BodyText: req.BodyText,
		MediaURL: []string(req.MediaURL),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.posts.GetPost(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.principal(c)
	if err != nil {
		return nil
	}
	var req UpdatePostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	var media *[]string
	if req.MediaURL != nil {
		list := []string(*req.MediaURL)
		media = &list
	}
	post, err := s.posts.UpdatePost(c.UserContext(), actor, service.UpdatePostInput{
		PostID:   id,
		Title:    req.Title,
		BodyText: req.BodyText,
		MediaURL: media,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.principal(c)
	if err != nil {
		return nil
	}
	if err := s.posts.DeletePost(c.UserContext(), actor, id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.principal(c)
	if err != nil {
		return nil
	}
	state, err := s.posts.ToggleLike(c.UserContext(), actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(state)
}

// LikePost handles PUT /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.principal(c)
	if err != nil {
		return nil
	}
	state, err := s.posts.LikePost(c.UserContext(), actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(state)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.principal(c)
	if err != nil {
		return nil
	}
	state, err := s.posts.UnlikePost(c.UserContext(), actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(state)
}
