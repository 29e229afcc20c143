package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/internal/testutil"
	"github.com/qolzam/forum/internal/types"
	"github.com/qolzam/forum/posts/models"
	"github.com/qolzam/forum/posts/repository"
	"github.com/qolzam/forum/posts/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApp authenticates requests carrying X-Test-User without JWT plumbing.
func newTestApp(t *testing.T) *testutil.HTTPHelper {
	h := NewPostHandler(services.NewPostService(repository.NewMemoryPostRepository()))
	fakeAuth := func(c *fiber.Ctx) error {
		if id := c.Get("X-Test-User"); id != "" {
			c.Locals(types.UserCtxName, types.UserContext{UserID: uuid.FromStringOrNil(id), SystemRole: types.UserRole})
		}
		return c.Next()
	}

	app := fiber.New()
	app.Get("/posts", h.ListPosts)
	app.Get("/posts/:postId", h.GetPost)
	app.Post("/posts", fakeAuth, h.CreatePost)
	app.Delete("/posts/:postId", fakeAuth, h.DeletePost)
	return testutil.NewHTTPHelper(t, app)
}

func TestPostHandler(t *testing.T) {
	h := newTestApp(t)
	author := uuid.Must(uuid.NewV4()).String()

	resp := h.NewRequest("POST", "/posts", models.CreatePostRequest{Title: "First"}).WithHeader("X-Test-User", author).Send()
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var post models.Post
	resp.DecodeJSON(t, &post)
	assert.Equal(t, "First", post.Title)

	resp = h.NewRequest("GET", "/posts/"+post.ObjectId.String(), nil).Send()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = h.NewRequest("GET", "/posts?sort=new&limit=5", nil).Send()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list models.PostsListResponse
	resp.DecodeJSON(t, &list)
	assert.Len(t, list.Posts, 1)
	assert.Equal(t, 5, list.Limit)

	resp = h.NewRequest("GET", "/posts?sort=sideways", nil).Send()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = h.NewRequest("DELETE", "/posts/"+post.ObjectId.String(), nil).WithHeader("X-Test-User", uuid.Must(uuid.NewV4()).String()).Send()
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = h.NewRequest("DELETE", "/posts/"+post.ObjectId.String(), nil).WithHeader("X-Test-User", author).Send()
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = h.NewRequest("GET", "/posts/"+post.ObjectId.String(), nil).Send()
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPostHandler_BadInput(t *testing.T) {
	h := newTestApp(t)

	resp := h.NewRequest("GET", "/posts/not-a-uuid", nil).Send()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = h.NewRequest("POST", "/posts", models.CreatePostRequest{Title: "x"}).Send()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = h.NewRequest("POST", "/posts", "{not json").WithHeader("X-Test-User", uuid.Must(uuid.NewV4()).String()).Send()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
