package query

import (
	"io"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listQuery struct {
	Sort      string   `schema:"sort"`
	Limit     int      `schema:"limit"`
	TargetIDs []string `schema:"targetIds"`
}

func TestDecodeValues(t *testing.T) {
	var q listQuery
	err := DecodeValues(url.Values{
		"sort":      {"hot"},
		"limit":     {"5"},
		"targetIds": {"a", "b"},
		"unknown":   {"ignored"},
	}, &q)
	require.NoError(t, err)
	assert.Equal(t, listQuery{Sort: "hot", Limit: 5, TargetIDs: []string{"a", "b"}}, q)

	err = DecodeValues(url.Values{"limit": {"many"}}, &q)
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		var q listQuery
		if err := Decode(c, &q); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		return c.SendString(q.Sort)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/?sort=new&limit=3", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "new", string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/?limit=x", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
