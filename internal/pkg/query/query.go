// Package query decodes request query strings into tagged structs.
package query

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/schema"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.ZeroEmpty(true)
	return d
}

// Decode fills dst, a pointer to a struct with `schema` tags, from the request query string.
func Decode(c *fiber.Ctx, dst interface{}) error {
	values, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return fmt.Errorf("malformed query string: %w", err)
	}
	return DecodeValues(values, dst)
}

// DecodeValues fills dst from already parsed values.
func DecodeValues(values url.Values, dst interface{}) error {
	if err := decoder.Decode(dst, values); err != nil {
		return fmt.Errorf("invalid query parameters: %w", err)
	}
	return nil
}
