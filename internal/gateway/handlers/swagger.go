package handlers

import (
	"errors"
	"fmt"
	"html"
	"io/fs"
	"os"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// API Docs
// ============================================================

// SwaggerSpec serves the OpenAPI document at path, re-read on every request.
func SwaggerSpec(path string) fiber.Handler {
	return func(c fiber.Ctx) error {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "openapi document not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		c.Type("yaml")
		return c.Send(data)
	}
}

const swaggerPage = `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>%s</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: '%s',
      dom_id: '#swagger-ui',
      deepLinking: true,
      tryItOutEnabled: true,
      presets: [SwaggerUIBundle.presets.apis],
    });
  };
</script>
</body>
</html>`

// SwaggerUI serves a Swagger UI page titled title that loads specURL.
func SwaggerUI(title, specURL string) fiber.Handler {
	page := fmt.Sprintf(swaggerPage, html.EscapeString(title), html.EscapeString(specURL))
	return func(c fiber.Ctx) error {
		c.Type("html")
		return c.SendString(page)
	}
}
