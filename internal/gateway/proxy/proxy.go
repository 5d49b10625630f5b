package proxy

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
)

// ============================================================
// Proxy Handler
// ============================================================

var client = &http.Client{Timeout: 30 * time.Second}

// Upstream forwards everything matched by a wildcard route to base, keeping
// the wildcard tail and the query string.
func Upstream(base string) fiber.Handler {
	base = strings.TrimRight(base, "/")
	return func(c fiber.Ctx) error {
		target := base + "/" + strings.TrimLeft(c.Params("*"), "/")
		if qs := string(c.Request().URI().QueryString()); qs != "" {
			target += "?" + qs
		}
		return Forward(c, target)
	}
}

// ProxyTo forwards to a fixed URL.
func ProxyTo(targetURL string) fiber.Handler {
	return func(c fiber.Ctx) error {
		return Forward(c, targetURL)
	}
}

// Forward proxies any method, re-encoding multipart uploads.
func Forward(c fiber.Ctx, targetURL string) error {
	log.Debugf("[PROXY] %s %s -> %s (%d bytes)", c.Method(), c.Path(), targetURL, len(c.Body()))

	contentType := c.Get(fiber.HeaderContentType)
	if !strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		return sendRaw(c, targetURL, contentType)
	}

	return sendMultipart(c, targetURL)
}

func sendRaw(c fiber.Ctx, targetURL, contentType string) error {
	var body io.Reader
	if len(c.Body()) > 0 {
		body = bytes.NewReader(c.Body())
	}
	req, err := http.NewRequest(c.Method(), targetURL, body)
	if err != nil {
		log.Errorf("[PROXY] build request: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "proxy failed"})
	}

	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	if auth := c.Get(fiber.HeaderAuthorization); auth != "" {
		req.Header.Set(fiber.HeaderAuthorization, auth)
	}

	return do(c, req)
}

func sendMultipart(c fiber.Ctx, targetURL string) error {
	form, err := c.MultipartForm()
	if err != nil {
		log.Warnf("[PROXY] parse multipart: %v", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid multipart data"})
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, files := range form.File {
		for _, fileHeader := range files {
			if err := copyFile(writer, key, fileHeader); err != nil {
				log.Warnf("[PROXY] skip file %s: %v", fileHeader.Filename, err)
			}
		}
	}

	for key, values := range form.Value {
		for _, value := range values {
			if err := writer.WriteField(key, value); err != nil {
				return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "proxy failed"})
			}
		}
	}

	if err := writer.Close(); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "proxy failed"})
	}

	req, err := http.NewRequest(c.Method(), targetURL, bytes.NewReader(body.Bytes()))
	if err != nil {
		log.Errorf("[PROXY] build multipart request: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "proxy failed"})
	}

	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	if auth := c.Get(fiber.HeaderAuthorization); auth != "" {
		req.Header.Set(fiber.HeaderAuthorization, auth)
	}

	return do(c, req)
}

func copyFile(writer *multipart.Writer, field string, fh *multipart.FileHeader) error {
	file, err := fh.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, fh.Filename))
	h.Set("Content-Type", fh.Header.Get("Content-Type"))

	part, err := writer.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}

func do(c fiber.Ctx, req *http.Request) error {
	resp, err := client.Do(req)
	if err != nil {
		log.Errorf("[PROXY] upstream: %v", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "failed to reach upstream service"})
	}
	defer resp.Body.Close()

	return copyResponse(c, resp)
}

func copyResponse(c fiber.Ctx, resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Errorf("[PROXY] read response: %v", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "invalid upstream response"})
	}

	for key, values := range resp.Header {
		if len(values) > 0 {
			c.Set(key, values[0])
		}
	}

	c.Status(resp.StatusCode)
	return c.Send(data)
}
