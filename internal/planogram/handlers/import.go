package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"planogram-editor/internal/planogram/importer"
	"planogram-editor/internal/planogram/interaction"
	"planogram-editor/internal/planogram/store"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
)

// ============================================================
// Import
// ============================================================

type importResponse struct {
	Session sessionView        `json:"session"`
	Exact   bool               `json:"exact"`
	Skipped []importer.Skipped `json:"skipped"`
}

// Import converts a detection payload into a new session. Several matching
// layouts answer 300 with the candidates; the client retries with
// ?layoutId=.
func (h *EditorHandler) Import(c fiber.Ctx) error {
	payload, err := readPayload(c)
	if err != nil {
		if errors.Is(err, importer.ErrEmptyPayload) {
			return respondError(c, err)
		}
		return respondError(c, fiber.NewError(http.StatusBadRequest, err.Error()))
	}

	var res *importer.Result
	if layoutID := c.Query("layoutId"); layoutID != "" {
		res, err = h.importer.ConvertWithLayout(payload, layoutID)
	} else {
		res, err = h.importer.Convert(payload)
	}
	if err != nil {
		return respondError(c, err)
	}

	sess := h.sessions.Open(res.Layout.ID, res.Refrigerator)
	resp := importResponse{Exact: res.Exact, Skipped: res.Skipped}
	_ = sess.Do(func(st *store.Store, drag *interaction.Controller) error {
		resp.Session = viewOf(sess, st, drag)
		return nil
	})
	return c.Status(http.StatusCreated).JSON(resp)
}

// readPayload accepts the payload as the raw body or as the "file" field of
// a multipart upload.
func readPayload(c fiber.Ctx) (importer.Payload, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		log.Infof("[IMPORT] payload received, %d bytes", len(c.Body()))
		return importer.ParsePayload(bytes.NewReader(c.Body()))
	}

	file, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("file required in multipart/form-data")
	}
	log.Infof("[IMPORT] file received: %s, size: %d", file.Filename, file.Size)

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return importer.ParsePayload(f)
}
