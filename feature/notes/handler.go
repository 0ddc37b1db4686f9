package notes

import (
	"errors"
	"strings"

	"note-updater/core/batch"
	"note-updater/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for batch note updates.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the batch routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/batch")
	group.Post("/validate", h.handleAction(batch.ModeValidate))
	group.Post("/diff", h.handleAction(batch.ModeDiff))
	group.Post("/apply", h.handleAction(batch.ModeApply))
}

// handleAction builds the handler for one executor mode. The request is a
// multipart form: the record file under "file", plus optional "file_key",
// "note_key", repeated "map" entries of the form fileField=NoteField,
// "note_ids" (comma separated), "confirm" for apply, and "report_object"
// for diff.
func (h *Handler) handleAction(mode batch.Mode) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := logger.WithRayID(h.service.logger, c)

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing record file upload",
			})
		}
		file, err := fileHeader.Open()
		if err != nil {
			l.Error("Failed to open upload", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		defer file.Close()

		req := Request{
			Mode:         mode,
			Records:      file,
			FileJoinKey:  c.FormValue("file_key"),
			NoteJoinKey:  c.FormValue("note_key"),
			Confirmed:    c.FormValue("confirm") == "true",
			ReportObject: c.FormValue("report_object"),
		}
		if ids := c.FormValue("note_ids"); ids != "" {
			req.NoteIDs = strings.Split(ids, ",")
		}

		req.Targets = make(map[string]string)
		if form, err := c.MultipartForm(); err == nil {
			for _, entry := range form.Value["map"] {
				name, target, ok := strings.Cut(entry, "=")
				if !ok {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "invalid map entry: " + entry,
					})
				}
				req.Targets[name] = target
			}
		}

		result, err := h.service.Run(c.Context(), req)
		if err != nil {
			status := fiber.StatusUnprocessableEntity
			var ierr *batch.InternalError
			if errors.As(err, &ierr) {
				status = fiber.StatusInternalServerError
			}
			return c.Status(status).JSON(fiber.Map{
				"error":  err.Error(),
				"result": result,
			})
		}
		return c.JSON(result)
	}
}
