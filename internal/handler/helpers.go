package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go-inventory-tracker/internal/middleware"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/service"
	"go-inventory-tracker/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxPageLimit = 500

// getActor returns the operator name recorded in created_by/updated_by.
func getActor(c *fiber.Ctx) string {
	if name, ok := c.Locals(middleware.LocalOperatorName).(string); ok && name != "" {
		return name
	}
	if id, ok := c.Locals(middleware.LocalOperatorID).(string); ok && id != "" {
		return id
	}
	return "system"
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

// parsePage reads ?page=&limit=, 1-based, defaulting to 50 rows.
func parsePage(c *fiber.Ctx) repository.Page {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return repository.Page{Offset: (page - 1) * limit, Limit: limit}
}

func parseDateQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD", key)
	}
	return &t, nil
}

// readCSV takes the CSV text from a multipart "file" field, or else the raw body.
func readCSV(c *fiber.Ctx) (string, error) {
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return "", err
		}
		f, err := fh.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()
		body, err := io.ReadAll(f)
		if err != nil {
			return "", err
		}
		return string(body), nil
	}
	return string(c.Body()), nil
}

// exportContext bounds an export by timeout; zero means no bound.
func exportContext(c *fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), timeout)
}

func sendExport(c *fiber.Ctx, file *service.ExportFile) error {
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	return c.Send(file.Body)
}

// writeError maps service errors to status codes.
func writeError(c *fiber.Ctx, err error) error {
	var importErr *service.ImportError
	switch {
	case errors.As(err, &importErr):
		return c.Status(422).JSON(fiber.Map{"error": err.Error(), "rows": importErr.Rows})
	case errors.Is(err, validator.ErrValidation),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidFormat),
		errors.Is(err, service.ErrNoData),
		errors.Is(err, service.ErrNoRows):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrTransactionNotFound),
		errors.Is(err, repository.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrProductInUse):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case service.IsCancelled(err) && errors.Is(err, context.DeadlineExceeded):
		return c.Status(504).JSON(fiber.Map{"error": "Export timed out", "cancelled": true})
	case service.IsCancelled(err):
		// 499: client closed request
		return c.Status(499).JSON(fiber.Map{"error": "Export cancelled", "cancelled": true})
	}
	return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
}
