package handler

import (
	"strings"
	"time"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// InventoryHandler serves tracked units.
type InventoryHandler struct {
	items    repository.InventoryItemRepository
	exporter service.ExportService
	timeout  time.Duration
}

func NewInventoryHandler(items repository.InventoryItemRepository, exporter service.ExportService, exportTimeout time.Duration) *InventoryHandler {
	return &InventoryHandler{items: items, exporter: exporter, timeout: exportTimeout}
}

// inventoryFilter reads ?product_id=&status=&tracking_number=
func inventoryFilter(c *fiber.Ctx) (repository.InventoryItemFilter, error) {
	filter := repository.InventoryItemFilter{
		Status:         model.ItemStatus(strings.ToUpper(c.Query("status"))),
		TrackingNumber: c.Query("tracking_number"),
	}
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, err
		}
		filter.ProductID = &id
	}
	return filter, nil
}

func (h *InventoryHandler) GetInventoryItems(c *fiber.Ctx) error {
	filter, err := inventoryFilter(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	page := parsePage(c)

	items, total, err := h.items.FindPage(c.UserContext(), filter, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"data": items, "total": total, "offset": page.Offset, "limit": page.Limit})
}

func (h *InventoryHandler) ExportInventoryItems(c *fiber.Ctx) error {
	filter, err := inventoryFilter(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := exportContext(c, h.timeout)
	defer cancel()

	file, err := h.exporter.ExportInventoryItems(ctx, filter, format)
	if err != nil {
		return writeError(c, err)
	}
	return sendExport(c, file)
}
