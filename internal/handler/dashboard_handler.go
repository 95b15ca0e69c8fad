package handler

import (
	"strconv"
	"time"

	"go-inventory-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service  service.DashboardService
	exporter service.ExportService
	timeout  time.Duration
}

func NewDashboardHandler(s service.DashboardService, exporter service.ExportService, exportTimeout time.Duration) *DashboardHandler {
	return &DashboardHandler{service: s, exporter: exporter, timeout: exportTimeout}
}

func parseDays(c *fiber.Ctx) int {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil || days <= 0 {
		days = 7
	}
	return days
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days := parseDays(c)
	data, err := h.service.GetStockMovement(c.UserContext(), days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch stock movement"})
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// ExportStockMovement downloads the same report. Query params: days, format
func (h *DashboardHandler) ExportStockMovement(c *fiber.Ctx) error {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := exportContext(c, h.timeout)
	defer cancel()

	file, err := h.exporter.ExportStockMovement(ctx, parseDays(c), format)
	if err != nil {
		return writeError(c, err)
	}
	return sendExport(c, file)
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}

	return c.JSON(stats)
}
