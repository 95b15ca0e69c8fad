package handler

import (
	"time"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ProductHandler struct {
	products service.ProductService
	importer service.ProductImportService
	exporter service.ExportService
	timeout  time.Duration
	log      *zap.Logger
}

func NewProductHandler(products service.ProductService, importer service.ProductImportService, exporter service.ExportService, exportTimeout time.Duration, log *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, importer: importer, exporter: exporter, timeout: exportTimeout, log: log.Named("product_handler")}
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.products.Create(c.UserContext(), &product, getActor(c)); err != nil {
		return writeError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.products.Update(c.UserContext(), id, &product, getActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	if err := h.products.Delete(c.UserContext(), id, getActor(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	product, err := h.products.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(product)
}

// GetProducts lists products. Query params: search, page, limit
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	page := parsePage(c)
	products, total, err := h.products.List(c.UserContext(), repository.ProductFilter{Search: c.Query("search")}, page)
	if err != nil {
		h.log.Error("list products", zap.Error(err))
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"data": products, "total": total, "offset": page.Offset, "limit": page.Limit})
}

func (h *ProductHandler) ImportProducts(c *fiber.Ctx) error {
	text, err := readCSV(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid upload"})
	}

	count, err := h.importer.Import(c.UserContext(), text, getActor(c))
	if err != nil {
		h.log.Warn("product import failed", zap.Error(err))
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Products imported", "count": count})
}

// ExportProducts streams a download. Query params: search, format (csv|xlsx)
func (h *ProductHandler) ExportProducts(c *fiber.Ctx) error {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := exportContext(c, h.timeout)
	defer cancel()

	file, err := h.exporter.ExportProducts(ctx, repository.ProductFilter{Search: c.Query("search")}, format)
	if err != nil {
		return writeError(c, err)
	}
	return sendExport(c, file)
}
