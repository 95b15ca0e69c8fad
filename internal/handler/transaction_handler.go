package handler

import (
	"strings"
	"time"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	transactions service.TransactionService
	importer     service.TransactionImportService
	exporter     service.ExportService
	timeout      time.Duration
	log          *zap.Logger
}

func NewTransactionHandler(transactions service.TransactionService, importer service.TransactionImportService, exporter service.ExportService, exportTimeout time.Duration, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		importer:     importer,
		exporter:     exporter,
		timeout:      exportTimeout,
		log:          log.Named("transaction_handler"),
	}
}

type statusRequest struct {
	Status model.TransactionStatus `json:"status"`
}

// transactionFilter reads ?direction=&status=&from=&to=&partner=
func transactionFilter(c *fiber.Ctx) (repository.TransactionFilter, error) {
	filter := repository.TransactionFilter{
		Direction: model.Direction(strings.ToUpper(c.Query("direction"))),
		Status:    model.TransactionStatus(strings.ToUpper(c.Query("status"))),
		Partner:   c.Query("partner"),
	}
	var err error
	if filter.From, err = parseDateQuery(c, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = parseDateQuery(c, "to"); err != nil {
		return filter, err
	}
	return filter, nil
}

func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var tx model.Transaction
	if err := c.BodyParser(&tx); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	created, err := h.transactions.Create(c.UserContext(), &tx, getActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Transaction scheduled", "data": created})
}

func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	var tx model.Transaction
	if err := c.BodyParser(&tx); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.transactions.Update(c.UserContext(), id, &tx, getActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction updated", "data": updated})
}

// UpdateStatus completes or reopens a transaction, reconciling stock.
func (h *TransactionHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	change, err := h.transactions.UpdateStatus(c.UserContext(), id, model.TransactionStatus(strings.ToUpper(string(req.Status))), getActor(c))
	if err != nil {
		return writeError(c, err)
	}

	resp := fiber.Map{"message": "Status updated", "data": change}
	if change.Ledger != nil && !change.Ledger.Complete() {
		resp["warning"] = "Some line items were skipped while updating stock"
	}
	return c.JSON(resp)
}

func (h *TransactionHandler) DuplicateTransaction(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	dup, err := h.transactions.Duplicate(c.UserContext(), id, getActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Transaction duplicated", "data": dup})
}

func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	if err := h.transactions.Delete(c.UserContext(), id, getActor(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction deleted"})
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	tx, err := h.transactions.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(tx)
}

func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	filter, err := transactionFilter(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	page := parsePage(c)

	txs, total, err := h.transactions.List(c.UserContext(), filter, page)
	if err != nil {
		h.log.Error("list transactions", zap.Error(err))
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"data": txs, "total": total, "offset": page.Offset, "limit": page.Limit})
}

// ImportTransactions succeeds with a warning when some lines were skipped.
func (h *TransactionHandler) ImportTransactions(c *fiber.Ctx) error {
	text, err := readCSV(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid upload"})
	}

	res, err := h.importer.Import(c.UserContext(), text, getActor(c))
	if err != nil {
		h.log.Warn("transaction import failed", zap.Error(err))
		return writeError(c, err)
	}

	resp := fiber.Map{"message": "Transactions imported", "data": res}
	if w := res.Warning(); w != "" {
		resp["warning"] = w
	}
	return c.JSON(resp)
}

func (h *TransactionHandler) ExportTransactions(c *fiber.Ctx) error {
	filter, err := transactionFilter(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := exportContext(c, h.timeout)
	defer cancel()

	file, err := h.exporter.ExportTransactions(ctx, filter, format)
	if err != nil {
		return writeError(c, err)
	}
	return sendExport(c, file)
}
