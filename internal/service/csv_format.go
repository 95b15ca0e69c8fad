package service

import (
	"strings"
	"time"

	"go-inventory-tracker/internal/model"
)

// Canonical transaction CSV fields. Columns are located by header name, so the
// order and the optional columns may vary between files.
const (
	colDate              = "date"
	colDirection         = "direction"
	colCategory          = "category"
	colStatus            = "status"
	colProductName       = "product_name"
	colProductCode       = "product_code"
	colQuantity          = "quantity"
	colUnitPrice         = "unit_price"
	colPartner           = "partner"
	colTrackingID        = "tracking_id"
	colOrderCode         = "order_code"
	colShippingCode      = "shipping_code"
	colPurchaseOrderCode = "purchase_order_code"
	colOrderDate         = "order_date"
	colCustomerName      = "customer_name"
	colOrderID           = "order_id"
	colMemo              = "memo"
)

var transactionHeaderAliases = map[string][]string{
	colDate:              {"日付", "date"},
	colDirection:         {"区分", "種別", "入出庫", "type", "direction"},
	colCategory:          {"カテゴリ", "カテゴリー", "category"},
	colStatus:            {"ステータス", "状態", "status"},
	colProductName:       {"商品名", "product_name", "product"},
	colProductCode:       {"商品コード", "product_code", "sku"},
	colQuantity:          {"数量", "quantity", "qty"},
	colUnitPrice:         {"単価", "unit_price", "price"},
	colPartner:           {"取引先", "partner"},
	colTrackingID:        {"管理番号", "tracking_id"},
	colOrderCode:         {"注文コード", "order_code"},
	colShippingCode:      {"追跡コード", "追跡番号", "shipping_code"},
	colPurchaseOrderCode: {"発注コード", "purchase_order_code"},
	colOrderDate:         {"注文日", "order_date"},
	colCustomerName:      {"顧客名", "customer_name"},
	colOrderID:           {"注文ID", "order_id"},
	colMemo:              {"メモ", "備考", "memo"},
}

var transactionHeaderLookup = func() map[string]string {
	m := make(map[string]string)
	for field, names := range transactionHeaderAliases {
		for _, n := range names {
			m[strings.ToLower(n)] = field
		}
	}
	return m
}()

// transactionExportHeader is the current-format header written by exports.
var transactionExportHeader = []string{
	"日付", "区分", "カテゴリ", "ステータス", "商品名", "商品コード", "数量", "単価", "取引先",
	"管理番号", "注文コード", "追跡コード", "発注コード", "注文日", "顧客名", "注文ID", "メモ",
}

// headerIndex maps canonical field names to column positions. The first
// column claiming a field wins.
type headerIndex map[string]int

func buildHeaderIndex(header []string) headerIndex {
	idx := make(headerIndex)
	for i, h := range header {
		field, ok := transactionHeaderLookup[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, taken := idx[field]; !taken {
			idx[field] = i
		}
	}
	return idx
}

func (h headerIndex) get(row []string, field string) string {
	i, ok := h[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// isCurrentTransactionHeader checks the two-cell format signature: a date
// column first, a direction column second.
func isCurrentTransactionHeader(header []string) bool {
	if len(header) < 2 {
		return false
	}
	first := transactionHeaderLookup[strings.ToLower(strings.TrimSpace(header[0]))]
	second := transactionHeaderLookup[strings.ToLower(strings.TrimSpace(header[1]))]
	return first == colDate && second == colDirection
}

var directionTokens = map[string]model.Direction{
	"in":  model.TxIn,
	"入庫":  model.TxIn,
	"入":   model.TxIn,
	"入荷":  model.TxIn,
	"out": model.TxOut,
	"出庫":  model.TxOut,
	"出":   model.TxOut,
	"出荷":  model.TxOut,
}

func parseDirection(s string) (model.Direction, bool) {
	d, ok := directionTokens[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

var statusTokens = map[string]model.TransactionStatus{
	"scheduled": model.StatusScheduled,
	"予定":        model.StatusScheduled,
	"未完了":       model.StatusScheduled,
	"completed": model.StatusCompleted,
	"complete":  model.StatusCompleted,
	"完了":        model.StatusCompleted,
	"済":         model.StatusCompleted,
}

// parseStatus defaults to SCHEDULED for blank or unknown values.
func parseStatus(s string) model.TransactionStatus {
	if st, ok := statusTokens[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st
	}
	return model.StatusScheduled
}

var categoryTokens = map[string]model.Category{
	"restock": model.CategoryRestock,
	"入荷":      model.CategoryRestock,
	"仕入":      model.CategoryRestock,
	"return":  model.CategoryReturn,
	"返品":      model.CategoryReturn,
	"audit":   model.CategoryAudit,
	"棚卸":      model.CategoryAudit,
	"棚卸し":     model.CategoryAudit,
	"ship":    model.CategoryShip,
	"出荷":      model.CategoryShip,
	"resend":  model.CategoryResend,
	"再送":      model.CategoryResend,
}

// parseCategory falls back to the direction's default for blank, unknown or
// mismatched values.
func parseCategory(s string, d model.Direction) model.Category {
	c, ok := categoryTokens[strings.ToLower(strings.TrimSpace(s))]
	if !ok || !c.Allows(d) {
		return model.DefaultCategory(d)
	}
	return c
}

var (
	directionLabels = map[model.Direction]string{model.TxIn: "入庫", model.TxOut: "出庫"}
	statusLabels    = map[model.TransactionStatus]string{model.StatusScheduled: "予定", model.StatusCompleted: "完了"}
	categoryLabels  = map[model.Category]string{
		model.CategoryRestock: "入荷",
		model.CategoryReturn:  "返品",
		model.CategoryAudit:   "棚卸",
		model.CategoryShip:    "出荷",
		model.CategoryResend:  "再送",
	}
	itemStatusLabels = map[model.ItemStatus]string{model.ItemInStock: "在庫", model.ItemShipped: "出荷済"}
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006-1-2",
	"2006.01.02",
	"2006年1月2日",
	"2006/1/2 15:04",
	"2006/1/2 15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.DateOnly(t), true
		}
	}
	return time.Time{}, false
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
