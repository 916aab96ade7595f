package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateArrivalRequest records a receipt against a purchase order. The good
// is implied by the order, not sent by the client.
type CreateArrivalRequest struct {
	PurchaseOrderID string          `json:"purchaseOrderId" binding:"required"`
	LocationID      string          `json:"locationId" binding:"required"`
	HandlerID       string          `json:"handlerId"`
	Date            time.Time       `json:"date" binding:"required"`
	Qty             QtyPayload      `json:"qty"`
	LogisticsFee    decimal.Decimal `json:"logisticsFee"`
}

// CreateTransferRequest moves stock between two locations.
type CreateTransferRequest struct {
	GoodsID               string     `json:"goodsId" binding:"required"`
	SourceLocationID      string     `json:"sourceLocationId" binding:"required"`
	DestinationLocationID string     `json:"destinationLocationId" binding:"required"`
	SourceHandlerID       string     `json:"sourceHandlerId"`
	DestinationHandlerID  string     `json:"destinationHandlerId"`
	Date                  time.Time  `json:"date" binding:"required"`
	Qty                   QtyPayload `json:"qty"`
	Remark                string     `json:"remark"`
}

// UpdateTransferStatusRequest moves a transfer through its workflow.
type UpdateTransferStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateStockOutRequest writes stock off a location.
type CreateStockOutRequest struct {
	GoodsID    string     `json:"goodsId" binding:"required"`
	LocationID string     `json:"locationId" binding:"required"`
	HandlerID  string     `json:"handlerId"`
	Date       time.Time  `json:"date" binding:"required"`
	Qty        QtyPayload `json:"qty"`
	Reason     string     `json:"reason"`
}

// CreateConsumptionRequest reconciles a handler's opening/closing balances.
type CreateConsumptionRequest struct {
	GoodsID    string     `json:"goodsId" binding:"required"`
	LocationID string     `json:"locationId" binding:"required"`
	HandlerID  string     `json:"handlerId" binding:"required"`
	Date       time.Time  `json:"date" binding:"required"`
	Opening    QtyPayload `json:"opening"`
	Closing    QtyPayload `json:"closing"`
}

// ImportConsumptionRequest is the spreadsheet-import form: catalog references
// by name, opening always derived from the ledger.
type ImportConsumptionRequest struct {
	Rows []ImportConsumptionRow `json:"rows" binding:"required"`
}

type ImportConsumptionRow struct {
	GoodsName    string     `json:"goodsName" binding:"required"`
	LocationName string     `json:"locationName" binding:"required"`
	HandlerName  string     `json:"handlerName" binding:"required"`
	Date         time.Time  `json:"date" binding:"required"`
	Closing      QtyPayload `json:"closing"`
}

// ImportConsumptionResult reports per-row outcomes; one bad row does not
// abort the batch.
type ImportConsumptionResult struct {
	Created int               `json:"created"`
	Failed  int               `json:"failed"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// CreatePurchaseOrderRequest creates an order with line items. An empty
// number is auto-generated.
type CreatePurchaseOrderRequest struct {
	Number       string                     `json:"number"`
	SupplierName string                     `json:"supplierName"`
	Date         time.Time                  `json:"date" binding:"required"`
	Items        []PurchaseOrderItemPayload `json:"items" binding:"required"`
}

type PurchaseOrderItemPayload struct {
	GoodsID   string          `json:"goodsId" binding:"required"`
	Qty       QtyPayload      `json:"qty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}
