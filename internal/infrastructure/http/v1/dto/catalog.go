package dto

// CreateGoodsRequest creates a catalog good. Name accepts either a bare
// string or a locale map, matching the storage format.
type CreateGoodsRequest struct {
	Code         string            `json:"code" binding:"required"`
	Name         string            `json:"name"`
	Names        map[string]string `json:"names"`
	Category     string            `json:"category"`
	PackPerBox   int64             `json:"packPerBox" binding:"required"`
	PiecePerPack int64             `json:"piecePerPack" binding:"required"`
	Threshold    *ThresholdPayload `json:"threshold"`
}

// UpdateGoodsRequest mirrors the create shape plus activity.
type UpdateGoodsRequest struct {
	Name         string            `json:"name"`
	Names        map[string]string `json:"names"`
	Category     string            `json:"category"`
	PackPerBox   int64             `json:"packPerBox"`
	PiecePerPack int64             `json:"piecePerPack"`
	Active       *bool             `json:"active"`
	Threshold    *ThresholdPayload `json:"threshold"`
}

// ThresholdPayload is a per-good or base-wide low-stock threshold.
type ThresholdPayload struct {
	Enabled bool   `json:"enabled"`
	Value   int64  `json:"value"`
	Unit    string `json:"unit"`
}

// CreateLocationRequest creates a warehouse or live room.
type CreateLocationRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"`
}

// CreateHandlerRequest creates a stock handler.
type CreateHandlerRequest struct {
	Code  string `json:"code" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
}
