// Package dto defines request and response payloads for the v1 API.
package dto

// ListResponse is the standard paginated envelope.
type ListResponse[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
}

// QtyPayload is a box/pack/piece triple as sent by clients.
type QtyPayload struct {
	BoxQty   int64 `json:"boxQty"`
	PackQty  int64 `json:"packQty"`
	PieceQty int64 `json:"pieceQty"`
}

// Pagination query parameters.
type Pagination struct {
	Limit  int `form:"limit,default=50"`
	Offset int `form:"offset,default=0"`
}
