package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"anchorstock/internal/core/id"
	"anchorstock/internal/domain/audit"
)

var (
	_ audit.Recorder      = (*AuditService)(nil)
	_ audit.HistoryReader = (*AuditService)(nil)
)

// CompressionAlgo specifies how the changes payload is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// auditRow is the persisted shape of one audit entry.
type auditRow struct {
	ID                id.ID           `db:"id"`
	BaseID            id.ID           `db:"base_id"`
	EntityType        string          `db:"entity_type"`
	EntityID          id.ID           `db:"entity_id"`
	Action            audit.Action    `db:"action"`
	Actor             string          `db:"actor"`
	Changes           json.RawMessage `db:"changes"`
	ChangesCompressed []byte          `db:"changes_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditService records ledger mutations into sys_audit. Payloads over the
// threshold are zstd-compressed.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditService creates an audit recorder.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// Log implements audit.Recorder.
func (s *AuditService) Log(ctx context.Context, e audit.Entry) error {
	changes, err := json.Marshal(e.Changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}

	row := auditRow{
		ID:              id.New(),
		BaseID:          e.BaseID,
		EntityType:      e.EntityType,
		EntityID:        e.EntityID,
		Action:          e.Action,
		Actor:           e.Actor,
		Changes:         changes,
		CompressionAlgo: CompressionNone,
		CreatedAt:       time.Now().UTC(),
	}

	if len(row.Changes) > s.compressThreshold {
		row.ChangesCompressed = s.encoder.EncodeAll(row.Changes, nil)
		row.Changes = nil
		row.CompressionAlgo = CompressionZstd
	}

	sql := `
		INSERT INTO sys_audit (
			id, base_id, entity_type, entity_id, action, actor,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	querier := s.txManager.GetQuerier(ctx)
	_, err = querier.Exec(ctx, sql,
		row.ID, row.BaseID, row.EntityType, row.EntityID, row.Action, row.Actor,
		row.Changes, row.ChangesCompressed, row.CompressionAlgo, row.CreatedAt,
	)
	return err
}

// History implements audit.HistoryReader: the recorded trail for one entity,
// newest first, payloads decompressed.
func (s *AuditService) History(ctx context.Context, baseID, entityID id.ID, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 50
	}

	sql := `
		SELECT id, base_id, entity_type, entity_id, action, actor,
		       changes, changes_compressed, compression_algo, created_at
		FROM sys_audit
		WHERE base_id = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	var rows []auditRow
	querier := s.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, baseID, entityID, limit); err != nil {
		return nil, fmt.Errorf("select audit history: %w", err)
	}

	events := make([]audit.Event, 0, len(rows))
	for _, row := range rows {
		changes, err := s.decompress(row)
		if err != nil {
			return nil, err
		}
		events = append(events, audit.Event{
			ID:         row.ID,
			EntityType: row.EntityType,
			EntityID:   row.EntityID,
			Action:     row.Action,
			Actor:      row.Actor,
			Changes:    changes,
			CreatedAt:  row.CreatedAt,
		})
	}
	return events, nil
}

// decompress restores a compressed changes payload.
func (s *AuditService) decompress(row auditRow) (json.RawMessage, error) {
	if row.CompressionAlgo != CompressionZstd {
		return row.Changes, nil
	}
	out, err := s.decoder.DecodeAll(row.ChangesCompressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress changes: %w", err)
	}
	return out, nil
}
