package postgres

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditDecompress(t *testing.T) {
	s, err := NewAuditService(nil)
	require.NoError(t, err)

	t.Run("uncompressed payload passes through", func(t *testing.T) {
		raw := json.RawMessage(`{"qty":3}`)
		got, err := s.decompress(auditRow{Changes: raw, CompressionAlgo: CompressionNone})
		require.NoError(t, err)
		assert.Equal(t, raw, got)
	})

	t.Run("zstd payload restored", func(t *testing.T) {
		payload, err := json.Marshal(map[string]string{
			"note": string(bytes.Repeat([]byte("x"), 20*1024)),
		})
		require.NoError(t, err)

		row := auditRow{
			ChangesCompressed: s.encoder.EncodeAll(payload, nil),
			CompressionAlgo:   CompressionZstd,
		}
		assert.Less(t, len(row.ChangesCompressed), len(payload))

		got, err := s.decompress(row)
		require.NoError(t, err)
		assert.Equal(t, json.RawMessage(payload), got)
	})

	t.Run("corrupt zstd payload errors", func(t *testing.T) {
		_, err := s.decompress(auditRow{
			ChangesCompressed: []byte("not zstd"),
			CompressionAlgo:   CompressionZstd,
		})
		require.Error(t, err)
	})
}
