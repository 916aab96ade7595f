package goods

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameResolve(t *testing.T) {
	localized := NewLocalizedName(map[string]string{"zh": "面膜", "en": "Face Mask"})

	assert.Equal(t, "Face Mask", localized.Resolve("en"))
	assert.Equal(t, "面膜", localized.Resolve("zh"))
	assert.Equal(t, "面膜", localized.Resolve("fr"), "unknown locale falls back to default")

	// no default-locale entry: any non-empty translation wins
	enOnly := NewLocalizedName(map[string]string{"en": "Face Mask"})
	assert.Equal(t, "Face Mask", enOnly.Resolve("fr"))

	legacy := NewLegacyName("面膜")
	assert.Equal(t, "面膜", legacy.Resolve("en"))
	assert.False(t, legacy.IsLocalized())
}

func TestNameMatches(t *testing.T) {
	localized := NewLocalizedName(map[string]string{"zh": "面膜", "en": "Face Mask"})

	assert.True(t, localized.Matches("面膜"))
	assert.True(t, localized.Matches("Face Mask"))
	assert.False(t, localized.Matches("Mask"))
	assert.False(t, localized.Matches(""))

	legacy := NewLegacyName("面膜")
	assert.True(t, legacy.Matches("面膜"))
	assert.False(t, legacy.Matches("Face Mask"))
}

func TestNameJSON(t *testing.T) {
	t.Run("localized round trip", func(t *testing.T) {
		b, err := json.Marshal(NewLocalizedName(map[string]string{"zh": "面膜", "en": "Face Mask"}))
		require.NoError(t, err)

		var got Name
		require.NoError(t, json.Unmarshal(b, &got))
		assert.True(t, got.IsLocalized())
		assert.Equal(t, "Face Mask", got.Resolve("en"))
	})

	t.Run("legacy string round trip", func(t *testing.T) {
		b, err := json.Marshal(NewLegacyName("面膜"))
		require.NoError(t, err)
		assert.Equal(t, `"面膜"`, string(b))

		var got Name
		require.NoError(t, json.Unmarshal(b, &got))
		assert.False(t, got.IsLocalized())
		assert.Equal(t, "面膜", got.String())
	})
}

func TestNameScan(t *testing.T) {
	t.Run("json object", func(t *testing.T) {
		var n Name
		require.NoError(t, n.Scan([]byte(`{"zh":"面膜","en":"Face Mask"}`)))
		assert.Equal(t, "Face Mask", n.Resolve("en"))
	})

	t.Run("json string", func(t *testing.T) {
		var n Name
		require.NoError(t, n.Scan(`"面膜"`))
		assert.Equal(t, "面膜", n.String())
	})

	t.Run("pre-json bare text", func(t *testing.T) {
		var n Name
		require.NoError(t, n.Scan("面膜"))
		assert.Equal(t, "面膜", n.String())
	})

	t.Run("null", func(t *testing.T) {
		var n Name
		require.NoError(t, n.Scan(nil))
		assert.Equal(t, "", n.String())
	})
}
