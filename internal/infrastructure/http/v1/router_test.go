package v1

import (
	"context"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anchorstock/internal/core/id"
	"anchorstock/internal/domain/audit"
)

// The stock handlers read their ids from path params, so every registered
// stock route must define the params its handler parses; a route missing one
// rejects every request with an invalid-id error before the service runs.
func TestStockRoutesDefineHandlerParams(t *testing.T) {
	router := NewRouter(RouterConfig{})

	// method+path → handler func name
	registered := map[string]string{}
	for _, r := range router.Routes() {
		registered[r.Method+" "+r.Path] = r.Handler
	}

	tests := []struct {
		route   string
		handler string
	}{
		{"GET /api/v1/bases/:baseId/stock/goods/:goodsId/locations/:locationId", "GetStock"},
		{"GET /api/v1/bases/:baseId/stock/goods/:goodsId/locations", "GetByLocations"},
		{"POST /api/v1/bases/:baseId/stock/goods/:goodsId/locations/:locationId/check", "CheckSufficiency"},
		{"GET /api/v1/bases/:baseId/stock/snapshot", "Snapshot"},
		{"DELETE /api/v1/bases/:baseId/stock/snapshot/cache", "ClearCache"},
	}
	for _, tt := range tests {
		name, ok := registered[tt.route]
		require.True(t, ok, "route %s not registered", tt.route)
		assert.True(t, strings.HasSuffix(name, "."+tt.handler+"-fm"),
			"route %s bound to %s, want %s", tt.route, name, tt.handler)
	}
}

func TestRecordRoutesRegistered(t *testing.T) {
	router := NewRouter(RouterConfig{})

	registered := map[string]bool{}
	for _, r := range router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, route := range []string{
		"POST /api/v1/bases/:baseId/arrivals",
		"DELETE /api/v1/bases/:baseId/arrivals/:recordId",
		"POST /api/v1/bases/:baseId/transfers",
		"PATCH /api/v1/bases/:baseId/transfers/:recordId/status",
		"POST /api/v1/bases/:baseId/stock-outs",
		"GET /api/v1/bases/:baseId/consumptions/opening",
		"POST /api/v1/bases/:baseId/consumptions/import",
		"PUT /api/v1/bases/:baseId/consumptions/:recordId",
		"POST /api/v1/bases/:baseId/purchase-orders",
		"PATCH /api/v1/bases/:baseId/purchase-orders/:orderId/status",
		"GET /health/live",
		"GET /health/ready",
	} {
		assert.True(t, registered[route], "route %s not registered", route)
	}
}

type fakeHistory struct{}

func (fakeHistory) History(context.Context, id.ID, id.ID, int) ([]audit.Event, error) {
	return nil, nil
}

func TestAuditRouteGatedOnHistoryReader(t *testing.T) {
	const route = "GET /api/v1/bases/:baseId/audit/:entityId"

	has := func(router *gin.Engine) bool {
		for _, r := range router.Routes() {
			if r.Method+" "+r.Path == route {
				return true
			}
		}
		return false
	}

	assert.False(t, has(NewRouter(RouterConfig{})), "no reader, no endpoint")
	assert.True(t, has(NewRouter(RouterConfig{History: fakeHistory{}})))
}
