// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"anchorstock/internal/core/id"
	"anchorstock/internal/core/unit"
	"anchorstock/internal/domain/catalogs/goods"
	"anchorstock/internal/domain/catalogs/handler"
	"anchorstock/internal/domain/catalogs/location"
	"anchorstock/internal/domain/purchase"
	"anchorstock/internal/infrastructure/storage/postgres"
	"anchorstock/internal/infrastructure/storage/postgres/catalog_repo"
	"anchorstock/internal/infrastructure/storage/postgres/order_repo"
	"anchorstock/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	baseID := id.New()
	if raw := os.Getenv("SEED_BASE_ID"); raw != "" {
		baseID, err = id.Parse(raw)
		if err != nil {
			log.Fatalw("invalid SEED_BASE_ID", "error", err)
		}
	}

	if err := seedDemoData(ctx, pool, log, baseID); err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	log.Infow("seeding completed successfully", "base_id", baseID)
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger, baseID id.ID) error {
	txm := postgres.NewTxManager(pool)
	goodsRepo := catalog_repo.NewGoodsRepo(txm)
	locationRepo := catalog_repo.NewLocationRepo(txm)
	handlerRepo := catalog_repo.NewHandlerRepo(txm)
	purchaseRepo := order_repo.NewPurchaseRepo(txm)

	// 1. Locations: one warehouse plus live rooms
	locations := []struct {
		code    string
		name    string
		locType location.Type
	}{
		{"LOC-001", "主仓库", location.TypeWarehouse},
		{"LOC-002", "直播间A", location.TypeLiveRoom},
		{"LOC-003", "直播间B", location.TypeLiveRoom},
	}

	var warehouseID id.ID
	for _, l := range locations {
		loc := location.New(baseID, l.code, l.name, l.locType)
		if err := locationRepo.Create(ctx, loc); err != nil {
			log.Warnw("failed to seed location", "name", l.name, "error", err)
			continue
		}
		if l.locType == location.TypeWarehouse && id.IsNil(warehouseID) {
			warehouseID = loc.ID
		}
	}

	// 2. Handlers (anchors)
	handlers := []struct {
		code  string
		name  string
		phone string
	}{
		{"HND-001", "小雨", "13800000001"},
		{"HND-002", "阿杰", "13800000002"},
	}

	for _, h := range handlers {
		rec := handler.New(baseID, h.code, h.name)
		rec.Phone = h.phone
		if err := handlerRepo.Create(ctx, rec); err != nil {
			log.Warnw("failed to seed handler", "name", h.name, "error", err)
		}
	}

	// 3. Goods with mixed-radix unit specs
	products := []struct {
		code         string
		name         map[string]string
		category     string
		packPerBox   int64
		piecePerPack int64
		threshold    *goods.Threshold
	}{
		{
			code:         "GD-001",
			name:         map[string]string{"zh": "面膜礼盒", "en": "Face Mask Gift Box"},
			category:     "美妆",
			packPerBox:   10,
			piecePerPack: 5,
			threshold:    &goods.Threshold{Enabled: true, Value: 3, Unit: goods.ThresholdBox},
		},
		{
			code:         "GD-002",
			name:         map[string]string{"zh": "洗发水套装", "en": "Shampoo Set"},
			category:     "日化",
			packPerBox:   6,
			piecePerPack: 2,
		},
		{
			code:         "GD-003",
			name:         map[string]string{"zh": "坚果零食大礼包", "en": "Nut Snack Pack"},
			category:     "食品",
			packPerBox:   8,
			piecePerPack: 10,
			threshold:    &goods.Threshold{Enabled: true, Value: 20, Unit: goods.ThresholdPack},
		},
	}

	var firstGoodsID id.ID
	for _, p := range products {
		g := goods.New(baseID, p.code, goods.NewLocalizedName(p.name), p.packPerBox, p.piecePerPack)
		g.Category = p.category
		g.Threshold = p.threshold
		if err := goodsRepo.Create(ctx, g); err != nil {
			log.Warnw("failed to seed goods", "code", p.code, "error", err)
			continue
		}
		if id.IsNil(firstGoodsID) {
			firstGoodsID = g.ID
		}
	}

	// 4. One open purchase order to receive against
	if !id.IsNil(firstGoodsID) {
		now := time.Now()
		order := purchase.NewOrder(baseID, "PO-DEMO-00001", now, "seed")
		order.SupplierName = "杭州供货商"
		order.OrderedAt = &now
		order.Items = []purchase.Item{{
			ID:        id.New(),
			OrderID:   order.ID,
			GoodsID:   firstGoodsID,
			LineNo:    1,
			Qty:       unit.Qty{Box: 50},
			UnitPrice: decimal.NewFromFloat(120.00),
		}}
		if err := purchaseRepo.Create(ctx, order); err != nil {
			log.Warnw("failed to seed purchase order", "error", err)
		}
	}

	log.Info("demo data seeded successfully")
	return nil
}
