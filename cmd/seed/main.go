// Package main seeds the database with sample catalog data for development.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"dairyledger/internal/config"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain/catalogs/partner"
	"dairyledger/internal/domain/catalogs/product"
	"dairyledger/internal/domain/ledger"
	"dairyledger/internal/domain/registers/dailystock"
	"dairyledger/internal/infrastructure/storage/postgres"
	"dairyledger/internal/infrastructure/storage/postgres/catalog_repo"
	"dairyledger/internal/infrastructure/storage/postgres/ledger_repo"
	"dairyledger/internal/infrastructure/storage/postgres/register_repo"
	"dairyledger/pkg/logger"
	"dairyledger/pkg/numerator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
		log.Fatalw("migration failed", "error", err)
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.DSN))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	products := product.NewService(catalog_repo.NewProductRepo(txManager), txManager)
	partners := partner.NewService(catalog_repo.NewPartnerRepo(txManager), txManager)

	sampleProducts := []struct {
		name  string
		price string
	}{
		{"Full Cream Milk 1L", "68.00"},
		{"Toned Milk 1L", "54.00"},
		{"Curd 500g", "45.00"},
		{"Paneer 200g", "95.00"},
		{"Butter 100g", "60.00"},
		{"Ghee 500ml", "320.00"},
	}

	for _, sp := range sampleProducts {
		p, err := products.Upsert(ctx, sp.name, types.MustMoney(sp.price))
		if err != nil {
			log.Fatalw("failed to seed product", "name", sp.name, "error", err)
		}
		log.Infow("product seeded", "id", p.ID, "name", p.Name)
	}

	samplePartners := []struct {
		name    string
		contact string
		role    partner.Role
	}{
		{"Walk-in Customer", "", partner.RoleCustomer},
		{"Sharma General Store", "98xxxxxx01", partner.RoleCustomer},
		{"Gupta Tea Stall", "98xxxxxx02", partner.RoleCustomer},
		{"Amul Distributor", "98xxxxxx10", partner.RoleSupplier},
		{"Local Dairy Farm", "98xxxxxx11", partner.RoleSupplier},
	}

	for _, sp := range samplePartners {
		p, err := partners.Upsert(ctx, sp.name, sp.contact, types.Zero(), sp.role)
		if err != nil {
			log.Fatalw("failed to seed partner", "name", sp.name, "error", err)
		}
		log.Infow("partner seeded", "id", p.ID, "name", p.Name, "role", p.Role)
	}

	// One sample trading day: a stock delivery followed by a credit sale.
	productRepo := catalog_repo.NewProductRepo(txManager)
	partnerRepo := catalog_repo.NewPartnerRepo(txManager)
	stockService := dailystock.NewService(register_repo.NewDailyStockRepo(txManager), productRepo, txManager)
	ledgerService := ledger.NewService(
		ledger_repo.NewTransactionRepo(txManager),
		stockService,
		productRepo,
		partnerRepo,
		numerator.New(pool.Unwrap()),
		txManager,
	)

	today := time.Now().UTC()
	mustQty := func(s string) types.Quantity {
		q, err := types.ParseQuantity(s)
		if err != nil {
			panic(err)
		}
		return q
	}

	purchase, err := ledgerService.Record(ctx, ledger.RecordRequest{
		Date:        today,
		Kind:        ledger.KindPurchase,
		PartnerName: "Amul Distributor",
		Items: []ledger.RecordItem{
			{ProductName: "Full Cream Milk 1L", Quantity: mustQty("40"), UnitPrice: types.MustMoney("52.00")},
			{ProductName: "Curd 500g", Quantity: mustQty("20"), UnitPrice: types.MustMoney("34.00")},
		},
		CashSettled:    types.MustMoney("2760.00"),
		PreviousCredit: types.Zero(),
		UpdatedCredit:  types.Zero(),
	})
	if err != nil {
		log.Fatalw("failed to seed purchase", "error", err)
	}
	log.Infow("purchase seeded", "number", purchase.Number, "total", purchase.TotalAmount.String())

	saleTotal := types.MustMoney("340.00")
	sale, err := ledgerService.Record(ctx, ledger.RecordRequest{
		Date:        today,
		Kind:        ledger.KindSale,
		PartnerName: "Sharma General Store",
		Items: []ledger.RecordItem{
			{ProductName: "Full Cream Milk 1L", Quantity: mustQty("5"), UnitPrice: types.MustMoney("68.00")},
		},
		CashSettled:    types.MustMoney("200.00"),
		PreviousCredit: types.Zero(),
		UpdatedCredit:  ledger.UpdatedCredit(types.Zero(), saleTotal, types.MustMoney("200.00")),
	})
	if err != nil {
		log.Fatalw("failed to seed sale", "error", err)
	}
	log.Infow("sale seeded", "number", sale.Number, "total", sale.TotalAmount.String())

	log.Info("seed complete")
}
