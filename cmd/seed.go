package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/moa/storefront/internal/config"
	"github.com/moa/storefront/internal/constants"
	"github.com/moa/storefront/internal/id"
	"github.com/moa/storefront/internal/infra"
	"github.com/moa/storefront/internal/log"
)

type seedProduct struct {
	name       string
	category   string
	skuPrefix  string
	priceMinor int64
}

// Fixture catalog for local runs and demos. SKUs are minted per run, so
// seeding twice inserts fresh rows rather than upserting.
var seedProducts = []seedProduct{
	{name: "Oak Dining Table", category: "tables", skuPrefix: "TBL", priceMinor: 450000},
	{name: "Walnut Bookshelf", category: "storage", skuPrefix: "STG", priceMinor: 219900},
	{name: "Linen Sofa", category: "sofas", skuPrefix: "SOF", priceMinor: 1200000},
	{name: "Rattan Armchair", category: "chairs", skuPrefix: "CHR", priceMinor: 89900},
	{name: "Teak Sideboard", category: "storage", skuPrefix: "STG", priceMinor: 250000},
	{name: "Marble Coffee Table", category: "tables", skuPrefix: "TBL", priceMinor: 179900},
	{name: "Velvet Ottoman", category: "chairs", skuPrefix: "CHR", priceMinor: 44900},
	{name: "Ash Bed Frame", category: "beds", skuPrefix: "BED", priceMinor: 699000},
}

func runCatalogSeeder(c context.Context) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppCatalogSeeder).
		Str(log.KeyTag, "main runCatalogSeeder").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.AppCartService)
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	db := infra.NewDatabaseClient(c, cfg.Database)
	defer db.Close()
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(log.KeyProcess, "seeding products").Logger()
	gen := id.NewGenerator()
	for sequence, product := range seedProducts {
		sku := gen.NewSku(product.skuPrefix, sequence+1)
		_, err := db.Exec(c, `
			insert into products (id, sku, name, image_url, category, price_minor, created_at)
			values ($1, $2, $3, '', $4, $5, $6)`,
			gen.NewPublicID(),
			sku,
			product.name,
			product.category,
			product.priceMinor,
			time.Now(),
		)
		if err != nil {
			err = fmt.Errorf("failed seeding product with error=%w", err)
			logger.Fatal().Err(err).Str(log.KeySku, sku).Msg(err.Error())
		}
		logger.Info().Str(log.KeySku, sku).Msgf("seeded product %s", product.name)
	}
	logger.Info().Msgf("seeded %d products", len(seedProducts))
}
