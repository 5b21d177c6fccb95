package constants

const (
	AppCartService   = "cart-service"
	AppCatalogSeeder = "catalog-seeder"
)
