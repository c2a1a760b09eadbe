package pipeline

// Landing-layer object names. The raw sources are copied into the landing
// bucket unchanged under these names.
const (
	ObjectClients   = "clients.csv"
	ObjectPurchases = "achats.csv"
)

// Table names. Each table is stored as "<name>.parquet" in its layer bucket.
const (
	TableClients   = "clients"
	TablePurchases = "achats"

	TableClientSummary    = "client_summary"
	TableProductAnalytics = "product_analytics"
	TableMonthlySales     = "monthly_sales"
	TableCountryAnalytics = "country_analytics"
)

const parquetExt = ".parquet"
