package domain

import "time"

// ClientSummary is the per-client gold row: identity columns joined with
// purchase statistics. Amount bounds, purchase dates, the favorite product
// and the registration-derived metrics are null for clients without the
// underlying data.
type ClientSummary struct {
	ClientID     int64      `parquet:"id_client" bson:"id_client"`
	Name         string     `parquet:"nom" bson:"nom"`
	Email        string     `parquet:"email" bson:"email"`
	Country      string     `parquet:"pays" bson:"pays"`
	RegisteredAt *time.Time `parquet:"date_inscription,optional" bson:"date_inscription"`
	EmailValid   bool       `parquet:"is_email_valid" bson:"is_email_valid"`

	PurchaseCount int64      `parquet:"nb_achats" bson:"nb_achats"`
	TotalAmount   float64    `parquet:"montant_total" bson:"montant_total"`
	MeanAmount    float64    `parquet:"montant_moyen" bson:"montant_moyen"`
	MinAmount     *float64   `parquet:"montant_min,optional" bson:"montant_min"`
	MaxAmount     *float64   `parquet:"montant_max,optional" bson:"montant_max"`
	FirstPurchase *time.Time `parquet:"premier_achat,optional" bson:"premier_achat"`
	LastPurchase  *time.Time `parquet:"dernier_achat,optional" bson:"dernier_achat"`
	FavoriteItem  *string    `parquet:"produit_favori,optional" bson:"produit_favori"`

	DaysSinceRegistration *int64   `parquet:"jours_depuis_inscription,optional" bson:"jours_depuis_inscription"`
	AnnualizedValue       *float64 `parquet:"valeur_client,optional" bson:"valeur_client"`

	ProcessedAt time.Time `parquet:"processed_at" bson:"processed_at"`
}

// ProductAnalytics is the per-product gold row, sorted by revenue.
type ProductAnalytics struct {
	Product        string     `parquet:"produit" bson:"produit"`
	SalesCount     int64      `parquet:"nb_ventes" bson:"nb_ventes"`
	TotalRevenue   float64    `parquet:"revenu_total" bson:"revenu_total"`
	MeanPrice      float64    `parquet:"prix_moyen" bson:"prix_moyen"`
	MinPrice       float64    `parquet:"prix_min" bson:"prix_min"`
	MaxPrice       float64    `parquet:"prix_max" bson:"prix_max"`
	UniqueClients  int64      `parquet:"nb_clients_uniques" bson:"nb_clients_uniques"`
	FirstSale      *time.Time `parquet:"premiere_vente,optional" bson:"premiere_vente"`
	LastSale       *time.Time `parquet:"derniere_vente,optional" bson:"derniere_vente"`
	MarketSharePct float64    `parquet:"part_marche_pct" bson:"part_marche_pct"`
	ProcessedAt    time.Time  `parquet:"processed_at" bson:"processed_at"`
}

// MonthlySales is the per-calendar-month gold row (Month is "YYYY-MM").
// Purchases without a parsed timestamp belong to no month.
type MonthlySales struct {
	Month         string    `parquet:"annee_mois" bson:"annee_mois"`
	SalesCount    int64     `parquet:"nb_ventes" bson:"nb_ventes"`
	TotalRevenue  float64   `parquet:"revenu_total" bson:"revenu_total"`
	MeanBasket    float64   `parquet:"panier_moyen" bson:"panier_moyen"`
	UniqueClients int64     `parquet:"nb_clients_uniques" bson:"nb_clients_uniques"`
	TopProduct    string    `parquet:"top_produit" bson:"top_produit"`
	ProcessedAt   time.Time `parquet:"processed_at" bson:"processed_at"`
}

// CountryAnalytics is the per-country gold row, covering every country seen
// in the validated client table, including ones with zero purchases.
type CountryAnalytics struct {
	Country          string    `parquet:"pays" bson:"pays"`
	PurchaseCount    int64     `parquet:"nb_achats" bson:"nb_achats"`
	TotalRevenue     float64   `parquet:"revenu_total" bson:"revenu_total"`
	MeanBasket       *float64  `parquet:"panier_moyen,optional" bson:"panier_moyen"`
	ActiveClients    int64     `parquet:"nb_clients_actifs" bson:"nb_clients_actifs"`
	TotalClients     int64     `parquet:"nb_clients_total" bson:"nb_clients_total"`
	RevenuePerClient float64   `parquet:"revenu_par_client" bson:"revenu_par_client"`
	ConversionPct    float64   `parquet:"taux_conversion_pct" bson:"taux_conversion_pct"`
	ProcessedAt      time.Time `parquet:"processed_at" bson:"processed_at"`
}
