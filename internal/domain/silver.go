package domain

import "time"

// CleanClient is a validated-layer client row: deduplicated by id, with
// normalized email/name/country and a parsed registration timestamp.
type CleanClient struct {
	ClientID     int64      `parquet:"id_client" bson:"id_client"`
	Name         string     `parquet:"nom" bson:"nom"`
	Email        string     `parquet:"email" bson:"email"`
	Country      string     `parquet:"pays" bson:"pays"`
	RegisteredAt *time.Time `parquet:"date_inscription,optional" bson:"date_inscription"`
	EmailValid   bool       `parquet:"is_email_valid" bson:"is_email_valid"`
	ProcessedAt  time.Time  `parquet:"processed_at" bson:"processed_at"`
}

// CleanPurchase is a validated-layer purchase row. Every ClientID resolves
// to a CleanClient and Amount is strictly positive. The calendar columns are
// null whenever the purchase timestamp could not be parsed.
type CleanPurchase struct {
	PurchaseID  int64      `parquet:"id_achat" bson:"id_achat"`
	ClientID    int64      `parquet:"id_client" bson:"id_client"`
	Product     string     `parquet:"produit" bson:"produit"`
	Amount      float64    `parquet:"montant" bson:"montant"`
	PurchasedAt *time.Time `parquet:"date_achat,optional" bson:"date_achat"`
	Year        *int32     `parquet:"annee_achat,optional" bson:"annee_achat"`
	Month       *int32     `parquet:"mois_achat,optional" bson:"mois_achat"`
	Day         *int32     `parquet:"jour_achat,optional" bson:"jour_achat"`
	Weekday     *string    `parquet:"jour_semaine,optional" bson:"jour_semaine"`
	ProcessedAt time.Time  `parquet:"processed_at" bson:"processed_at"`
}
