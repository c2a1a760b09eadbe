package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/dvloznov/ecommerce-pipeline/internal/domain"
)

var (
	clientColumns   = []string{"id_client", "nom", "email", "pays", "date_inscription"}
	purchaseColumns = []string{"id_achat", "id_client", "produit", "montant", "date_achat"}
)

// DecodeClients parses the raw clients CSV. Column presence is validated
// here, at the raw-to-validated boundary; extra columns are ignored.
func DecodeClients(data []byte) ([]domain.RawClient, error) {
	records, idx, err := decodeCSV(data, "clients", clientColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.RawClient, 0, len(records))
	for _, rec := range records {
		rows = append(rows, domain.RawClient{
			ClientID:     rec[idx["id_client"]],
			Name:         rec[idx["nom"]],
			Email:        rec[idx["email"]],
			Country:      rec[idx["pays"]],
			RegisteredAt: rec[idx["date_inscription"]],
		})
	}
	return rows, nil
}

// DecodePurchases parses the raw purchases CSV.
func DecodePurchases(data []byte) ([]domain.RawPurchase, error) {
	records, idx, err := decodeCSV(data, "achats", purchaseColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.RawPurchase, 0, len(records))
	for _, rec := range records {
		rows = append(rows, domain.RawPurchase{
			PurchaseID:  rec[idx["id_achat"]],
			ClientID:    rec[idx["id_client"]],
			Product:     rec[idx["produit"]],
			Amount:      rec[idx["montant"]],
			PurchasedAt: rec[idx["date_achat"]],
		})
	}
	return rows, nil
}

// decodeCSV reads all records and maps the required column names to their
// positions in the header.
func decodeCSV(data []byte, table string, required []string) ([][]string, map[string]int, error) {
	r := csv.NewReader(bytes.NewReader(data))

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s header: %w", table, err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, nil, &MissingColumnError{Table: table, Column: col}
		}
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s records: %w", table, err)
	}
	return records, idx, nil
}
