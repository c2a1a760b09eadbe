package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/dvloznov/ecommerce-pipeline/internal/domain"
)

func cleanPurchase(id, clientID int64, product string, amount float64, day string) domain.CleanPurchase {
	p := domain.CleanPurchase{
		PurchaseID:  id,
		ClientID:    clientID,
		Product:     product,
		Amount:      amount,
		ProcessedAt: testNow,
	}
	if day != "" {
		p.PurchasedAt = parseTimestamp(day)
	}
	return p
}

func cleanClient(id int64, country, registered string) domain.CleanClient {
	return domain.CleanClient{
		ClientID:     id,
		Country:      country,
		RegisteredAt: parseTimestamp(registered),
		ProcessedAt:  testNow,
	}
}

func TestBuildClientSummary_PurchaseStatistics(t *testing.T) {
	clients := []domain.CleanClient{cleanClient(1, "France", "2024-01-01")}
	purchases := []domain.CleanPurchase{
		cleanPurchase(100, 1, "A", 10, "2024-03-01"),
		cleanPurchase(101, 1, "B", 20, "2024-03-02"),
		cleanPurchase(102, 1, "B", 20, "2024-03-03"),
	}

	out := BuildClientSummary(clients, purchases, testNow)
	if len(out) != 1 {
		t.Fatalf("got %d rows, want 1", len(out))
	}
	s := out[0]
	if s.PurchaseCount != 3 {
		t.Errorf("PurchaseCount = %d, want 3", s.PurchaseCount)
	}
	if s.TotalAmount != 50.0 {
		t.Errorf("TotalAmount = %v, want 50.0", s.TotalAmount)
	}
	if s.MeanAmount != 16.67 {
		t.Errorf("MeanAmount = %v, want 16.67", s.MeanAmount)
	}
	if s.MinAmount == nil || *s.MinAmount != 10 || s.MaxAmount == nil || *s.MaxAmount != 20 {
		t.Errorf("amount bounds = %v/%v, want 10/20", s.MinAmount, s.MaxAmount)
	}
	if s.FavoriteItem == nil || *s.FavoriteItem != "B" {
		t.Errorf("FavoriteItem = %v, want B", s.FavoriteItem)
	}
	if s.FirstPurchase == nil || !s.FirstPurchase.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("FirstPurchase = %v", s.FirstPurchase)
	}
	if s.LastPurchase == nil || !s.LastPurchase.Equal(time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("LastPurchase = %v", s.LastPurchase)
	}
}

func TestBuildClientSummary_FavoriteTieBreaksByLabel(t *testing.T) {
	clients := []domain.CleanClient{cleanClient(1, "France", "2024-01-01")}
	purchases := []domain.CleanPurchase{
		cleanPurchase(100, 1, "Zebra", 10, "2024-03-01"),
		cleanPurchase(101, 1, "Apple", 10, "2024-03-02"),
	}

	out := BuildClientSummary(clients, purchases, testNow)
	if out[0].FavoriteItem == nil || *out[0].FavoriteItem != "Apple" {
		t.Errorf("FavoriteItem = %v, want Apple (tie broken by label)", out[0].FavoriteItem)
	}
}

func TestBuildClientSummary_ClientWithoutPurchases(t *testing.T) {
	clients := []domain.CleanClient{cleanClient(5, "Japan", "2024-01-01")}

	out := BuildClientSummary(clients, nil, testNow)
	s := out[0]
	if s.PurchaseCount != 0 || s.TotalAmount != 0 || s.MeanAmount != 0 {
		t.Errorf("zero-purchase client has non-zero metrics: %+v", s)
	}
	if s.FavoriteItem != nil || s.MinAmount != nil || s.FirstPurchase != nil {
		t.Errorf("zero-purchase client should have null favorite/bounds/dates: %+v", s)
	}
	if s.AnnualizedValue == nil || *s.AnnualizedValue != 0 {
		t.Errorf("AnnualizedValue = %v, want 0", s.AnnualizedValue)
	}
}

func TestBuildClientSummary_AnnualizedValue(t *testing.T) {
	// Registered 10 days before "now", 100 spent: 100/10*365 = 3650.
	reg := testNow.AddDate(0, 0, -10)
	clients := []domain.CleanClient{{ClientID: 1, RegisteredAt: &reg}}
	purchases := []domain.CleanPurchase{cleanPurchase(1, 1, "A", 100, "2025-05-30")}

	out := BuildClientSummary(clients, purchases, testNow)
	s := out[0]
	if s.DaysSinceRegistration == nil || *s.DaysSinceRegistration != 10 {
		t.Fatalf("DaysSinceRegistration = %v, want 10", s.DaysSinceRegistration)
	}
	if s.AnnualizedValue == nil || *s.AnnualizedValue != 3650 {
		t.Errorf("AnnualizedValue = %v, want 3650", s.AnnualizedValue)
	}
}

func TestBuildClientSummary_NullRegistration(t *testing.T) {
	clients := []domain.CleanClient{{ClientID: 1}}
	purchases := []domain.CleanPurchase{cleanPurchase(1, 1, "A", 100, "2025-05-30")}

	out := BuildClientSummary(clients, purchases, testNow)
	if out[0].DaysSinceRegistration != nil || out[0].AnnualizedValue != nil {
		t.Errorf("null registration should give null derived metrics: %+v", out[0])
	}
}

func TestBuildProductAnalytics(t *testing.T) {
	purchases := []domain.CleanPurchase{
		cleanPurchase(1, 1, "Laptop", 1000, "2024-01-10"),
		cleanPurchase(2, 2, "Laptop", 1200, "2024-02-10"),
		cleanPurchase(3, 1, "Mouse", 25, "2024-01-15"),
		cleanPurchase(4, 3, "Mouse", 35, "2024-03-15"),
		cleanPurchase(5, 1, "Mouse", 30, "2024-02-20"),
	}

	out := BuildProductAnalytics(purchases, testNow)
	if len(out) != 2 {
		t.Fatalf("got %d products, want 2", len(out))
	}

	// Sorted by revenue descending.
	if out[0].Product != "Laptop" || out[1].Product != "Mouse" {
		t.Fatalf("order = %s, %s; want Laptop, Mouse", out[0].Product, out[1].Product)
	}

	laptop := out[0]
	if laptop.SalesCount != 2 || laptop.TotalRevenue != 2200 || laptop.UniqueClients != 2 {
		t.Errorf("laptop = %+v", laptop)
	}
	if laptop.MinPrice != 1000 || laptop.MaxPrice != 1200 || laptop.MeanPrice != 1100 {
		t.Errorf("laptop prices = %v/%v/%v", laptop.MinPrice, laptop.MeanPrice, laptop.MaxPrice)
	}

	// Revenue conservation: product revenue sums to purchase amount sum.
	var revenue, amounts float64
	for _, p := range out {
		revenue += p.TotalRevenue
	}
	for _, p := range purchases {
		amounts += p.Amount
	}
	if math.Abs(revenue-amounts) > 0.01*float64(len(purchases)) {
		t.Errorf("revenue sum %v deviates from amount sum %v", revenue, amounts)
	}

	// Market shares sum to 100 within rounding tolerance.
	var share float64
	for _, p := range out {
		share += p.MarketSharePct
	}
	if math.Abs(share-100) > 0.01*float64(len(out)) {
		t.Errorf("market shares sum to %v, want 100", share)
	}
}

func TestBuildProductAnalytics_NoPurchases(t *testing.T) {
	if out := BuildProductAnalytics(nil, testNow); len(out) != 0 {
		t.Errorf("got %d products for empty input, want 0", len(out))
	}
}

func TestBuildMonthlySales(t *testing.T) {
	purchases := []domain.CleanPurchase{
		cleanPurchase(1, 1, "Laptop", 1000, "2024-01-10"),
		cleanPurchase(2, 2, "Mouse", 30, "2024-01-20"),
		cleanPurchase(3, 2, "Mouse", 40, "2024-02-05"),
		cleanPurchase(4, 3, "Keyboard", 0.01, ""), // null date: no month
	}

	out := BuildMonthlySales(purchases, testNow)
	if len(out) != 2 {
		t.Fatalf("got %d months, want 2: %+v", len(out), out)
	}
	if out[0].Month != "2024-01" || out[1].Month != "2024-02" {
		t.Fatalf("months = %s, %s; want ascending 2024-01, 2024-02", out[0].Month, out[1].Month)
	}

	jan := out[0]
	if jan.SalesCount != 2 || jan.TotalRevenue != 1030 || jan.UniqueClients != 2 {
		t.Errorf("january = %+v", jan)
	}
	if jan.MeanBasket != 515 {
		t.Errorf("january MeanBasket = %v, want 515", jan.MeanBasket)
	}
	if jan.TopProduct != "Laptop" {
		t.Errorf("january TopProduct = %q, want Laptop", jan.TopProduct)
	}
}

func TestBuildMonthlySales_TopProductTieBreaksByLabel(t *testing.T) {
	purchases := []domain.CleanPurchase{
		cleanPurchase(1, 1, "Zebra", 50, "2024-01-10"),
		cleanPurchase(2, 2, "Apple", 50, "2024-01-20"),
	}

	out := BuildMonthlySales(purchases, testNow)
	if out[0].TopProduct != "Apple" {
		t.Errorf("TopProduct = %q, want Apple (tie broken by label)", out[0].TopProduct)
	}
}

func TestBuildCountryAnalytics(t *testing.T) {
	clients := []domain.CleanClient{
		cleanClient(1, "France", "2024-01-01"),
		cleanClient(2, "France", "2024-01-02"),
		cleanClient(3, "Japan", "2024-01-03"),
	}
	purchases := []domain.CleanPurchase{
		cleanPurchase(1, 1, "Laptop", 1000, "2024-02-01"),
		cleanPurchase(2, 1, "Mouse", 30, "2024-02-02"),
	}

	out := BuildCountryAnalytics(clients, purchases, testNow)
	if len(out) != 2 {
		t.Fatalf("got %d countries, want 2", len(out))
	}

	france := out[0]
	if france.Country != "France" {
		t.Fatalf("first row = %q, want France (sorted by revenue)", france.Country)
	}
	if france.PurchaseCount != 2 || france.TotalRevenue != 1030 {
		t.Errorf("france = %+v", france)
	}
	if france.ActiveClients != 1 || france.TotalClients != 2 {
		t.Errorf("france clients = %d/%d, want 1 active of 2", france.ActiveClients, france.TotalClients)
	}
	if france.ConversionPct != 50 {
		t.Errorf("france ConversionPct = %v, want 50", france.ConversionPct)
	}
	if france.RevenuePerClient != 1030 {
		t.Errorf("france RevenuePerClient = %v, want 1030", france.RevenuePerClient)
	}

	// A country with a registered client but no purchases still gets a row.
	japan := out[1]
	if japan.Country != "Japan" {
		t.Fatalf("second row = %q, want Japan", japan.Country)
	}
	if japan.PurchaseCount != 0 || japan.TotalRevenue != 0 || japan.ConversionPct != 0 {
		t.Errorf("japan = %+v, want zero purchases/revenue/conversion", japan)
	}
	if japan.MeanBasket != nil {
		t.Errorf("japan MeanBasket = %v, want nil", japan.MeanBasket)
	}

	for _, row := range out {
		if row.ConversionPct < 0 || row.ConversionPct > 100 {
			t.Errorf("country %s conversion %v outside [0,100]", row.Country, row.ConversionPct)
		}
	}
}
