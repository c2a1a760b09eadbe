package pipeline

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dvloznov/ecommerce-pipeline/internal/domain"
)

// The four gold builders are pure functions over the two validated tables.
// None depends on another's output, so they may run in any order. Floating
// metrics are rounded to 2 decimals only at finalization; intermediate sums
// stay unrounded so rounding error does not compound.

// BuildClientSummary aggregates purchase statistics per validated client.
// Clients without purchases keep a row with zero counts and null bounds.
func BuildClientSummary(clients []domain.CleanClient, purchases []domain.CleanPurchase, now time.Time) []domain.ClientSummary {
	type agg struct {
		count       int64
		total       float64
		min, max    float64
		first, last *time.Time
		products    map[string]int64
	}

	byClient := make(map[int64]*agg)
	for _, p := range purchases {
		a := byClient[p.ClientID]
		if a == nil {
			a = &agg{min: math.Inf(1), max: math.Inf(-1), products: make(map[string]int64)}
			byClient[p.ClientID] = a
		}
		a.count++
		a.total += p.Amount
		a.min = math.Min(a.min, p.Amount)
		a.max = math.Max(a.max, p.Amount)
		a.products[p.Product]++
		if t := p.PurchasedAt; t != nil {
			if a.first == nil || t.Before(*a.first) {
				a.first = t
			}
			if a.last == nil || t.After(*a.last) {
				a.last = t
			}
		}
	}

	out := make([]domain.ClientSummary, 0, len(clients))
	for _, c := range clients {
		row := domain.ClientSummary{
			ClientID:     c.ClientID,
			Name:         c.Name,
			Email:        c.Email,
			Country:      c.Country,
			RegisteredAt: c.RegisteredAt,
			EmailValid:   c.EmailValid,
			ProcessedAt:  now,
		}

		if a := byClient[c.ClientID]; a != nil {
			row.PurchaseCount = a.count
			row.TotalAmount = round2(a.total)
			row.MeanAmount = round2(a.total / float64(a.count))
			minAmt, maxAmt := a.min, a.max
			row.MinAmount, row.MaxAmount = &minAmt, &maxAmt
			row.FirstPurchase, row.LastPurchase = a.first, a.last
			fav := favoriteProduct(a.products)
			row.FavoriteItem = &fav
		}

		if reg := c.RegisteredAt; reg != nil {
			days := int64(now.Sub(*reg).Hours() / 24)
			row.DaysSinceRegistration = &days

			denom := days
			if denom < 1 {
				denom = 1
			}
			value := round2(row.TotalAmount / float64(denom) * 365)
			row.AnnualizedValue = &value
		}

		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out
}

// BuildProductAnalytics aggregates sales per product with the revenue-based
// market share, sorted by revenue descending.
func BuildProductAnalytics(purchases []domain.CleanPurchase, now time.Time) []domain.ProductAnalytics {
	type agg struct {
		count       int64
		revenue     float64
		min, max    float64
		clients     map[int64]struct{}
		first, last *time.Time
	}

	byProduct := make(map[string]*agg)
	var totalRevenue float64
	for _, p := range purchases {
		a := byProduct[p.Product]
		if a == nil {
			a = &agg{min: math.Inf(1), max: math.Inf(-1), clients: make(map[int64]struct{})}
			byProduct[p.Product] = a
		}
		a.count++
		a.revenue += p.Amount
		a.min = math.Min(a.min, p.Amount)
		a.max = math.Max(a.max, p.Amount)
		a.clients[p.ClientID] = struct{}{}
		if t := p.PurchasedAt; t != nil {
			if a.first == nil || t.Before(*a.first) {
				a.first = t
			}
			if a.last == nil || t.After(*a.last) {
				a.last = t
			}
		}
		totalRevenue += p.Amount
	}

	out := make([]domain.ProductAnalytics, 0, len(byProduct))
	for product, a := range byProduct {
		share := 0.0
		if totalRevenue > 0 {
			share = round2(a.revenue / totalRevenue * 100)
		}
		out = append(out, domain.ProductAnalytics{
			Product:        product,
			SalesCount:     a.count,
			TotalRevenue:   round2(a.revenue),
			MeanPrice:      round2(a.revenue / float64(a.count)),
			MinPrice:       a.min,
			MaxPrice:       a.max,
			UniqueClients:  int64(len(a.clients)),
			FirstSale:      a.first,
			LastSale:       a.last,
			MarketSharePct: share,
			ProcessedAt:    now,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalRevenue != out[j].TotalRevenue {
			return out[i].TotalRevenue > out[j].TotalRevenue
		}
		return out[i].Product < out[j].Product
	})
	return out
}

// BuildMonthlySales aggregates sales per calendar month ("YYYY-MM").
// Purchases whose timestamp did not parse belong to no month.
func BuildMonthlySales(purchases []domain.CleanPurchase, now time.Time) []domain.MonthlySales {
	type agg struct {
		count          int64
		revenue        float64
		clients        map[int64]struct{}
		productRevenue map[string]float64
	}

	byMonth := make(map[string]*agg)
	for _, p := range purchases {
		if p.PurchasedAt == nil {
			continue
		}
		month := fmt.Sprintf("%04d-%02d", p.PurchasedAt.Year(), int(p.PurchasedAt.Month()))
		a := byMonth[month]
		if a == nil {
			a = &agg{clients: make(map[int64]struct{}), productRevenue: make(map[string]float64)}
			byMonth[month] = a
		}
		a.count++
		a.revenue += p.Amount
		a.clients[p.ClientID] = struct{}{}
		a.productRevenue[p.Product] += p.Amount
	}

	out := make([]domain.MonthlySales, 0, len(byMonth))
	for month, a := range byMonth {
		out = append(out, domain.MonthlySales{
			Month:         month,
			SalesCount:    a.count,
			TotalRevenue:  round2(a.revenue),
			MeanBasket:    round2(a.revenue / float64(a.count)),
			UniqueClients: int64(len(a.clients)),
			TopProduct:    topProduct(a.productRevenue),
			ProcessedAt:   now,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// BuildCountryAnalytics aggregates per country of residence. Every country
// present in the validated client table gets a row, purchases or not.
func BuildCountryAnalytics(clients []domain.CleanClient, purchases []domain.CleanPurchase, now time.Time) []domain.CountryAnalytics {
	countryOf := make(map[int64]string, len(clients))
	totalClients := make(map[string]int64)
	for _, c := range clients {
		countryOf[c.ClientID] = c.Country
		totalClients[c.Country]++
	}

	type agg struct {
		count   int64
		revenue float64
		active  map[int64]struct{}
	}
	byCountry := make(map[string]*agg)
	for _, p := range purchases {
		// Referential integrity guarantees the lookup resolves.
		country := countryOf[p.ClientID]
		a := byCountry[country]
		if a == nil {
			a = &agg{active: make(map[int64]struct{})}
			byCountry[country] = a
		}
		a.count++
		a.revenue += p.Amount
		a.active[p.ClientID] = struct{}{}
	}

	out := make([]domain.CountryAnalytics, 0, len(totalClients))
	for country, total := range totalClients {
		row := domain.CountryAnalytics{
			Country:      country,
			TotalClients: total,
			ProcessedAt:  now,
		}
		if a := byCountry[country]; a != nil {
			row.PurchaseCount = a.count
			row.TotalRevenue = round2(a.revenue)
			basket := round2(a.revenue / float64(a.count))
			row.MeanBasket = &basket
			row.ActiveClients = int64(len(a.active))
		}

		activeDenom := row.ActiveClients
		if activeDenom < 1 {
			activeDenom = 1
		}
		row.RevenuePerClient = round2(row.TotalRevenue / float64(activeDenom))
		row.ConversionPct = round2(float64(row.ActiveClients) / float64(total) * 100)

		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalRevenue != out[j].TotalRevenue {
			return out[i].TotalRevenue > out[j].TotalRevenue
		}
		return out[i].Country < out[j].Country
	})
	return out
}

// favoriteProduct picks the most frequently bought product; equal counts
// break toward the lexicographically smaller label so the result does not
// depend on input ordering.
func favoriteProduct(counts map[string]int64) string {
	var best string
	var bestCount int64 = -1
	for product, n := range counts {
		if n > bestCount || (n == bestCount && product < best) {
			best, bestCount = product, n
		}
	}
	return best
}

// topProduct picks the product with the highest summed revenue, same
// tie-break as favoriteProduct.
func topProduct(revenue map[string]float64) string {
	var best string
	bestRevenue := math.Inf(-1)
	for product, r := range revenue {
		if r > bestRevenue || (r == bestRevenue && product < best) {
			best, bestRevenue = product, r
		}
	}
	return best
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
