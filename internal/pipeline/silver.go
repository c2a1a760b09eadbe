package pipeline

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dvloznov/ecommerce-pipeline/internal/domain"
)

// CleanStats counts what the cleaning stage dropped. Dropped rows are a
// normal outcome, not an error; the counts end up in the run report.
type CleanStats struct {
	RowsIn         int
	RowsOut        int
	Duplicates     int
	InvalidIDs     int
	InvalidAmounts int
	Orphans        int
}

// Filtered is the number of input rows that did not survive cleaning.
func (s CleanStats) Filtered() int { return s.RowsIn - s.RowsOut }

// Strict email-shape check applied after normalization.
var emailRe = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// Timestamp layouts accepted from the raw layer, tried in order.
var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// CleanClients turns raw client records into validated rows: dedup by id
// (first occurrence wins), normalized email/name/country, parsed
// registration timestamp and a derived email-validity flag. Rows whose id is
// not an integer are dropped and counted.
func CleanClients(raw []domain.RawClient, now time.Time) ([]domain.CleanClient, CleanStats) {
	stats := CleanStats{RowsIn: len(raw)}
	title := cases.Title(language.Und)

	seen := make(map[int64]struct{}, len(raw))
	out := make([]domain.CleanClient, 0, len(raw))

	for _, r := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(r.ClientID), 10, 64)
		if err != nil {
			stats.InvalidIDs++
			continue
		}
		if _, dup := seen[id]; dup {
			stats.Duplicates++
			continue
		}
		seen[id] = struct{}{}

		email := strings.ToLower(strings.TrimSpace(r.Email))
		out = append(out, domain.CleanClient{
			ClientID:     id,
			Name:         title.String(strings.TrimSpace(r.Name)),
			Email:        email,
			Country:      title.String(strings.TrimSpace(r.Country)),
			RegisteredAt: parseTimestamp(r.RegisteredAt),
			EmailValid:   emailRe.MatchString(email),
			ProcessedAt:  now,
		})
	}

	stats.RowsOut = len(out)
	return out, stats
}

// CleanPurchases turns raw purchase records into validated rows: dedup by id
// (first occurrence wins), amount coerced to a positive float (otherwise the
// row is dropped), normalized product label, parsed timestamp with derived
// calendar columns, and a referential filter against the validated client id
// set (orphans dropped).
func CleanPurchases(raw []domain.RawPurchase, clientIDs map[int64]struct{}, now time.Time) ([]domain.CleanPurchase, CleanStats) {
	stats := CleanStats{RowsIn: len(raw)}
	title := cases.Title(language.Und)

	seen := make(map[int64]struct{}, len(raw))
	out := make([]domain.CleanPurchase, 0, len(raw))

	for _, r := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(r.PurchaseID), 10, 64)
		if err != nil {
			stats.InvalidIDs++
			continue
		}
		if _, dup := seen[id]; dup {
			stats.Duplicates++
			continue
		}
		seen[id] = struct{}{}

		amount, err := strconv.ParseFloat(strings.TrimSpace(r.Amount), 64)
		if err != nil || amount <= 0 {
			stats.InvalidAmounts++
			continue
		}

		clientID, err := strconv.ParseInt(strings.TrimSpace(r.ClientID), 10, 64)
		if err != nil {
			stats.Orphans++
			continue
		}
		if _, ok := clientIDs[clientID]; !ok {
			stats.Orphans++
			continue
		}

		row := domain.CleanPurchase{
			PurchaseID:  id,
			ClientID:    clientID,
			Product:     title.String(strings.TrimSpace(r.Product)),
			Amount:      amount,
			PurchasedAt: parseTimestamp(r.PurchasedAt),
			ProcessedAt: now,
		}
		if t := row.PurchasedAt; t != nil {
			year, month, day := int32(t.Year()), int32(t.Month()), int32(t.Day())
			weekday := t.Weekday().String()
			row.Year, row.Month, row.Day, row.Weekday = &year, &month, &day, &weekday
		}
		out = append(out, row)
	}

	stats.RowsOut = len(out)
	return out, stats
}

// ClientIDSet builds the referential-integrity lookup for CleanPurchases.
func ClientIDSet(clients []domain.CleanClient) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(clients))
	for _, c := range clients {
		ids[c.ClientID] = struct{}{}
	}
	return ids
}

// parseTimestamp returns nil when the value matches no accepted layout,
// mirroring coerce-to-null semantics.
func parseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
