// Package rfm agrège les transactions nettoyées en métriques recency/tenure/frequency/monetary par client.
package rfm

import (
	"sort"
	"strconv"
	"time"

	"cltv-predict/pkg/models"
)

const day = 24 * time.Hour

// AnalysisDate renvoie la date de la dernière transaction + offsetDays jours.
// Renvoie le zéro de time.Time si txns est vide.
func AnalysisDate(txns []models.Transaction, offsetDays int) time.Time {
	var latest time.Time
	for _, t := range txns {
		if t.InvoiceDate.After(latest) {
			latest = t.InvoiceDate
		}
	}
	if latest.IsZero() {
		return latest
	}
	return latest.AddDate(0, 0, offsetDays)
}

type customerAgg struct {
	first, last time.Time
	invoices    map[string]struct{}
	monetary    float64
}

// days renvoie le nombre de jours entiers écoulés (troncature, comme un timedelta.days positif).
func days(from, to time.Time) int {
	return int(to.Sub(from) / day)
}

// Aggregate construit une ligne RFM par client. Les clients avec frequency <= 1 ou monetary_avg <= 0
// sont exclus. Le résultat est trié par identifiant client.
func Aggregate(txns []models.Transaction, analysisDate time.Time) []models.RFM {
	byCustomer := make(map[string]*customerAgg)
	for _, t := range txns {
		agg, ok := byCustomer[t.CustomerID]
		if !ok {
			agg = &customerAgg{first: t.InvoiceDate, last: t.InvoiceDate, invoices: map[string]struct{}{}}
			byCustomer[t.CustomerID] = agg
		}
		if t.InvoiceDate.Before(agg.first) {
			agg.first = t.InvoiceDate
		}
		if t.InvoiceDate.After(agg.last) {
			agg.last = t.InvoiceDate
		}
		agg.invoices[t.Invoice] = struct{}{}
		agg.monetary += t.TotalPrice
	}

	out := make([]models.RFM, 0, len(byCustomer))
	for id, agg := range byCustomer {
		r := models.RFM{
			CustomerID:  id,
			RecencyDays: days(agg.first, agg.last),
			TenureDays:  days(agg.first, analysisDate),
			Frequency:   len(agg.invoices),
			Monetary:    agg.monetary,
		}
		r.MonetaryAvg = r.Monetary / float64(r.Frequency)
		r.RecencyWeekly = float64(r.RecencyDays) / 7
		r.TenureWeekly = float64(r.TenureDays) / 7

		if r.MonetaryAvg <= 0 || r.Frequency <= 1 {
			continue
		}
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool { return lessID(out[i].CustomerID, out[j].CustomerID) })
	return out
}

// lessID compare numériquement quand les deux identifiants sont des nombres.
func lessID(a, b string) bool {
	na, errA := strconv.ParseFloat(a, 64)
	nb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil && na != nb {
		return na < nb
	}
	return a < b
}
