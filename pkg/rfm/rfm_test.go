package rfm

import (
	"fmt"
	"testing"
	"time"

	"cltv-predict/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(invoice, customer string, at time.Time, revenue float64) models.Transaction {
	return models.Transaction{
		Invoice:     invoice,
		CustomerID:  customer,
		InvoiceDate: at,
		Quantity:    1,
		Price:       revenue,
		TotalPrice:  revenue,
		Country:     "United Kingdom",
	}
}

// syntheticDataset: A has 5 invoices totaling 500, B has a single invoice, C has 2 invoices.
func syntheticDataset() []models.Transaction {
	latest := time.Date(2011, 12, 9, 12, 0, 0, 0, time.UTC)
	aLast := latest.AddDate(0, 0, -8) // 10 days before the analysis date
	aFirst := aLast.AddDate(0, 0, -70)

	var txns []models.Transaction
	for i := 0; i < 5; i++ {
		at := aFirst.AddDate(0, 0, i*70/4)
		// two lines per invoice, 100 per invoice
		txns = append(txns, tx(fmt.Sprintf("A%d", i), "A", at, 60), tx(fmt.Sprintf("A%d", i), "A", at, 40))
	}
	txns = append(txns, tx("B0", "B", latest.AddDate(0, 0, -30), 250))
	txns = append(txns,
		tx("C0", "C", latest.AddDate(0, 0, -100), 30),
		tx("C1", "C", latest, 50),
	)
	return txns
}

func TestAnalysisDate(t *testing.T) {
	txns := syntheticDataset()
	got := AnalysisDate(txns, 2)
	assert.Equal(t, time.Date(2011, 12, 11, 12, 0, 0, 0, time.UTC), got)
	assert.True(t, AnalysisDate(nil, 2).IsZero())
}

func TestAggregate_Scenario(t *testing.T) {
	txns := syntheticDataset()
	ref := AnalysisDate(txns, 2)
	rows := Aggregate(txns, ref)

	require.Len(t, rows, 2)
	a := rows[0]
	assert.Equal(t, "A", a.CustomerID)
	assert.Equal(t, 5, a.Frequency)
	assert.InDelta(t, 100.0, a.MonetaryAvg, 1e-9)
	assert.Equal(t, 70, a.RecencyDays)
	assert.InDelta(t, 70.0/7, a.RecencyWeekly, 1e-12)
	assert.Equal(t, 80, a.TenureDays)
}

func TestAggregate_ExcludesSinglePurchase(t *testing.T) {
	rows := Aggregate(syntheticDataset(), time.Date(2011, 12, 11, 0, 0, 0, 0, time.UTC))
	for _, r := range rows {
		assert.NotEqual(t, "B", r.CustomerID)
	}
}

func TestAggregate_Invariants(t *testing.T) {
	txns := syntheticDataset()
	rows := Aggregate(txns, AnalysisDate(txns, 2))

	totals := map[string]float64{}
	for _, x := range txns {
		totals[x.CustomerID] += x.TotalPrice
	}
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.Frequency, 2)
		assert.Greater(t, r.MonetaryAvg, 0.0)
		assert.InDelta(t, float64(r.RecencyDays)/7, r.RecencyWeekly, 1e-12)
		assert.InDelta(t, float64(r.TenureDays)/7, r.TenureWeekly, 1e-12)
		assert.InDelta(t, totals[r.CustomerID], r.MonetaryAvg*float64(r.Frequency), 1e-9)
	}
}

func TestAggregate_DropsNonPositiveMonetary(t *testing.T) {
	at := time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := Aggregate([]models.Transaction{
		tx("1", "Z", at, 0),
		tx("2", "Z", at.AddDate(0, 0, 3), 0),
	}, at.AddDate(0, 0, 10))
	assert.Empty(t, rows)
}

func TestAggregate_DaysTruncated(t *testing.T) {
	first := time.Date(2011, 1, 1, 10, 0, 0, 0, time.UTC)
	rows := Aggregate([]models.Transaction{
		tx("1", "Z", first, 10),
		tx("2", "Z", first.Add(47*time.Hour), 10),
	}, first.Add(71*time.Hour))
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].RecencyDays)
	assert.Equal(t, 2, rows[0].TenureDays)
}

func TestAggregate_SortsNumericIDs(t *testing.T) {
	at := time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC)
	var txns []models.Transaction
	for _, id := range []string{"18102", "9999", "12346"} {
		txns = append(txns, tx(id+"a", id, at, 10), tx(id+"b", id, at.AddDate(0, 0, 1), 10))
	}
	rows := Aggregate(txns, at.AddDate(0, 0, 5))
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"9999", "12346", "18102"}, []string{rows[0].CustomerID, rows[1].CustomerID, rows[2].CustomerID})
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil, time.Time{}))
}
