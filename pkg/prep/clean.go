// Package prep nettoie les lignes de facture brutes et calcule les statistiques descriptives.
package prep

import (
	"strings"

	"cltv-predict/pkg/models"

	"go.uber.org/zap"
)

// Clean applique, dans l'ordre: suppression des lignes incomplètes, des factures annulées et des quantités
// non positives, plafonnement de Quantity puis Price, calcul de TotalPrice, filtre pays.
// Les seuils sont calculés avant le filtre pays, sur toutes les lignes restantes.
func Clean(raw []models.RawTransaction, cfg models.PrepConfig, logger *zap.Logger) []models.Transaction {
	if logger == nil {
		logger = zap.NewNop()
	}

	txns := make([]models.Transaction, 0, len(raw))
	var incomplete, cancelled, nonPositive int
	for _, r := range raw {
		if !r.Complete() {
			incomplete++
			continue
		}
		if cfg.CancelMarker != "" && strings.Contains(r.Invoice, cfg.CancelMarker) {
			cancelled++
			continue
		}
		if r.Quantity.Float64 <= 0 {
			nonPositive++
			continue
		}
		txns = append(txns, models.Transaction{
			Invoice:     r.Invoice,
			StockCode:   r.StockCode.String,
			Description: r.Description.String,
			Quantity:    r.Quantity.Float64,
			Price:       r.Price.Float64,
			InvoiceDate: r.InvoiceDate.Time,
			CustomerID:  r.CustomerID.String,
			Country:     r.Country.String,
		})
	}

	qty := make([]float64, len(txns))
	for i := range txns {
		qty[i] = txns[i].Quantity
	}
	qtyLimits := OutlierThresholds(qty, cfg.LowerQuantile, cfg.UpperQuantile, cfg.IQRMultiplier)
	qtyCapped := Cap(qty, qtyLimits.Up)

	price := make([]float64, len(txns))
	for i := range txns {
		txns[i].Quantity = qty[i]
		price[i] = txns[i].Price
	}
	priceLimits := OutlierThresholds(price, cfg.LowerQuantile, cfg.UpperQuantile, cfg.IQRMultiplier)
	priceCapped := Cap(price, priceLimits.Up)

	out := txns[:0]
	for i := range txns {
		t := txns[i]
		t.Price = price[i]
		t.TotalPrice = t.Price * t.Quantity
		if cfg.Country != "" && t.Country != cfg.Country {
			continue
		}
		out = append(out, t)
	}

	logger.Debug("transactions cleaned",
		zap.Int("raw_rows", len(raw)),
		zap.Int("incomplete", incomplete),
		zap.Int("cancelled", cancelled),
		zap.Int("non_positive_quantity", nonPositive),
		zap.Float64("quantity_up_limit", qtyLimits.Up),
		zap.Int("quantity_capped", qtyCapped),
		zap.Float64("price_up_limit", priceLimits.Up),
		zap.Int("price_capped", priceCapped),
		zap.String("country", cfg.Country),
		zap.Int("clean_rows", len(out)),
	)
	return out
}
