package database

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn est renvoyée quand une colonne obligatoire est absente de la source.
var ErrMissingColumn = errors.New("missing required column")

// Noms canoniques des colonnes (jeu "Online Retail II").
const (
	ColInvoice     = "Invoice"
	ColStockCode   = "StockCode"
	ColDescription = "Description"
	ColQuantity    = "Quantity"
	ColInvoiceDate = "InvoiceDate"
	ColPrice       = "Price"
	ColCustomerID  = "Customer ID"
	ColCountry     = "Country"
)

// Columns liste les colonnes canoniques dans l'ordre de lecture.
var Columns = []string{
	ColInvoice, ColStockCode, ColDescription, ColQuantity,
	ColInvoiceDate, ColPrice, ColCustomerID, ColCountry,
}

// aliases accepte aussi l'ancien format "Online Retail" (InvoiceNo, UnitPrice, CustomerID).
var aliases = map[string]string{
	"invoice":     ColInvoice,
	"invoiceno":   ColInvoice,
	"stockcode":   ColStockCode,
	"description": ColDescription,
	"quantity":    ColQuantity,
	"invoicedate": ColInvoiceDate,
	"price":       ColPrice,
	"unitprice":   ColPrice,
	"customerid":  ColCustomerID,
	"country":     ColCountry,
}

func normalize(name string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(name)))
}

// ResolveColumns associe chaque colonne canonique à son index dans l'en-tête.
// Renvoie ErrMissingColumn si une colonne canonique n'est pas trouvée.
func ResolveColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(Columns))
	for i, h := range header {
		canonical, ok := aliases[normalize(h)]
		if !ok {
			continue
		}
		if _, seen := idx[canonical]; !seen {
			idx[canonical] = i
		}
	}
	var missing []string
	for _, c := range Columns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}
