package http

import (
	"fmt"

	"ledgerly/internal/core"
	"ledgerly/internal/models"
)

// txView is the render-ready shape of one transaction. Amounts are formatted
// here so the templates never touch currency logic.
type txView struct {
	ID           uint
	CategoryID   uint
	Name         string
	Type         string
	TypeLabel    string
	Category     string
	Note         string
	Amount       string
	AmountInput  string
	SignedAmount string
	OccurredOn   string
	DetailURL    string
	DeleteURL    string
}

func newTxView(txn models.Transaction, currencyCode string) txView {
	category := "N/A"
	if txn.Type == core.DirectionOutgo {
		category = "Uncategorized"
		if txn.Category != nil {
			category = txn.Category.Name
		}
	}
	var categoryID uint
	if txn.CategoryID != nil {
		categoryID = *txn.CategoryID
	}
	return txView{
		ID:           txn.ID,
		CategoryID:   categoryID,
		Name:         txn.Name,
		Type:         string(txn.Type),
		TypeLabel:    txn.Type.Label(),
		Category:     category,
		Note:         txn.Note,
		Amount:       core.FormatMinorUnits(txn.AmountInCents, currencyCode),
		AmountInput:  fmt.Sprintf("%d.%02d", txn.AmountInCents/100, txn.AmountInCents%100),
		SignedAmount: core.SignedDisplay(txn.AmountInCents, txn.Type, currencyCode),
		OccurredOn:   txn.OccurredOn.Format("2006-01-02"),
		DetailURL:    fmt.Sprintf("/transactions/%d", txn.ID),
		DeleteURL:    fmt.Sprintf("/transactions/%d/delete", txn.ID),
	}
}

func newTxViews(txns []models.Transaction, currencyCode string) []txView {
	views := make([]txView, 0, len(txns))
	for _, txn := range txns {
		views = append(views, newTxView(txn, currencyCode))
	}
	return views
}
