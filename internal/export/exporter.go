package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ledgerly/internal/core"
	"ledgerly/internal/events"
	"ledgerly/internal/models"
	"ledgerly/internal/storage"
)

// TransactionReader is the slice of the repository the exporter needs.
type TransactionReader interface {
	GetTransaction(ctx context.Context, userID, id uint) (*models.Transaction, error)
}

// TransactionScanner feeds the periodic resync with recently touched rows.
type TransactionScanner interface {
	TransactionsUpdatedSince(ctx context.Context, since time.Time) ([]models.Transaction, error)
}

// RowAppender appends a single row to the export target.
type RowAppender interface {
	AppendRow(ctx context.Context, values []any) error
}

// Exporter turns transaction events into export rows. Each row records the
// action so the sheet is an append-only audit trail, not a mirror table.
type Exporter struct {
	store TransactionReader
	sheet RowAppender
}

func NewExporter(store TransactionReader, sheet RowAppender) *Exporter {
	return &Exporter{store: store, sheet: sheet}
}

// HandleEvent processes one event. The transaction is re-read from the
// database so the exported row reflects the current state, not the payload
// that was current when the event was published.
func (e *Exporter) HandleEvent(ctx context.Context, ev *events.TransactionEvent) error {
	if ev.Action == events.ActionDeleted {
		row := []any{
			ev.Timestamp.Format("2006-01-02"),
			ev.UserID,
			"", "", "", "", "",
			events.ActionDeleted + " #" + fmt.Sprint(ev.TransactionID),
		}
		if err := e.sheet.AppendRow(ctx, row); err != nil {
			return fmt.Errorf("export delete marker: %w", err)
		}
		return nil
	}

	txn, err := e.store.GetTransaction(ctx, ev.UserID, ev.TransactionID)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted between publish and consume; nothing left to export.
		slog.InfoContext(ctx, "Skipping export of vanished transaction",
			"transaction_id", ev.TransactionID, "user_id", ev.UserID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", ev.TransactionID, err)
	}

	if err := e.sheet.AppendRow(ctx, transactionRow(txn, ev.Action)); err != nil {
		return fmt.Errorf("export transaction %d: %w", txn.ID, err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		"transaction_id", txn.ID,
		"user_id", txn.UserID,
		"action", ev.Action)
	return nil
}

// ResyncSince re-exports every transaction touched after since, catching
// rows whose events never arrived. Rows are marked "resync" so duplicates
// from a delivered-then-resynced transaction stay distinguishable in the
// sheet. Returns the number of rows appended.
func (e *Exporter) ResyncSince(ctx context.Context, scanner TransactionScanner, since time.Time) (int, error) {
	txns, err := scanner.TransactionsUpdatedSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("scan updated transactions: %w", err)
	}

	exported := 0
	for i := range txns {
		if err := e.sheet.AppendRow(ctx, transactionRow(&txns[i], "resync")); err != nil {
			return exported, fmt.Errorf("resync transaction %d: %w", txns[i].ID, err)
		}
		exported++
	}
	if exported > 0 {
		slog.InfoContext(ctx, "Resynced transactions", "count", exported, "since", since.Format(time.RFC3339))
	}
	return exported, nil
}

func transactionRow(txn *models.Transaction, action string) []any {
	category := ""
	if txn.Category != nil {
		category = txn.Category.Name
	}
	return []any{
		txn.OccurredOn.Format("2006-01-02"),
		txn.UserID,
		txn.Name,
		string(txn.Type),
		core.FormatMinorUnits(txn.AmountInCents, core.DefaultCurrency),
		category,
		txn.Note,
		action,
	}
}
