package http

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"ledgerly/internal/auth"
	"ledgerly/internal/core"
)

type calendarEntry struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	TypeDisplay   string `json:"type_display"`
	Category      string `json:"category"`
	Note          string `json:"note"`
	AmountDisplay string `json:"amount_display"`
	DetailURL     string `json:"detail_url"`
	OccurredOn    string `json:"occurred_on"`
}

type calendarDay struct {
	Date         string          `json:"date"`
	Transactions []calendarEntry `json:"transactions"`
}

type calendarResponse struct {
	Year           int           `json:"year"`
	Month          int           `json:"month"`
	MonthLabel     string        `json:"month_label"`
	Days           []calendarDay `json:"days"`
	CurrencySymbol string        `json:"currency_symbol"`
	Today          string        `json:"today"`
	InitialDate    string        `json:"initial_date"`
}

// handleCalendarData returns one month of the user's transactions grouped by
// day for the calendar modal. Out-of-range year/month parameters fall back
// to the current date rather than erroring.
func (s *Server) handleCalendarData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)
	now := today()

	year, month := parseYearMonth(r, now)

	currencyCode, err := s.userCurrency(r)
	if err != nil {
		s.serverError(w, err)
		return
	}

	txns, err := s.repo.TransactionsForMonth(ctx, userID, year, int(month))
	if err != nil {
		s.serverError(w, err)
		return
	}

	dayMap := make(map[string][]calendarEntry)
	for _, txn := range txns {
		category := "Uncategorized"
		if txn.Category != nil {
			category = txn.Category.Name
		}
		dayKey := txn.OccurredOn.Format("2006-01-02")
		dayMap[dayKey] = append(dayMap[dayKey], calendarEntry{
			ID:            txn.ID,
			Name:          txn.Name,
			Type:          string(txn.Type),
			TypeDisplay:   txn.Type.Label(),
			Category:      category,
			Note:          txn.Note,
			AmountDisplay: core.SignedDisplay(txn.AmountInCents, txn.Type, currencyCode),
			DetailURL:     fmt.Sprintf("/transactions/%d", txn.ID),
			OccurredOn:    dayKey,
		})
	}

	dayKeys := make([]string, 0, len(dayMap))
	for day := range dayMap {
		dayKeys = append(dayKeys, day)
	}
	sort.Strings(dayKeys)

	days := make([]calendarDay, 0, len(dayKeys))
	for _, day := range dayKeys {
		days = append(days, calendarDay{Date: day, Transactions: dayMap[day]})
	}

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	todayISO := now.Format("2006-01-02")

	// The calendar opens on today when it falls inside the requested month,
	// otherwise on the first day that has entries.
	initialDate := monthStart.Format("2006-01-02")
	if monthPrefix := monthStart.Format("2006-01"); todayISO[:7] == monthPrefix {
		initialDate = todayISO
	} else if len(days) > 0 {
		initialDate = days[0].Date
	}

	s.renderJSON(w, http.StatusOK, calendarResponse{
		Year:           year,
		Month:          int(month),
		MonthLabel:     monthStart.Format("January 2006"),
		Days:           days,
		CurrencySymbol: core.CurrencySymbol(currencyCode),
		Today:          todayISO,
		InitialDate:    initialDate,
	})
}
