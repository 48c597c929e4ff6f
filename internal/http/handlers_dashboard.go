package http

import (
	"encoding/json"
	"errors"
	"html/template"
	"math"
	"net/http"

	"ledgerly/internal/auth"
	"ledgerly/internal/core"
	"ledgerly/internal/events"
	"ledgerly/internal/log"
	"ledgerly/internal/models"
)

type dashboardData struct {
	Username             string
	Flash                *flash
	Categories           []models.Category
	Transactions         []txView
	Income               string
	Outgo                string
	Balance              string
	IncomePercent        float64
	ExpensePercent       float64
	TopExpenses          []txView
	TopSpend             *txView
	Months               template.JS
	IncomeData           template.JS
	ExpenseData          template.JS
	SearchQuery          string
	SearchResults        []txView
	CycleDisplayStart    string
	CycleDisplayEnd      string
	CycleSettingStart    string
	CurrencyCode         string
	CurrencySymbol       string
	MaxTransactionAmount string
	Today                string
}

// handleDashboard renders the home view: current-cycle totals, top expenses,
// the 12-cycle trailing series, recent activity, and inline search results.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)
	now := today()

	settings, err := s.repo.GetOrCreateSettings(ctx, userID, now)
	if err != nil {
		s.serverError(w, err)
		return
	}
	currencyCode := settings.CurrencyCode
	if currencyCode == "" {
		currencyCode = core.DefaultCurrency
	}

	cycleDay := settings.CycleDay()
	start, end := core.CurrentCycleWindow(now, cycleDay)

	income, outgo, err := s.repo.CycleTotals(ctx, userID, start, end)
	if err != nil {
		s.serverError(w, err)
		return
	}
	balance := income - outgo

	var incomePercent, expensePercent float64
	if totalFlow := income + outgo; totalFlow > 0 {
		incomePercent = round2(float64(income) / float64(totalFlow) * 100)
		expensePercent = round2(float64(outgo) / float64(totalFlow) * 100)
	}

	topExpenses, err := s.repo.TopExpenses(ctx, userID, start, end, 3)
	if err != nil {
		s.serverError(w, err)
		return
	}
	recent, err := s.repo.RecentTransactions(ctx, userID, start, end, 10)
	if err != nil {
		s.serverError(w, err)
		return
	}

	// Trailing 12 cycles, oldest first, each window aggregated on its own.
	starts := core.TrailingCycleStarts(start, cycleDay, 12)
	months := make([]string, 0, len(starts))
	incomeSeries := make([]int64, 0, len(starts))
	expenseSeries := make([]int64, 0, len(starts))
	for _, cycleStart := range starts {
		cycleEnd := core.ShiftByMonths(cycleStart, 1, cycleDay)
		cycleIncome, cycleOutgo, err := s.repo.CycleTotals(ctx, userID, cycleStart, cycleEnd)
		if err != nil {
			s.serverError(w, err)
			return
		}
		months = append(months, cycleStart.Format("2006-01-02"))
		incomeSeries = append(incomeSeries, cycleIncome)
		expenseSeries = append(expenseSeries, cycleOutgo)
	}

	searchQuery := sanitizeInput(r.URL.Query().Get("q"))
	var searchResults []models.Transaction
	if searchQuery != "" {
		searchResults, err = s.repo.SearchTransactions(ctx, userID, searchQuery, 15)
		if err != nil {
			s.serverError(w, err)
			return
		}
	}

	categories, err := s.repo.ActiveCategories(ctx)
	if err != nil {
		s.serverError(w, err)
		return
	}

	data := dashboardData{
		Username:             auth.Username(ctx),
		Flash:                popFlash(w, r),
		Categories:           categories,
		Transactions:         newTxViews(recent, currencyCode),
		Income:               core.FormatMinorUnits(income, currencyCode),
		Outgo:                core.FormatMinorUnits(outgo, currencyCode),
		Balance:              core.FormatMinorUnits(balance, currencyCode),
		IncomePercent:        incomePercent,
		ExpensePercent:       expensePercent,
		TopExpenses:          newTxViews(topExpenses, currencyCode),
		Months:               toJS(months),
		IncomeData:           toJS(incomeSeries),
		ExpenseData:          toJS(expenseSeries),
		SearchQuery:          searchQuery,
		SearchResults:        newTxViews(searchResults, currencyCode),
		CycleDisplayStart:    start.Format("2006-01-02"),
		CycleDisplayEnd:      end.AddDate(0, 0, -1).Format("2006-01-02"),
		CycleSettingStart:    settings.CycleStartDate.Format("2006-01-02"),
		CurrencyCode:         currencyCode,
		CurrencySymbol:       core.CurrencySymbol(currencyCode),
		MaxTransactionAmount: core.MaxAmountDisplay(),
		Today:                now.Format("2006-01-02"),
	}
	if len(topExpenses) > 0 {
		top := newTxView(topExpenses[0], currencyCode)
		data.TopSpend = &top
	}

	s.render(w, http.StatusOK, "dashboard.html", data)
}

// handleDashboardPost dispatches the dashboard's inline forms on the action
// field: updating the cycle anchor or adding a transaction (the default).
// Every outcome redirects back to the dashboard with a flash message.
func (s *Server) handleDashboardPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	action := r.PostFormValue("action")
	if action == "" {
		action = "add_transaction"
	}

	if action == "update_cycle_start" {
		s.updateCycleStart(w, r)
		return
	}
	s.addTransaction(w, r)
}

func (s *Server) updateCycleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	raw := r.PostFormValue("cycle_start_date")
	if raw != "" {
		startDate, err := parseDate(raw)
		if err != nil {
			setFlash(w, "error", "Please provide a valid cycle start date.")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		// Make sure the settings row exists before the update touches it.
		if _, err := s.repo.GetOrCreateSettings(ctx, userID, today()); err != nil {
			s.serverError(w, err)
			return
		}
		if err := s.repo.UpdateCycleStart(ctx, userID, startDate); err != nil {
			s.serverError(w, err)
			return
		}
		setFlash(w, "success", "Cycle start updated successfully.")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) addTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	fail := func(message string) {
		setFlash(w, "error", message)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}

	direction, err := core.ParseDirection(r.PostFormValue("type"))
	if err != nil {
		fail("Please choose whether this entry is income or an expense.")
		return
	}

	categoryID, err := parseCategoryID(r.PostFormValue("category"))
	if err != nil {
		fail("Outgoing transactions require a category. Please choose one before saving.")
		return
	}
	if direction == core.DirectionOutgo && categoryID == nil {
		fail("Outgoing transactions require a category. Please choose one before saving.")
		return
	}

	name := sanitizeInput(r.PostFormValue("name"))
	if name == "" {
		fail("Please enter a name for the transaction.")
		return
	}

	occurredOn, err := parseDate(r.PostFormValue("occurred_on"))
	if err != nil {
		fail("Please select a valid date before saving the transaction.")
		return
	}

	amountRaw := r.PostFormValue("amount_in_cents")
	if sanitizeInput(amountRaw) == "" {
		fail("Please enter an amount before saving the transaction.")
		return
	}
	amountCents, err := core.ParseAmount(amountRaw)
	switch {
	case errors.Is(err, core.ErrAmountTooLarge):
		fail("That amount is too large for Ledgerly to store. Please enter a smaller value.")
		return
	case err != nil:
		fail("Amount must be a number using up to two decimal places for cents or pence (e.g., 12.50).")
		return
	}

	draft := core.TransactionDraft{
		Name:          name,
		Direction:     direction,
		AmountInCents: amountCents,
		CategoryID:    categoryID,
		OccurredOn:    occurredOn,
		Note:          sanitizeInput(r.PostFormValue("note")),
	}
	if err := draft.Validate(); err != nil {
		fail(validationMessage(err))
		return
	}

	txn, err := s.repo.CreateTransaction(ctx, userID, draft)
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.publishEvent(ctx, userID, txn.ID, events.ActionCreated)

	if direction == core.DirectionIncome {
		setFlash(w, "success", "Income saved successfully.")
	} else {
		setFlash(w, "success", "Expense saved successfully.")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// validationMessage maps the domain's sentinel errors to their user-facing
// dashboard messages.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyName):
		return "Please enter a name for the transaction."
	case errors.Is(err, core.ErrInvalidDirection):
		return "Please choose whether this entry is income or an expense."
	case errors.Is(err, core.ErrCategoryRequired):
		return "Outgoing transactions require a category. Please choose one before saving."
	case errors.Is(err, core.ErrInvalidDate):
		return "Please select a valid date before saving the transaction."
	case errors.Is(err, core.ErrAmountTooLarge):
		return "That amount is too large for Ledgerly to store. Please enter a smaller value."
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amount must be greater than zero."
	default:
		return "Something went wrong while saving the transaction."
	}
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", log.FieldError, err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toJS(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return template.JS("[]")
	}
	return template.JS(b)
}
