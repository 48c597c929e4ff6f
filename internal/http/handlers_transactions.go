package http

import (
	"errors"
	"fmt"
	"net/http"

	"ledgerly/internal/auth"
	"ledgerly/internal/core"
	"ledgerly/internal/events"
	"ledgerly/internal/models"
	"ledgerly/internal/storage"
)

type transactionPageData struct {
	Username       string
	Flash          *flash
	Transaction    txView
	Categories     []models.Category
	CurrencyCode   string
	CurrencySymbol string
	Error          string
}

type transactionListData struct {
	Username       string
	Flash          *flash
	Transactions   []txView
	CurrencyCode   string
	CurrencySymbol string
}

func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	currencyCode, err := s.userCurrency(r)
	if err != nil {
		s.serverError(w, err)
		return
	}
	txns, err := s.repo.ListTransactions(ctx, userID)
	if err != nil {
		s.serverError(w, err)
		return
	}

	s.render(w, http.StatusOK, "transaction_list.html", transactionListData{
		Username:       auth.Username(ctx),
		Flash:          popFlash(w, r),
		Transactions:   newTxViews(txns, currencyCode),
		CurrencyCode:   currencyCode,
		CurrencySymbol: core.CurrencySymbol(currencyCode),
	})
}

func (s *Server) handleTransactionDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	txn, err := s.repo.GetTransaction(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, err)
		return
	}

	data, err := s.transactionPageData(w, r, *txn, "")
	if err != nil {
		s.serverError(w, err)
		return
	}

	if isAJAX(r) {
		s.render(w, http.StatusOK, "transaction_detail_modal.html", data)
		return
	}
	s.render(w, http.StatusOK, "transaction_detail.html", data)
}

// handleTransactionUpdate re-validates with the creation rules and saves.
// Interactive requests redirect back to the detail page; the dashboard's
// modal (an XMLHttpRequest) gets {"success": true} or the re-rendered
// fragment with a 400.
func (s *Server) handleTransactionUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	txn, err := s.repo.GetTransaction(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	draft, validationErr := draftFromForm(r)
	if validationErr == "" {
		updated, err := s.repo.UpdateTransaction(ctx, userID, id, draft)
		if err != nil {
			s.serverError(w, err)
			return
		}
		s.publishEvent(ctx, userID, updated.ID, events.ActionUpdated)
		setFlash(w, "success", "Transaction updated successfully.")
		if isAJAX(r) {
			s.renderJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/transactions/%d", updated.ID), http.StatusSeeOther)
		return
	}

	data, err := s.transactionPageData(w, r, *txn, validationErr)
	if err != nil {
		s.serverError(w, err)
		return
	}
	data.Transaction = submittedTxView(data.Transaction, r)
	if isAJAX(r) {
		s.render(w, http.StatusBadRequest, "transaction_detail_modal.html", data)
		return
	}
	s.render(w, http.StatusBadRequest, "transaction_detail.html", data)
}

// submittedTxView overlays the posted fields on the stored view so a rejected
// edit comes back showing what the user typed, not the saved values.
func submittedTxView(view txView, r *http.Request) txView {
	view.Name = sanitizeInput(r.PostFormValue("name"))
	view.Note = sanitizeInput(r.PostFormValue("note"))
	view.AmountInput = r.PostFormValue("amount_in_cents")
	view.OccurredOn = r.PostFormValue("occurred_on")
	if direction, err := core.ParseDirection(r.PostFormValue("type")); err == nil {
		view.Type = string(direction)
		view.TypeLabel = direction.Label()
	}
	view.CategoryID = 0
	if id, err := parseCategoryID(r.PostFormValue("category")); err == nil && id != nil {
		view.CategoryID = *id
	}
	return view
}

func (s *Server) handleTransactionDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	txn, err := s.repo.GetTransaction(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, err)
		return
	}

	data, err := s.transactionPageData(w, r, *txn, "")
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.render(w, http.StatusOK, "transaction_confirm_delete.html", data)
}

func (s *Server) handleTransactionDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	err = s.repo.DeleteTransaction(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.publishEvent(ctx, userID, id, events.ActionDeleted)

	setFlash(w, "success", "Transaction deleted successfully.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// draftFromForm collects the transaction form fields, returning the draft
// plus an empty string, or a user-facing validation message.
func draftFromForm(r *http.Request) (core.TransactionDraft, string) {
	var draft core.TransactionDraft

	direction, err := core.ParseDirection(r.PostFormValue("type"))
	if err != nil {
		return draft, "Please choose whether this entry is income or an expense."
	}
	categoryID, err := parseCategoryID(r.PostFormValue("category"))
	if err != nil {
		return draft, "Outgoing transactions require a category. Please choose one before saving."
	}
	occurredOn, err := parseDate(r.PostFormValue("occurred_on"))
	if err != nil {
		return draft, "Please select a valid date before saving the transaction."
	}
	amountCents, err := core.ParseAmount(r.PostFormValue("amount_in_cents"))
	if errors.Is(err, core.ErrAmountTooLarge) {
		return draft, "That amount is too large for Ledgerly to store. Please enter a smaller value."
	}
	if err != nil {
		return draft, "Amount must be a number using up to two decimal places for cents or pence (e.g., 12.50)."
	}

	draft = core.TransactionDraft{
		Name:          sanitizeInput(r.PostFormValue("name")),
		Direction:     direction,
		AmountInCents: amountCents,
		CategoryID:    categoryID,
		OccurredOn:    occurredOn,
		Note:          sanitizeInput(r.PostFormValue("note")),
	}
	if err := draft.Validate(); err != nil {
		return draft, validationMessage(err)
	}
	return draft, ""
}

func (s *Server) transactionPageData(w http.ResponseWriter, r *http.Request, txn models.Transaction, errMsg string) (transactionPageData, error) {
	currencyCode, err := s.userCurrency(r)
	if err != nil {
		return transactionPageData{}, err
	}
	categories, err := s.repo.ActiveCategories(r.Context())
	if err != nil {
		return transactionPageData{}, err
	}
	return transactionPageData{
		Username:       auth.Username(r.Context()),
		Flash:          popFlash(w, r),
		Transaction:    newTxView(txn, currencyCode),
		Categories:     categories,
		CurrencyCode:   currencyCode,
		CurrencySymbol: core.CurrencySymbol(currencyCode),
		Error:          errMsg,
	}, nil
}

// userCurrency resolves the requesting user's preferred currency, falling
// back to the default when the stored code is blank.
func (s *Server) userCurrency(r *http.Request) (string, error) {
	settings, err := s.repo.GetOrCreateSettings(r.Context(), auth.UserID(r.Context()), today())
	if err != nil {
		return "", err
	}
	if settings.CurrencyCode == "" {
		return core.DefaultCurrency, nil
	}
	return settings.CurrencyCode, nil
}
