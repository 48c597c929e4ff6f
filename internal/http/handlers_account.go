package http

import (
	"fmt"
	"net/http"

	"ledgerly/internal/auth"
	"ledgerly/internal/core"
	"ledgerly/internal/log"
)

type currencySettingsData struct {
	Username     string
	Flash        *flash
	Currencies   []core.Currency
	CurrentCode  string
	ErrorMessage string
}

func (s *Server) handleCurrencySettings(w http.ResponseWriter, r *http.Request) {
	currencyCode, err := s.userCurrency(r)
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.render(w, http.StatusOK, "currency_settings.html", currencySettingsData{
		Username:    auth.Username(r.Context()),
		Flash:       popFlash(w, r),
		Currencies:  core.Currencies,
		CurrentCode: currencyCode,
	})
}

func (s *Server) handleCurrencyUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	code := r.PostFormValue("currency_code")
	if !core.IsValidCurrency(code) {
		currencyCode, err := s.userCurrency(r)
		if err != nil {
			s.serverError(w, err)
			return
		}
		s.render(w, http.StatusBadRequest, "currency_settings.html", currencySettingsData{
			Username:     auth.Username(ctx),
			Currencies:   core.Currencies,
			CurrentCode:  currencyCode,
			ErrorMessage: "Please choose one of the supported currencies.",
		})
		return
	}

	// Settings row exists by now; every page load get-or-creates it.
	if _, err := s.repo.GetOrCreateSettings(ctx, userID, today()); err != nil {
		s.serverError(w, err)
		return
	}
	if err := s.repo.UpdateCurrency(ctx, userID, code); err != nil {
		s.serverError(w, err)
		return
	}

	setFlash(w, "success", fmt.Sprintf("Currency updated to %s.", core.CurrencyLabel(code)))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type clearHistoryData struct {
	Username         string
	Flash            *flash
	TransactionCount int64
}

func (s *Server) handleClearHistoryConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	count, err := s.repo.CountTransactions(ctx, auth.UserID(ctx))
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.render(w, http.StatusOK, "clear_history_confirm.html", clearHistoryData{
		Username:         auth.Username(ctx),
		Flash:            popFlash(w, r),
		TransactionCount: count,
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	removed, err := s.repo.ClearHistory(ctx, userID)
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.logger.Info("transaction history cleared",
		log.FieldUserID, userID,
		"removed", removed,
	)

	setFlash(w, "success", "Transaction history cleared. Enjoy the fresh start!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type deleteAccountData struct {
	Username string
	Flash    *flash
}

func (s *Server) handleDeleteAccountConfirm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "delete_account.html", deleteAccountData{
		Username: auth.Username(r.Context()),
		Flash:    popFlash(w, r),
	})
}

// handleDeleteAccount signs the user out first, then removes the account.
// Transactions and settings go with it through the schema's cascades.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)
	username := auth.Username(ctx)

	s.sessions.ClearCookie(w)
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		s.serverError(w, err)
		return
	}
	s.logger.Info("account deleted", log.FieldUserID, userID)

	s.render(w, http.StatusOK, "delete_success.html", deleteAccountData{
		Username: username,
	})
}
