package http

import (
	"net/http"

	"ledgerly/internal/auth"
)

type searchResponse struct {
	HTML  string `json:"html"`
	Count int    `json:"count"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// handleSearch returns rendered search results for the dashboard's search
// column. An empty query yields an empty result, never the full history.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	query := sanitizeInput(r.URL.Query().Get("q"))
	if query == "" {
		s.renderJSON(w, http.StatusOK, searchResponse{HTML: "", Count: 0})
		return
	}

	currencyCode, err := s.userCurrency(r)
	if err != nil {
		s.serverError(w, err)
		return
	}
	results, err := s.repo.SearchTransactions(ctx, userID, query, 10)
	if err != nil {
		s.serverError(w, err)
		return
	}

	html, err := s.renderToString("search_results_list.html", struct {
		SearchResults []txView
		SearchQuery   string
	}{
		SearchResults: newTxViews(results, currencyCode),
		SearchQuery:   query,
	})
	if err != nil {
		s.serverError(w, err)
		return
	}

	s.renderJSON(w, http.StatusOK, searchResponse{HTML: html, Count: len(results)})
}

// handleSuggestions merges matching transaction names and active category
// names, deduplicated in order, for the search box autocomplete.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	query := sanitizeInput(r.URL.Query().Get("q"))
	if query == "" {
		s.renderJSON(w, http.StatusOK, suggestionsResponse{Suggestions: []string{}})
		return
	}

	names, err := s.repo.SuggestTransactionNames(ctx, userID, query, 10)
	if err != nil {
		s.serverError(w, err)
		return
	}
	categories, err := s.repo.SuggestCategoryNames(ctx, query, 10)
	if err != nil {
		s.serverError(w, err)
		return
	}

	seen := make(map[string]struct{}, len(names)+len(categories))
	suggestions := make([]string, 0, len(names)+len(categories))
	for _, name := range append(names, categories...) {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		suggestions = append(suggestions, name)
	}

	s.renderJSON(w, http.StatusOK, suggestionsResponse{Suggestions: suggestions})
}
