package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"ledgerly/internal/core"
	"ledgerly/internal/log"
)

const maxInputLength = 255

func isAJAX(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

func (s *Server) renderJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", log.FieldError, err)
	}
}

// sanitizeInput trims whitespace and caps the length of free-text form
// fields. The cap lands on a rune boundary so a multibyte character is
// dropped whole rather than stored as a split, invalid sequence.
func sanitizeInput(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > maxInputLength {
		cut := maxInputLength
		for cut > 0 && !utf8.RuneStart(value[cut]) {
			cut--
		}
		value = value[:cut]
	}
	return value
}

// parseDate accepts the ISO form date format.
func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(value))
}

// parseYearMonth resolves the calendar's year/month query parameters, falling
// back to the current date when a value is missing or out of range.
func parseYearMonth(r *http.Request, now time.Time) (int, time.Month) {
	year := now.Year()
	month := now.Month()

	if raw := r.URL.Query().Get("year"); raw != "" {
		if y, err := strconv.Atoi(raw); err == nil && y >= 1900 && y <= now.Year()+5 {
			year = y
		}
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		if m, err := strconv.Atoi(raw); err == nil && m >= 1 && m <= 12 {
			month = time.Month(m)
		}
	}
	return year, month
}

// parseCategoryID turns the category form value into an optional id. An
// empty selection means uncategorized, not an error.
func parseCategoryID(value string) (*uint, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return nil, err
	}
	cid := uint(id)
	return &cid, nil
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func today() time.Time {
	return core.DateOnly(time.Now())
}
