package http

import (
	"errors"
	"net/http"
	"strings"

	"ledgerly/internal/auth"
	"ledgerly/internal/log"
	"ledgerly/internal/storage"
)

type authPageData struct {
	Flash    *flash
	Error    string
	Username string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessions.FromRequest(r); err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, "login.html", authPageData{Flash: popFlash(w, r)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	user, err := s.repo.UserByUsername(r.Context(), username)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && !auth.CheckPassword(user.PasswordHash, password)) {
		s.render(w, http.StatusUnauthorized, "login.html", authPageData{
			Error:    "Invalid username or password.",
			Username: username,
		})
		return
	}
	if err != nil {
		s.serverError(w, err)
		return
	}

	token, err := s.sessions.Issue(user.ID, user.Username)
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.sessions.SetCookie(w, token)
	s.logger.Info("user logged in", log.FieldUserID, user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessions.FromRequest(r); err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, "signup.html", authPageData{Flash: popFlash(w, r)})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	fail := func(message string) {
		s.render(w, http.StatusBadRequest, "signup.html", authPageData{
			Error:    message,
			Username: username,
		})
	}

	if username == "" {
		fail("Please choose a username.")
		return
	}
	if len(password) < 8 {
		fail("Password must be at least 8 characters long.")
		return
	}

	if _, err := s.repo.UserByUsername(r.Context(), username); err == nil {
		fail("That username is already taken.")
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.serverError(w, err)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.serverError(w, err)
		return
	}
	user, err := s.repo.CreateUser(r.Context(), username, hash)
	if err != nil {
		s.serverError(w, err)
		return
	}

	token, err := s.sessions.Issue(user.ID, user.Username)
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.sessions.SetCookie(w, token)
	s.logger.Info("user signed up", log.FieldUserID, user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
