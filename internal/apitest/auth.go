package apitest

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pribylovaa/go-expense-tracker/internal/models"
	"github.com/pribylovaa/go-expense-tracker/internal/validate"
	"golang.org/x/crypto/bcrypt"
)

// sessionBody — {user, accessToken}.
type sessionBody struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"accessToken,omitempty"`
}

func (s *Server) startSessionLocked(w http.ResponseWriter, u *user) {
	access, err := s.issueSessionLocked(w, u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal error", nil)
		return
	}

	writeJSON(w, http.StatusOK, sessionBody{User: &u.User, AccessToken: access})
}

func (s *Server) userByEmailLocked(email string) *user {
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil
	}

	return s.users[id]
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterRequest
	if err := decodeStrict(r, &in); err != nil {
		badJSON(w)
		return
	}

	fields := map[string]string{}
	if msg := validate.Username(in.Username); msg != "" {
		fields["username"] = msg
	}
	if msg := validate.Email(in.Email); msg != "" {
		fields["email"] = msg
	}
	if msg := validate.Password(in.Password); msg != "" {
		fields["password"] = msg
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if fields["email"] == "" && s.userByEmailLocked(in.Email) != nil {
		fields["email"] = "Email is already taken"
	}
	if len(fields) > 0 {
		writeError(w, http.StatusBadRequest, validate.MsgValidation, fields)
		return
	}

	u := s.newUserLocked(in.Username, in.Email, in.Password)
	tok := uuid.NewString()
	s.activations[tok] = u.ID
	s.lastAct[in.Email] = tok

	writeJSON(w, http.StatusOK, sessionBody{User: &u.User})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if err := decodeStrict(r, &in); err != nil {
		badJSON(w)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.userByEmailLocked(in.Email)
	if u == nil || bcrypt.CompareHashAndPassword(u.hash, []byte(in.Password)) != nil {
		writeError(w, http.StatusBadRequest, "Wrong email or password", nil)
		return
	}
	if !u.active {
		writeError(w, http.StatusForbidden, "Please activate your email", nil)
		return
	}

	s.startSessionLocked(w, u)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if c, err := r.Cookie(RefreshCookie); err == nil {
		delete(s.refresh, hashToken(c.Value))
	}
	s.mu.Unlock()

	clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) activate(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.activations[tok]
	if !ok {
		writeError(w, http.StatusNotFound, "Activation token is invalid", nil)
		return
	}
	delete(s.activations, tok)

	u, ok := s.users[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Activation token is invalid", nil)
		return
	}
	u.active = true

	s.startSessionLocked(w, u)
}

func (s *Server) refreshSession(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(RefreshCookie)
	if err != nil || c.Value == "" {
		unauthorized(w)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := s.consumeRefreshTokenLocked(c.Value, nowUTC())
	if err != nil {
		clearRefreshCookie(w)
		unauthorized(w)
		return
	}

	s.startSessionLocked(w, s.users[uid])
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	var in models.ResetRequest
	if err := decodeStrict(r, &in); err != nil {
		badJSON(w)
		return
	}

	if msg := validate.Email(in.Email); msg != "" {
		writeError(w, http.StatusBadRequest, validate.MsgValidation, map[string]string{"email": msg})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.userByEmailLocked(in.Email)
	if u == nil {
		writeError(w, http.StatusNotFound, "User with this email does not exist", map[string]string{
			"email": "User with this email does not exist",
		})
		return
	}

	tok := uuid.NewString()
	s.resets[tok] = u.ID
	s.lastReset[in.Email] = tok

	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) setPassword(w http.ResponseWriter, r *http.Request) {
	var in models.SetPasswordRequest
	if err := decodeStrict(r, &in); err != nil {
		badJSON(w)
		return
	}

	if msg := validate.Password(in.Password); msg != "" {
		writeError(w, http.StatusBadRequest, validate.MsgValidation, map[string]string{"password": msg})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.resets[in.ResetToken]
	u := s.users[id]
	if !ok || u == nil {
		writeError(w, http.StatusBadRequest, "Reset token is invalid", nil)
		return
	}
	delete(s.resets, in.ResetToken)

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusBadRequest, validate.MsgValidation, map[string]string{"password": err.Error()})
		return
	}
	u.hash = hash
	u.active = true
	s.revokeUserRefreshLocked(u.ID)

	s.startSessionLocked(w, u)
}

func (s *Server) patchUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user id", nil)
		return
	}
	if id != currentUser(r) {
		writeError(w, http.StatusForbidden, "Forbidden", nil)
		return
	}

	var in models.UpdateUserRequest
	if err := decodeStrict(r, &in); err != nil {
		badJSON(w)
		return
	}

	fields := map[string]string{}
	if in.Email != "" {
		if msg := validate.Email(in.Email); msg != "" {
			fields["email"] = msg
		}
	}
	if in.PasswordNew != "" {
		if msg := validate.Password(in.PasswordNew); msg != "" {
			fields["passwordNew"] = msg
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[id]
	if bcrypt.CompareHashAndPassword(u.hash, []byte(in.Password)) != nil {
		fields["password"] = "Password is wrong"
	}
	if in.Email != "" && fields["email"] == "" {
		if other := s.userByEmailLocked(in.Email); other != nil && other.ID != u.ID {
			fields["email"] = "Email is already taken"
		}
	}
	if len(fields) > 0 {
		writeError(w, http.StatusBadRequest, validate.MsgValidation, fields)
		return
	}

	if in.Username != "" {
		u.Username = in.Username
	}
	if in.Email != "" && !strings.EqualFold(in.Email, u.Email) {
		delete(s.byEmail, strings.ToLower(u.Email))
		u.Email = in.Email
		s.byEmail[strings.ToLower(in.Email)] = u.ID
	}
	if in.PasswordNew != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.PasswordNew), bcrypt.MinCost)
		if err != nil {
			writeError(w, http.StatusBadRequest, validate.MsgValidation, map[string]string{"passwordNew": err.Error()})
			return
		}
		u.hash = hash
	}

	writeJSON(w, http.StatusOK, sessionBody{User: &u.User})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user id", nil)
		return
	}
	if id != currentUser(r) {
		writeError(w, http.StatusForbidden, "Forbidden", nil)
		return
	}

	var in models.DeleteUserRequest
	if err := decodeStrict(r, &in); err != nil {
		badJSON(w)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[id]
	if bcrypt.CompareHashAndPassword(u.hash, []byte(in.Password)) != nil {
		writeError(w, http.StatusBadRequest, "Password is wrong", map[string]string{"password": "Password is wrong"})
		return
	}

	for eid, e := range s.expenses {
		if e.User == userRef(id) {
			delete(s.expenses, eid)
		}
	}
	s.revokeUserRefreshLocked(id)
	delete(s.byEmail, strings.ToLower(u.Email))
	delete(s.users, id)

	clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, sessionBody{User: nil})
}
