package apitest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

type ctxKey struct{}

// writeJSON — сериализация ответа.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

type errorBody struct {
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// writeError — тело ошибки в формате API: {message, errors?}.
func writeError(w http.ResponseWriter, status int, msg string, fields map[string]string) {
	writeJSON(w, status, errorBody{Message: msg, Errors: fields})
}

func badJSON(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "Invalid request body", nil)
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
}

// authorize пропускает запрос только с действительным Bearer access-токеном
// и кладёт id пользователя в контекст.
func (s *Server) authorize(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "

		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, prefix) || len(auth) == len(prefix) {
			unauthorized(w)
			return
		}

		s.mu.Lock()
		uid, err := s.validateAccessTokenLocked(strings.TrimSpace(auth[len(prefix):]))
		s.mu.Unlock()
		if err != nil {
			unauthorized(w)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, uid)))
	}
}

func currentUser(r *http.Request) int64 {
	uid, _ := r.Context().Value(ctxKey{}).(int64)
	return uid
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}
