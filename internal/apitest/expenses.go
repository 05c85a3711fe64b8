package apitest

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pribylovaa/go-expense-tracker/internal/models"
)

func nowUTC() time.Time { return time.Now().UTC() }

// userRef — значение поля Expense.User для владельца.
func userRef(id int64) string { return strconv.FormatInt(id, 10) }

func (s *Server) addExpenseLocked(userID int64, in models.NewExpense) *models.Expense {
	s.nextExpenseID++

	date := in.Date
	if date.IsZero() {
		date = nowUTC()
	}

	e := &models.Expense{
		ID:       s.nextExpenseID,
		User:     userRef(userID),
		Title:    in.Title,
		Category: in.Category,
		Amount:   in.Amount,
		Date:     date.UTC(),
		Note:     in.Note,
	}
	s.expenses[e.ID] = e

	return e
}

func (s *Server) userExpensesLocked(userID int64) []models.Expense {
	out := make([]models.Expense, 0)
	for _, e := range s.expenses {
		if e.User == userRef(userID) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// ownExpenseLocked — запись текущего пользователя; чужая неотличима от отсутствующей.
func (s *Server) ownExpenseLocked(r *http.Request) (*models.Expense, bool) {
	id, ok := pathID(r, "id")
	if !ok {
		return nil, false
	}

	e, ok := s.expenses[id]
	if !ok || e.User != userRef(currentUser(r)) {
		return nil, false
	}

	return e, true
}

func validateExpense(title, category string, amount float64) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(title) == "" {
		fields["title"] = "Title is required"
	}
	if !models.ValidCategory(category) {
		fields["category"] = "Category is incorrect"
	}
	if amount <= 0 {
		fields["amount"] = "Amount must be positive"
	}

	return fields
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := s.userExpensesLocked(currentUser(r))
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getExpense(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.ownExpenseLocked(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Expense not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, e)
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var in models.NewExpense
	if err := decodeStrict(r, &in); err != nil {
		badJSON(w)
		return
	}

	if fields := validateExpense(in.Title, in.Category, in.Amount); len(fields) > 0 {
		writeError(w, http.StatusBadRequest, "Validation error", fields)
		return
	}

	s.mu.Lock()
	e := s.addExpenseLocked(currentUser(r), in)
	out := *e
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) patchExpense(w http.ResponseWriter, r *http.Request) {
	var in models.Expense
	if err := decodeStrict(r, &in); err != nil {
		badJSON(w)
		return
	}

	if fields := validateExpense(in.Title, in.Category, in.Amount); len(fields) > 0 {
		writeError(w, http.StatusBadRequest, "Validation error", fields)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.ownExpenseLocked(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Expense not found", nil)
		return
	}

	e.Title = in.Title
	e.Category = in.Category
	e.Amount = in.Amount
	e.Note = in.Note
	if !in.Date.IsZero() {
		e.Date = in.Date.UTC()
	}

	writeJSON(w, http.StatusOK, e)
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.ownExpenseLocked(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Expense not found", nil)
		return
	}
	delete(s.expenses, e.ID)

	w.WriteHeader(http.StatusNoContent)
}
