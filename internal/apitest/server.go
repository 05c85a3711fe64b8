// apitest — in-memory реализация REST API учёта расходов на httptest.Server
// для тестов клиентов: регистрация с активацией, сессии (HS256 access-токен +
// ротируемая HTTP-only refresh-cookie), сброс пароля, профиль и CRUD расходов.
//
// Хуки для сценариев: ExpireAccessTokens, RevokeRefresh, FailNext,
// счётчики обращений Hits и последний Authorization по маршруту.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pribylovaa/go-expense-tracker/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Маршруты в формате "METHOD pattern" — ключи для Hits/FailNext/LastAuthorization.
const (
	RouteRegister      = "POST /auth/registration"
	RouteLogin         = "POST /auth/login"
	RouteLogout        = "POST /auth/logout"
	RouteActivate      = "GET /auth/activation/{token}"
	RouteRefresh       = "GET /auth/refresh"
	RouteReset         = "POST /auth/reset"
	RouteSetPassword   = "POST /auth/set-password"
	RoutePatchUser     = "PATCH /auth/user/{id}"
	RouteDeleteUser    = "POST /auth/user/{id}/delete"
	RouteListExpenses  = "GET /expenses"
	RouteGetExpense    = "GET /expenses/{id}"
	RouteCreateExpense = "POST /expenses"
	RoutePatchExpense  = "PATCH /expenses/{id}"
	RouteDeleteExpense = "DELETE /expenses/{id}"
)

// RefreshCookie — имя HTTP-only cookie с refresh-токеном.
const RefreshCookie = "refreshToken"

type user struct {
	models.User
	hash   []byte
	active bool
}

// Server — фейковый бэкенд.
type Server struct {
	srv *httptest.Server

	mu         sync.Mutex
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	gen        int

	users      map[int64]*user
	byEmail    map[string]int64
	nextUserID int64

	expenses      map[int64]*models.Expense
	nextExpenseID int64

	refresh     map[string]refreshToken // sha256(token) -> запись
	activations map[string]int64        // token -> user id
	resets      map[string]int64        // token -> user id
	lastAct     map[string]string       // email -> token
	lastReset   map[string]string       // email -> token

	hits     map[string]int
	lastAuth map[string]string
	fail     map[string]int
}

type Option func(*Server)

// WithAccessTTL — время жизни access-токена (по умолчанию 15m).
func WithAccessTTL(d time.Duration) Option {
	return func(s *Server) { s.accessTTL = d }
}

// WithRefreshTTL — время жизни refresh-токена (по умолчанию 30 дней).
func WithRefreshTTL(d time.Duration) Option {
	return func(s *Server) { s.refreshTTL = d }
}

// New запускает сервер и регистрирует его закрытие в t.Cleanup.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		secret:      []byte("apitest-secret"),
		accessTTL:   15 * time.Minute,
		refreshTTL:  30 * 24 * time.Hour,
		users:       make(map[int64]*user),
		byEmail:     make(map[string]int64),
		expenses:    make(map[int64]*models.Expense),
		refresh:     make(map[string]refreshToken),
		activations: make(map[string]int64),
		resets:      make(map[string]int64),
		lastAct:     make(map[string]string),
		lastReset:   make(map[string]string),
		hits:        make(map[string]int),
		lastAuth:    make(map[string]string),
		fail:        make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.srv = httptest.NewServer(s.router())
	t.Cleanup(s.srv.Close)

	return s
}

// URL — базовый адрес сервера.
func (s *Server) URL() string { return s.srv.URL }

func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	s.handle(r, RouteRegister, s.register)
	s.handle(r, RouteLogin, s.login)
	s.handle(r, RouteLogout, s.logout)
	s.handle(r, RouteActivate, s.activate)
	s.handle(r, RouteRefresh, s.refreshSession)
	s.handle(r, RouteReset, s.reset)
	s.handle(r, RouteSetPassword, s.setPassword)

	s.handle(r, RoutePatchUser, s.authorize(s.patchUser))
	s.handle(r, RouteDeleteUser, s.authorize(s.deleteUser))

	s.handle(r, RouteListExpenses, s.authorize(s.listExpenses))
	s.handle(r, RouteGetExpense, s.authorize(s.getExpense))
	s.handle(r, RouteCreateExpense, s.authorize(s.createExpense))
	s.handle(r, RoutePatchExpense, s.authorize(s.patchExpense))
	s.handle(r, RouteDeleteExpense, s.authorize(s.deleteExpense))

	return r
}

// handle регистрирует обработчик под ключом "METHOD pattern" с учётом обращений.
func (s *Server) handle(r chi.Router, route string, h http.HandlerFunc) {
	method, pattern, _ := strings.Cut(route, " ")
	r.Method(method, pattern, s.track(route, h))
}

// track считает обращения, запоминает Authorization и отдаёт ошибку, заказанную FailNext.
func (s *Server) track(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[route]++
		s.lastAuth[route] = r.Header.Get("Authorization")
		status, failed := s.fail[route]
		delete(s.fail, route)
		s.mu.Unlock()

		if failed {
			writeError(w, status, http.StatusText(status), nil)
			return
		}

		next(w, r)
	}
}

// AddUser создаёт активного пользователя и возвращает его id.
func (s *Server) AddUser(username, email, password string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.newUserLocked(username, email, password)
	u.active = true

	return u.ID
}

// AddExpense добавляет расход пользователю и возвращает id записи.
func (s *Server) AddExpense(userID int64, in models.NewExpense) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addExpenseLocked(userID, in).ID
}

// ActivationToken — последний токен активации, выданный на email.
func (s *Server) ActivationToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastAct[email]
}

// ResetToken — последний токен сброса пароля, выданный на email.
func (s *Server) ResetToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastReset[email]
}

// ExpireAccessTokens делает недействительными все выданные access-токены.
// Refresh-токены продолжают работать.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()
}

// RevokeRefresh отзывает все refresh-токены.
func (s *Server) RevokeRefresh() {
	s.mu.Lock()
	s.refresh = make(map[string]refreshToken)
	s.mu.Unlock()
}

// FailNext — следующий запрос на route получит status с {message: <status text>}.
func (s *Server) FailNext(route string, status int) {
	s.mu.Lock()
	s.fail[route] = status
	s.mu.Unlock()
}

// Hits — число обращений к route.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hits[route]
}

// LastAuthorization — заголовок Authorization последнего запроса на route.
func (s *Server) LastAuthorization(route string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastAuth[route]
}

// Expenses — копия расходов пользователя.
func (s *Server) Expenses(userID int64) []models.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.userExpensesLocked(userID)
}

func (s *Server) newUserLocked(username, email, password string) *user {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err) // длина пароля > 72 байт — ошибка теста
	}

	s.nextUserID++
	u := &user{
		User: models.User{ID: s.nextUserID, Username: username, Email: email},
		hash: hash,
	}
	s.users[u.ID] = u
	s.byEmail[strings.ToLower(email)] = u.ID

	return u
}
