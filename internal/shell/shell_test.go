package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/pribylovaa/go-expense-tracker/internal/apitest"
	"github.com/pribylovaa/go-expense-tracker/internal/clients"
	"github.com/pribylovaa/go-expense-tracker/internal/config"
	"github.com/pribylovaa/go-expense-tracker/internal/models"
	"github.com/pribylovaa/go-expense-tracker/internal/session"
	"github.com/pribylovaa/go-expense-tracker/internal/tokenstore"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	srv  *apitest.Server
	sess *session.Session
	sh   *Shell
	out  *bytes.Buffer
}

// newFixture — оболочка поверх фейкового бэкенда с пользователем bob.
// expenses == nil — настоящий ExpensesClient.
func newFixture(t *testing.T, expenses ExpensesAPI) *fixture {
	t.Helper()

	srv := apitest.New(t)
	srv.AddUser("bob", "a@b.com", "secret1")

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := tokenstore.New()

	cl, err := clients.New(config.Config{
		Env: "local",
		API: config.APIConfig{
			AuthBaseURL:     srv.URL(),
			ResourceBaseURL: srv.URL(),
			Timeout:         2 * time.Second,
			UserAgent:       "expense-tracker-client",
		},
	}, store, log, nil)
	require.NoError(t, err)

	if expenses == nil {
		expenses = cl.Expenses
	}

	sess := session.New(cl.Auth, cl.Users, store, log)
	out := &bytes.Buffer{}

	return &fixture{
		srv:  srv,
		sess: sess,
		sh:   New(sess, expenses, out, log, WithClock(func() time.Time { return fixedNow })),
		out:  out,
	}
}

// exec выполняет строку и возвращает напечатанное ею.
func (f *fixture) exec(t *testing.T, line string) string {
	t.Helper()

	f.out.Reset()
	require.NoError(t, f.sh.Exec(context.Background(), line))

	return f.out.String()
}

func (f *fixture) login(t *testing.T) {
	t.Helper()

	require.Contains(t, f.exec(t, "login a@b.com secret1"), "Logged in as bob <a@b.com>")
}

func TestExec_HelpUnknownUsage(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	out := f.exec(t, "help")
	for _, c := range []string{"register", "activate", "login", "logout", "whoami", "reset", "set-password",
		"list", "get", "add", "edit", "delete", "profile", "delete-account", "quit"} {
		require.Contains(t, out, c)
	}
	require.Contains(t, out, "Healthcare")

	require.Contains(t, f.exec(t, "fly"), `Unknown command "fly"`)
	require.Contains(t, f.exec(t, "login a@b.com"), "Usage: login <email> <password>")
	require.Empty(t, f.exec(t, "   "))

	f.out.Reset()
	require.ErrorIs(t, f.sh.Exec(context.Background(), `add "x`), errUnterminatedQuote)
	require.ErrorIs(t, f.sh.Exec(context.Background(), "QUIT"), ErrQuit)
}

func TestExec_LogsWithCommandAttr(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sess := session.New(nil, nil, tokenstore.New(), log)
	sh := New(sess, nil, io.Discard, log)

	require.NoError(t, sh.Exec(context.Background(), "help"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(logs.Bytes()), &rec))
	require.Equal(t, "command_started", rec["msg"])
	require.Equal(t, "help", rec["command"])
}

func TestExec_PrivateCommandsRequireLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	for _, line := range []string{"list", "get 1", "add Taxi transport 5", "delete 1", "delete-account secret1"} {
		require.Contains(t, f.exec(t, line), session.MsgNotAuthenticated, line)
	}
	require.Zero(t, f.srv.Hits(apitest.RouteListExpenses))
	require.Equal(t, "anonymous\n", f.exec(t, "whoami"))
}

func TestExec_ValidationBeforeSending(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	out := f.exec(t, "login not-an-email secret1")
	require.Contains(t, out, "Error: Validation error")
	require.Contains(t, out, "email: Email is incorrect")
	require.Zero(t, f.srv.Hits(apitest.RouteLogin))

	out = f.exec(t, "register '' a@b 123")
	require.Contains(t, out, "username: Username is required")
	require.Contains(t, out, "email: Email is incorrect")
	require.Contains(t, out, "password: Minimal password length is 6 chars")
	require.Zero(t, f.srv.Hits(apitest.RouteRegister))

	f.login(t)
	out = f.exec(t, "add '' snacks -1")
	require.Contains(t, out, "amount: Amount must be a positive number")
	require.Contains(t, out, "category: Category is incorrect")
	require.Contains(t, out, "title: Title is required")
	require.Zero(t, f.srv.Hits(apitest.RouteCreateExpense))
}

func TestExec_LoginFailures(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	require.Contains(t, f.exec(t, "login a@b.com wrong-pass"), "Error: Wrong email or password")
	require.Equal(t, "anonymous\n", f.exec(t, "whoami"))
	require.Equal(t, session.StatusError, f.sess.Status())
}

func TestExec_RegisterActivate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	require.Contains(t, f.exec(t, "register alice alice@x.io secret12"), "Registered alice. Check alice@x.io")
	require.Equal(t, "anonymous\n", f.exec(t, "whoami"))

	// без активации войти нельзя
	require.Contains(t, f.exec(t, "login alice@x.io secret12"), "Please activate your email")

	tok := f.srv.ActivationToken("alice@x.io")
	require.NotEmpty(t, tok)

	require.Contains(t, f.exec(t, "activate "+tok), "Account activated. Logged in as alice <alice@x.io>")
	require.True(t, f.sess.Authenticated())

	require.Contains(t, f.exec(t, "activate "+tok), "Activation token is invalid")
	require.False(t, f.sess.Authenticated())
}

func TestExec_ExpenseCRUD(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.login(t)

	require.Equal(t, "No expenses yet.\n", f.exec(t, "list"))
	require.Equal(t, "Added expense 1.\n", f.exec(t, `add "Team lunch" food 12,50 with the team`))
	require.Equal(t, "Added expense 2.\n", f.exec(t, "add Taxi TRANSPORT 7"))

	out := f.exec(t, "list")
	require.Contains(t, out, "Team lunch")
	require.Contains(t, out, "Food")
	require.Contains(t, out, "12.50")
	require.Contains(t, out, "with the team")
	require.Contains(t, out, "2026-03-01")
	require.Contains(t, out, "19.50")

	require.Equal(t, "Updated expense 1.\n", f.exec(t, "edit 1 amount=20 note=dinner date=2026-02-28 category=travel"))

	out = f.exec(t, "get 1")
	require.Contains(t, out, "20.00")
	require.Contains(t, out, "dinner")
	require.Contains(t, out, "Travel")
	require.Contains(t, out, "2026-02-28")

	out = f.exec(t, "edit 1 colour=red amount=0")
	require.Contains(t, out, "colour: Unknown field")
	require.Contains(t, out, "amount: Amount must be a positive number")
	require.Equal(t, 1, f.srv.Hits(apitest.RoutePatchExpense))

	require.Equal(t, "Deleted expense 1.\n", f.exec(t, "delete 1"))
	require.Contains(t, f.exec(t, "get 1"), "Error: Expense not found")
	require.Contains(t, f.exec(t, "get abc"), `invalid id "abc"`)

	list := f.srv.Expenses(1)
	require.Len(t, list, 1)
	require.Equal(t, "Taxi", list[0].Title)
}

func TestExec_SessionEndedAsksToLogInAgain(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.login(t)

	f.srv.ExpireAccessTokens()
	f.srv.RevokeRefresh()

	require.Equal(t, "Session expired: Unauthorized. Please log in again.\n", f.exec(t, "list"))
	require.Nil(t, f.sess.User())
	require.False(t, f.sess.Authenticated())
	require.Equal(t, 1, f.srv.Hits(apitest.RouteRefresh))

	require.Contains(t, f.exec(t, "list"), session.MsgNotAuthenticated)

	f.login(t)
	require.Equal(t, "No expenses yet.\n", f.exec(t, "list"))
}

func TestExec_ExpiredAccessRefreshedTransparently(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.login(t)
	require.Equal(t, "Added expense 1.\n", f.exec(t, "add Taxi transport 7"))

	f.srv.ExpireAccessTokens()

	require.Contains(t, f.exec(t, "list"), "Taxi")
	require.Equal(t, 1, f.srv.Hits(apitest.RouteRefresh))
	require.Equal(t, 2, f.srv.Hits(apitest.RouteListExpenses))
	require.True(t, f.sess.Authenticated())
}

func TestExec_ProfileAndDeleteAccount(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.login(t)

	require.Contains(t, f.exec(t, "profile username=robert"), "password: Current password is required")
	require.Contains(t, f.exec(t, "profile password=secret1"), "Error: Nothing to update")
	require.Contains(t, f.exec(t, "profile password=nope username=robert"), "password: Password is wrong")
	require.Equal(t, 1, f.srv.Hits(apitest.RoutePatchUser))

	require.Equal(t, "Profile updated: robert <a@b.com> (id 1)\n", f.exec(t, "profile password=secret1 username=robert"))
	require.Equal(t, "robert <a@b.com> (id 1)\n", f.exec(t, "whoami"))

	require.Contains(t, f.exec(t, "delete-account wrong-pass"), "Error")
	require.True(t, f.sess.Authenticated())

	require.Equal(t, "Account deleted. Logged out.\n", f.exec(t, "delete-account secret1"))
	require.False(t, f.sess.Authenticated())
	require.Contains(t, f.exec(t, "login a@b.com secret1"), "Wrong email or password")
}

func TestExec_ResetSetPasswordLogout(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	require.Contains(t, f.exec(t, "reset nobody@b.com"), "User with this email does not exist")
	require.Equal(t, "Password reset link sent to a@b.com.\n", f.exec(t, "reset a@b.com"))

	tok := f.srv.ResetToken("a@b.com")
	require.NotEmpty(t, tok)

	require.Contains(t, f.exec(t, "set-password "+tok+" 123"), "password: Minimal password length is 6 chars")
	require.Contains(t, f.exec(t, "set-password "+tok+" newsecret"), "Password changed. Logged in as bob")
	require.True(t, f.sess.Authenticated())

	require.Equal(t, "Logged out.\n", f.exec(t, "logout"))
	require.False(t, f.sess.Authenticated())
	require.Contains(t, f.exec(t, "login a@b.com newsecret"), "Logged in as bob")
}

// brokenExpenses — ресурс, отвечающий неожиданными ошибками.
type brokenExpenses struct {
	ExpensesAPI
	panic bool
}

func (b brokenExpenses) List(context.Context) ([]models.Expense, error) {
	if b.panic {
		panic("nil map")
	}

	return nil, errors.New("clients.ExpensesClient.List: unexpected EOF")
}

func TestExec_UnexpectedErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, brokenExpenses{})
	f.login(t)
	require.Equal(t, "Unexpected error: clients.ExpensesClient.List: unexpected EOF\n", f.exec(t, "list"))
	require.True(t, f.sess.Authenticated())

	f = newFixture(t, brokenExpenses{panic: true})
	f.login(t)
	require.Equal(t, "Unexpected error: internal error\n", f.exec(t, "list"))
}

func TestRun_StopsOnQuit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.out.Reset()

	in := strings.NewReader("whoami\n\nlogin a@b.com secret1\nquit\nwhoami\n")
	require.NoError(t, f.sh.Run(context.Background(), in))

	out := f.out.String()
	require.Equal(t, 1, strings.Count(out, "anonymous"))
	require.Contains(t, out, "Logged in as bob")
	require.Equal(t, 4, strings.Count(out, prompt))
}

func TestRun_EOFAndCanceled(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	require.NoError(t, f.sh.Run(context.Background(), strings.NewReader("whoami")))
	require.Contains(t, f.out.String(), "anonymous")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.out.Reset()
	require.NoError(t, f.sh.Run(ctx, strings.NewReader("whoami\n")))
	require.Empty(t, f.out.String())
}
