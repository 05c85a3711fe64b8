// shell — интерактивная командная оболочка клиента: читает команды построчно,
// вызывает сценарии сессии и обёртки ресурсов, печатает результат.
//
// Ожидаемые ошибки API печатаются как есть (сообщение и ошибки полей).
// Ошибка "сессия завершена" (refresh после 401 не удался) сбрасывает сессию
// и предлагает войти заново. Прочие ошибки уходят в Sentry.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/pribylovaa/go-expense-tracker/internal/models"
	"github.com/pribylovaa/go-expense-tracker/internal/observability"
	"github.com/pribylovaa/go-expense-tracker/internal/session"
	logctx "github.com/pribylovaa/go-expense-tracker/pkg/log"
)

// ErrQuit — команда quit.
var ErrQuit = errors.New("quit")

const prompt = "> "

// ExpensesAPI — CRUD расходов.
type ExpensesAPI interface {
	List(ctx context.Context) ([]models.Expense, error)
	Get(ctx context.Context, id int64) (*models.Expense, error)
	Create(ctx context.Context, in models.NewExpense) (*models.Expense, error)
	Patch(ctx context.Context, in models.Expense) (*models.Expense, error)
	Delete(ctx context.Context, id int64) error
}

type command struct {
	usage   string
	help    string
	args    int // минимальное число аргументов
	private bool
	run     func(ctx context.Context, args []string) error
}

type Shell struct {
	sess     *session.Session
	expenses ExpensesAPI
	out      io.Writer
	log      *slog.Logger
	now      func() time.Time

	commands map[string]command
}

// Option настраивает Shell.
type Option func(*Shell)

// WithClock подменяет источник времени (дата новых расходов).
func WithClock(now func() time.Time) Option {
	return func(s *Shell) { s.now = now }
}

func New(sess *session.Session, expenses ExpensesAPI, out io.Writer, log *slog.Logger, opts ...Option) *Shell {
	if log == nil {
		log = slog.Default()
	}

	s := &Shell{
		sess:     sess,
		expenses: expenses,
		out:      out,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.commands = s.table()

	return s
}

// Run читает команды из in до quit, EOF или отмены ctx.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprint(s.out, prompt)
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}

		if err := s.Exec(ctx, sc.Text()); errors.Is(err, ErrQuit) {
			return nil
		}
	}
}

// Exec выполняет одну строку. Ошибка команды уже напечатана;
// наружу возвращается только ErrQuit и ошибки разбора.
func (s *Shell) Exec(ctx context.Context, line string) (err error) {
	args, err := splitArgs(line)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return err
	}
	if len(args) == 0 {
		return nil
	}

	name, args := strings.ToLower(args[0]), args[1:]
	if name == "quit" || name == "exit" {
		return ErrQuit
	}

	cmd, ok := s.commands[name]
	if !ok {
		fmt.Fprintf(s.out, "Unknown command %q. Type help for the list of commands.\n", name)
		return nil
	}
	if len(args) < cmd.args {
		fmt.Fprintf(s.out, "Usage: %s\n", cmd.usage)
		return nil
	}
	if cmd.private && !s.sess.Authenticated() {
		fmt.Fprintf(s.out, "%s. Use: login <email> <password>\n", session.MsgNotAuthenticated)
		return nil
	}

	ctx, log := logctx.With(logctx.Into(ctx, s.log), slog.String("command", name))

	defer func() {
		if err != nil {
			s.report(ctx, name, err)
			err = nil
		}
	}()
	defer observability.Recover(ctx, name, &err)

	log.Debug("command_started")

	return cmd.run(ctx, args)
}

func (s *Shell) help(_ context.Context, _ []string) error {
	names := make([]string, 0, len(s.commands))
	for n := range s.commands {
		names = append(names, n)
	}
	sort.Strings(names)

	tw := newTable(s.out)
	for _, n := range names {
		fmt.Fprintf(tw, "  %s\t%s\n", s.commands[n].usage, s.commands[n].help)
	}
	fmt.Fprintf(tw, "  %s\t%s\n", "quit", "exit the shell")

	return tw.Flush()
}
