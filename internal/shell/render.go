package shell

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"text/tabwriter"

	apierrors "github.com/pribylovaa/go-expense-tracker/internal/errors"
	"github.com/pribylovaa/go-expense-tracker/internal/models"
	"github.com/pribylovaa/go-expense-tracker/internal/observability"
	logctx "github.com/pribylovaa/go-expense-tracker/pkg/log"
)

const dateLayout = "2006-01-02"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// report печатает ошибку команды.
func (s *Shell) report(ctx context.Context, command string, err error) {
	log := logctx.From(ctx)

	if apierrors.IsSessionEnded(err) {
		s.sess.EndSession()
		ae, _ := apierrors.As(err)
		fmt.Fprintf(s.out, "Session expired: %s. Please log in again.\n", ae.Error())
		return
	}

	if ae, ok := apierrors.As(err); ok {
		printAuthError(s.out, ae)
		return
	}

	if _, panicked := observability.PanicValue(err); !panicked {
		observability.Report(ctx, command, err)
	}
	log.Error("command_failed", slog.String("error", err.Error()))
	fmt.Fprintf(s.out, "Unexpected error: %v\n", err)
}

// printAuthError: сообщение, затем ошибки полей в алфавитном порядке.
func printAuthError(w io.Writer, ae *apierrors.AuthError) {
	if ae.Message != "" {
		fmt.Fprintf(w, "Error: %s\n", ae.Message)
	} else if len(ae.Errors) == 0 {
		fmt.Fprintf(w, "Error: %s\n", ae.Error())
	}

	keys := make([]string, 0, len(ae.Errors))
	for k := range ae.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %s\n", k, ae.Field(k))
	}
}

func printExpenses(w io.Writer, list []models.Expense) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No expenses yet.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tTITLE\tCATEGORY\tAMOUNT\tNOTE")

	var total float64
	for _, e := range list {
		total += e.Amount
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%s\n",
			e.ID, e.Date.Format(dateLayout), e.Title, e.Category, e.Amount, e.Note)
	}
	fmt.Fprintf(tw, "\t\t\tTOTAL\t%.2f\t\n", total)

	return tw.Flush()
}

func printExpense(w io.Writer, e *models.Expense) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%d\n", e.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", e.Title)
	fmt.Fprintf(tw, "Category:\t%s\n", e.Category)
	fmt.Fprintf(tw, "Amount:\t%.2f\n", e.Amount)
	fmt.Fprintf(tw, "Date:\t%s\n", e.Date.Format(dateLayout))
	if e.Note != "" {
		fmt.Fprintf(tw, "Note:\t%s\n", e.Note)
	}

	return tw.Flush()
}

func printUser(w io.Writer, u *models.User) {
	fmt.Fprintf(w, "%s <%s> (id %d)\n", u.Username, u.Email, u.ID)
}
