package shell

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/pribylovaa/go-expense-tracker/internal/errors"
	"github.com/pribylovaa/go-expense-tracker/internal/models"
	"github.com/pribylovaa/go-expense-tracker/internal/validate"
)

const (
	msgTitleRequired    = "Title is required"
	msgCategoryWrong    = "Category is incorrect"
	msgAmountIncorrect  = "Amount must be a positive number"
	msgDateIncorrect    = "Date must be YYYY-MM-DD"
	msgNothingToUpdate  = "Nothing to update"
	msgPasswordRequired = "Current password is required to change the profile"
)

func (s *Shell) table() map[string]command {
	return map[string]command{
		"help": {usage: "help", help: "show this list", run: s.help},

		"register": {usage: "register <username> <email> <password>", help: "create an account", args: 3, run: s.cmdRegister},
		"activate": {usage: "activate <token>", help: "confirm e-mail and log in", args: 1, run: s.cmdActivate},
		"login":    {usage: "login <email> <password>", help: "log in", args: 2, run: s.cmdLogin},
		"logout":   {usage: "logout", help: "log out", run: s.cmdLogout},
		"whoami":   {usage: "whoami", help: "show the current user", run: s.cmdWhoami},

		"reset":        {usage: "reset <email>", help: "send a password reset link", args: 1, run: s.cmdReset},
		"set-password": {usage: "set-password <reset-token> <password>", help: "set a new password and log in", args: 2, run: s.cmdSetPassword},

		"list":   {usage: "list", help: "list expenses", private: true, run: s.cmdList},
		"get":    {usage: "get <id>", help: "show an expense", args: 1, private: true, run: s.cmdGet},
		"add":    {usage: "add <title> <category> <amount> [note]", help: "add an expense (categories: " + strings.Join(models.Categories, ", ") + ")", args: 3, private: true, run: s.cmdAdd},
		"edit":   {usage: "edit <id> <field>=<value>...", help: "change title, category, amount, date or note", args: 2, private: true, run: s.cmdEdit},
		"delete": {usage: "delete <id>", help: "delete an expense", args: 1, private: true, run: s.cmdDelete},

		"profile":        {usage: "profile password=<current> [username=..] [email=..] [new-password=..]", help: "update the profile", args: 1, private: true, run: s.cmdProfile},
		"delete-account": {usage: "delete-account <password>", help: "delete the account and log out", args: 1, private: true, run: s.cmdDeleteAccount},
	}
}

func (s *Shell) cmdRegister(ctx context.Context, args []string) error {
	username, email, password := args[0], args[1], args[2]
	if err := validate.Registration(username, email, password); err != nil {
		return err
	}

	u, err := s.sess.Register(ctx, models.RegisterRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Registered %s. Check %s for the activation link.\n", u.Username, u.Email)

	return nil
}

func (s *Shell) cmdActivate(ctx context.Context, args []string) error {
	u, err := s.sess.Activate(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprint(s.out, "Account activated. Logged in as ")
	printUser(s.out, u)

	return nil
}

func (s *Shell) cmdLogin(ctx context.Context, args []string) error {
	email, password := args[0], args[1]
	if err := validate.Login(email, password); err != nil {
		return err
	}

	u, err := s.sess.Login(ctx, email, password)
	if err != nil {
		return err
	}

	fmt.Fprint(s.out, "Logged in as ")
	printUser(s.out, u)

	return nil
}

func (s *Shell) cmdLogout(ctx context.Context, _ []string) error {
	if err := s.sess.Logout(ctx); err != nil {
		return err
	}

	fmt.Fprintln(s.out, "Logged out.")

	return nil
}

func (s *Shell) cmdWhoami(_ context.Context, _ []string) error {
	u := s.sess.User()
	if u == nil {
		fmt.Fprintln(s.out, "anonymous")
		return nil
	}

	printUser(s.out, u)

	return nil
}

func (s *Shell) cmdReset(ctx context.Context, args []string) error {
	email := args[0]
	if err := validate.Fields(map[string]string{"email": validate.Email(email)}); err != nil {
		return err
	}

	if err := s.sess.Reset(ctx, email); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Password reset link sent to %s.\n", email)

	return nil
}

func (s *Shell) cmdSetPassword(ctx context.Context, args []string) error {
	token, password := args[0], args[1]
	if err := validate.Fields(map[string]string{"password": validate.Password(password)}); err != nil {
		return err
	}

	u, err := s.sess.SetPassword(ctx, password, token)
	if err != nil {
		return err
	}

	fmt.Fprint(s.out, "Password changed. Logged in as ")
	printUser(s.out, u)

	return nil
}

func (s *Shell) cmdList(ctx context.Context, _ []string) error {
	list, err := s.expenses.List(ctx)
	if err != nil {
		return err
	}

	return printExpenses(s.out, list)
}

func (s *Shell) cmdGet(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	e, err := s.expenses.Get(ctx, id)
	if err != nil {
		return err
	}

	return printExpense(s.out, e)
}

func (s *Shell) cmdAdd(ctx context.Context, args []string) error {
	in := models.NewExpense{
		Title: strings.TrimSpace(args[0]),
		Date:  s.now().UTC(),
		Note:  strings.Join(args[3:], " "),
	}

	fields := map[string]string{}
	if in.Title == "" {
		fields["title"] = msgTitleRequired
	}
	if c, ok := models.CanonicalCategory(args[1]); ok {
		in.Category = c
	} else {
		fields["category"] = msgCategoryWrong
	}
	if a, ok := parseAmount(args[2]); ok {
		in.Amount = a
	} else {
		fields["amount"] = msgAmountIncorrect
	}
	if err := validate.Fields(fields); err != nil {
		return err
	}

	if u := s.sess.User(); u != nil {
		in.User = strconv.FormatInt(u.ID, 10)
	}

	e, err := s.expenses.Create(ctx, in)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Added expense %d.\n", e.ID)

	return nil
}

func (s *Shell) cmdEdit(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	set, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}

	e, err := s.expenses.Get(ctx, id)
	if err != nil {
		return err
	}

	fields := map[string]string{}
	for k, v := range set {
		switch k {
		case "title":
			if e.Title = strings.TrimSpace(v); e.Title == "" {
				fields[k] = msgTitleRequired
			}
		case "category":
			c, ok := models.CanonicalCategory(v)
			if !ok {
				fields[k] = msgCategoryWrong
			}
			e.Category = c
		case "amount":
			a, ok := parseAmount(v)
			if !ok {
				fields[k] = msgAmountIncorrect
			}
			e.Amount = a
		case "date":
			d, err := time.Parse(dateLayout, v)
			if err != nil {
				fields[k] = msgDateIncorrect
			}
			e.Date = d
		case "note":
			e.Note = v
		default:
			fields[k] = "Unknown field"
		}
	}
	if err := validate.Fields(fields); err != nil {
		return err
	}

	updated, err := s.expenses.Patch(ctx, *e)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Updated expense %d.\n", updated.ID)

	return nil
}

func (s *Shell) cmdDelete(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := s.expenses.Delete(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Deleted expense %d.\n", id)

	return nil
}

func (s *Shell) cmdProfile(ctx context.Context, args []string) error {
	set, err := parseAssignments(args)
	if err != nil {
		return err
	}

	in := models.UpdateUserRequest{
		Username:    set["username"],
		Email:       set["email"],
		Password:    set["password"],
		PasswordNew: set["new-password"],
	}

	fields := map[string]string{}
	for k := range set {
		switch k {
		case "username", "email", "password", "new-password":
		default:
			fields[k] = "Unknown field"
		}
	}
	if in.Password == "" {
		fields["password"] = msgPasswordRequired
	}
	if in.Email != "" {
		fields["email"] = validate.Email(in.Email)
	}
	if in.PasswordNew != "" {
		fields["new-password"] = validate.Password(in.PasswordNew)
	}
	if err := validate.Fields(fields); err != nil {
		return err
	}
	if in.Username == "" && in.Email == "" && in.PasswordNew == "" {
		return apierrors.New(msgNothingToUpdate)
	}

	u, err := s.sess.PatchProfile(ctx, in)
	if err != nil {
		return err
	}

	fmt.Fprint(s.out, "Profile updated: ")
	printUser(s.out, u)

	return nil
}

func (s *Shell) cmdDeleteAccount(ctx context.Context, args []string) error {
	if err := s.sess.DeleteAccount(ctx, args[0]); err != nil {
		return err
	}

	fmt.Fprintln(s.out, "Account deleted. Logged out.")

	return nil
}

// parseAmount принимает и запятую как десятичный разделитель.
func parseAmount(s string) (float64, bool) {
	a, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
	if err != nil || !(a > 0) || math.IsInf(a, 0) {
		return 0, false
	}

	return a, true
}
