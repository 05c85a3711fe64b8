package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	apierrors "github.com/pribylovaa/go-expense-tracker/internal/errors"
)

var errUnterminatedQuote = errors.New("unterminated quote")

// splitArgs делит строку на аргументы по пробелам. Одинарные и двойные кавычки
// группируют аргумент; внутри двойных \" и \\ экранируются.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quote == '"' && r == '\\':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case unicode.IsSpace(r):
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}

	if quote != 0 || escaped {
		return nil, errUnterminatedQuote
	}
	if inArg {
		args = append(args, cur.String())
	}

	return args, nil
}

// parseAssignments разбирает аргументы вида field=value.
// Ошибки ввода возвращаются как *apierrors.AuthError: их печатают, но не репортят.
func parseAssignments(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		k = strings.ToLower(strings.TrimSpace(k))
		if !ok || k == "" {
			return nil, apierrors.New(fmt.Sprintf("expected field=value, got %q", a))
		}
		out[k] = v
	}

	return out, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierrors.New(fmt.Sprintf("invalid id %q", s))
	}

	return id, nil
}
