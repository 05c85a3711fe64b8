// redact маскирует чувствительные значения перед записью в лог:
// e-mail, access-токены и заголовок Authorization.
package redact

import "strings"

// Email оставляет первые две руны локальной части и домен.
func Email(s string) string {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return "***"
	}

	local, domain := []rune(parts[0]), parts[1]
	if len(local) > 2 {
		return string(local[:2]) + "***@" + domain
	}

	return "***@" + domain
}

func Token() string { return "[REDACTED_TOKEN]" }

// Authorization маскирует значение заголовка Authorization, сохраняя схему.
// Пустое значение остаётся пустым: по нему видно, что токена не было.
func Authorization(v string) string {
	if v == "" {
		return ""
	}

	scheme, _, found := strings.Cut(v, " ")
	if !found {
		return Token()
	}

	return scheme + " " + Token()
}
