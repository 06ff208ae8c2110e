// Package redact маскирует персональные данные перед записью в лог.
package redact

import "strings"

const mask = "***"

// Contact маскирует контакт автора комментария: e-mail сохраняет домен,
// прочие значения сохраняют только первые две руны. Пустая строка остаётся пустой.
func Contact(s string) string {
	if s == "" {
		return ""
	}

	if at := strings.Index(s, "@"); at > 0 && at < len(s)-1 && strings.Count(s, "@") == 1 {
		return Email(s)
	}

	return prefix(s)
}

func Email(s string) string {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return mask
	}

	local, domain := parts[0], parts[1]
	return prefix(local) + "@" + domain
}

// prefix оставляет две первые руны, если строка длиннее двух рун.
func prefix(s string) string {
	runes := []rune(s)
	if len(runes) <= 2 {
		return mask
	}

	return string(runes[:2]) + mask
}
