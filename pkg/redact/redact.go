// redact предоставляет утилиты безопасного редактирования чувствительных
// данных для логов и диагностических ответов (e-mail, токены).
package redact

import "strings"

// tokenKeys — поля, значения которых считаются секретами.
var tokenKeys = map[string]struct{}{
	"access":        {},
	"refresh":       {},
	"access_token":  {},
	"refresh_token": {},
	"token":         {},
	"key":           {},
}

// Email маскирует e-mail для логирования.
//
// Правила:
//   - ровно один символ '@', иначе возвращается "***";
//   - локальная часть заменяется на первые две руны + "***";
//   - если локальная часть не длиннее двух рун — "***@<domain>".
func Email(s string) string {
	if strings.Count(s, "@") != 1 {
		return "***"
	}

	i := strings.IndexByte(s, '@')
	local, domain := s[:i], s[i+1:]

	lr := []rune(local)
	if len(lr) > 2 {
		local = string(lr[:2]) + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Token возвращает литерал-заглушку для токена.
func Token() string { return "[REDACTED_TOKEN]" }

// Tokens возвращает копию m, в которой непустые значения токенных полей
// заменены на Token(). Вложенные объекты обрабатываются рекурсивно.
// nil на входе даёт nil.
func Tokens(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		if _, secret := tokenKeys[strings.ToLower(k)]; secret {
			if s, ok := v.(string); ok && s == "" {
				out[k] = s
				continue
			}
			if v != nil {
				out[k] = Token()
				continue
			}
		}

		if nested, ok := v.(map[string]any); ok {
			out[k] = Tokens(nested)
			continue
		}

		out[k] = v
	}

	return out
}
