// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/footycollect/footycollect-api/internal/i18n"
)

func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", preferredLanguage(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

// preferredLanguage picks the first supported base language from an
// Accept-Language header such as "es-ES,es;q=0.9,en;q=0.8".
func preferredLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.Split(part, ";")[0])
		fields := strings.FieldsFunc(tag, func(r rune) bool { return r == '-' || r == '_' })
		if len(fields) == 0 {
			continue
		}
		if base := strings.ToLower(fields[0]); i18n.Supported(base) {
			return base
		}
	}
	return i18n.DefaultLang
}
