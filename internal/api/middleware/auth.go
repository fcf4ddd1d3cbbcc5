package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/salonbook/booking-service/internal/api/handlers"
	"github.com/salonbook/booking-service/internal/domain"
)

const (
	// HeaderUserID идентификатор принципала, проставляется API gateway
	HeaderUserID = "X-User-ID"
	// HeaderUserRole роль принципала: user или salon
	HeaderUserRole = "X-User-Role"

	msgMissingUserID = "отсутствует заголовок X-User-ID"
	msgInvalidUserID = "некорректный заголовок X-User-ID"
	msgInvalidRole   = "некорректный заголовок X-User-Role"
)

type contextKey string

const principalKey contextKey = "principal"

// Auth извлекает принципала из заголовков запроса и кладет его в контекст.
// Сами учетные данные проверяет API gateway, сюда заголовки приходят уже
// после его проверки. Запросы без X-User-ID отклоняются с 401.
// Отсутствующий X-User-Role трактуется как роль user.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idStr := r.Header.Get(HeaderUserID)
		if idStr == "" {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || id <= 0 {
			handlers.RespondUnauthorized(w, msgInvalidUserID)
			return
		}

		role := domain.RoleUser
		if roleStr := r.Header.Get(HeaderUserRole); roleStr != "" {
			role = domain.Role(roleStr)
			if role != domain.RoleUser && role != domain.RoleSalon {
				handlers.RespondUnauthorized(w, msgInvalidRole)
				return
			}
		}

		principal := domain.Principal{ID: id, Role: role}
		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPrincipal возвращает принципала из контекста запроса
func GetPrincipal(ctx context.Context) (domain.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(domain.Principal)
	return principal, ok
}
