package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mfpdev/MFP-BookingService/internal/api/handlers"
)

// HeaderUserID заголовок с идентификатором аутентифицированного пользователя
// Заголовок проставляется API-шлюзом после проверки токена
const HeaderUserID = "X-User-ID"

type userIDCtxKey struct{}

// Auth извлекает идентификатор пользователя из заголовка и кладёт его в контекст
// Запросы без валидного заголовка отклоняются с 401
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(HeaderUserID)
		if raw == "" {
			handlers.RespondUnauthorized(w, "отсутствует заголовок "+HeaderUserID)
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, "некорректный заголовок "+HeaderUserID)
			return
		}

		ctx := context.WithValue(r.Context(), userIDCtxKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID возвращает идентификатор пользователя из контекста запроса
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDCtxKey{}).(int64)
	return userID, ok
}
