package auth

import (
	"context"
	"net/http"

	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
	"go.uber.org/zap"
)

// TokenValidator — интерфейс проверки токена консольного API
type TokenValidator interface {
	VerifyToken(tokenStr string) (*domain.CustomClaims, error)
}

// Типизированные ключи контекста (избегаем коллизий со сторонними пакетами)
type ctxKey string

const (
	userIDKey ctxKey = "user_id"
	roleKey   ctxKey = "user_role"
)

// UserID достает идентификатор пользователя из контекста запроса
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// Role достает роль пользователя из контекста запроса
func Role(ctx context.Context) string {
	if r, ok := ctx.Value(roleKey).(string); ok {
		return r
	}
	return ""
}

func NewMiddleware(v TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := v.VerifyToken(authHeader)
			if err != nil {
				logger.Warn("auth failure", zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// Прокидываем данные в контекст
			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, roleKey, claims.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole пускает дальше только пользователей с указанной ролью.
// Вешается после NewMiddleware, иначе роль в контексте будет пустой.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if Role(r.Context()) != role {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
