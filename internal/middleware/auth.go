// Package middleware содержит HTTP middleware сервиса учёта баллов.
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/mmeshcher/choreledger/internal/apierror"
)

type contextKey string

const familyIDKey contextKey = "familyID"

const (
	authCookieName = "session"
	authCookieTTL  = 30 * 24 * time.Hour
)

// AuthMiddleware проверяет сессию родителя по подписанному cookie.
// В cookie хранится идентификатор семьи, к которой привязаны все данные запроса.
type AuthMiddleware struct {
	secretKey []byte
}

// NewAuthMiddleware создаёт AuthMiddleware с указанным секретным ключом.
// Пустой ключ заменяется случайным, и сессии не переживают перезапуск.
func NewAuthMiddleware(secret string) *AuthMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			key = []byte("choreledger-session-key")
		}
	}

	return &AuthMiddleware{secretKey: key}
}

// Middleware пропускает запрос дальше, только если cookie сессии подписан верно.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(authCookieName)
		if err != nil {
			apierror.Write(w, http.StatusUnauthorized, apierror.KindUnauthorized, "authentication required")
			return
		}

		familyID, ok := a.parseCookie(cookie.Value)
		if !ok {
			apierror.Write(w, http.StatusUnauthorized, apierror.KindUnauthorized, "invalid session")
			return
		}

		ctx := context.WithValue(r.Context(), familyIDKey, familyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetAuthCookie устанавливает cookie сессии для указанной семьи.
func (a *AuthMiddleware) SetAuthCookie(w http.ResponseWriter, familyID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    familyID + "." + a.sign(familyID),
		Path:     "/",
		Expires:  time.Now().Add(authCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *AuthMiddleware) sign(value string) string {
	mac := hmac.New(sha256.New, a.secretKey)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}

func (a *AuthMiddleware) parseCookie(value string) (string, bool) {
	familyID, signature, ok := strings.Cut(value, ".")
	if !ok || familyID == "" {
		return "", false
	}

	if !hmac.Equal([]byte(signature), []byte(a.sign(familyID))) {
		return "", false
	}

	return familyID, true
}

// GetFamilyIDFromContext извлекает идентификатор семьи из контекста запроса.
func GetFamilyIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(familyIDKey).(string)
	return id, ok && id != ""
}
