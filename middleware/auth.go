package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/utils"
)

// AuthMiddleware requires a valid bearer token and stores the user id in the
// request context for handlers to pick up via utils.GetUserID.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			utils.Fail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))

		claims, err := utils.ValidateAccessToken(tokenStr)
		if err != nil {
			if strings.Contains(err.Error(), "expired") {
				utils.Fail(w, http.StatusUnauthorized, "Session expired, please log in again")
				return
			}
			utils.Fail(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		var userID uint
		if rawID, ok := claims["id"]; ok {
			if v, ok := rawID.(float64); ok {
				userID = uint(v)
			}
		}
		if userID == 0 {
			utils.Fail(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), utils.UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
