package auth

import (
	"net/http"
)

// LoginPath is where unauthenticated organiser requests are sent.
const LoginPath = "/organiser/login"

// RequireOrganiser guards organiser routes: requests without a valid
// session cookie are redirected to the login form.
func RequireOrganiser(sessions *Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil || sessions.Verify(cookie.Value) != nil {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
