package server

import (
	"context"
	"log/slog"
	"net/http"

	"tailscale.com/client/tailscale/apitype"
)

type contextKey int

const (
	userIDKey contextKey = iota
	userInfoKey
)

// UserInfo identifies the person behind a request.
type UserInfo struct {
	Login         string `json:"login"`
	DisplayName   string `json:"display_name"`
	ProfilePicURL string `json:"profile_pic_url,omitempty"`
}

var devUser = UserInfo{Login: "local", DisplayName: "Local Dev User"}

// WhoIser resolves a tailnet peer address to its owner. *local.Client
// satisfies it.
type WhoIser interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

// UserStore maps a login to a local user ID.
type UserStore interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
}

// DevIdentity attributes every request to the local dev user (ID 1), for
// running without Tailscale.
func DevIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, withIdentity(r, 1, devUser))
	})
}

// TailscaleIdentity resolves the caller with WhoIs and rejects requests
// from unknown peers. With a nil users store every caller gets ID 1.
func TailscaleIdentity(wc WhoIser, users UserStore, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			who, err := wc.WhoIs(r.Context(), r.RemoteAddr)
			if err != nil {
				log.Warn("whois failed", "remote", r.RemoteAddr, "error", err)
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown tailnet peer"})
				return
			}
			if who.UserProfile == nil || who.UserProfile.LoginName == "" {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "tailnet peer has no user"})
				return
			}

			info := UserInfo{
				Login:         who.UserProfile.LoginName,
				DisplayName:   who.UserProfile.DisplayName,
				ProfilePicURL: who.UserProfile.ProfilePicURL,
			}
			uid := 1
			if users != nil {
				uid, err = users.GetOrCreateUser(r.Context(), info.Login, info.DisplayName)
				if err != nil {
					log.Error("resolving user", "login", info.Login, "error", err)
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "resolving user"})
					return
				}
			}

			next.ServeHTTP(w, withIdentity(r, uid, info))
		})
	}
}

// withIdentity attaches the caller to r and to its request log line.
func withIdentity(r *http.Request, uid int, info UserInfo) *http.Request {
	noteLogin(r, info.Login)
	ctx := context.WithValue(r.Context(), userIDKey, uid)
	ctx = context.WithValue(ctx, userInfoKey, info)
	return r.WithContext(ctx)
}

// userIDFromContext returns the user ID set by the identity middleware,
// or 1 when none ran.
func userIDFromContext(r *http.Request) int {
	if id, ok := r.Context().Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// userInfoFromContext returns the caller set by the identity middleware,
// or the local dev user when none ran.
func userInfoFromContext(r *http.Request) UserInfo {
	if info, ok := r.Context().Value(userInfoKey).(UserInfo); ok {
		return info
	}
	return devUser
}

// UserFromRequest returns the caller of r, for handlers mounted from
// other packages.
func UserFromRequest(r *http.Request) UserInfo {
	return userInfoFromContext(r)
}
