package utils

import (
	"net"
	"time"

	"standwithnepal-server/models"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
)

// Sessions is the server-managed cookie session store. The cookie carries
// only the session ID; identity and jurisdiction live server-side.
var Sessions = sessions.New(sessions.Config{
	Cookie:       "swn_session",
	Expires:      24 * time.Hour,
	AllowReclaim: true,
})

// SessionInfo is the request-scoped snapshot of the caller's identity.
// Handlers and the issue query service take it by value instead of reading
// ambient session state.
type SessionInfo struct {
	LoggedIn     bool
	UserID       uint
	UserType     string
	UserName     string
	Jurisdiction string
	District     string
	Municipality string
	WardNo       int
}

func (s SessionInfo) IsOfficial() bool { return s.LoggedIn && s.UserType == "official" }
func (s SessionInfo) IsAdmin() bool    { return s.LoggedIn && s.UserType == "admin" }

// CurrentSession reads the caller's session into a SessionInfo snapshot.
func CurrentSession(ctx iris.Context) SessionInfo {
	sess := sessions.Get(ctx)
	if sess == nil {
		return SessionInfo{}
	}
	userID := sess.GetIntDefault("user_id", 0)
	if userID <= 0 {
		return SessionInfo{}
	}
	return SessionInfo{
		LoggedIn:     true,
		UserID:       uint(userID),
		UserType:     sess.GetStringDefault("user_type", "citizen"),
		UserName:     sess.GetStringDefault("user_name", ""),
		Jurisdiction: sess.GetStringDefault("jurisdiction", ""),
		District:     sess.GetStringDefault("district", ""),
		Municipality: sess.GetStringDefault("municipality", ""),
		WardNo:       sess.GetIntDefault("ward_no", 0),
	}
}

// StartSession populates the session after a successful login.
func StartSession(ctx iris.Context, user *models.User) {
	sess := sessions.Get(ctx)
	sess.Set("user_id", int(user.ID))
	sess.Set("user_type", user.UserType)
	sess.Set("user_name", user.FullName)
	if user.UserType == "official" {
		sess.Set("jurisdiction", user.Jurisdiction)
		sess.Set("district", user.District)
		sess.Set("municipality", user.Municipality)
		if user.WardNo != nil {
			sess.Set("ward_no", *user.WardNo)
		}
	}
}

// DestroySession logs the caller out unconditionally.
func DestroySession(ctx iris.Context) {
	if sess := sessions.Get(ctx); sess != nil {
		sess.Destroy()
	}
}

// AuthenticatedMiddleware rejects callers without a session.
func AuthenticatedMiddleware(ctx iris.Context) {
	if !CurrentSession(ctx).LoggedIn {
		CreateError(iris.StatusUnauthorized, "Not authenticated", ctx)
		return
	}
	ctx.Next()
}

// AdminOnlyMiddleware ensures the requester is an administrator.
func AdminOnlyMiddleware(ctx iris.Context) {
	if !CurrentSession(ctx).IsAdmin() {
		CreateError(iris.StatusForbidden, "Admin access required", ctx)
		return
	}
	ctx.Next()
}

func ClientIP(ctx iris.Context) string {
	if ip := ctx.GetHeader("X-Forwarded-For"); ip != "" {
		return ip
	}
	ip, _, err := net.SplitHostPort(ctx.RemoteAddr())
	if err != nil {
		return ctx.RemoteAddr()
	}
	return ip
}
