package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-reservation/internal/model"
	"github.com/iliyamo/train-ticket-reservation/internal/repository"
)

// Cookie names carrying the session identity. The contest frontend
// sends them on every authenticated request.
const (
	UserCookie  = "user_name"
	AdminCookie = "admin_name"
)

// contextUserKey is where authenticated middleware stores the loaded
// user for handlers.
const contextUserKey = "current_user"

// CurrentUser returns the user injected by UserAuth or AdminAuth.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(contextUserKey).(*model.User)
	return user, ok
}

// UserAuth returns an Echo middleware that resolves the user_name
// session cookie to a user record and injects it into the request
// context. Requests without a valid cookie are rejected with 401 so
// handlers can assume an authenticated passenger.
func UserAuth(users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(UserCookie)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "login required"})
			}
			user, err := users.GetByName(c.Request().Context(), cookie.Value)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "login required"})
			}
			c.Set(contextUserKey, user)
			return next(c)
		}
	}
}

// AdminAuth is like UserAuth but reads the admin_name cookie and
// additionally requires the account's admin flag.
func AdminAuth(users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(AdminCookie)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "admin login required"})
			}
			user, err := users.GetByName(c.Request().Context(), cookie.Value)
			if err != nil || !user.IsAdmin {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "admin login required"})
			}
			c.Set(contextUserKey, user)
			return next(c)
		}
	}
}
