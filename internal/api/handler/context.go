package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quotecraft/quoting-system/internal/api/middleware"
)

// identity is the caller as described by the verified access token.
type identity struct {
	UserID    string
	Role      string
	CompanyID string
}

// ctxIdentity extracts the claims injected by the Auth middleware. A missing
// user id means the middleware did not run for this route.
func ctxIdentity(c echo.Context) (identity, error) {
	id := identity{}
	id.UserID, _ = c.Get(middleware.CtxUserID).(string)
	if id.UserID == "" {
		return identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	id.Role, _ = c.Get(middleware.CtxRole).(string)
	id.CompanyID, _ = c.Get(middleware.CtxCompanyID).(string)
	return id, nil
}

// bindAndValidate binds the request body into req and runs the struct
// validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
