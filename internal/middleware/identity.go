package middleware

// identity.go holds helpers shared across middleware files for reading the
// caller identity placed in the context by JWTAuth.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// UserID returns the authenticated subject, or "anon" when the request
// carried no token.
func UserID(c echo.Context) string {
    if s, ok := c.Get("user_id").(string); ok && s != "" {
        return s
    }
    return "anon"
}

// claimString renders a JSON claim value as a string.  Older tokens carry
// numeric subjects.
func claimString(v interface{}) string {
    switch t := v.(type) {
    case string:
        return t
    case float64:
        return strconv.FormatFloat(t, 'f', -1, 64)
    case int64:
        return strconv.FormatInt(t, 10)
    }
    return ""
}
