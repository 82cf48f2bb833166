package session

import "net/url"

// Navigator is the view layer the manager redirects through when a session
// ends while the user is on a protected page.
type Navigator interface {
	CurrentPath() string
	RequiresAuth(path string) bool
	Redirect(to string)
}

// LoginURL returns the login entry point with the post-login target in the
// redirect query parameter.
func LoginURL(loginPath, redirect string) string {
	if redirect == "" {
		return loginPath
	}
	return loginPath + "?redirect=" + url.QueryEscape(redirect)
}
