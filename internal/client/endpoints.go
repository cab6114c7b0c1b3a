package client

import (
	"net/url"
	"strings"
)

const (
	EndpointLogin    = "/auth/login"
	EndpointRegister = "/auth/register"
	EndpointRefresh  = "/auth/refresh"

	authPrefix = "/auth"
)

// IsAuthEndpoint reports whether path is an identity operation. These never
// carry the active-account header.
func IsAuthEndpoint(path string) bool {
	path = requestPath(path)
	return path == authPrefix || strings.HasPrefix(path, authPrefix+"/")
}

// recoverable reports whether a 401 from path may be answered with a token
// refresh. A failed login is a wrong password and a failed refresh is the end
// of the session, so neither is retried.
func recoverable(path string) bool {
	path = requestPath(path)
	return path != EndpointLogin && path != EndpointRefresh
}

func requestPath(raw string) string {
	if u, err := url.Parse(raw); err == nil && len(u.Path) > 0 {
		return strings.TrimSuffix(u.Path, "/")
	}
	return strings.TrimSuffix(raw, "/")
}
