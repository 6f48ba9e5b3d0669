package domain

import (
	"fmt"
	"net/url"
	"strings"
)

var supportedProxySchemes = map[string]struct{}{
	"http":    {},
	"https":   {},
	"socks5":  {},
	"socks5h": {},
}

// ParseProxy turns a proxy line into a URL. Accepted forms are host:port,
// user:pass@host:port and either of those behind a scheme prefix; lines
// without a scheme default to http.
func ParseProxy(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("empty proxy line")
	}

	scheme := "http"
	if before, after, ok := strings.Cut(line, "://"); ok {
		scheme = strings.ToLower(before)
		line = after
	}
	if _, ok := supportedProxySchemes[scheme]; !ok {
		return "", fmt.Errorf("unsupported proxy scheme %q", scheme)
	}

	proxyURL := &url.URL{Scheme: scheme}
	if at := strings.LastIndex(line, "@"); at >= 0 {
		username, password, ok := strings.Cut(line[:at], ":")
		if !ok || username == "" {
			return "", fmt.Errorf("invalid proxy credentials")
		}
		proxyURL.User = url.UserPassword(username, password)
		line = line[at+1:]
	}

	line = strings.TrimSuffix(line, "/")
	if _, port, ok := strings.Cut(line, ":"); !ok || port == "" {
		return "", fmt.Errorf("proxy %s://%s has no port", scheme, line)
	}
	proxyURL.Host = line

	return proxyURL.String(), nil
}
