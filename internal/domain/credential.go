package domain

import (
	"net/url"
	"strings"
)

type Credential struct {
	Label string
	Token string
	// Proxy is a normalized proxy URL; empty means a direct connection.
	Proxy string
}

func (c Credential) DisplayName() string {
	if label := strings.TrimSpace(c.Label); label != "" {
		return label
	}

	return TruncateToken(c.Token)
}

// PairCredentials pairs tokens with proxies by position: the token at index i
// gets proxies[i]. A blank or repeated proxy leaves its slot direct without
// moving later proxies, accounts beyond the proxy count run without a proxy
// and surplus proxies are ignored.
func PairCredentials(tokens []string, proxies []string) []Credential {
	proxies = NormalizeProxies(proxies)

	credentials := make([]Credential, 0, len(tokens))
	for i, token := range tokens {
		trimmed := strings.TrimSpace(token)
		if trimmed == "" {
			continue
		}

		credential := Credential{Token: trimmed}
		if i < len(proxies) {
			credential.Proxy = proxies[i]
		}
		credentials = append(credentials, credential)
	}

	return credentials
}

// NormalizeProxies trims entries and blanks out repeated ones so that no
// proxy is handed to two accounts. Positions are kept.
func NormalizeProxies(proxies []string) []string {
	normalized := make([]string, len(proxies))
	seen := make(map[string]struct{}, len(proxies))
	for i, proxy := range proxies {
		trimmed := strings.TrimSpace(proxy)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized[i] = trimmed
	}

	return normalized
}

// ProxyHost renders a proxy without its credentials, or "direct".
func ProxyHost(proxy string) string {
	if strings.TrimSpace(proxy) == "" {
		return "direct"
	}

	parsed, err := url.Parse(proxy)
	if err != nil || parsed.Host == "" {
		return "invalid"
	}

	return parsed.Scheme + "://" + parsed.Host
}
