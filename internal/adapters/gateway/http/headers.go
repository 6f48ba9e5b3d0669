package http

// DefaultHeaders is the header template sent with every call. Authorization
// is added per request.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type":    "application/json",
		"Accept":          "application/json",
		"Accept-Language": "en-US,en;q=0.5",
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
		"Origin":          "https://app.nodepay.ai",
		"Referer":         "https://app.nodepay.ai/",
		"Sec-Fetch-Dest":  "empty",
		"Sec-Fetch-Mode":  "cors",
		"Sec-Fetch-Site":  "cross-site",
	}
}

// MergeHeaders returns the defaults overridden by overrides. An override with
// an empty value removes the header.
func MergeHeaders(overrides map[string]string) map[string]string {
	headers := DefaultHeaders()
	for key, value := range overrides {
		canonical := canonicalHeaderKey(key)
		for existing := range headers {
			if canonicalHeaderKey(existing) == canonical {
				delete(headers, existing)
			}
		}
		if value != "" {
			headers[canonical] = value
		}
	}

	return headers
}
