package domain

const tokenEdge = 4

// TruncateToken renders a bearer token as "abcd--wxyz". Tokens too short to
// keep a hidden middle are fully masked.
func TruncateToken(token string) string {
	if len(token) <= tokenEdge*2 {
		return "****"
	}

	return token[:tokenEdge] + "--" + token[len(token)-tokenEdge:]
}
