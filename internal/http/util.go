package httpx

import (
	"net/http"
	"strconv"
	"strings"
)

// queryInt reads key from the query string. Missing or malformed values yield def.
func queryInt(r *http.Request, key string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key)))
	if err != nil {
		return def
	}
	return i
}

// ParseLimitOffset reads ?limit and ?offset. The limit is clamped to [1, maxLimit] and a
// negative offset becomes zero.
func ParseLimitOffset(r *http.Request, defLimit, maxLimit int) (int, int) {
	maxLimit = max(maxLimit, 1)
	limit := min(max(queryInt(r, "limit", defLimit), 1), maxLimit)
	return limit, max(queryInt(r, "offset", 0), 0)
}
