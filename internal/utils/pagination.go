package utils

import "strconv"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*MaxLimit well inside int64.
	MaxPage = 1_000_000_000
)

// ParsePagination reads page and limit query values. Missing, malformed or zero values
// fall back to the defaults; negative values are floored at 1. Both are capped.
func ParsePagination(pageParam, limitParam string) (page, limit int) {
	page = min(parsePositive(pageParam, DefaultPage), MaxPage)
	limit = min(parsePositive(limitParam, DefaultLimit), MaxLimit)
	return page, limit
}

func parsePositive(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n == 0 {
		return def
	}
	if n < 1 {
		return 1
	}
	return n
}
