package shared

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination accepts limit/offset, page/limit (1-based page) or skip/take.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	q := r.URL.Query()
	limit := defaultLimit
	offset := 0
	if v, ok := positiveInt(q.Get("limit")); ok {
		limit = v
	} else if v, ok := positiveInt(q.Get("take")); ok {
		limit = v
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}

	if raw := q.Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	} else if raw := q.Get("skip"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	} else if page, ok := positiveInt(q.Get("page")); ok {
		offset = (page - 1) * limit
	}
	return Pagination{Limit: limit, Offset: offset}
}

func Paginate(r *http.Request) Pagination {
	return ParsePagination(r, DefaultPageSize, MaxPageSize)
}

func positiveInt(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
