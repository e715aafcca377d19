package handlers

import (
	"strconv"
	"strings"

	"storefront/internal/apperr"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func parsePaginationParams(pageStr, limitStr string) (int64, int64, error) {
	page := int64(1)
	limit := int64(defaultPageLimit)

	if pageStr = strings.TrimSpace(pageStr); pageStr != "" {
		p, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || p < 1 {
			return 0, 0, apperr.BadRequest("invalid pagination params")
		}
		page = p
	}

	if limitStr = strings.TrimSpace(limitStr); limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 {
			return 0, 0, apperr.BadRequest("invalid pagination params")
		}
		limit = l
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return page, limit, nil
}

func paginationBody(page, limit, total int64) map[string]int64 {
	return map[string]int64{"page": page, "limit": limit, "total": total}
}
