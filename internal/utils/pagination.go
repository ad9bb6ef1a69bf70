// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"strconv"
	"strings"
)

// AtoiDefault converts s to an int, returning def when s is empty or not an
// integer.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// PageLimits bounds a page request.
type PageLimits struct {
	DefaultSize int
	MaxSize     int
}

// DefaultPageLimits is 20 items per page, at most 100.
var DefaultPageLimits = PageLimits{DefaultSize: 20, MaxSize: 100}

// ClampPage parses raw page and page size values and bounds them: pages
// start at 1, sizes fall in [1, MaxSize], and unparseable input takes the
// default.
func ClampPage(rawPage, rawSize string, lim PageLimits) (page, size int) {
	if lim.DefaultSize < 1 {
		lim.DefaultSize = DefaultPageLimits.DefaultSize
	}
	if lim.MaxSize < lim.DefaultSize {
		lim.MaxSize = lim.DefaultSize
	}
	page = AtoiDefault(strings.TrimSpace(rawPage), 1)
	if page < 1 {
		page = 1
	}
	size = AtoiDefault(strings.TrimSpace(rawSize), lim.DefaultSize)
	switch {
	case size < 1:
		size = 1
	case size > lim.MaxSize:
		size = lim.MaxSize
	}
	return page, size
}

// TotalPages is the number of pages of size needed for total items.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// ParseBool reads common truthy and falsy spellings, returning def for
// anything else.
func ParseBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	return def
}
