package http

import (
	"net/url"
	"strconv"
	"strings"
)

func intParam(q url.Values, name string, def int) int {
	v, err := strconv.Atoi(q.Get(name))
	if err != nil {
		return def
	}
	return v
}

func floatParam(q url.Values, name string, def float64) float64 {
	v, err := strconv.ParseFloat(q.Get(name), 64)
	if err != nil {
		return def
	}
	return v
}

// listParam collects a repeated query parameter, additionally splitting each
// value on commas, so ?genres=a&genres=b and ?genres=a,b are equivalent.
func listParam(q url.Values, name string) []string {
	var out []string
	for _, raw := range q[name] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
