package main

import "tern/internal/driver"

// summarizeTimings is what --timings prints to stderr after a check.
func summarizeTimings(res *driver.Result) string {
	if res.Cached {
		return "cached result\n" + res.Timing.String()
	}
	return res.Timing.String()
}
