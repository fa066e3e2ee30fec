package render

import (
	"time"

	"github.com/dustin/go-humanize"
)

// TimeAgo renders t relative to now, e.g. "3 minutes ago".
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}
