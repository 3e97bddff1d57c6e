package render

import (
	"fmt"
	"time"
)

// RelativeAge describes how long before now t happened, in whole hours when
// at least one hour has passed and in whole minutes otherwise.
func RelativeAge(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	if hours := int(d.Hours()); hours > 0 {
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	switch minutes := int(d.Minutes()); minutes {
	case 0:
		return "Just now"
	case 1:
		return "1 minute ago"
	default:
		return fmt.Sprintf("%d minutes ago", minutes)
	}
}
