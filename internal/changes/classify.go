package changes

import "strings"

type Classification struct {
	Severity  Severity
	Sentiment Sentiment
	Override  Override
}

// Symbol returns the override emoji when one is set, the sentiment emoji otherwise.
func (c Classification) Symbol() string {
	if c.Override != NoOverride {
		return c.Override.Symbol()
	}
	return c.Sentiment.Symbol()
}

// Status labels that mark a change as finished work.
var doneStatuses = map[string]bool{
	"Resolved":              true,
	"Closed":                true,
	"ready for code review": true,
	"Ready for QA":          true,
}

// Classify assigns a severity, a sentiment and an optional override emoji to a
// field change. The field name is matched case-insensitively; labels are
// matched exactly. Unknown fields fall back to low/neutral.
func Classify(field, fromLabel, toLabel string) Classification {
	switch strings.ToLower(field) {
	case "status":
		return classifyStatus(fromLabel, toLabel)
	case "assignee", "version", "link":
		return Classification{Severity: Medium, Sentiment: Neutral}
	case "key", "labels", "project":
		return Classification{Severity: Low, Sentiment: Neutral}
	case "rank":
		if strings.Contains(toLabel, "higher") {
			return Classification{Severity: High, Sentiment: Bad, Override: Exclamation}
		}
		return Classification{Severity: Low, Sentiment: Good}
	}
	return Classification{Severity: Low, Sentiment: Neutral}
}

func classifyStatus(fromLabel, toLabel string) Classification {
	switch {
	case toLabel == "Open":
		return Classification{Severity: Low, Sentiment: Neutral}
	case toLabel == "In Progress" && fromLabel == "Reopened":
		return Classification{Severity: High, Sentiment: Bad, Override: SobFacepalm}
	case toLabel == "In Progress":
		return Classification{Severity: Medium, Sentiment: Good}
	case doneStatuses[toLabel]:
		return Classification{Severity: High, Sentiment: Excellent}
	case toLabel == "Reopened":
		return Classification{Severity: High, Sentiment: Bad, Override: Facepalm}
	}
	return Classification{Severity: Low, Sentiment: Good}
}
