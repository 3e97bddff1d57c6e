package changes

import (
	"fmt"
	"strings"
)

// Severity is ordered: Low < Medium < High.
type Severity int

const (
	Low Severity = iota
	Medium
	High
)

func (s Severity) String() string {
	switch s {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// AtLeast is the threshold test used when filtering items: an item of
// severity s is shown for every threshold up to and including s.
func (s Severity) AtLeast(threshold Severity) bool {
	return s >= threshold
}

func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	}
	return Low, fmt.Errorf("unknown severity %q (want low, medium or high)", s)
}

// Sentiment is ordered from worst to best.
type Sentiment int

const (
	Bad Sentiment = iota
	Poor
	Neutral
	Average
	Good
	Excellent
)

func (s Sentiment) String() string {
	switch s {
	case Bad:
		return "bad"
	case Poor:
		return "poor"
	case Neutral:
		return "neutral"
	case Average:
		return "average"
	case Good:
		return "good"
	case Excellent:
		return "excellent"
	}
	return fmt.Sprintf("sentiment(%d)", int(s))
}

// Symbol maps a sentiment to its chat emoji.
func (s Sentiment) Symbol() string {
	switch s {
	case Bad:
		return ":facepalm:"
	case Poor:
		return ":sob:"
	case Average:
		return ":+1:"
	case Neutral:
		return ":grin:"
	case Good:
		return ":blush:"
	case Excellent:
		return ":sunglasses: :clap: :beer: :dollar:"
	}
	return ":question:"
}

// Override is an emoji that replaces the sentiment symbol for a few
// noteworthy transitions.
type Override int

const (
	NoOverride Override = iota
	Exclamation
	Facepalm
	SobFacepalm
)

func (o Override) Symbol() string {
	switch o {
	case Exclamation:
		return ":exclamation:"
	case Facepalm:
		return ":facepalm:"
	case SobFacepalm:
		return ":sob: :facepalm:"
	}
	return ""
}

func (o Override) String() string {
	switch o {
	case NoOverride:
		return "none"
	case Exclamation:
		return "exclamation"
	case Facepalm:
		return "facepalm"
	case SobFacepalm:
		return "sob+facepalm"
	}
	return fmt.Sprintf("override(%d)", int(o))
}
