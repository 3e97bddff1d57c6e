package changes

import "strings"

// ValidText reports whether s carries a value: non-empty and not the literal "null".
func ValidText(s string) bool {
	return s != "" && !strings.EqualFold(s, "null")
}

func preferred(first, second string) string {
	if ValidText(first) {
		return first
	}
	return second
}

// withRaw renders "label[raw]", dropping the bracket when raw adds nothing.
func withRaw(label, raw string) string {
	if ValidText(raw) && raw != label {
		return label + "[" + raw + "]"
	}
	return label
}

// Describe renders a change-log item as a human-readable sentence fragment,
// terminated by the item's emoji.
func Describe(it Item) string {
	var sb strings.Builder

	switch strings.ToLower(it.Field) {
	case "version":
		sb.WriteString("made changes to")
		if ValidText(it.FromLabel) {
			sb.WriteString(" " + withRaw(it.FromLabel, it.From))
		}
		if ValidText(it.ToLabel) {
			sb.WriteString(" " + withRaw(it.ToLabel, it.To))
		}
	case "assignee":
		sb.WriteString("Assigned to " + preferred(it.ToLabel, it.To) + " from " + preferred(it.FromLabel, it.From))
	case "labels":
		sb.WriteString("Added label " + it.ToLabel)
	case "key":
		sb.WriteString("Added key to " + preferred(it.To, it.ToLabel) + " from " + preferred(it.From, it.FromLabel))
	default:
		describeTransition(&sb, it)
	}

	sb.WriteString(" " + it.Symbol() + ". ")
	return sb.String()
}

func describeTransition(sb *strings.Builder, it Item) {
	field := strings.ToLower(it.Field)
	switch field {
	case "project":
		sb.WriteString("Moved from")
	case "status":
		sb.WriteString("Set status from")
	case "rank":
		sb.WriteString("Issue")
	default:
		sb.WriteString(it.Field)
	}

	side := func(label, raw string) string {
		if field == "status" {
			return label
		}
		return withRaw(label, raw)
	}

	from, to := ValidText(it.FromLabel), ValidText(it.ToLabel)
	if from {
		sb.WriteString(" " + side(it.FromLabel, it.From))
	}
	if from && to {
		sb.WriteString(" to")
	}
	if to {
		sb.WriteString(" " + side(it.ToLabel, it.To))
	}
}
