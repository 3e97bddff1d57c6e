package render

import (
	"strings"

	"jirabot/internal/markup"
)

func PlainText(d Digest) string {
	var sb strings.Builder
	switch d.Outcome {
	case Changes:
		for _, b := range d.Blocks {
			sb.WriteString(b.Author + ": ")
			for _, f := range b.Fragments {
				sb.WriteString(f)
			}
		}
		sb.WriteString(d.Link + " " + d.Summary + " - " + d.Age)
	case Created:
		sb.WriteString(d.Creator + " created this issue: ")
		sb.WriteString(d.Link + " " + d.Summary + " - " + d.Age + " " + CreatedSymbol)
	}
	return markup.StripControl(sb.String())
}

func Markup(d Digest) markup.Document {
	b := markup.NewBuilder()
	switch d.Outcome {
	case Changes:
		for _, block := range d.Blocks {
			b = b.Paragraph(block.Author + ": ")
			for _, f := range block.Fragments {
				b = b.Paragraph(f)
			}
		}
		b = b.Link(d.Link).
			Paragraph(d.Summary).
			Italic(" - " + d.Age)
	case Created:
		b = b.Paragraph(d.Creator + " created this issue: ").
			Link(d.Link).
			Paragraph(d.Summary).
			Italic(" - " + d.Age).
			Paragraph(" " + CreatedSymbol)
	}
	return b.Build()
}
