package render

import (
	"bytes"
	"encoding/xml"
	"strings"
)

const (
	fontHeightRatio = 0.7
	lineHeight      = 1.2
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 10.0
	fontSizeMax     = 28.0
	maxLines        = 3
)

// fontSize fits lines of text into a box.
func fontSize(w, h float64, lines []string) float64 {
	longest := 1
	for _, l := range lines {
		longest = max(longest, len([]rune(l)))
	}
	byHeight := (h * fontHeightRatio) / (float64(max(len(lines), 1)) * lineHeight)
	byWidth := (w * fontWidthRatio) / (float64(longest) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// wrapLabel breaks a label into at most maxLines lines of roughly width
// runes, truncating the last line with "..".
func wrapLabel(label string, width int) []string {
	words := strings.Fields(label)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		if len([]rune(cur))+1+len([]rune(w)) > width {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	lines = append(lines, cur)

	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] += ".."
	}
	for i, l := range lines {
		if r := []rune(l); len(r) > width+2 {
			lines[i] = string(r[:width]) + ".."
		}
	}
	return lines
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
