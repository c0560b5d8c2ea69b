package richtext

import "strings"

// RunKind tags one run of description text.
type RunKind string

const (
	RunPlain  RunKind = "plain"
	RunBold   RunKind = "bold"
	RunItalic RunKind = "italic"
	RunLink   RunKind = "link"
	RunBreak  RunKind = "break"
)

// Run is one typed span. Href is set for link runs only.
type Run struct {
	Kind RunKind `json:"kind"`
	Text string  `json:"text,omitempty"`
	Href string  `json:"href,omitempty"`
}

// Paragraph is an ordered run sequence between blank lines.
type Paragraph struct {
	Runs []Run `json:"runs"`
}

// Parse turns a form description into paragraphs of typed runs. Recognised
// markup: **bold**, *italic*, bare http(s):// links, blank lines as
// paragraph breaks and single newlines as line breaks. Unclosed markers
// stay literal.
func Parse(s string) []Paragraph {
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var paragraphs []Paragraph
	for _, block := range splitParagraphs(s) {
		var runs []Run
		lines := strings.Split(block, "\n")
		for i, line := range lines {
			if i > 0 {
				runs = append(runs, Run{Kind: RunBreak})
			}
			runs = append(runs, parseInline(line)...)
		}
		paragraphs = append(paragraphs, Paragraph{Runs: runs})
	}
	return paragraphs
}

func splitParagraphs(s string) []string {
	var blocks []string
	for _, block := range strings.Split(s, "\n\n") {
		block = strings.Trim(block, "\n")
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

func parseInline(s string) []Run {
	var runs []Run
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			runs = append(runs, Run{Kind: RunPlain, Text: plain.String()})
			plain.Reset()
		}
	}

	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], "**") {
			if end := strings.Index(s[i+2:], "**"); end > 0 {
				flush()
				runs = append(runs, Run{Kind: RunBold, Text: s[i+2 : i+2+end]})
				i += end + 4
				continue
			}
		}
		if s[i] == '*' {
			if end := strings.IndexByte(s[i+1:], '*'); end > 0 {
				flush()
				runs = append(runs, Run{Kind: RunItalic, Text: s[i+1 : i+1+end]})
				i += end + 2
				continue
			}
		}
		if strings.HasPrefix(s[i:], "http://") || strings.HasPrefix(s[i:], "https://") {
			end := strings.IndexFunc(s[i:], func(r rune) bool {
				return r == ' ' || r == '\t'
			})
			if end < 0 {
				end = len(s) - i
			}
			url := s[i : i+end]
			flush()
			runs = append(runs, Run{Kind: RunLink, Text: url, Href: url})
			i += end
			continue
		}
		plain.WriteByte(s[i])
		i++
	}
	flush()
	return runs
}
