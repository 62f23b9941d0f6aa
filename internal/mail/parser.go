package mail

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	DefaultGreeting = "Greetings from Helium,"
	DefaultSignoff  = "Thanks,<br>The Helium Team"
)

// ParsedText is plain email text split into the pieces the HTML shells
// render separately.
type ParsedText struct {
	Greeting   string
	Paragraphs []string
	Signoff    string
}

var (
	titleLineRe    = regexp.MustCompile(`(?i)^[^:]+:.*?\n\n?`)
	greetingFromRe = regexp.MustCompile(`(?i)^greetings from `)
	sentenceRe     = regexp.MustCompile(`[.!?]\s`)
	signoffRe      = regexp.MustCompile(`(?i)^(thanks|thank you|best regards|sincerely|regards|yours truly)`)
	teamRe         = regexp.MustCompile(`(?i)(helium team|team|helium)`)
	thanksTeamRe   = regexp.MustCompile(`(?i)(thanks.*?)(the helium team)`)
	nameLineRe     = regexp.MustCompile(`^[A-Z][a-z]+,\s*$`)
	paraSplitRe    = regexp.MustCompile(`\n\n+`)
	lineSplitRe    = regexp.MustCompile(`\n+`)

	greetingRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(greetings|dear|hello|hi)[\s,]`),
		regexp.MustCompile(`(?i)^(greetings from|dear|hello|hi)`),
	}
)

// ParseText splits free-form email text into greeting, body paragraphs
// and signoff. A leading "Title: ..." line is dropped, paragraphs are
// blank-line separated, and missing greeting/signoff fall back to the
// defaults. Short openers and closers without sentence punctuation are
// treated as greeting/signoff even without a recognized keyword.
func ParseText(text string) ParsedText {
	result := ParsedText{
		Greeting:   DefaultGreeting,
		Paragraphs: []string{},
		Signoff:    DefaultSignoff,
	}
	if strings.TrimSpace(text) == "" {
		return result
	}

	cleaned := titleLineRe.ReplaceAllString(strings.TrimSpace(text), "")

	paragraphs := splitNonEmpty(cleaned, paraSplitRe)
	if len(paragraphs) == 0 {
		paragraphs = splitNonEmpty(cleaned, lineSplitRe)
	}

	greetingFound := false
	for i, para := range paragraphs {
		for _, re := range greetingRes {
			if re.MatchString(para) {
				result.Greeting = greetingFromRe.ReplaceAllString(para, "Greetings from ")
				paragraphs = append(paragraphs[:i], paragraphs[i+1:]...)
				greetingFound = true
				break
			}
		}
		if greetingFound {
			break
		}
	}
	if !greetingFound && len(paragraphs) > 0 {
		first := paragraphs[0]
		if utf8.RuneCountInString(first) < 100 && !sentenceRe.MatchString(first) {
			result.Greeting = first
			paragraphs = paragraphs[1:]
		}
	}

	signoffFound := false
	for i := 0; i < len(paragraphs); i++ {
		para := paragraphs[i]
		if !signoffRe.MatchString(para) {
			continue
		}
		if i+1 < len(paragraphs) && teamRe.MatchString(paragraphs[i+1]) {
			result.Signoff = para + "<br>" + paragraphs[i+1]
			paragraphs = append(paragraphs[:i], paragraphs[i+2:]...)
		} else if m := thanksTeamRe.FindStringSubmatch(para); m != nil {
			result.Signoff = strings.TrimSpace(m[1]) + "<br>" + m[2]
			paragraphs = append(paragraphs[:i], paragraphs[i+1:]...)
		} else {
			result.Signoff = para
			paragraphs = append(paragraphs[:i], paragraphs[i+1:]...)
		}
		signoffFound = true
		break
	}
	if !signoffFound && len(paragraphs) > 0 {
		last := paragraphs[len(paragraphs)-1]
		if utf8.RuneCountInString(last) < 100 && (signoffRe.MatchString(last) || nameLineRe.MatchString(last)) {
			result.Signoff = last
			paragraphs = paragraphs[:len(paragraphs)-1]
		}
	}

	result.Paragraphs = paragraphs
	return result
}

func splitNonEmpty(s string, re *regexp.Regexp) []string {
	parts := re.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
