package extract

import (
	"regexp"
	"strings"
)

// Headline forms, tried in order against the first non-empty line:
// "SMITH, John A. (NEE Jones)" then "John A. Smith (NEE Jones)".
var (
	reHeadlineLastFirst = regexp.MustCompile(`^([A-Z][A-Za-z]+),\s+(` + atom + middle + `)(?:\s*\((?i:n[ée]e)\s+([^)]+)\))?`)
	reHeadlineFirstLast = regexp.MustCompile(`^(` + atom + middle + `)\s+(` + atom + `)(?:\s*\((?i:n[ée]e)\s+([^)]+)\))?`)
	reProseName         = regexp.MustCompile(atom + `(?: ` + atom + `)+`)
)

// Subject identifies the person the obituary is about. The headline line is
// authoritative; failing that, the first capitalized full name in the
// opening paragraph is taken.
func Subject(text string) (first, last, maiden string, ok bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := reHeadlineLastFirst.FindStringSubmatch(line); m != nil {
			return firstToken(m[2]), titleCase(m[1]), m[3], true
		}
		if m := reHeadlineFirstLast.FindStringSubmatch(line); m != nil {
			return firstToken(m[1]), m[2], m[3], true
		}
		break
	}

	para := text
	if i := strings.Index(text, "\n\n"); i >= 0 {
		para = text[:i]
	}
	if name := reProseName.FindString(para); name != "" {
		parts := strings.Fields(name)
		return parts[0], parts[len(parts)-1], "", true
	}
	return "", "", "", false
}

// titleCase folds an all-caps headline surname down to display form.
func titleCase(s string) string {
	if s == strings.ToUpper(s) && len(s) > 1 {
		return s[:1] + strings.ToLower(s[1:])
	}
	return s
}

func firstToken(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return s
}
