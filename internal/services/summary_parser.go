package services

import (
	"bufio"
	"strings"
)

// ParsedSummary holds the structured fields read back from a summary.
type ParsedSummary struct {
	Name      string
	Skills    []string
	Education []string
	Languages []string
}

// Accepted spellings per section, lowercased. The summary may come back in
// the résumé's language, so Portuguese and Spanish headings are recognised.
var summaryHeadings = map[string][]string{
	HeadingFullName:  {"full name", "name", "nome completo", "nome", "nombre completo"},
	HeadingSkills:    {"skills", "habilidades", "competências", "competencias"},
	HeadingEducation: {"education", "educação", "educacao", "formação", "formacion", "educación"},
	HeadingLanguages: {"languages", "idiomas", "línguas"},
}

// ParseSummary extracts name, skills, education and languages from the
// markdown produced by the summary prompt. Missing sections stay empty.
func ParseSummary(markdown string) ParsedSummary {
	sections := map[string][]string{}
	current := ""

	scanner := bufio.NewScanner(strings.NewReader(markdown))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			current = canonicalHeading(strings.TrimLeft(line, "# "))
			continue
		}
		if current == "" {
			continue
		}
		if item := cleanItem(line); item != "" {
			sections[current] = append(sections[current], item)
		}
	}

	var out ParsedSummary
	if names := sections[HeadingFullName]; len(names) > 0 {
		out.Name = names[0]
	}
	out.Skills = sections[HeadingSkills]
	out.Education = sections[HeadingEducation]
	out.Languages = sections[HeadingLanguages]
	return out
}

func canonicalHeading(title string) string {
	title = strings.ToLower(strings.Trim(strings.TrimSpace(title), "*:"))
	for canonical, spellings := range summaryHeadings {
		for _, s := range spellings {
			if title == s {
				return canonical
			}
		}
	}
	// Known but unused sections such as experience end the previous one.
	return "-"
}

func cleanItem(line string) string {
	line = strings.TrimSpace(strings.TrimLeft(line, "-•*+ \t"))
	return strings.Trim(line, "*_ ")
}
