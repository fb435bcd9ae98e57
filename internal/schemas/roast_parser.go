package schemas

import (
	"regexp"
	"strings"

	"roast-server/internal/models"
)

// Разметка, которую модель обязана выдерживать в ответе. Парсинг маркерный,
// а не строгая грамматика: отсутствующие маркеры деградируют молча (пустой
// тизер и/или пустой список секций), а не в ошибку.
var (
	teaserRe  = regexp.MustCompile(`(?s)---TEASER_START---(.*?)---TEASER_END---`)
	sectionRe = regexp.MustCompile(`(?s)---SECTION_START---(.*?)---SECTION_END---`)
	titleRe   = regexp.MustCompile(`TITLE:[ \t]*(.+)`)
	contentRe = regexp.MustCompile(`(?s)CONTENT:[ \t]*(.*?)(?:CALLOUT:|$)`)
	calloutRe = regexp.MustCompile(`CALLOUT:[ \t]*(.+)`)
)

// ParseRoastOutput extracts the teaser block and the section blocks from raw
// generator output. It is pure and deterministic: the same text always yields
// the same result. Section order matches order of appearance in the source.
// A block lacking TITLE: or CONTENT: is silently dropped; a block without
// CALLOUT: yields a section with an empty callout.
func ParseRoastOutput(text string) (string, []models.RoastSection) {
	teaser := ""
	if m := teaserRe.FindStringSubmatch(text); m != nil {
		teaser = strings.TrimSpace(m[1])
	}

	var sections []models.RoastSection
	for _, block := range sectionRe.FindAllStringSubmatch(text, -1) {
		body := block[1]

		titleMatch := titleRe.FindStringSubmatch(body)
		contentMatch := contentRe.FindStringSubmatch(body)
		if titleMatch == nil || contentMatch == nil {
			continue
		}

		section := models.RoastSection{
			Title:   strings.TrimSpace(titleMatch[1]),
			Content: strings.TrimSpace(contentMatch[1]),
		}
		if calloutMatch := calloutRe.FindStringSubmatch(body); calloutMatch != nil {
			section.Callout = strings.TrimSpace(calloutMatch[1])
		}
		sections = append(sections, section)
	}

	return teaser, sections
}
