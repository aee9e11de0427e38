package cv

import (
	"hash/fnv"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hericraft/campus-api/internal/courses"
	"github.com/hericraft/campus-api/internal/moodle"
)

// minSummaryRunes is the shortest stripped summary worth showing on a CV.
const minSummaryRunes = 10

// greetings mark a summary as a welcome blurb rather than a course
// description; those never reach the CV.
var greetings = []string{"bienvenido", "bienvenida", "welcome"}

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// StripHTML reduces rich-text summaries to plain readable text.
func StripHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

var completedTemplates = []string{
	"Certificación académica obtenida tras cumplir satisfactoriamente con los objetivos y requisitos del programa académico.",
	"Materia concluida cubriendo en su totalidad los objetivos de aprendizaje del plan de estudios.",
	"Formación completada dentro del programa institucional, con los requisitos de evaluación aprobados.",
}

var inProgressTemplates = []string{
	"Actualmente cursando esta materia para fortalecer competencias técnicas y teóricas dentro del programa institucional.",
	"Materia en curso, orientada al desarrollo de habilidades prácticas dentro del plan de estudios.",
	"Formación en progreso como parte del itinerario académico institucional.",
}

// CourseDescription returns the human-written summary when usable, and a
// deterministic generated sentence otherwise. The same course always yields
// the same sentence across renders.
func CourseDescription(c moodle.Course) string {
	if summary, ok := usableSummary(c.Summary); ok {
		return summary
	}

	templates := inProgressTemplates
	if courses.Completed(c) {
		templates = completedTemplates
	}
	return templates[templateIndex(c.ShortName, len(templates))]
}

// usableSummary accepts a summary only if, stripped of markup, it is long
// enough and is not a greeting blurb.
func usableSummary(summary string) (string, bool) {
	stripped := StripHTML(summary)
	if utf8.RuneCountInString(stripped) <= minSummaryRunes {
		return "", false
	}

	lower := strings.ToLower(stripped)
	for _, greeting := range greetings {
		if strings.Contains(lower, greeting) {
			return "", false
		}
	}

	return stripped, true
}

// templateIndex maps a course key onto a template slot with a stable hash,
// so selection survives restarts and re-renders.
func templateIndex(key string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}
