package profile

import "github.com/hericraft/campus-api/internal/moodle"

// Default sentinels surfaced when a custom field cannot be resolved.
const (
	DefaultGrade    = "Grado No Definido"
	DefaultUserType = "Tipo No Definido"
)

// alias identifies a custom field either by its shortname or by its
// admin-facing display name. The upstream schema is not under our control,
// so matching stays match-or-default and new spellings are added here, not
// in code.
type alias struct {
	shortname string
	name      string
}

var (
	gradeAliases = []alias{
		{shortname: "grado_escolar"},
		{name: "Grado Escolar"},
		{shortname: "grade"},
	}
	levelAliases = []alias{
		{shortname: "nivel_escolar"},
		{name: "Nivel Escolar"},
		{shortname: "level"},
	}
	userTypeAliases = []alias{
		{shortname: "tipo_usuario"},
		{name: "Tipo de Usuario"},
		{shortname: "usertype"},
		{shortname: "type"},
	}
)

// lookup scans the unordered field list alias by alias; the first alias
// with a matching entry wins. An empty value on the matched entry falls
// back to the default.
func lookup(fields []moodle.CustomField, aliases []alias, fallback string) string {
	for _, a := range aliases {
		for _, f := range fields {
			if (a.shortname != "" && f.ShortName == a.shortname) ||
				(a.name != "" && f.Name == a.name) {
				if f.Value != "" {
					return f.Value
				}
				return fallback
			}
		}
	}
	return fallback
}

func ExtractGrade(fields []moodle.CustomField) string {
	return lookup(fields, gradeAliases, DefaultGrade)
}

func ExtractLevel(fields []moodle.CustomField) string {
	return lookup(fields, levelAliases, "")
}

func ExtractUserType(fields []moodle.CustomField) string {
	return lookup(fields, userTypeAliases, DefaultUserType)
}

// GradeDisplay joins grade and level for presentation ("3° Secundaria");
// with no level it shows the bare grade.
func GradeDisplay(rawGrade, rawLevel string) string {
	if rawGrade != DefaultGrade && rawLevel != "" {
		return rawGrade + "° " + rawLevel
	}
	return rawGrade
}
