package dataset

import "strings"

// Category is one of the seven fixed telecom dataset domains.
type Category string

const (
	Faults        Category = "faults"
	Performance   Category = "performance"
	Configuration Category = "configuration"
	Provisioning  Category = "provisioning"
	Availability  Category = "availability"
	Quality       Category = "quality"
	Sites         Category = "sites"
)

// Categories lists every category in display order.
var Categories = []Category{
	Faults, Performance, Configuration, Provisioning, Availability, Quality, Sites,
}

// detectionRules maps each category to the filename keywords that select it.
// Spanish keywords match the operator's export naming alongside the English
// ones. Order matters: the first category with a matching keyword wins.
var detectionRules = []struct {
	category Category
	keywords []string
}{
	{Faults, []string{"averia", "alarm", "fault"}},
	{Performance, []string{"desempe", "performance", "kpi"}},
	{Configuration, []string{"config", "configuracion"}},
	{Provisioning, []string{"provision", "provisi"}},
	{Availability, []string{"dispon", "availability"}},
	{Quality, []string{"calidad", "quality"}},
	{Sites, []string{"proyecto", "project", "site"}},
}

// DetectCategory classifies an uploaded file by its name. The second return
// is false when no keyword matches, in which case the file is ignored and
// reported as unrecognized.
func DetectCategory(filename string) (Category, bool) {
	name := strings.ToLower(filename)
	for _, rule := range detectionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.category, true
			}
		}
	}
	return "", false
}

// Valid reports whether c is one of the seven known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
