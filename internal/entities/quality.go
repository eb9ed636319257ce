package entities

// Quality identifiers
const (
	QualityNone        = "none"
	QualityApprentice  = "apprentice"
	QualityApprentice4 = "apprentice4"
	QualityAdept1      = "adept1"
	QualityExpert      = "expert"
	QualityMaster1     = "master1"
	QualityGrandmaster = "grandmaster"

	// DefaultQualityColor is used for qualities without a color of their own
	DefaultQualityColor = "#6c757d"
)

// SpellQuality is an upgrade tier a character trains a spell to
type SpellQuality struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Color       string `json:"color,omitempty"`
}

var spellQualities = []SpellQuality{
	{Name: QualityNone, DisplayName: "None", Color: "#6c757d"},
	{Name: QualityApprentice, DisplayName: "Apprentice", Color: "#007bff"},
	{Name: QualityApprentice4, DisplayName: "Apprentice IV", Color: "#007bff"},
	{Name: QualityAdept1, DisplayName: "Adept I", Color: "#ffc107"},
	{Name: QualityExpert, DisplayName: "Expert", Color: "#28a745"},
	{Name: QualityMaster1, DisplayName: "Master I", Color: "#ffc107"},
	{Name: QualityGrandmaster, DisplayName: "Grandmaster", Color: "#fd7e14"},
}

// SpellQualities returns the quality table in display order
func SpellQualities() []SpellQuality {
	out := make([]SpellQuality, len(spellQualities))
	copy(out, spellQualities)
	return out
}

// LookupQuality finds a quality by name
func LookupQuality(name string) (SpellQuality, bool) {
	for _, q := range spellQualities {
		if q.Name == name {
			return q, true
		}
	}
	return SpellQuality{}, false
}

// DefaultQuality is assigned to newly known spells
func DefaultQuality() SpellQuality {
	q, _ := LookupQuality(QualityApprentice)
	return q
}

// NoneQuality marks a spell the character does not need trained
func NoneQuality() SpellQuality {
	q, _ := LookupQuality(QualityNone)
	return q
}

// QualityColor returns the display color for a quality name
func QualityColor(name string) string {
	if q, ok := LookupQuality(name); ok && q.Color != "" {
		return q.Color
	}
	return DefaultQualityColor
}

// QualityNames lists every valid quality name
func QualityNames() []string {
	names := make([]string, 0, len(spellQualities))
	for _, q := range spellQualities {
		names = append(names, q.Name)
	}
	return names
}
