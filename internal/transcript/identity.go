package transcript

import (
	"strings"
	"unicode"
)

// DefaultRole is assigned to any sender the directory does not know.
const DefaultRole = "Team Member"

// Person is one entry of the care directory.
type Person struct {
	Name    string
	Role    string
	Aliases []string
}

// Directory maps raw sender labels to canonical names and roles. It is built
// once and never mutated afterwards, so it is safe for concurrent use.
type Directory struct {
	member  string
	aliases map[string]string // NameKey(alias) -> canonical name
	roles   map[string]string // canonical name -> role
}

// NewDirectory builds a directory for the given member and care team.
// The generic label "member" always resolves to the member.
func NewDirectory(member Person, team []Person) *Directory {
	d := &Directory{
		member:  member.Name,
		aliases: make(map[string]string),
		roles:   make(map[string]string),
	}
	add := func(p Person) {
		d.roles[p.Name] = p.Role
		d.aliases[NameKey(p.Name)] = p.Name
		for _, a := range p.Aliases {
			d.aliases[NameKey(a)] = p.Name
		}
	}
	add(member)
	d.aliases[NameKey("member")] = member.Name
	for _, p := range team {
		add(p)
	}
	return d
}

var elyx = NewDirectory(
	Person{Name: "Rohan Patel", Role: "Member", Aliases: []string{"Rohan"}},
	[]Person{
		{Name: "Ruby", Role: "Concierge", Aliases: []string{"Ruby (Concierge)"}},
		{Name: "Dr. Warren", Role: "Medical Strategist", Aliases: []string{"Dr. Warren (Medical)"}},
		{Name: "Advik", Role: "Performance Scientist", Aliases: []string{"Advik (Performance)"}},
		{Name: "Carla", Role: "Nutritionist", Aliases: []string{"Carla (Nutrition)"}},
		{Name: "Rachel", Role: "PT/Physiotherapist", Aliases: []string{"Rachel (PT)"}},
		{Name: "Neel", Role: "Concierge Lead", Aliases: []string{"Neel (Lead)"}},
		{Name: "Dr. Evans", Role: "Stress Management", Aliases: []string{"Dr. Evans (Stress)"}},
	},
)

// Elyx returns the directory for the Elyx demo member and care team.
func Elyx() *Directory { return elyx }

// Member returns the member's canonical name.
func (d *Directory) Member() string { return d.member }

// Canonical maps a raw sender label to its canonical display name. Unknown
// labels come back trimmed but otherwise unchanged.
func (d *Directory) Canonical(raw string) string {
	raw = strings.TrimSpace(raw)
	if name, ok := d.aliases[NameKey(raw)]; ok {
		return name
	}
	return raw
}

// Role returns the role for a canonical name, or DefaultRole.
func (d *Directory) Role(name string) string {
	if role, ok := d.roles[name]; ok {
		return role
	}
	return DefaultRole
}

// IsMember reports whether name is the member's canonical name.
func (d *Directory) IsMember(name string) bool {
	return name == d.member
}

// StripParenthetical removes a trailing "(...)" annotation, e.g.
// "Ruby (Concierge)" -> "Ruby".
func StripParenthetical(s string) string {
	if i := strings.Index(s, "("); i >= 0 && strings.Contains(s[i:], ")") {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// NameKey is the comparison key for sender names: parenthetical suffix
// removed, lowercased, punctuation dropped, whitespace collapsed.
// "Dr. Warren (Medical)", "dr warren" and "DR.  WARREN" share one key.
func NameKey(s string) string {
	s = StripParenthetical(s)
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		}
	}
	return b.String()
}
