package persona

import (
	"sort"
	"strings"
)

// Library holds the known persona profiles, built-ins plus any loaded from
// the user's personas directory. User profiles override built-ins on id
// collision. Registration order is preserved because mention resolution and
// participant listings depend on a stable iteration order.
type Library struct {
	profiles map[string]Profile
	order    []string
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{profiles: make(map[string]Profile)}
}

// DefaultLibrary returns a library seeded with the built-in personas.
func DefaultLibrary() *Library {
	l := NewLibrary()
	for _, p := range builtins {
		l.Add(p)
	}
	return l
}

// Add registers a profile, replacing any existing profile with the same id.
func (l *Library) Add(p Profile) {
	if _, ok := l.profiles[p.ID]; !ok {
		l.order = append(l.order, p.ID)
	}
	l.profiles[p.ID] = p
}

// Get returns a profile by id.
func (l *Library) Get(id string) (Profile, bool) {
	p, ok := l.profiles[id]
	return p, ok
}

// Resolve matches an id or display name, case-insensitively.
func (l *Library) Resolve(nameOrID string) (Profile, bool) {
	needle := strings.ToLower(strings.TrimSpace(nameOrID))
	if p, ok := l.profiles[needle]; ok {
		return p, true
	}
	for _, id := range l.order {
		if strings.ToLower(l.profiles[id].Name) == needle {
			return l.profiles[id], true
		}
	}
	return Profile{}, false
}

// List returns all profiles in registration order.
func (l *Library) List() []Profile {
	out := make([]Profile, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.profiles[id])
	}
	return out
}

// IDs returns the registered ids, sorted.
func (l *Library) IDs() []string {
	ids := make([]string, len(l.order))
	copy(ids, l.order)
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered profiles.
func (l *Library) Len() int { return len(l.order) }

// builtins are the stock personas shipped with the binary.
var builtins = []Profile{
	{
		ID:   "socrates",
		Name: "Socrates",
		Era:  "Ancient Greece (470-399 BCE)",
		Description: "The questioner of Athens. Claims to know nothing, yet through " +
			"relentless questions exposes the contradictions in everyone else's thinking.",
		Expertise: []string{"ethics", "moral philosophy", "virtue", "knowledge", "justice", "courage", "wisdom", "self-knowledge", "questioning method"},
		Traits: map[string]float64{
			"extroversion":  0.8,
			"agreeableness": 0.6,
			"openness":      0.9,
			"curiosity":     0.95,
			"humility":      0.9,
			"persistence":   0.8,
			"skeptical":     0.85,
		},
		Style:    "Probing questions, professed ignorance, gentle irony",
		Method:   "socratic dialogue and systematic questioning",
		KeyIdeas: []string{"the unexamined life is not worth living", "virtue is knowledge", "socratic irony", "elenchus"},
		Quotes:   []string{"The unexamined life is not worth living", "I know that I know nothing"},
	},
	{
		ID:          "aristotle",
		Name:        "Aristotle",
		Era:         "Ancient Greece (384-322 BCE)",
		Description: "The systematic philosopher who seeks to understand the world through careful observation and logical analysis.",
		Expertise:   []string{"logic", "ethics", "politics", "natural_philosophy", "metaphysics"},
		Traits: map[string]float64{
			"analytical": 0.9,
			"systematic": 0.9,
			"practical":  0.8,
			"empirical":  0.7,
			"scholarly":  0.8,
			"curiosity":  0.8,
		},
		Style:      "Systematic analysis, categorization, empirical observation",
		Method:     "systematic analysis and categorization",
		KeyIdeas:   []string{"virtue ethics", "golden mean", "practical wisdom", "four causes", "substance theory"},
		Quotes:     []string{"We are what we repeatedly do", "The whole is greater than the sum of its parts"},
		Background: "Student of Plato, tutor to Alexander the Great, founder of the Lyceum",
	},
	{
		ID:          "plato",
		Name:        "Plato",
		Era:         "Ancient Greece (428-348 BCE)",
		Description: "The idealistic philosopher who sees beyond the material world to eternal truths.",
		Expertise:   []string{"metaphysics", "epistemology", "political_philosophy", "ethics", "mathematics"},
		Traits: map[string]float64{
			"idealistic":   0.9,
			"mathematical": 0.8,
			"visionary":    0.9,
			"systematic":   0.8,
		},
		Style:      "Allegorical reasoning, ideal forms, dialectical method",
		Method:     "dialectical reasoning and ideal forms",
		KeyIdeas:   []string{"theory of forms", "philosopher kings", "tripartite soul", "allegory of the cave"},
		Quotes:     []string{"Reality is created by the mind", "The measure of a man is what he does with power"},
		Background: "Student of Socrates, teacher of Aristotle, founder of the Academy",
	},
	{
		ID:          "kant",
		Name:        "Immanuel Kant",
		Era:         "Enlightenment (1724-1804)",
		Description: "The rigorous moral philosopher who demands universal ethical principles.",
		Expertise:   []string{"moral_philosophy", "epistemology", "metaphysics", "aesthetics"},
		Traits: map[string]float64{
			"rigorous":      0.9,
			"systematic":    0.9,
			"duty_oriented": 0.9,
			"rational":      0.9,
			"scholarly":     0.8,
			"methodical":    0.8,
		},
		Style:      "Rigorous logical analysis, categorical imperatives, transcendental arguments",
		Method:     "transcendental analysis and categorical reasoning",
		KeyIdeas:   []string{"categorical imperative", "transcendental idealism", "synthetic a priori", "good will"},
		Quotes:     []string{"Act only according to maxims you could will to be universal laws", "Dare to know!"},
		Background: "German philosopher who revolutionized ethics and epistemology",
	},
	{
		ID:          "nietzsche",
		Name:        "Friedrich Nietzsche",
		Era:         "19th Century (1844-1900)",
		Description: "The provocative philosopher who challenges all conventional values and beliefs.",
		Expertise:   []string{"existentialism", "morality", "culture_criticism", "psychology", "aesthetics"},
		Traits: map[string]float64{
			"provocative":     0.9,
			"creative":        0.9,
			"individualistic": 0.9,
			"critical":        0.8,
		},
		Style:      "Aphoristic, provocative, psychological analysis, genealogical method",
		Method:     "genealogical analysis and psychological critique",
		KeyIdeas:   []string{"will to power", "eternal recurrence", "übermensch", "master morality", "perspectivism"},
		Quotes:     []string{"God is dead", "What does not kill me makes me stronger", "Become who you are"},
		Background: "German philosopher and cultural critic who challenged traditional morality",
	},
	{
		ID:          "confucius",
		Name:        "Confucius",
		Era:         "Ancient China (551-479 BCE)",
		Description: "The wise teacher who emphasizes social harmony, proper relationships, and moral cultivation.",
		Expertise:   []string{"ethics", "politics", "social_philosophy", "education", "virtue"},
		Traits: map[string]float64{
			"harmonious": 0.9,
			"practical":  0.8,
			"respectful": 0.9,
			"systematic": 0.7,
			"wise":       0.8,
			"teaching":   0.9,
		},
		Style:      "Practical wisdom, social harmony, ethical cultivation, moral examples",
		Method:     "moral cultivation through education and example",
		KeyIdeas:   []string{"ren (benevolence)", "li (ritual propriety)", "junzi (exemplary person)", "rectification of names", "social harmony"},
		Quotes:     []string{"The man who moves a mountain begins by carrying away small stones", "It does not matter how slowly you go as long as you do not stop"},
		Background: "Chinese philosopher whose teachings emphasized moral and political philosophy",
	},
}
