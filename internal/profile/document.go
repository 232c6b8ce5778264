package profile

// Document is the canonical structured profile. The same type carries both
// the private draft content and, after redaction, the public projection; all
// fields are omitempty so hidden sections disappear from the public JSON
// instead of serializing as empty values.
type Document struct {
	Name       string       `json:"name,omitempty"`
	Headline   string       `json:"headline,omitempty"`
	Summary    string       `json:"summary,omitempty"`
	Location   string       `json:"location,omitempty"`
	Email      string       `json:"email,omitempty"`
	Skills     []string     `json:"skills,omitempty"`
	Links      []Link       `json:"links,omitempty"`
	Experience []Experience `json:"experience,omitempty"`
	Projects   []Project    `json:"projects,omitempty"`
	Education  []Education  `json:"education,omitempty"`
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type Experience struct {
	Org     string `json:"org"`
	Title   string `json:"title"`
	Period  string `json:"period,omitempty"`
	Summary string `json:"summary,omitempty"`
}

type Project struct {
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Stack   string `json:"stack,omitempty"`
	Summary string `json:"summary,omitempty"`
}

type Education struct {
	School string `json:"school"`
	Degree string `json:"degree,omitempty"`
	Period string `json:"period,omitempty"`
}

// Visibility mirrors Document field by field / section by section. True means
// the field is part of the public projection. No omitempty: false is a real
// setting and must round-trip.
type Visibility struct {
	Name       bool `json:"name"`
	Headline   bool `json:"headline"`
	Summary    bool `json:"summary"`
	Location   bool `json:"location"`
	Email      bool `json:"email"`
	Skills     bool `json:"skills"`
	Links      bool `json:"links"`
	Experience bool `json:"experience"`
	Projects   bool `json:"projects"`
	Education  bool `json:"education"`
}

// DefaultVisibility exposes everything except the email address.
func DefaultVisibility() Visibility {
	return Visibility{
		Name: true, Headline: true, Summary: true, Location: true,
		Skills: true, Links: true, Experience: true, Projects: true, Education: true,
	}
}
