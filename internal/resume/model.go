package resume

// ResumeData is the editable résumé document. Imports produce a partially filled
// ResumeData; the résumé store merges it into the user's current document.
type ResumeData struct {
	PersonalInfo PersonalInfo  `json:"personalInfo"`
	Experience   []Experience  `json:"experience"`
	Skills       Skills        `json:"skills"`
	Education    []Education   `json:"education"`
	Projects     []Project     `json:"projects"`
	Certificates []Certificate `json:"certificates"`
}

// PersonalInfo captures contact and identity details.
type PersonalInfo struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Location     string `json:"location"`
	LinkedIn     string `json:"linkedin"`
	Portfolio    string `json:"portfolio"`
	GitHub       string `json:"github"`
	Summary      string `json:"summary"`
	Photo        string `json:"photo,omitempty"`
	IncludePhoto bool   `json:"includePhoto"`
	PhotoSize    string `json:"photoSize,omitempty"`
}

// Skills groups technical, soft, and language skills.
type Skills struct {
	Technical TechnicalSkills `json:"technical"`
	Soft      []string        `json:"soft"`
	Languages []string        `json:"languages"`
}

// TechnicalSkills groups technical skills by category.
type TechnicalSkills struct {
	Frontend  []string `json:"frontend"`
	Backend   []string `json:"backend"`
	Databases []string `json:"databases"`
	Cloud     []string `json:"cloud"`
	Tools     []string `json:"tools"`
	Other     []string `json:"other"`
}

// Experience represents a work history entry.
type Experience struct {
	ID           string   `json:"id"`
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	Location     string   `json:"location"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	Current      bool     `json:"current"`
	Achievements []string `json:"achievements"`
}

// Education represents an education entry.
type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Graduation  string `json:"graduation"`
	GPA         string `json:"gpa,omitempty"`
	Percentage  string `json:"percentage,omitempty"`
}

// Project represents a notable project.
type Project struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Link         string   `json:"link,omitempty"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	Current      bool     `json:"current"`
}

// Certificate represents a certification.
type Certificate struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Issuer       string `json:"issuer"`
	IssueDate    string `json:"issueDate"`
	ExpiryDate   string `json:"expiryDate,omitempty"`
	CredentialID string `json:"credentialId,omitempty"`
	URL          string `json:"url,omitempty"`
}

const DefaultPhotoSize = "medium"

var photoSizes = map[string]struct{}{
	"small":   {},
	"medium":  {},
	"large":   {},
	"xlarge":  {},
	"xxlarge": {},
}

// New returns an empty document with every collection initialized.
func New() ResumeData {
	return ResumeData{
		PersonalInfo: PersonalInfo{PhotoSize: DefaultPhotoSize},
		Experience:   []Experience{},
		Skills: Skills{
			Technical: TechnicalSkills{
				Frontend:  []string{},
				Backend:   []string{},
				Databases: []string{},
				Cloud:     []string{},
				Tools:     []string{},
				Other:     []string{},
			},
			Soft:      []string{},
			Languages: []string{},
		},
		Education:    []Education{},
		Projects:     []Project{},
		Certificates: []Certificate{},
	}
}

// Normalize replaces nil collections with empty ones and fixes an unknown photo size.
func (d *ResumeData) Normalize() {
	if _, ok := photoSizes[d.PersonalInfo.PhotoSize]; !ok {
		d.PersonalInfo.PhotoSize = DefaultPhotoSize
	}
	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	for i := range d.Experience {
		d.Experience[i].Achievements = nonNil(d.Experience[i].Achievements)
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	for i := range d.Projects {
		d.Projects[i].Technologies = nonNil(d.Projects[i].Technologies)
	}
	if d.Certificates == nil {
		d.Certificates = []Certificate{}
	}
	t := &d.Skills.Technical
	t.Frontend = nonNil(t.Frontend)
	t.Backend = nonNil(t.Backend)
	t.Databases = nonNil(t.Databases)
	t.Cloud = nonNil(t.Cloud)
	t.Tools = nonNil(t.Tools)
	t.Other = nonNil(t.Other)
	d.Skills.Soft = nonNil(d.Skills.Soft)
	d.Skills.Languages = nonNil(d.Skills.Languages)
}

// Flatten returns every technical skill in category order.
func (t TechnicalSkills) Flatten() []string {
	out := make([]string, 0, len(t.Frontend)+len(t.Backend)+len(t.Databases)+len(t.Cloud)+len(t.Tools)+len(t.Other))
	out = append(out, t.Frontend...)
	out = append(out, t.Backend...)
	out = append(out, t.Databases...)
	out = append(out, t.Cloud...)
	out = append(out, t.Tools...)
	out = append(out, t.Other...)
	return out
}

// Category returns a pointer to the named technical category, or nil when unknown.
func (t *TechnicalSkills) Category(name string) *[]string {
	switch name {
	case "frontend":
		return &t.Frontend
	case "backend":
		return &t.Backend
	case "databases":
		return &t.Databases
	case "cloud":
		return &t.Cloud
	case "tools":
		return &t.Tools
	case "other":
		return &t.Other
	default:
		return nil
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
