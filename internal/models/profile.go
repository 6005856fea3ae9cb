package models

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile is a resume/portfolio record. Projects are held by reference only:
// ProjectIDs is the canonical, ordered list of library projects.
type Profile struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	UserID        string               `bson:"userId" json:"userId"`
	Name          string               `bson:"name" json:"name"`
	Email         string               `bson:"email" json:"email"`
	Phone         string               `bson:"phone" json:"phone"`
	Bio           string               `bson:"bio" json:"bio"`
	Designation   string               `bson:"designation" json:"designation"`
	Location      string               `bson:"location" json:"location"`
	Website       string               `bson:"website" json:"website"`
	ProfileImage  string               `bson:"profileImage" json:"profileImage"`
	GitHub        string               `bson:"github" json:"github"`
	LinkedIn      string               `bson:"linkedin" json:"linkedin"`
	Twitter       string               `bson:"twitter" json:"twitter"`
	Education     []Education          `bson:"education" json:"education"`
	Experience    []Experience         `bson:"experience" json:"experience"`
	Skills        []Skill              `bson:"skills" json:"skills"`
	Certification []Certification      `bson:"certification" json:"certification"`
	ProjectIDs    []primitive.ObjectID `bson:"projectIds" json:"projectIds"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type Education struct {
	Institution  string `bson:"institution" json:"institution"`
	Degree       string `bson:"degree" json:"degree"`
	FieldOfStudy string `bson:"fieldOfStudy" json:"fieldOfStudy"`
	StartDate    string `bson:"startDate" json:"startDate"`
	EndDate      string `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Grade        string `bson:"grade,omitempty" json:"grade,omitempty"`
	Description  string `bson:"description,omitempty" json:"description,omitempty"`
	Order        int    `bson:"order" json:"order"`
}

type Experience struct {
	Company      string `bson:"company" json:"company"`
	Position     string `bson:"position" json:"position"`
	Location     string `bson:"location" json:"location"`
	StartDate    string `bson:"startDate" json:"startDate"`
	EndDate      string `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Description  string `bson:"description" json:"description"`
	Technologies string `bson:"technologies,omitempty" json:"technologies,omitempty"`
	Order        int    `bson:"order" json:"order"`
}

type Skill struct {
	Header string `bson:"header" json:"header"`
	Skills string `bson:"skills" json:"skills"`
	Order  int    `bson:"order" json:"order"`
}

type Certification struct {
	Name      string `bson:"name" json:"name"`
	Issuer    string `bson:"issuer" json:"issuer"`
	IssueDate string `bson:"issueDate" json:"issueDate"`
	Order     int    `bson:"order" json:"order"`
}

// SortSections orders every embedded section by its display order.
// The sort is stable so entries sharing an order keep submission order.
func (p *Profile) SortSections() {
	sort.SliceStable(p.Education, func(i, j int) bool { return p.Education[i].Order < p.Education[j].Order })
	sort.SliceStable(p.Experience, func(i, j int) bool { return p.Experience[i].Order < p.Experience[j].Order })
	sort.SliceStable(p.Skills, func(i, j int) bool { return p.Skills[i].Order < p.Skills[j].Order })
	sort.SliceStable(p.Certification, func(i, j int) bool { return p.Certification[i].Order < p.Certification[j].Order })
}

// ExpandedProfile is a profile with its project references resolved to full bodies.
type ExpandedProfile struct {
	Profile
	Projects []Project `json:"projects"`
}

// PersonalInput is the personal block of a profile submission. Optional fields
// are pointers so an update can tell "absent" from "cleared".
type PersonalInput struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        *string `json:"phone,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	Designation  *string `json:"designation,omitempty"`
	Location     *string `json:"location,omitempty"`
	Website      *string `json:"website,omitempty"`
	ProfileImage *string `json:"profileImage,omitempty"`
	Avatar       *Avatar `json:"avatar,omitempty"`
	GitHub       *string `json:"github,omitempty"`
	LinkedIn     *string `json:"linkedin,omitempty"`
	Twitter      *string `json:"twitter,omitempty"`
}

// Image resolves the profile image: avatar url first, then profileImage.
func (p *PersonalInput) Image() string {
	if p.Avatar != nil && p.Avatar.URL != "" {
		return p.Avatar.URL
	}
	if p.ProfileImage != nil {
		return *p.ProfileImage
	}
	return ""
}

// ProfileSubmission is the payload of a profile create or update.
// Projects mixes inline project bodies and {_id} references; ProjectIDs holds bare ids.
type ProfileSubmission struct {
	Personal      *PersonalInput  `json:"personal"`
	Education     []Education     `json:"education"`
	Experience    []Experience    `json:"experience"`
	Skills        []Skill         `json:"skills"`
	Certification []Certification `json:"certification"`
	Projects      []ProjectInput  `json:"projects"`
	ProjectIDs    []string        `json:"projectIds"`
}
