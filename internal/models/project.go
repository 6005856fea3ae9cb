package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is a reusable library entry owned by one user and referenced by profiles.
type Project struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID       string             `bson:"userId" json:"userId"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description" json:"description"`
	Technologies string             `bson:"technologies" json:"technologies"` // comma-joined tags
	Link         string             `bson:"link" json:"link"`
	GitHub       string             `bson:"github" json:"github"`
	StartDate    *time.Time         `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate      *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Tags splits Technologies into trimmed, non-empty tags.
func (p *Project) Tags() []string {
	return SplitTags(p.Technologies)
}

// ProjectInput is the project shape accepted from clients, both by the library
// endpoints and inside profile submissions. ID is only meaningful in submissions.
type ProjectInput struct {
	ID           string `json:"_id,omitempty"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Technologies string `json:"technologies"`
	Link         string `json:"link,omitempty"`
	GitHub       string `json:"github,omitempty"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
}

// Trimmed returns a copy with every text field trimmed.
func (in ProjectInput) Trimmed() ProjectInput {
	return ProjectInput{
		ID:           strings.TrimSpace(in.ID),
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		Technologies: strings.TrimSpace(in.Technologies),
		Link:         strings.TrimSpace(in.Link),
		GitHub:       strings.TrimSpace(in.GitHub),
		StartDate:    strings.TrimSpace(in.StartDate),
		EndDate:      strings.TrimSpace(in.EndDate),
	}
}

// Complete reports whether name, description and technologies are all non-blank.
func (in ProjectInput) Complete() bool {
	t := in.Trimmed()
	return t.Name != "" && t.Description != "" && t.Technologies != ""
}

// ToProject builds an unsaved library project for owner from trimmed input.
// Unparsable or empty dates are left unset.
func (in ProjectInput) ToProject(owner string) *Project {
	t := in.Trimmed()
	return &Project{
		UserID:       owner,
		Name:         t.Name,
		Description:  t.Description,
		Technologies: t.Technologies,
		Link:         t.Link,
		GitHub:       t.GitHub,
		StartDate:    ParseDate(t.StartDate),
		EndDate:      ParseDate(t.EndDate),
	}
}

// SplitTags splits a comma-joined tag string.
func SplitTags(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
