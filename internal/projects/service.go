package projects

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/profilekit/profilekit/internal/common"
	"github.com/profilekit/profilekit/internal/models"
	"github.com/profilekit/profilekit/pkg/logger"
	"github.com/profilekit/profilekit/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxNameLen        = 200
	maxDescriptionLen = 2000
)

// ReferenceRemover pulls a deleted project id out of the owner's profiles.
type ReferenceRemover interface {
	PullProject(ctx context.Context, owner string, id primitive.ObjectID) (int64, error)
}

// Service implements the project library operations.
type Service struct {
	repo Repository
	refs ReferenceRemover
}

// NewService wires the library to the profile store used for the deletion cascade.
// refs may be nil, in which case deletes do not cascade.
func NewService(repo Repository, refs ReferenceRemover) *Service {
	return &Service{repo: repo, refs: refs}
}

// List returns the owner's projects newest first. "all" and "" mean no filter.
func (s *Service) List(ctx context.Context, owner, techStack string) ([]models.Project, error) {
	techStack = strings.TrimSpace(techStack)
	if strings.EqualFold(techStack, "all") {
		techStack = ""
	}
	out, err := s.repo.ListByOwner(ctx, owner, techStack)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// TechStacks returns the sorted distinct tags used across the owner's projects.
func (s *Service) TechStacks(ctx context.Context, owner string) ([]string, error) {
	all, err := s.repo.ListByOwner(ctx, owner, "")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	set := map[string]struct{}{}
	for i := range all {
		for _, tag := range all[i].Tags() {
			set[tag] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for tag := range set {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Service) Get(ctx context.Context, owner, rawID string) (*models.Project, error) {
	id, ok := ParseID(rawID)
	if !ok {
		return nil, common.ErrNotFound
	}
	p, err := s.repo.FindOwned(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	if p == nil {
		return nil, common.ErrNotFound
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, owner string, in models.ProjectInput) (*models.Project, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	p := in.ToProject(owner)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// Update replaces every editable field. Blank dates clear the stored ones.
func (s *Service) Update(ctx context.Context, owner, rawID string, in models.ProjectInput) (*models.Project, error) {
	id, ok := ParseID(rawID)
	if !ok {
		return nil, common.ErrNotFound
	}
	if err := validate(in); err != nil {
		return nil, err
	}
	p := in.ToProject(owner)
	p.ID = id
	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// Delete removes an owned project, then detaches it from every profile of the
// same owner. The cleanup is best effort: a failure is logged and left for the sweep.
func (s *Service) Delete(ctx context.Context, owner, rawID string) error {
	id, ok := ParseID(rawID)
	if !ok {
		return common.ErrNotFound
	}
	if err := s.repo.DeleteOwned(ctx, owner, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete project: %w", err)
	}
	if s.refs == nil {
		return nil
	}
	n, err := s.refs.PullProject(ctx, owner, id)
	if err != nil {
		logger.Errorf("cascade: pull project %s from profiles of %s: %v", id.Hex(), owner, err)
		return nil
	}
	if n > 0 {
		metrics.CascadeRemovals.Add(float64(n))
		logger.Debugf("cascade: detached project %s from %d profile(s)", id.Hex(), n)
	}
	return nil
}

func validate(in models.ProjectInput) error {
	t := in.Trimmed()
	switch {
	case t.Name == "":
		return common.Invalid("name", "Project name is required")
	case t.Description == "":
		return common.Invalid("description", "Project description is required")
	case t.Technologies == "":
		return common.Invalid("technologies", "Technologies are required")
	case utf8.RuneCountInString(t.Name) > maxNameLen:
		return common.Invalid("name", fmt.Sprintf("Project name cannot exceed %d characters", maxNameLen))
	case utf8.RuneCountInString(t.Description) > maxDescriptionLen:
		return common.Invalid("description", fmt.Sprintf("Description cannot exceed %d characters", maxDescriptionLen))
	}
	return nil
}
