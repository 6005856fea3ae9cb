package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/profilekit/profilekit/internal/common"
	"github.com/profilekit/profilekit/internal/models"
	"github.com/profilekit/profilekit/internal/projects"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectLibrary is what the profile service needs from the project store:
// reconciliation lookups and creates, plus ordered bulk reads for expansion.
type ProjectLibrary interface {
	ProjectStore
	FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Project, error)
}

// Service implements profile CRUD on top of the reconciler.
type Service struct {
	repo       Repository
	library    ProjectLibrary
	reconciler *Reconciler
}

func NewService(repo Repository, library ProjectLibrary) *Service {
	return &Service{repo: repo, library: library, reconciler: NewReconciler(library)}
}

// Create validates the personal block, reconciles projects and stores a new profile.
func (s *Service) Create(ctx context.Context, owner string, sub models.ProfileSubmission) (*models.ExpandedProfile, error) {
	if sub.Personal == nil || strings.TrimSpace(sub.Personal.Name) == "" || strings.TrimSpace(sub.Personal.Email) == "" {
		return nil, common.Invalid("personal", "Name and email are required")
	}
	ids, err := s.reconciler.Reconcile(ctx, owner, sub.Projects, sub.ProjectIDs)
	if err != nil {
		return nil, err
	}

	pi := sub.Personal
	p := &models.Profile{
		UserID:        owner,
		Name:          strings.TrimSpace(pi.Name),
		Email:         normalizeEmail(pi.Email),
		ProfileImage:  pi.Image(),
		Education:     orEmpty(sub.Education),
		Experience:    orEmpty(sub.Experience),
		Skills:        orEmpty(sub.Skills),
		Certification: orEmpty(sub.Certification),
		ProjectIDs:    ids,
	}
	applyOptional(p, pi)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return s.Expand(ctx, p)
}

// Update merges personal fields present in the submission, replaces the
// sub-document arrays it carries and always recomputes projectIds: a project
// missing from both projects and projectIds is detached.
func (s *Service) Update(ctx context.Context, owner, rawID string, sub models.ProfileSubmission) (*models.ExpandedProfile, error) {
	id, ok := projects.ParseID(rawID)
	if !ok {
		return nil, common.ErrNotFound
	}
	p, err := s.repo.FindOwned(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	if p == nil {
		return nil, common.ErrNotFound
	}

	ids, err := s.reconciler.Reconcile(ctx, owner, sub.Projects, sub.ProjectIDs)
	if err != nil {
		return nil, err
	}

	if pi := sub.Personal; pi != nil {
		if name := strings.TrimSpace(pi.Name); name != "" {
			p.Name = name
		}
		if email := normalizeEmail(pi.Email); email != "" {
			p.Email = email
		}
		if img := pi.Image(); img != "" {
			p.ProfileImage = img
		}
		applyOptional(p, pi)
	}
	if sub.Education != nil {
		p.Education = sub.Education
	}
	if sub.Experience != nil {
		p.Experience = sub.Experience
	}
	if sub.Skills != nil {
		p.Skills = sub.Skills
	}
	if sub.Certification != nil {
		p.Certification = sub.Certification
	}
	p.ProjectIDs = ids

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.Expand(ctx, p)
}

// Get returns an owned profile, expanded.
func (s *Service) Get(ctx context.Context, owner, rawID string) (*models.ExpandedProfile, error) {
	id, ok := projects.ParseID(rawID)
	if !ok {
		return nil, common.ErrNotFound
	}
	p, err := s.repo.FindOwned(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	if p == nil {
		return nil, common.ErrNotFound
	}
	return s.Expand(ctx, p)
}

// Public returns any profile by id, expanded. It backs the unauthenticated portfolio.
func (s *Service) Public(ctx context.Context, rawID string) (*models.ExpandedProfile, error) {
	id, ok := projects.ParseID(rawID)
	if !ok {
		return nil, common.ErrNotFound
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	if p == nil {
		return nil, common.ErrNotFound
	}
	return s.Expand(ctx, p)
}

// List returns the owner's profiles newest first, each expanded.
func (s *Service) List(ctx context.Context, owner string) ([]models.ExpandedProfile, error) {
	all, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	out := make([]models.ExpandedProfile, 0, len(all))
	for i := range all {
		e, err := s.Expand(ctx, &all[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, owner, rawID string) error {
	id, ok := projects.ParseID(rawID)
	if !ok {
		return common.ErrNotFound
	}
	if err := s.repo.DeleteOwned(ctx, owner, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// Expand resolves projectIds to project bodies in stored order. Ids that no
// longer resolve are omitted. Ownership is not re-checked.
func (s *Service) Expand(ctx context.Context, p *models.Profile) (*models.ExpandedProfile, error) {
	list, err := s.library.FindManyByIDs(ctx, p.ProjectIDs)
	if err != nil {
		return nil, fmt.Errorf("expand profile %s: %w", p.ID.Hex(), err)
	}
	out := &models.ExpandedProfile{Profile: *p, Projects: list}
	if out.ProjectIDs == nil {
		out.ProjectIDs = []primitive.ObjectID{}
	}
	out.SortSections()
	return out, nil
}

// PullProject implements projects.ReferenceRemover for the deletion cascade.
func (s *Service) PullProject(ctx context.Context, owner string, projectID primitive.ObjectID) (int64, error) {
	return s.repo.PullProject(ctx, owner, projectID)
}

func applyOptional(p *models.Profile, pi *models.PersonalInput) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&p.Phone, pi.Phone)
	set(&p.Bio, pi.Bio)
	set(&p.Designation, pi.Designation)
	set(&p.Location, pi.Location)
	set(&p.Website, pi.Website)
	set(&p.GitHub, pi.GitHub)
	set(&p.LinkedIn, pi.LinkedIn)
	set(&p.Twitter, pi.Twitter)
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
