package profiles

import (
	"context"
	"fmt"

	"github.com/profilekit/profilekit/internal/models"
	"github.com/profilekit/profilekit/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SweepReport summarizes a PruneDangling run.
type SweepReport struct {
	Scanned    int
	Repaired   int
	RemovedIDs int
}

// PruneDangling removes, from every profile, project ids that no longer name a
// project owned by the profile's owner. It repairs what an interrupted deletion
// cascade left behind. With dryRun set nothing is written.
func (s *Service) PruneDangling(ctx context.Context, dryRun bool) (SweepReport, error) {
	var rep SweepReport
	err := s.repo.Each(ctx, func(p *models.Profile) error {
		rep.Scanned++
		kept := make([]primitive.ObjectID, 0, len(p.ProjectIDs))
		for _, id := range p.ProjectIDs {
			proj, err := s.library.FindOwned(ctx, p.UserID, id)
			if err != nil {
				return fmt.Errorf("resolve project %s: %w", id.Hex(), err)
			}
			if proj != nil {
				kept = append(kept, id)
			}
		}
		removed := len(p.ProjectIDs) - len(kept)
		if removed == 0 {
			return nil
		}
		rep.Repaired++
		rep.RemovedIDs += removed
		logger.Infof("sweep: profile %s drops %d dangling project id(s)", p.ID.Hex(), removed)
		if dryRun {
			return nil
		}
		return s.repo.SetProjectIDs(ctx, p.ID, kept)
	})
	return rep, err
}
