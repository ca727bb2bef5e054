package receipts

import (
	"context"
	"fmt"

	"github.com/mvalledor/stocktrace-backend/internal/scope"
	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
	pkgerrors "github.com/mvalledor/stocktrace-backend/pkg/errors"
)

// Service exposes the scoped read surface for receipts. Writes go through the
// sales coordinator so the inventory fix-up rules cannot be bypassed.
type Service interface {
	List(ctx context.Context, actor scope.Actor) ([]models.Receipt, error)
}

type listRepository interface {
	List(ctx context.Context) ([]models.Receipt, error)
}

type service struct {
	repo     listRepository
	resolver *scope.Resolver
}

// NewService constructs the receipts read service.
func NewService(repo listRepository, resolver *scope.Resolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("receipts repository is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("scope resolver is required")
	}
	return &service{repo: repo, resolver: resolver}, nil
}

// List recomputes the actor's projection over a fresh collection snapshot.
func (s *service) List(ctx context.Context, actor scope.Actor) ([]models.Receipt, error) {
	set, err := s.resolver.ScopeFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list receipts")
	}
	return scope.Project(set, records), nil
}
