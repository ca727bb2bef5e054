package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvalledor/stocktrace-backend/internal/scope"
	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
	pkgerrors "github.com/mvalledor/stocktrace-backend/pkg/errors"
	"github.com/mvalledor/stocktrace-backend/pkg/watch"
)

// Service exposes scoped inventory operations.
type Service interface {
	Add(ctx context.Context, actor scope.Actor, input CreateItemInput) (*models.InventoryItem, error)
	Remove(ctx context.Context, actor scope.Actor, id uuid.UUID) error
	List(ctx context.Context, actor scope.Actor) ([]models.InventoryItem, error)
}

type repository interface {
	Create(ctx context.Context, item *models.InventoryItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	List(ctx context.Context) ([]models.InventoryItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     repository
	resolver *scope.Resolver
	hub      *watch.Hub
}

// NewService constructs the inventory service.
func NewService(repo repository, resolver *scope.Resolver, hub *watch.Hub) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("scope resolver is required")
	}
	return &service{repo: repo, resolver: resolver, hub: hub}, nil
}

// Add stocks a new item into the actor's scope pool.
func (s *service) Add(ctx context.Context, actor scope.Actor, input CreateItemInput) (*models.InventoryItem, error) {
	set, err := s.resolver.ScopeFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if set.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account may not modify inventory")
	}

	item := input.toModel(actor.ScopeRoot())
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory item")
	}

	if s.hub != nil {
		s.hub.Publish(watch.CollectionInventory)
	}
	return item, nil
}

// Remove deletes an item after checking the actor may mutate it.
func (s *service) Remove(ctx context.Context, actor scope.Actor, id uuid.UUID) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
	}

	allowed, err := s.resolver.CanMutate(ctx, actor, item.InventoryOf)
	if err != nil {
		return err
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeForbidden, "inventory item is out of scope")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete inventory item")
	}

	if s.hub != nil {
		s.hub.Publish(watch.CollectionInventory)
	}
	return nil
}

// List recomputes the actor's projection over a fresh collection snapshot.
func (s *service) List(ctx context.Context, actor scope.Actor) ([]models.InventoryItem, error) {
	set, err := s.resolver.ScopeFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory")
	}
	return scope.Project(set, records), nil
}
