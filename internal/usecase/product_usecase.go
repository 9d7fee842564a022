package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/James9b/fake-api-ecommerce/internal/cache"
	"github.com/James9b/fake-api-ecommerce/internal/domain"
	"github.com/James9b/fake-api-ecommerce/internal/messaging"
	"github.com/sirupsen/logrus"
)

type UpdateVars struct {
	ID     int
	Fields domain.ProductFields
}

type (
	UpdateMutation = cache.Mutation[UpdateVars, *domain.ProductFields]
	DeleteMutation = cache.Mutation[int, *domain.DeleteAck]
)

type ProductUseCase interface {
	Products(ctx context.Context) cache.Result[[]domain.Product]
	RefetchProducts(ctx context.Context) cache.Result[[]domain.Product]
	Product(ctx context.Context, id int) cache.Result[domain.Product]
	RefetchProduct(ctx context.Context, id int) cache.Result[domain.Product]
	Categories(ctx context.Context) cache.Result[[]string]
	RefetchCategories(ctx context.Context) cache.Result[[]string]

	// NewUpdateMutation and NewDeleteMutation return mutations with their own pending state,
	// one per view that needs it.
	NewUpdateMutation() *UpdateMutation
	NewDeleteMutation() *DeleteMutation

	ProductsStatus() cache.Snapshot
}

type productUseCase struct {
	api       domain.CatalogAPI
	cache     *cache.Client
	publisher messaging.Publisher
	log       *logrus.Logger
	now       func() time.Time
}

func NewProductUseCase(api domain.CatalogAPI, c *cache.Client, publisher messaging.Publisher, logger *logrus.Logger) ProductUseCase {
	return &productUseCase{
		api:       api,
		cache:     c,
		publisher: publisher,
		log:       logger,
		now:       time.Now,
	}
}

func (uc *productUseCase) Products(ctx context.Context) cache.Result[[]domain.Product] {
	return cache.Query(ctx, uc.cache, cache.ProductsKey(), uc.api.ListProducts, true)
}

func (uc *productUseCase) RefetchProducts(ctx context.Context) cache.Result[[]domain.Product] {
	uc.log.Info("Use Case: Refetching product list")
	return cache.Refetch(ctx, uc.cache, cache.ProductsKey(), uc.api.ListProducts)
}

func (uc *productUseCase) Product(ctx context.Context, id int) cache.Result[domain.Product] {
	return cache.Query(ctx, uc.cache, cache.ProductKey(id), uc.productFetch(id), id > 0)
}

// RefetchProduct reloads one product; ids the query would not run for stay idle.
func (uc *productUseCase) RefetchProduct(ctx context.Context, id int) cache.Result[domain.Product] {
	if id <= 0 {
		return cache.Result[domain.Product]{Status: cache.StatusIdle}
	}
	uc.log.Infof("Use Case: Refetching product ID %d", id)
	return cache.Refetch(ctx, uc.cache, cache.ProductKey(id), uc.productFetch(id))
}

func (uc *productUseCase) Categories(ctx context.Context) cache.Result[[]string] {
	return cache.Query(ctx, uc.cache, cache.CategoriesKey(), uc.api.ListCategories, true)
}

func (uc *productUseCase) RefetchCategories(ctx context.Context) cache.Result[[]string] {
	uc.log.Info("Use Case: Refetching categories")
	return cache.Refetch(ctx, uc.cache, cache.CategoriesKey(), uc.api.ListCategories)
}

func (uc *productUseCase) productFetch(id int) func(context.Context) (domain.Product, error) {
	return func(ctx context.Context) (domain.Product, error) {
		p, err := uc.api.GetProduct(ctx, id)
		if err != nil {
			return domain.Product{}, err
		}
		return *p, nil
	}
}

func (uc *productUseCase) ProductsStatus() cache.Snapshot {
	return uc.cache.Snapshot(cache.ProductsKey())
}

func (uc *productUseCase) NewUpdateMutation() *UpdateMutation {
	return cache.NewMutation(uc.cache,
		func(ctx context.Context, v UpdateVars) (*domain.ProductFields, error) {
			uc.log.Infof("Use Case: Updating product ID %d", v.ID)
			return uc.api.UpdateProduct(ctx, v.ID, v.Fields)
		},
		reconcileUpdate,
	).After(func(ctx context.Context, result *domain.ProductFields, v UpdateVars) {
		uc.publish(ctx, messaging.EventProductUpdated, v.ID, result)
	})
}

func (uc *productUseCase) NewDeleteMutation() *DeleteMutation {
	return cache.NewMutation(uc.cache,
		func(ctx context.Context, id int) (*domain.DeleteAck, error) {
			uc.log.Infof("Use Case: Deleting product ID %d", id)
			return uc.api.DeleteProduct(ctx, id)
		},
		reconcileDelete,
	).After(func(ctx context.Context, _ *domain.DeleteAck, id int) {
		uc.publish(ctx, messaging.EventProductDeleted, id, nil)
	})
}

// reconcileUpdate applies patch then the server's answer to the list record and the single entry.
func reconcileUpdate(tx *cache.Tx, result *domain.ProductFields, v UpdateVars) {
	var server domain.ProductFields
	if result != nil {
		server = *result
	}

	cache.TxPatch(tx, cache.ProductsKey(), func(old []domain.Product, ok bool) ([]domain.Product, bool) {
		if !ok {
			return nil, false
		}
		next := make([]domain.Product, len(old))
		for i, p := range old {
			if p.ID == v.ID {
				p = p.Merge(v.Fields).Merge(server)
			}
			next[i] = p
		}
		return next, true
	})

	cache.TxPatch(tx, cache.ProductKey(v.ID), func(old domain.Product, ok bool) (domain.Product, bool) {
		if !ok {
			old = domain.Product{ID: v.ID}
		}
		return old.Merge(v.Fields).Merge(server), true
	})
}

func reconcileDelete(tx *cache.Tx, _ *domain.DeleteAck, id int) {
	cache.TxPatch(tx, cache.ProductsKey(), func(old []domain.Product, ok bool) ([]domain.Product, bool) {
		if !ok {
			return nil, false
		}
		next := make([]domain.Product, 0, len(old))
		for _, p := range old {
			if p.ID != id {
				next = append(next, p)
			}
		}
		return next, true
	})
	tx.Remove(cache.ProductKey(id))
}

func (uc *productUseCase) publish(ctx context.Context, eventType string, id int, fields any) {
	event := messaging.MutationEvent{
		Type:       eventType,
		ProductID:  id,
		Fields:     fields,
		OccurredAt: uc.now().UTC(),
	}
	if err := uc.publisher.PublishEvent(ctx, strconv.Itoa(id), event); err != nil {
		uc.log.Warnf("Use Case: Failed to publish %s for product ID %d: %v", eventType, id, err)
	}
}
