package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"kharcha/internal/cache"
	"kharcha/internal/core"
	"kharcha/internal/log"
)

const DefaultCategoryCacheTTL = 5 * time.Minute

// CategoryStore is the persistence surface CategoryService needs.
type CategoryStore interface {
	QueryCategories(ctx context.Context, f core.CategoryFilter) ([]core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
}

// CategoryService serves the category list from a short-lived cache.
type CategoryService struct {
	store  CategoryStore
	cache  *cache.LRUCache[[]core.Category]
	group  singleflight.Group
	logger *log.Logger
}

func NewCategoryService(store CategoryStore, ttl time.Duration, logger *log.Logger) *CategoryService {
	if ttl <= 0 {
		ttl = DefaultCategoryCacheTTL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CategoryService{
		store:  store,
		cache:  cache.NewLRUCache[[]core.Category](32, ttl),
		logger: logger.WithComponent(log.ComponentService),
	}
}

// Cache exposes the underlying cache so a cache.Manager can evict expired entries.
func (s *CategoryService) Cache() *cache.LRUCache[[]core.Category] {
	return s.cache
}

// CacheSize reports how many category lists are currently cached.
func (s *CategoryService) CacheSize() int {
	return s.cache.Size()
}

// ListCategories returns categories matching f. Concurrent misses for the same filter share one query.
func (s *CategoryService) ListCategories(ctx context.Context, f core.CategoryFilter) ([]core.Category, error) {
	if f.Group != "" && !f.Group.Valid() {
		return nil, core.InvalidArgument("unknown category group %q", f.Group)
	}
	if f.Type != "" && !f.Type.Valid() {
		return nil, core.InvalidArgument("unknown category type %q", f.Type)
	}

	key := "categories:" + string(f.Group) + ":" + string(f.Type)
	if cats, ok := s.cache.Get(key); ok {
		return cats, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		if cats, ok := s.cache.Get(key); ok {
			return cats, nil
		}
		cats, err := s.store.QueryCategories(ctx, f)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, cats)
		return cats, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return v.([]core.Category), nil
}

// CreateCategory stores a category owned by userID and invalidates cached lists.
func (s *CategoryService) CreateCategory(ctx context.Context, userID int64, c core.Category) (core.Category, error) {
	c.IsDefault = false
	c.OwnerUserID = &userID
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	created, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, err
	}
	s.cache.Clear()
	s.logger.InfoContext(ctx, "Category created", log.FieldCategoryID, created.ID, log.FieldUserID, userID)
	return created, nil
}
