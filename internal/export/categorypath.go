package export

import (
	"context"

	"github.com/edutools/lms-export/internal"
)

// CategoryPathResolver turns a category id into the " / "-joined name chain
// from the top-level ancestor down to the category itself. Resolved paths
// are cached for the lifetime of the resolver since sibling courses share
// categories.
type CategoryPathResolver struct {
	store Store
	cache map[int64]string
}

func NewCategoryPathResolver(store Store) *CategoryPathResolver {
	return &CategoryPathResolver{
		store: store,
		cache: make(map[int64]string),
	}
}

// Resolve walks parent links until the root sentinel (parent id 0). A
// parent chain that revisits a category fails with ErrMalformedCategoryTree
// instead of hanging.
func (r *CategoryPathResolver) Resolve(ctx context.Context, categoryID int64) (string, error) {
	if path, ok := r.cache[categoryID]; ok {
		return path, nil
	}

	var path string
	visited := make(map[int64]bool)
	id := categoryID
	for id != 0 {
		if visited[id] {
			return "", internal.ErrMalformedCategoryTree
		}
		visited[id] = true

		cat, err := r.store.Category(ctx, id)
		if err != nil {
			return "", err
		}
		if cat == nil {
			return "", internal.ErrCategoryNotFound
		}

		if path == "" {
			path = cat.Name
		} else {
			path = cat.Name + " / " + path
		}
		id = cat.ParentID
	}

	r.cache[categoryID] = path
	return path, nil
}
