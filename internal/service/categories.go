package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/sandeepkv93/bossmode/internal/model"
	"github.com/sandeepkv93/bossmode/internal/optimistic"
	"github.com/sandeepkv93/bossmode/internal/storage"
)

func (p *Planner) CreateCategory(ctx context.Context, name, color string) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	if p.nameTaken(name, "") {
		return model.Category{}, fmt.Errorf("%w: %q", ErrDuplicateCategory, name)
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = DefaultCategoryColor
	}
	cat := model.Category{
		ID:        p.newID(),
		OwnerID:   p.ownerID,
		Name:      name,
		Color:     color,
		CreatedAt: p.Now().UTC(),
	}

	out, err := optimistic.Run(ctx, optimistic.Mutation[model.Category]{
		Apply: func() {
			p.mu.Lock()
			p.categories = append(p.categories, cat)
			p.mu.Unlock()
		},
		Revert: func() {
			p.mu.Lock()
			if i := p.categoryIndex(cat.ID); i >= 0 {
				p.categories = slices.Delete(p.categories, i, i+1)
			}
			p.mu.Unlock()
		},
		Persist: func(ctx context.Context) (model.Category, error) {
			if err := p.store.CreateCategory(ctx, cat); err != nil {
				p.logger.Warn("create category failed", zap.String("category_id", cat.ID), zap.Error(err))
				return model.Category{}, err
			}
			return cat, nil
		},
	})
	return out, mapCategoryErr(err, name)
}

// UpdateCategory renames and/or recolors a category; nil fields are kept.
func (p *Planner) UpdateCategory(ctx context.Context, id string, name, color *string) (model.Category, error) {
	p.mu.RLock()
	i := p.categoryIndex(id)
	var prev model.Category
	if i >= 0 {
		prev = p.categories[i]
	}
	p.mu.RUnlock()
	if i < 0 {
		return model.Category{}, fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
	}

	next := prev
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return model.Category{}, fmt.Errorf("%w: category name is required", ErrInvalidInput)
		}
		if p.nameTaken(trimmed, id) {
			return model.Category{}, fmt.Errorf("%w: %q", ErrDuplicateCategory, trimmed)
		}
		next.Name = trimmed
	}
	if color != nil {
		next.Color = strings.TrimSpace(*color)
		if next.Color == "" {
			next.Color = DefaultCategoryColor
		}
	}

	set := func(c model.Category) {
		p.mu.Lock()
		if j := p.categoryIndex(c.ID); j >= 0 {
			p.categories[j] = c
		}
		p.mu.Unlock()
	}
	out, err := optimistic.Value(ctx, func() model.Category { return prev }, set, next,
		func(ctx context.Context) (model.Category, error) {
			if err := p.store.UpdateCategory(ctx, next); err != nil {
				p.logger.Warn("update category failed", zap.String("category_id", id), zap.Error(err))
				return model.Category{}, err
			}
			return next, nil
		})
	return out, mapCategoryErr(err, next.Name)
}

// DeleteCategory removes the category and detaches it from every task.
func (p *Planner) DeleteCategory(ctx context.Context, id string) error {
	p.mu.RLock()
	idx := p.categoryIndex(id)
	var prev model.Category
	if idx >= 0 {
		prev = p.categories[idx]
	}
	p.mu.RUnlock()
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
	}

	var detached []string
	_, err := optimistic.Run(ctx, optimistic.Mutation[struct{}]{
		Apply: func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if i := p.categoryIndex(id); i >= 0 {
				p.categories = slices.Delete(p.categories, i, i+1)
			}
			detached = detached[:0]
			for i := range p.tasks {
				if c := p.tasks[i].CategoryID; c != nil && *c == id {
					p.tasks[i].CategoryID = nil
					detached = append(detached, p.tasks[i].ID)
				}
			}
		},
		Revert: func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			p.categories = slices.Insert(p.categories, min(idx, len(p.categories)), prev)
			for _, taskID := range detached {
				if i := p.taskIndex(taskID); i >= 0 {
					restored := id
					p.tasks[i].CategoryID = &restored
				}
			}
		},
		Persist: func(ctx context.Context) (struct{}, error) {
			err := p.store.DeleteCategory(ctx, id)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				p.logger.Warn("delete category failed", zap.String("category_id", id), zap.Error(err))
				return struct{}{}, err
			}
			return struct{}{}, nil
		},
	})
	return err
}

// nameTaken compares case-insensitively, ignoring the category exceptID.
func (p *Planner) nameTaken(name, exceptID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, c := range p.categories {
		if c.ID != exceptID && c.SameName(name) {
			return true
		}
	}
	return false
}

func mapCategoryErr(err error, name string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrDuplicate) {
		return fmt.Errorf("%w: %q: %w", ErrDuplicateCategory, name, err)
	}
	return err
}
