package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"kharcha/internal/core"
	"kharcha/internal/log"
)

const categoryColumns = `c.id, c.name, c.type, c.category_group, c.icon, c.color, c.is_default, c.owner_user_id`

// QueryCategories lists categories, defaults first and then by name.
func (r *SQLiteRepository) QueryCategories(ctx context.Context, f core.CategoryFilter) ([]core.Category, error) {
	w := &whereClause{}
	if f.Group != "" {
		w.add("c.category_group = ?", string(f.Group))
	}
	if f.Type != "" {
		// A "both" category serves either transaction type
		w.add("(c.type = ? OR c.type = 'both')", string(f.Type))
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories c`+w.String()+` ORDER BY c.is_default DESC, c.name ASC`,
		w.args...)
	if err != nil {
		return nil, core.NewStorageError("query categories", err)
	}
	defer rows.Close()

	cats := []core.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, core.NewStorageError("scan category", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("query categories", err)
	}
	return cats, nil
}

// GetCategory returns core.ErrNotFound when the id does not resolve.
func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories c WHERE c.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, core.NewStorageError("get category", err)
	}
	return c, nil
}

// FindCategoryByName matches case-insensitively, preferring default categories.
func (r *SQLiteRepository) FindCategoryByName(ctx context.Context, name string) (core.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories c WHERE lower(c.name) = lower(?) ORDER BY c.is_default DESC, c.id ASC LIMIT 1`,
		strings.TrimSpace(name)))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, core.NewStorageError("find category by name", err)
	}
	return c, nil
}

// CreateCategory stores a user-owned category.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	var owner any
	if c.OwnerUserID != nil {
		owner = *c.OwnerUserID
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (name, type, category_group, icon, color, is_default, owner_user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Name, string(c.Type), string(c.Group), c.Icon, c.Color, c.IsDefault, owner)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, core.InvalidArgument("category %q already exists", c.Name)
		}
		return core.Category{}, core.NewStorageError("create category", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return core.Category{}, core.NewStorageError("create category", err)
	}
	r.logger.InfoContext(ctx, "Category created", log.FieldCategoryID, c.ID, "name", c.Name, "group", c.Group)
	return c, nil
}

func scanCategory(s rowScanner) (core.Category, error) {
	var (
		c         core.Category
		catType   string
		group     string
		isDefault bool
		owner     sql.NullInt64
	)
	if err := s.Scan(&c.ID, &c.Name, &catType, &group, &c.Icon, &c.Color, &isDefault, &owner); err != nil {
		return core.Category{}, err
	}
	c.Type = core.CategoryType(catType)
	c.Group = core.CategoryGroup(group)
	c.IsDefault = isDefault
	if owner.Valid {
		id := owner.Int64
		c.OwnerUserID = &id
	}
	return c, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
