package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
)

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := s.conn(ctx).Order("sort_order, name").Find(&cats).Error; err != nil {
		return nil, wrap(err, "list categories")
	}
	return cats, nil
}

func (s *Store) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := s.conn(ctx).First(&c, id).Error; err != nil {
		return nil, wrap(err, "get category")
	}
	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	return wrap(s.conn(ctx).Create(c).Error, "create category")
}

func (s *Store) SaveCategory(ctx context.Context, c *models.Category) error {
	return wrap(s.conn(ctx).Save(c).Error, "save category")
}

// DeleteCategory detaches the category's products before removing it.
func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return wrap(err, "detach products")
		}
		return notFoundIfNone(tx.Delete(&models.Category{}, id), "delete category")
	})
}

// ListOptions returns customization options ordered by group; activeOnly hides retired ones.
func (s *Store) ListOptions(ctx context.Context, activeOnly bool) ([]models.CustomizationOption, error) {
	var opts []models.CustomizationOption
	q := s.conn(ctx).Order("group_name, sort_order, name")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&opts).Error; err != nil {
		return nil, wrap(err, "list customization options")
	}
	return opts, nil
}

func (s *Store) GetOption(ctx context.Context, id uint) (*models.CustomizationOption, error) {
	var o models.CustomizationOption
	if err := s.conn(ctx).First(&o, id).Error; err != nil {
		return nil, wrap(err, "get customization option")
	}
	return &o, nil
}

func (s *Store) GetOptions(ctx context.Context, ids []uint) ([]models.CustomizationOption, error) {
	var opts []models.CustomizationOption
	if len(ids) == 0 {
		return opts, nil
	}
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&opts).Error; err != nil {
		return nil, wrap(err, "get customization options")
	}
	return opts, nil
}

func (s *Store) CreateOption(ctx context.Context, o *models.CustomizationOption) error {
	return wrap(s.conn(ctx).Create(o).Error, "create customization option")
}

func (s *Store) SaveOption(ctx context.Context, o *models.CustomizationOption) error {
	return wrap(s.conn(ctx).Save(o).Error, "save customization option")
}

func (s *Store) DeleteOption(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_options WHERE customization_option_id = ?", id).Error; err != nil {
			return wrap(err, "unlink option")
		}
		return notFoundIfNone(tx.Delete(&models.CustomizationOption{}, id), "delete customization option")
	})
}

// ProductFilter narrows ListProducts. Nil fields do not filter.
type ProductFilter struct {
	CategoryID *uint
	Available  *bool
}

func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	var products []models.Product
	q := s.conn(ctx).Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("group_name, sort_order")
	}).Order("sort_order, name")
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Available != nil {
		q = q.Where("available = ?", *f.Available)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, wrap(err, "list products")
	}
	return products, nil
}

// GetProduct loads a product with its category, options and ingredients.
func (s *Store) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := s.conn(ctx).
		Preload("Category").
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("group_name, sort_order") }).
		Preload("Ingredients.Inventory").
		First(&p, id).Error
	if err != nil {
		return nil, wrap(err, "get product")
	}
	return &p, nil
}

// CreateProduct inserts p and links the options with the given ids.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product, optionIDs []uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return wrap(err, "create product")
		}
		return replaceProductOptions(tx, p, optionIDs)
	})
}

// SaveProduct updates p's columns. When optionIDs is non-nil the option links are replaced.
func (s *Store) SaveProduct(ctx context.Context, p *models.Product, optionIDs []uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return wrap(err, "save product")
		}
		if optionIDs == nil {
			return nil
		}
		return replaceProductOptions(tx, p, optionIDs)
	})
}

func replaceProductOptions(tx *gorm.DB, p *models.Product, optionIDs []uint) error {
	var opts []models.CustomizationOption
	if len(optionIDs) > 0 {
		if err := tx.Where("id IN ?", optionIDs).Find(&opts).Error; err != nil {
			return wrap(err, "load options")
		}
		if len(opts) != len(uniqueIDs(optionIDs)) {
			return fmt.Errorf("link options: %w", ErrUnknownReference)
		}
	}
	if err := tx.Model(p).Association("Options").Replace(opts); err != nil {
		return wrap(err, "link options")
	}
	p.Options = opts
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_options WHERE product_id = ?", id).Error; err != nil {
			return wrap(err, "unlink product options")
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductIngredient{}).Error; err != nil {
			return wrap(err, "delete product ingredients")
		}
		return notFoundIfNone(tx.Delete(&models.Product{}, id), "delete product")
	})
}

// SetProductIngredients replaces the recipe of a product.
func (s *Store) SetProductIngredients(ctx context.Context, productID uint, ings []models.ProductIngredient) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&n).Error; err != nil {
			return wrap(err, "check product")
		}
		if n == 0 {
			return wrap(gormNotFound(), "set ingredients")
		}
		if err := tx.Where("product_id = ?", productID).Delete(&models.ProductIngredient{}).Error; err != nil {
			return wrap(err, "clear ingredients")
		}
		for i := range ings {
			ings[i].ID = 0
			ings[i].ProductID = productID
			if err := tx.Omit(clause.Associations).Create(&ings[i]).Error; err != nil {
				return wrap(err, "create ingredient")
			}
		}
		return nil
	})
}

// IngredientsFor returns the recipes of the given products keyed by product id.
func (s *Store) IngredientsFor(ctx context.Context, productIDs []uint) (map[uint][]models.ProductIngredient, error) {
	out := make(map[uint][]models.ProductIngredient)
	if len(productIDs) == 0 {
		return out, nil
	}
	var ings []models.ProductIngredient
	if err := s.conn(ctx).Where("product_id IN ?", productIDs).Order("id").Find(&ings).Error; err != nil {
		return nil, wrap(err, "load ingredients")
	}
	for _, ing := range ings {
		out[ing.ProductID] = append(out[ing.ProductID], ing)
	}
	return out, nil
}

func gormNotFound() error { return gorm.ErrRecordNotFound }

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
