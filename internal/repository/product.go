package repository

import (
	"context"
	"time"

	"zawawiya-store/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductFilter struct {
	CategoryID uint
	Query      string
}

type ProductRepository interface {
	Seed(ctx context.Context) error
	List(ctx context.Context, filter ProductFilter) ([]*model.Product, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
	FindCategory(ctx context.Context, tx *gorm.DB, categoryID uint) (*model.Category, error)
	FindByID(ctx context.Context, tx *gorm.DB, productID uint) (*model.Product, error)
	FindVariant(ctx context.Context, tx *gorm.DB, productID, variantID uint) (*model.Variant, error)
	Create(ctx context.Context, tx *gorm.DB, product *model.Product) error
	Update(ctx context.Context, tx *gorm.DB, productID uint, fields map[string]interface{}) error
	IncrementSold(ctx context.Context, tx *gorm.DB, productID uint, quantity int64) error
	DecrementStock(ctx context.Context, tx *gorm.DB, productID uint, quantity int64) error
	DecrementVariantStock(ctx context.Context, tx *gorm.DB, variantID uint, quantity int64) error
	CountOpenVariantLines(ctx context.Context, tx *gorm.DB, productID uint) (int64, error)
	ListAttributes(ctx context.Context, tx *gorm.DB, productID uint) ([]*model.ProductAttribute, error)
	CountValues(ctx context.Context, tx *gorm.DB, productID uint, valueIDs []uint) (int64, error)
	DeleteVariants(ctx context.Context, tx *gorm.DB, productID uint) ([]uint, error)
	CreateVariants(ctx context.Context, tx *gorm.DB, variants []*model.Variant) error
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Seed(ctx context.Context) error {
	categories := []model.Category{
		{ID: 1, Name: "Gamis", Slug: "gamis"},
		{ID: 2, Name: "Koko", Slug: "koko"},
		{ID: 3, Name: "Hijab", Slug: "hijab"},
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error; err != nil {
		return err
	}

	products := []model.Product{
		{ID: 1, CategoryID: 1, Name: "Gamis Syari Zahra", Price: 185000, Stock: 40, Active: true},
		{ID: 2, CategoryID: 2, Name: "Koko Kurta Faris", Price: 150000, Stock: 25, Active: true},
		{ID: 3, CategoryID: 3, Name: "Pashmina Ceruty", Price: 45000, Stock: 100, FreeShipping: true, Active: true},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error
}

func (r *productRepoImpl) List(ctx context.Context, filter ProductFilter) ([]*model.Product, error) {
	q := r.db.WithContext(ctx).
		Preload("Category").
		Where("active = ?", true)

	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Query != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+filter.Query+"%")
	}

	var products []*model.Product
	if err := q.Order("created_at DESC").Order("id DESC").Find(&products).Error; err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) ListCategories(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *productRepoImpl) FindCategory(ctx context.Context, tx *gorm.DB, categoryID uint) (*model.Category, error) {
	var category model.Category
	if err := tx.WithContext(ctx).Where("id = ?", categoryID).First(&category).Error; err != nil {
		return nil, err
	}

	return &category, nil
}

func orderedAttributes(db *gorm.DB) *gorm.DB {
	return db.Order("product_attributes.position ASC").Order("product_attributes.id ASC")
}

func orderedValues(db *gorm.DB) *gorm.DB {
	return db.Order("attribute_values.position ASC").Order("attribute_values.id ASC")
}

func (r *productRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, productID uint) (*model.Product, error) {
	var product model.Product
	err := tx.WithContext(ctx).
		Preload("Category").
		Preload("Attributes", orderedAttributes).
		Preload("Attributes.Values", orderedValues).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("variants.id ASC") }).
		Preload("Variants.Values").
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindVariant(ctx context.Context, tx *gorm.DB, productID, variantID uint) (*model.Variant, error) {
	var variant model.Variant
	err := tx.WithContext(ctx).
		Where("id = ? AND product_id = ?", variantID, productID).
		First(&variant).Error

	if err != nil {
		return nil, err
	}

	return &variant, nil
}

// Create inserts the product with its attributes and their values.
func (r *productRepoImpl) Create(ctx context.Context, tx *gorm.DB, product *model.Product) error {
	return tx.WithContext(ctx).Omit("Category", "Variants").Create(product).Error
}

func (r *productRepoImpl) Update(ctx context.Context, tx *gorm.DB, productID uint, fields map[string]interface{}) error {
	values := map[string]interface{}{"updated_at": time.Now()}
	for k, v := range fields {
		values[k] = v
	}

	result := tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(values)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *productRepoImpl) IncrementSold(ctx context.Context, tx *gorm.DB, productID uint, quantity int64) error {
	return tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		UpdateColumn("sold", gorm.Expr("sold + ?", quantity)).Error
}

func (r *productRepoImpl) DecrementStock(ctx context.Context, tx *gorm.DB, productID uint, quantity int64) error {
	return tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity)).Error
}

// DecrementVariantStock returns gorm.ErrRecordNotFound when the variant no
// longer exists.
func (r *productRepoImpl) DecrementVariantStock(ctx context.Context, tx *gorm.DB, variantID uint, quantity int64) error {
	result := tx.WithContext(ctx).Model(&model.Variant{}).
		Where("id = ?", variantID).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// CountOpenVariantLines counts lines of unfinished orders that point at one
// of the product's variants.
func (r *productRepoImpl) CountOpenVariantLines(ctx context.Context, tx *gorm.DB, productID uint) (int64, error) {
	var n int64
	err := tx.WithContext(ctx).Model(&model.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.product_id = ? AND order_items.variant_id IS NOT NULL", productID).
		Where("orders.status IN ?", model.OpenOrderStatuses()).
		Count(&n).Error

	return n, err
}

func (r *productRepoImpl) ListAttributes(ctx context.Context, tx *gorm.DB, productID uint) ([]*model.ProductAttribute, error) {
	var attrs []*model.ProductAttribute
	err := orderedAttributes(tx.WithContext(ctx)).
		Preload("Values", orderedValues).
		Where("product_id = ?", productID).
		Find(&attrs).Error

	if err != nil {
		return nil, err
	}

	return attrs, nil
}

// CountValues counts how many of valueIDs are attribute values of the product.
func (r *productRepoImpl) CountValues(ctx context.Context, tx *gorm.DB, productID uint, valueIDs []uint) (int64, error) {
	if len(valueIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := tx.WithContext(ctx).Model(&model.AttributeValue{}).
		Joins("JOIN product_attributes ON product_attributes.id = attribute_values.attribute_id").
		Where("product_attributes.product_id = ? AND attribute_values.id IN ?", productID, valueIDs).
		Count(&count).Error

	return count, err
}

// DeleteVariants removes every variant of the product and returns the
// removed ids.
func (r *productRepoImpl) DeleteVariants(ctx context.Context, tx *gorm.DB, productID uint) ([]uint, error) {
	db := tx.WithContext(ctx)

	var ids []uint
	if err := db.Model(&model.Variant{}).Where("product_id = ?", productID).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return ids, nil
	}

	if err := db.Where("variant_id IN ?", ids).Delete(&model.VariantValue{}).Error; err != nil {
		return nil, err
	}
	if err := db.Where("id IN ?", ids).Delete(&model.Variant{}).Error; err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *productRepoImpl) CreateVariants(ctx context.Context, tx *gorm.DB, variants []*model.Variant) error {
	if len(variants) == 0 {
		return nil
	}

	return tx.WithContext(ctx).Create(variants).Error
}
