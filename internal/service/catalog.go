package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"zawawiya-store/internal/apperror"
	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/model"
	"zawawiya-store/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reasons reported when automatic variant generation produces nothing.
const (
	ReasonNoAttributes = "NO_ATTR"
	ReasonEmptyValue   = "EMPTY_VALUE"
)

type CatalogService interface {
	List(ctx context.Context, filter *dto.ProductFilter) ([]*model.Product, error)
	Get(ctx context.Context, productID uint) (*model.Product, error)
	Categories(ctx context.Context) ([]*model.Category, error)

	Create(ctx context.Context, req *dto.CreateProductRequest) (*model.Product, error)
	Update(ctx context.Context, productID uint, req *dto.UpdateProductRequest) (*model.Product, error)
	ReplaceVariants(ctx context.Context, productID uint, req *dto.ReplaceVariantsRequest) (*dto.ReplaceVariantsResponse, error)
}

type catalogServiceImpl struct {
	db          *gorm.DB
	log         *zap.Logger
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
}

func NewCatalogService(db *gorm.DB, log *zap.Logger, productRepo repository.ProductRepository, cartRepo repository.CartRepository) CatalogService {
	return &catalogServiceImpl{
		db:          db,
		log:         log,
		productRepo: productRepo,
		cartRepo:    cartRepo,
	}
}

// Cartesian returns every combination that picks one id from each list, in
// list order. It returns nil when any list is empty.
func Cartesian(lists [][]uint) [][]uint {
	if len(lists) == 0 {
		return nil
	}

	combos := [][]uint{{}}
	for _, list := range lists {
		if len(list) == 0 {
			return nil
		}
		next := make([][]uint, 0, len(combos)*len(list))
		for _, prefix := range combos {
			for _, id := range list {
				combo := make([]uint, len(prefix), len(prefix)+1)
				copy(combo, prefix)
				next = append(next, append(combo, id))
			}
		}
		combos = next
	}

	return combos
}

// MakeSKU builds P{product:06d}-{value}-{value}...
func MakeSKU(productID uint, valueIDs []uint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "P%06d", productID)
	for _, id := range valueIDs {
		b.WriteByte('-')
		b.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	return b.String()
}

func (s *catalogServiceImpl) List(ctx context.Context, filter *dto.ProductFilter) ([]*model.Product, error) {
	products, err := s.productRepo.List(ctx, repository.ProductFilter{
		CategoryID: filter.CategoryID,
		Query:      strings.ToLower(strings.TrimSpace(filter.Query)),
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return products, nil
}

func (s *catalogServiceImpl) Get(ctx context.Context, productID uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, lookupErr(err, "product not found")
	}
	if !product.Active {
		return nil, apperror.NotFound("product not found")
	}

	return product, nil
}

func (s *catalogServiceImpl) Categories(ctx context.Context) ([]*model.Category, error) {
	categories, err := s.productRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

func (s *catalogServiceImpl) Create(ctx context.Context, req *dto.CreateProductRequest) (*model.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.InvalidRequest("name is required")
	}

	product := &model.Product{
		CategoryID:   req.CategoryID,
		Name:         name,
		Brand:        req.Brand,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		Price:        req.Price,
		Stock:        req.Stock,
		FreeShipping: req.FreeShipping,
		Active:       true,
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	for i, a := range req.Attributes {
		attr := model.ProductAttribute{
			Name:     strings.TrimSpace(a.Name),
			Position: i,
		}
		if a.Position != nil {
			attr.Position = *a.Position
		}
		for j, v := range a.Values {
			attr.Values = append(attr.Values, model.AttributeValue{
				Value:    strings.TrimSpace(v),
				Position: j,
			})
		}
		product.Attributes = append(product.Attributes, attr)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.productRepo.FindCategory(ctx, tx, req.CategoryID); err != nil {
			return lookupErr(err, "category not found")
		}
		if err := s.productRepo.Create(ctx, tx, product); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.productRepo.FindByID(ctx, s.db, product.ID)
	if err != nil {
		return nil, lookupErr(err, "product not found")
	}
	return created, nil
}

func (s *catalogServiceImpl) Update(ctx context.Context, productID uint, req *dto.UpdateProductRequest) (*model.Product, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.InvalidRequest("name must not be empty")
		}
		fields["name"] = name
	}
	if req.CategoryID != nil {
		fields["category_id"] = *req.CategoryID
	}
	if req.Brand != nil {
		fields["brand"] = *req.Brand
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Stock != nil {
		fields["stock"] = *req.Stock
	}
	if req.FreeShipping != nil {
		fields["free_shipping"] = *req.FreeShipping
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.CategoryID != nil {
			if _, err := s.productRepo.FindCategory(ctx, tx, *req.CategoryID); err != nil {
				return lookupErr(err, "category not found")
			}
		}
		if err := s.productRepo.Update(ctx, tx, productID, fields); err != nil {
			return lookupErr(err, "product not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, lookupErr(err, "product not found")
	}
	return product, nil
}

// ReplaceVariants drops every variant of the product and creates the new
// set, either generated from the attributes or taken from the request.
// Cart lines pointing at dropped variants go with them. Variants on
// unfinished orders block the replacement.
func (s *catalogServiceImpl) ReplaceVariants(ctx context.Context, productID uint, req *dto.ReplaceVariantsRequest) (*dto.ReplaceVariantsResponse, error) {
	resp := &dto.ReplaceVariantsResponse{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.FindByID(ctx, tx, productID)
		if err != nil {
			return lookupErr(err, "product not found")
		}

		var variants []*model.Variant
		if req.AutoGenerate {
			variants, resp.Reason = generateVariants(product)
		} else {
			variants, err = s.manualVariants(ctx, tx, product, req.Variants)
			if err != nil {
				return err
			}
		}

		open, err := s.productRepo.CountOpenVariantLines(ctx, tx, product.ID)
		if err != nil {
			return fmt.Errorf("count open order lines: %w", err)
		}
		if open > 0 {
			return apperror.Conflict("variants are still on unfinished orders")
		}

		removed, err := s.productRepo.DeleteVariants(ctx, tx, product.ID)
		if err != nil {
			return fmt.Errorf("delete variants: %w", err)
		}
		if err := s.cartRepo.DeleteByVariantIDs(ctx, tx, removed); err != nil {
			return fmt.Errorf("drop cart lines of removed variants: %w", err)
		}

		if err := s.productRepo.CreateVariants(ctx, tx, variants); err != nil {
			if isDuplicate(err) {
				return apperror.Conflict("sku is already used by another product")
			}
			return fmt.Errorf("create variants: %w", err)
		}
		resp.Created = len(variants)
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp.Product, err = s.productRepo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, lookupErr(err, "product not found")
	}

	s.log.Info("variants replaced",
		zap.Uint("product_id", productID),
		zap.Int("created", resp.Created),
		zap.String("reason", resp.Reason),
	)
	return resp, nil
}

// generateVariants expects product.Attributes and their values to be in
// display order.
func generateVariants(product *model.Product) ([]*model.Variant, string) {
	if len(product.Attributes) == 0 {
		return nil, ReasonNoAttributes
	}

	lists := make([][]uint, len(product.Attributes))
	for i, attr := range product.Attributes {
		if len(attr.Values) == 0 {
			return nil, ReasonEmptyValue
		}
		for _, v := range attr.Values {
			lists[i] = append(lists[i], v.ID)
		}
	}

	combos := Cartesian(lists)
	variants := make([]*model.Variant, 0, len(combos))
	for _, combo := range combos {
		price := product.Price
		v := &model.Variant{
			ProductID: product.ID,
			SKU:       MakeSKU(product.ID, combo),
			Price:     &price,
			Stock:     product.Stock,
		}
		for _, id := range combo {
			v.Values = append(v.Values, model.VariantValue{ValueID: id})
		}
		variants = append(variants, v)
	}

	return variants, ""
}

func (s *catalogServiceImpl) manualVariants(ctx context.Context, tx *gorm.DB, product *model.Product, reqs []dto.VariantRequest) ([]*model.Variant, error) {
	skus := make(map[string]bool, len(reqs))
	variants := make([]*model.Variant, 0, len(reqs))

	for _, r := range reqs {
		sku := strings.TrimSpace(r.SKU)
		if sku == "" {
			return nil, apperror.InvalidRequest("every variant needs a sku")
		}
		if skus[sku] {
			return nil, apperror.InvalidRequest(fmt.Sprintf("sku %s is listed twice", sku))
		}
		skus[sku] = true

		valueIDs := uniqueIDs(r.ValueIDs)
		if len(valueIDs) > 0 {
			n, err := s.productRepo.CountValues(ctx, tx, product.ID, valueIDs)
			if err != nil {
				return nil, fmt.Errorf("check attribute values: %w", err)
			}
			if n != int64(len(valueIDs)) {
				return nil, apperror.InvalidRequest("attribute values must belong to the product")
			}
		}

		v := &model.Variant{
			ProductID: product.ID,
			SKU:       sku,
			Price:     r.Price,
			Stock:     r.Stock,
		}
		for _, id := range valueIDs {
			v.Values = append(v.Values, model.VariantValue{ValueID: id})
		}
		variants = append(variants, v)
	}

	return variants, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
