// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"zawawiya-store/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Epoch is the fixed start time used by manual clocks in tests.
var Epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// NewDB opens a private in-memory sqlite database with every table
// migrated. A single connection keeps the database alive and serialises
// transactions the way row locks would.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=0"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// Published is one event captured by Recorder.
type Published struct {
	Type    string
	Key     string
	Payload any
}

// Recorder is an event.Publisher that keeps everything in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Published
}

func (r *Recorder) Publish(_ context.Context, eventType, key string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Published{Type: eventType, Key: key, Payload: payload})
}

func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.events...)
}

// Count returns how many events of eventType were published.
func (r *Recorder) Count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func CreateUser(t *testing.T, db *gorm.DB, email string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		FirstName:    "Siti",
		LastName:     "Aminah",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateAddress(t *testing.T, db *gorm.DB, userID uint) *model.Address {
	t.Helper()
	a := &model.Address{
		UserID:        userID,
		Label:         "Rumah",
		RecipientName: "Siti Aminah",
		Phone:         "081234567890",
		Province:      "Jawa Barat",
		City:          "Bandung",
		District:      "Coblong",
		Village:       "Dago",
		PostalCode:    "40135",
		Street:        "Jl. Ir. H. Juanda No. 1",
		IsPrimary:     true,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

// CreateShippingService adds an active courier with one service.
func CreateShippingService(t *testing.T, db *gorm.DB, price int64, free bool) *model.ShippingService {
	t.Helper()
	courier := &model.Courier{Code: "c-" + uuid.NewString()[:8], Name: "JNE", Active: true}
	require.NoError(t, db.Create(courier).Error)

	svc := &model.ShippingService{
		CourierID:     courier.ID,
		Name:          "REG",
		Price:         price,
		Free:          free,
		EstimatedDays: "2-3",
		Active:        true,
	}
	require.NoError(t, db.Omit("Courier").Create(svc).Error)
	return svc
}

func CreateCategory(t *testing.T, db *gorm.DB) *model.Category {
	t.Helper()
	c := &model.Category{Name: "Gamis", Slug: "gamis-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(c).Error)
	return c
}

func CreateProduct(t *testing.T, db *gorm.DB, name string, price, stock int64) *model.Product {
	t.Helper()
	category := CreateCategory(t, db)
	p := &model.Product{
		CategoryID: category.ID,
		Name:       name,
		Price:      price,
		Stock:      stock,
		Active:     true,
	}
	require.NoError(t, db.Omit("Category", "Attributes", "Variants").Create(p).Error)
	return p
}

func CreateVariant(t *testing.T, db *gorm.DB, productID uint, sku string, price *int64, stock int64) *model.Variant {
	t.Helper()
	v := &model.Variant{ProductID: productID, SKU: sku, Price: price, Stock: stock}
	require.NoError(t, db.Create(v).Error)
	return v
}

// CreateCart gives the user an active cart.
func CreateCart(t *testing.T, db *gorm.DB, userID uint) *model.Cart {
	t.Helper()
	c := &model.Cart{UserID: userID, Active: true}
	require.NoError(t, db.Omit("Items").Create(c).Error)
	return c
}

func AddCartItem(t *testing.T, db *gorm.DB, cartID, productID uint, variantID *uint, quantity int64) *model.CartItem {
	t.Helper()
	item := &model.CartItem{CartID: cartID, ProductID: productID, VariantID: variantID, Quantity: quantity}
	require.NoError(t, db.Omit("Product", "Variant").Create(item).Error)
	return item
}

func Reload[T any](t *testing.T, db *gorm.DB, id uint) *T {
	t.Helper()
	var v T
	require.NoError(t, db.First(&v, id).Error)
	return &v
}
