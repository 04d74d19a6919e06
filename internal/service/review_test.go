package service

import (
	"context"
	"testing"

	"zawawiya-store/internal/apperror"
	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) orderItems(t *testing.T, orderID uint) []model.OrderItem {
	t.Helper()
	var items []model.OrderItem
	require.NoError(t, h.db.Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error)
	return items
}

func TestReviewCreate(t *testing.T) {
	h := newHarness(t)
	s := h.newShopper(t, "ulasan@example.com")
	orderID := h.completedOrder(t, s)
	item := h.orderItems(t, orderID)[0]
	ctx := context.Background()

	reviews, err := h.reviews.Create(ctx, s.user.ID, orderID, &dto.CreateReviewRequest{
		Items: []dto.ReviewItem{{ItemID: item.ID, Rating: 5, Comment: " Bahannya adem "}},
	})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, s.product.ID, reviews[0].ProductID)
	assert.Equal(t, "Siti Aminah", reviews[0].ReviewerName)
	require.NotNil(t, reviews[0].Comment)
	assert.Equal(t, "Bahannya adem", *reviews[0].Comment)

	view, err := h.orders.Get(ctx, s.user.ID, orderID)
	require.NoError(t, err)
	assert.True(t, view.Reviewed)

	byProduct, err := h.reviews.ListForProduct(ctx, s.product.ID)
	require.NoError(t, err)
	assert.Len(t, byProduct, 1)

	_, err = h.reviews.Create(ctx, s.user.ID, orderID, &dto.CreateReviewRequest{
		Items: []dto.ReviewItem{{ItemID: item.ID, Rating: 4}},
	})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestReviewCreate_Rejections(t *testing.T) {
	h := newHarness(t)
	s := h.newShopper(t, "ulasan-ditolak@example.com")
	ctx := context.Background()

	open := h.checkoutWith(t, s, "cod")
	item := h.orderItems(t, open.OrderID)[0]
	_, err := h.reviews.Create(ctx, s.user.ID, open.OrderID, &dto.CreateReviewRequest{
		Items: []dto.ReviewItem{{ItemID: item.ID, Rating: 5}},
	})
	assert.True(t, apperror.Is(err, apperror.KindInvalidRequest), "order not completed")

	h.setOrderStatus(t, open.OrderID, model.OrderCompleted)

	other := h.newShopper(t, "lain@example.com")
	otherOrder := h.completedOrder(t, other)
	foreign := h.orderItems(t, otherOrder)[0]

	tests := []struct {
		name  string
		items []dto.ReviewItem
		kind  apperror.Kind
	}{
		{"item of another order", []dto.ReviewItem{{ItemID: foreign.ID, Rating: 5}}, apperror.KindInvalidRequest},
		{"rating out of range", []dto.ReviewItem{{ItemID: item.ID, Rating: 6}}, apperror.KindInvalidRequest},
		{"same product twice", []dto.ReviewItem{{ItemID: item.ID, Rating: 5}, {ItemID: item.ID, Rating: 4}}, apperror.KindConflict},
		{"nothing to review", nil, apperror.KindInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.reviews.Create(ctx, s.user.ID, open.OrderID, &dto.CreateReviewRequest{Items: tt.items})
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}

	_, err = h.reviews.Create(ctx, other.user.ID, open.OrderID, &dto.CreateReviewRequest{
		Items: []dto.ReviewItem{{ItemID: item.ID, Rating: 5}},
	})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	var count int64
	require.NoError(t, h.db.Model(&model.Review{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestReviewDelete(t *testing.T) {
	h := newHarness(t)
	s := h.newShopper(t, "hapus-ulasan@example.com")
	orderID := h.completedOrder(t, s)
	item := h.orderItems(t, orderID)[0]
	ctx := context.Background()

	reviews, err := h.reviews.Create(ctx, s.user.ID, orderID, &dto.CreateReviewRequest{
		Items: []dto.ReviewItem{{ItemID: item.ID, Rating: 3}},
	})
	require.NoError(t, err)

	stranger := h.newShopper(t, "bukan-pemilik@example.com")
	assert.True(t, apperror.Is(h.reviews.Delete(ctx, stranger.user.ID, reviews[0].ID), apperror.KindNotFound))

	require.NoError(t, h.reviews.Delete(ctx, s.user.ID, reviews[0].ID))

	mine, err := h.reviews.ListMine(ctx, s.user.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
