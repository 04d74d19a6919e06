package service

import (
	"context"
	"testing"

	"zawawiya-store/internal/apperror"
	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/event"
	"zawawiya-store/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completedOrder checks out a COD order and marks it COMPLETED directly.
func (h *harness) completedOrder(t *testing.T, s *shopper) uint {
	t.Helper()
	resp := h.checkoutWith(t, s, "cod")
	h.setOrderStatus(t, resp.OrderID, model.OrderCompleted)
	return resp.OrderID
}

func TestReturnCreate(t *testing.T) {
	h := newHarness(t)
	s := h.newShopper(t, "retur@example.com")
	ctx := context.Background()

	open := h.checkoutWith(t, s, "cod")
	_, err := h.returns.Create(ctx, s.user.ID, &dto.CreateReturnRequest{OrderID: open.OrderID, Kind: "REFUND", Reason: "Ukuran tidak pas"})
	assert.True(t, apperror.Is(err, apperror.KindInvalidRequest), "order not completed")

	h.setOrderStatus(t, open.OrderID, model.OrderCompleted)
	ret, err := h.returns.Create(ctx, s.user.ID, &dto.CreateReturnRequest{
		OrderID:     open.OrderID,
		Kind:        "exchange",
		Reason:      " Ukuran tidak pas ",
		Description: "Minta ganti ukuran L",
		Photos:      []string{"https://cdn.example.com/a.jpg", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReturnFiled, ret.Status)
	assert.Equal(t, model.ReturnKindExchange, ret.Kind)
	assert.Equal(t, "Ukuran tidak pas", ret.Reason)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg"}, ret.Photos)
	assert.Equal(t, 1, h.events.Count(event.ReturnUpdated))

	_, err = h.returns.Create(ctx, s.user.ID, &dto.CreateReturnRequest{OrderID: open.OrderID, Kind: "REFUND", Reason: "lagi"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, err = h.returns.Create(ctx, s.user.ID, &dto.CreateReturnRequest{OrderID: open.OrderID, Kind: "SWAP", Reason: "x"})
	assert.True(t, apperror.Is(err, apperror.KindInvalidRequest))

	stranger := h.newShopper(t, "stranger-retur@example.com")
	_, err = h.returns.Create(ctx, stranger.user.ID, &dto.CreateReturnRequest{OrderID: open.OrderID, Kind: "REFUND", Reason: "x"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestReturnLifecycle(t *testing.T) {
	h := newHarness(t)
	s := h.newShopper(t, "lifecycle@example.com")
	orderID := h.completedOrder(t, s)
	ctx := context.Background()

	ret, err := h.returns.Create(ctx, s.user.ID, &dto.CreateReturnRequest{OrderID: orderID, Kind: "REFUND", Reason: "Cacat jahitan"})
	require.NoError(t, err)

	_, err = h.returns.SubmitReturnShipment(ctx, s.user.ID, ret.ID, &dto.ReturnShipmentRequest{TrackingNumber: "JNT123"})
	assert.True(t, apperror.Is(err, apperror.KindInvalidRequest), "not approved yet")

	approved, err := h.returns.Update(ctx, ret.ID, &dto.UpdateReturnRequest{Status: "DISETUJUI"})
	require.NoError(t, err)
	assert.Equal(t, model.ReturnApproved, approved.Status)

	err = h.returns.DeleteMine(ctx, s.user.ID, ret.ID)
	assert.True(t, apperror.Is(err, apperror.KindInvalidRequest), "only filed returns can be withdrawn")

	shipped, err := h.returns.SubmitReturnShipment(ctx, s.user.ID, ret.ID, &dto.ReturnShipmentRequest{TrackingNumber: " JNT123 "})
	require.NoError(t, err)
	assert.Equal(t, model.ReturnShippedBack, shipped.Status)
	require.NotNil(t, shipped.ReturnTrackingNumber)
	assert.Equal(t, "JNT123", *shipped.ReturnTrackingNumber)

	_, err = h.returns.Update(ctx, ret.ID, &dto.UpdateReturnRequest{Status: "DITOLAK", AdminNote: strPtr("terlambat")})
	assert.True(t, apperror.Is(err, apperror.KindInvalidRequest))

	done, err := h.returns.Update(ctx, ret.ID, &dto.UpdateReturnRequest{Status: "selesai"})
	require.NoError(t, err)
	assert.Equal(t, model.ReturnFinished, done.Status)

	// create, approve, ship back, finish
	assert.Equal(t, 4, h.events.Count(event.ReturnUpdated))
}

func TestReturnReject(t *testing.T) {
	h := newHarness(t)
	s := h.newShopper(t, "reject-retur@example.com")
	orderID := h.completedOrder(t, s)
	ctx := context.Background()

	ret, err := h.returns.Create(ctx, s.user.ID, &dto.CreateReturnRequest{OrderID: orderID, Kind: "REFUND", Reason: "Berubah pikiran"})
	require.NoError(t, err)

	_, err = h.returns.Update(ctx, ret.ID, &dto.UpdateReturnRequest{Status: "DITOLAK"})
	assert.True(t, apperror.Is(err, apperror.KindInvalidRequest))

	_, err = h.returns.Update(ctx, ret.ID, &dto.UpdateReturnRequest{Status: "DITOLAK", AdminNote: strPtr("  ")})
	assert.True(t, apperror.Is(err, apperror.KindInvalidRequest))

	// a note saved earlier is enough
	noted, err := h.returns.Update(ctx, ret.ID, &dto.UpdateReturnRequest{AdminNote: strPtr("Di luar masa retur")})
	require.NoError(t, err)
	assert.Equal(t, model.ReturnFiled, noted.Status)

	rejected, err := h.returns.Update(ctx, ret.ID, &dto.UpdateReturnRequest{Status: "DITOLAK"})
	require.NoError(t, err)
	assert.Equal(t, model.ReturnRejected, rejected.Status)
	require.NotNil(t, rejected.AdminNote)
	assert.Equal(t, "Di luar masa retur", *rejected.AdminNote)

	// a rejected return keeps a note
	_, err = h.returns.Update(ctx, ret.ID, &dto.UpdateReturnRequest{AdminNote: strPtr("")})
	assert.True(t, apperror.Is(err, apperror.KindInvalidRequest))
	_, err = h.returns.Update(ctx, ret.ID, &dto.UpdateReturnRequest{Status: "ditolak", AdminNote: strPtr(" ")})
	assert.True(t, apperror.Is(err, apperror.KindInvalidRequest))

	stored, err := h.returns.Get(ctx, ret.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AdminNote)
	assert.Equal(t, "Di luar masa retur", *stored.AdminNote)

	reworded, err := h.returns.Update(ctx, ret.ID, &dto.UpdateReturnRequest{AdminNote: strPtr(" Foto tidak jelas ")})
	require.NoError(t, err)
	assert.Equal(t, model.ReturnRejected, reworded.Status)
	assert.Equal(t, "Foto tidak jelas", *reworded.AdminNote)

	_, err = h.returns.Update(ctx, ret.ID, &dto.UpdateReturnRequest{})
	assert.True(t, apperror.Is(err, apperror.KindInvalidRequest))
}

func TestReturnDeleteMine(t *testing.T) {
	h := newHarness(t)
	s := h.newShopper(t, "withdraw@example.com")
	orderID := h.completedOrder(t, s)
	ctx := context.Background()

	ret, err := h.returns.Create(ctx, s.user.ID, &dto.CreateReturnRequest{OrderID: orderID, Kind: "REFUND", Reason: "Salah pesan"})
	require.NoError(t, err)

	other := h.newShopper(t, "not-mine@example.com")
	err = h.returns.DeleteMine(ctx, other.user.ID, ret.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	require.NoError(t, h.returns.DeleteMine(ctx, s.user.ID, ret.ID))
	_, err = h.returns.GetMine(ctx, s.user.ID, ret.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	// the order is free for a new request
	_, err = h.returns.Create(ctx, s.user.ID, &dto.CreateReturnRequest{OrderID: orderID, Kind: "EXCHANGE", Reason: "Ganti warna"})
	require.NoError(t, err)
}

func TestReturnAdminList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	a := h.newShopper(t, "list-retur-a@example.com")
	b := h.newShopper(t, "list-retur-b@example.com")
	refund, err := h.returns.Create(ctx, a.user.ID, &dto.CreateReturnRequest{OrderID: h.completedOrder(t, a), Kind: "REFUND", Reason: "x"})
	require.NoError(t, err)
	_, err = h.returns.Create(ctx, b.user.ID, &dto.CreateReturnRequest{OrderID: h.completedOrder(t, b), Kind: "EXCHANGE", Reason: "y"})
	require.NoError(t, err)

	all, err := h.returns.List(ctx, &dto.AdminReturnFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	refunds, err := h.returns.List(ctx, &dto.AdminReturnFilter{Kind: "refund"})
	require.NoError(t, err)
	require.Len(t, refunds, 1)
	assert.Equal(t, refund.ID, refunds[0].ID)

	_, err = h.returns.List(ctx, &dto.AdminReturnFilter{Status: "HILANG"})
	assert.True(t, apperror.Is(err, apperror.KindInvalidRequest))

	mine, err := h.returns.ListMine(ctx, a.user.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	require.NoError(t, h.returns.Delete(ctx, refund.ID))
	assert.True(t, apperror.Is(h.returns.Delete(ctx, refund.ID), apperror.KindNotFound))
}
