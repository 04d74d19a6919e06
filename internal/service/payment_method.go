package service

import (
	"strings"
	"time"

	"zawawiya-store/internal/apperror"
	"zawawiya-store/internal/model"
)

const (
	vaExpiry      = 24 * time.Hour
	ewalletExpiry = 30 * time.Minute
)

var ewallets = map[string]bool{"gopay": true, "ovo": true, "dana": true}

var vaBanks = map[string]bool{"bca": true, "bni": true, "mandiri": true}

var vouchers = map[string]int64{
	"ZAWA50K":  50000,
	"ZAWA100K": 100000,
}

// ResolvePaymentMethod maps the checkout payment choice to a method and
// provider tag.
func ResolvePaymentMethod(input string) (model.PaymentMethod, *string, error) {
	in := strings.ToLower(strings.TrimSpace(input))

	switch {
	case in == "":
		return "", nil, apperror.InvalidRequest("payment method is required")
	case in == "cod":
		return model.PaymentMethodCOD, nil, nil
	case ewallets[in]:
		return model.PaymentMethodEWallet, strPtr(strings.ToUpper(in)), nil
	case vaBanks[in]:
		return model.PaymentMethodVA, strPtr(strings.ToUpper(in) + "_VA"), nil
	case in == "online":
		return model.PaymentMethodOnline, strPtr("MIDTRANS"), nil
	default:
		return model.PaymentMethodVA, strPtr(strings.ToUpper(in)), nil
	}
}

// PaymentExpiry is nil for methods that never expire.
func PaymentExpiry(method model.PaymentMethod, now time.Time) *time.Time {
	var t time.Time
	switch method {
	case model.PaymentMethodVA:
		t = now.Add(vaExpiry)
	case model.PaymentMethodEWallet:
		t = now.Add(ewalletExpiry)
	default:
		return nil
	}
	return &t
}

// LookupVoucher returns the normalised code and its fixed discount. Unknown
// codes are worth nothing.
func LookupVoucher(code string) (string, int64) {
	code = strings.ToUpper(strings.TrimSpace(code))
	return code, vouchers[code]
}

// OrderTotal never goes below zero.
func OrderTotal(subtotal, shippingFee, discount int64) int64 {
	total := subtotal + shippingFee - discount
	if total < 0 {
		return 0
	}
	return total
}
