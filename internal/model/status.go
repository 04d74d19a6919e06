package model

// OrderStatus is the lifecycle of an order.
//
//	AWAITING_PAYMENT -> PROCESSING -> SHIPPED -> COMPLETED
//	AWAITING_PAYMENT | PROCESSING -> CANCELLED
type OrderStatus string

const (
	OrderAwaitingPayment OrderStatus = "AWAITING_PAYMENT"
	OrderProcessing      OrderStatus = "PROCESSING"
	OrderShipped         OrderStatus = "SHIPPED"
	OrderCompleted       OrderStatus = "COMPLETED"
	OrderCancelled       OrderStatus = "CANCELLED"
)

var orderNext = map[OrderStatus]map[OrderStatus]bool{
	OrderAwaitingPayment: {OrderProcessing: true, OrderCancelled: true},
	OrderProcessing:      {OrderShipped: true, OrderCancelled: true},
	OrderShipped:         {OrderCompleted: true},
	OrderCompleted:       {},
	OrderCancelled:       {},
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(s)
	_, ok := orderNext[st]
	return st, ok
}

func (s OrderStatus) CanTransition(to OrderStatus) bool {
	return orderNext[s][to]
}

func (s OrderStatus) Terminal() bool {
	next, ok := orderNext[s]
	return ok && len(next) == 0
}

// OpenOrderStatuses are the statuses an order can still leave.
func OpenOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderAwaitingPayment, OrderProcessing, OrderShipped}
}

// PaymentStatus values follow the gateway dashboard wording.
type PaymentStatus string

const (
	PaymentWaiting   PaymentStatus = "MENUNGGU"
	PaymentPending   PaymentStatus = "PENDING" // fraud challenge on the gateway side
	PaymentSucceeded PaymentStatus = "BERHASIL"
	PaymentFailed    PaymentStatus = "GAGAL"
	PaymentExpired   PaymentStatus = "KADALUARSA"
	PaymentCancelled PaymentStatus = "DIBATALKAN"
)

var paymentNext = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentWaiting: {
		PaymentSucceeded: true,
		PaymentFailed:    true,
		PaymentExpired:   true,
		PaymentCancelled: true,
		PaymentPending:   true,
	},
	PaymentPending: {
		PaymentSucceeded: true,
		PaymentFailed:    true,
		PaymentCancelled: true,
	},
	PaymentSucceeded: {},
	PaymentFailed:    {},
	PaymentExpired:   {},
	PaymentCancelled: {},
}

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	st := PaymentStatus(s)
	_, ok := paymentNext[st]
	return st, ok
}

func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	return paymentNext[s][to]
}

func (s PaymentStatus) Terminal() bool {
	next, ok := paymentNext[s]
	return ok && len(next) == 0
}

type PaymentMethod string

const (
	PaymentMethodVA      PaymentMethod = "VA"
	PaymentMethodEWallet PaymentMethod = "EWALLET"
	PaymentMethodCOD     PaymentMethod = "COD"
	PaymentMethodOnline  PaymentMethod = "ONLINE"
)

// ReturnStatus is the lifecycle of a return request.
//
//	DIAJUKAN -> DISETUJUI | DITOLAK
//	DISETUJUI -> BARANG_DIKIRIM_BALIK | SELESAI
//	BARANG_DIKIRIM_BALIK -> SELESAI
type ReturnStatus string

const (
	ReturnFiled       ReturnStatus = "DIAJUKAN"
	ReturnApproved    ReturnStatus = "DISETUJUI"
	ReturnRejected    ReturnStatus = "DITOLAK"
	ReturnShippedBack ReturnStatus = "BARANG_DIKIRIM_BALIK"
	ReturnFinished    ReturnStatus = "SELESAI"
)

var returnNext = map[ReturnStatus]map[ReturnStatus]bool{
	ReturnFiled:       {ReturnApproved: true, ReturnRejected: true},
	ReturnApproved:    {ReturnShippedBack: true, ReturnFinished: true},
	ReturnShippedBack: {ReturnFinished: true},
	ReturnRejected:    {},
	ReturnFinished:    {},
}

func ParseReturnStatus(s string) (ReturnStatus, bool) {
	st := ReturnStatus(s)
	_, ok := returnNext[st]
	return st, ok
}

func (s ReturnStatus) CanTransition(to ReturnStatus) bool {
	return returnNext[s][to]
}

type ReturnKind string

const (
	ReturnKindRefund   ReturnKind = "REFUND"
	ReturnKindExchange ReturnKind = "EXCHANGE"
)

func ParseReturnKind(s string) (ReturnKind, bool) {
	switch k := ReturnKind(s); k {
	case ReturnKindRefund, ReturnKindExchange:
		return k, true
	}
	return "", false
}
