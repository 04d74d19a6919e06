package server

import (
	"context"
	"net/http"

	"zawawiya-store/internal/handler"
	"zawawiya-store/internal/metrics"
	"zawawiya-store/internal/middleware"
	"zawawiya-store/internal/token"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Catalog *handler.CatalogHandler
	Cart    *handler.CartHandler
	Address *handler.AddressHandler
	Order   *handler.OrderHandler
	Payment *handler.PaymentHandler
	Return  *handler.ReturnHandler
	Review  *handler.ReviewHandler
	Region  *handler.RegionHandler
	Admin   *handler.AdminHandler
}

type Options struct {
	// requests per second per client IP on /api/auth; zero disables the limit
	AuthRateLimit float64
}

type Server struct {
	echo     *echo.Echo
	handlers Handlers
	issuer   *token.Issuer
	opts     Options
}

func NewServer(handlers Handlers, issuer *token.Issuer, log *zap.Logger, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newValidator()
	e.JSONSerializer = strictJSONSerializer{}
	e.HTTPErrorHandler = errorHandler(log)

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(metrics.Middleware())

	s := &Server{
		echo:     e,
		handlers: handlers,
		issuer:   issuer,
		opts:     opts,
	}

	s.setupRoutes()
	return s
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) setupRoutes() {
	h := s.handlers

	s.echo.GET("/metrics", metrics.Handler())

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- public --------
	auth := api.Group("/auth")
	if s.opts.AuthRateLimit > 0 {
		auth.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(rate.Limit(s.opts.AuthRateLimit))))
	}
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/forgot-password", h.Auth.ForgotPassword)
	auth.POST("/verify-code", h.Auth.VerifyCode)
	auth.POST("/reset-password", h.Auth.ResetPassword)

	api.GET("/products", h.Catalog.ListProducts)
	api.GET("/products/:id", h.Catalog.GetProduct)
	api.GET("/products/:id/reviews", h.Review.ListForProduct)
	api.GET("/categories", h.Catalog.ListCategories)
	api.GET("/shipping-services", h.Catalog.ListShippingServices)

	regions := api.Group("/regions")
	regions.GET("/provinces", h.Region.Provinces)
	regions.GET("/regencies/:code", h.Region.Regencies)
	regions.GET("/districts/:code", h.Region.Districts)
	regions.GET("/villages/:code", h.Region.Villages)

	// -------- gateway callbacks --------
	api.POST("/payments/notification", h.Payment.Notification)

	// -------- buyer --------
	user := api.Group("", middleware.Auth(s.issuer))

	user.GET("/cart", h.Cart.Get)
	user.POST("/cart/items", h.Cart.AddItem)
	user.PATCH("/cart/items/:id", h.Cart.UpdateItem)
	user.DELETE("/cart/items/:id", h.Cart.RemoveItem)

	user.GET("/addresses", h.Address.List)
	user.POST("/addresses", h.Address.Create)
	user.PATCH("/addresses/:id", h.Address.Update)
	user.DELETE("/addresses/:id", h.Address.Delete)

	user.GET("/checkout", h.Order.CheckoutSummary)
	user.POST("/checkout", h.Order.Checkout)

	user.GET("/orders", h.Order.List)
	user.GET("/orders/:id", h.Order.Get)
	user.PATCH("/orders/:id/cancel", h.Order.Cancel)
	user.PATCH("/orders/:id/receive", h.Order.ConfirmReceived)
	user.POST("/orders/:id/pay", h.Order.Pay)

	user.POST("/returns", h.Return.Create)
	user.GET("/returns", h.Return.List)
	user.GET("/returns/:id", h.Return.Get)
	user.PATCH("/returns/:id/return-shipment", h.Return.SubmitShipment)
	user.DELETE("/returns/:id", h.Return.Delete)

	user.POST("/reviews/:id", h.Review.Create)
	user.GET("/reviews/mine", h.Review.ListMine)
	user.DELETE("/reviews/:id", h.Review.Delete)

	// -------- admin --------
	admin := api.Group("/admin", middleware.Auth(s.issuer), middleware.AdminOnly())

	admin.GET("/orders", h.Admin.ListOrders)
	admin.GET("/orders/:id", h.Admin.GetOrder)
	admin.PATCH("/orders/:id/status", h.Admin.UpdateOrderStatus)

	admin.GET("/returns", h.Admin.ListReturns)
	admin.GET("/returns/:id", h.Admin.GetReturn)
	admin.PATCH("/returns/:id", h.Admin.UpdateReturn)
	admin.DELETE("/returns/:id", h.Admin.DeleteReturn)

	admin.POST("/products", h.Catalog.CreateProduct)
	admin.PUT("/products/:id", h.Catalog.UpdateProduct)
	admin.PUT("/products/:id/variants", h.Catalog.ReplaceVariants)

	admin.GET("/reports", h.Admin.SalesReport)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
