package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	_ "github.com/MikeMC777/joyeria-ecom/docs"
	"github.com/MikeMC777/joyeria-ecom/internal/chat"
	"github.com/MikeMC777/joyeria-ecom/internal/config"
	"github.com/MikeMC777/joyeria-ecom/internal/httpx"
	"github.com/MikeMC777/joyeria-ecom/internal/logger"
	"github.com/MikeMC777/joyeria-ecom/internal/metrics"
)

// storefront serve: HTTP API plus the gRPC health endpoint.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), config.Load())
	},
}

func serve(ctx context.Context, cfg config.Config) error {
	log := logger.Init(cfg.AppEnv)
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	s, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	rdb := newRedis(ctx, cfg.RedisAddr)
	if rdb != nil {
		defer rdb.Close()
	}
	n, closeNotifier := newNotifier(cfg)
	defer closeNotifier()

	a := newApp(cfg, s, rdb, n, newGateway(cfg))
	if cfg.StripeWebhookSecret == "" {
		log.Warn("STRIPE_WEBHOOK_SECRET is empty, every webhook will be rejected")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	hs := health.NewServer()
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	errs := make(chan error, 2)
	go func() {
		log.Info("grpc health listening", "addr", cfg.GRPCAddr)
		errs <- gs.Serve(lis)
	}()
	go func() {
		log.Info("storefront listening", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	select {
	case <-ctx.Done():
	case err = <-errs:
		log.Error("server stopped", "error", err)
	}

	hs.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		log.Error("http shutdown", "error", serr)
	}
	gs.GracefulStop()
	log.Info("storefront stopped")
	return err
}

func newRouter(a *app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(), metrics.Middleware(), httpx.Auth(a.issuer))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/auth/register", registerHandler(a.users, a.issuer))
	r.POST("/auth/login", loginHandler(a.users, a.issuer))

	r.GET("/categories", listCategoriesHandler(a.products))
	r.GET("/products", listProductsHandler(a.products))
	r.GET("/products/search", searchProductsHandler(a.products))
	r.GET("/products/featured", featuredProductsHandler(a.products))
	r.GET("/products/:slug", getProductHandler(a.products, a.reviews))
	r.GET("/products/:slug/reviews", listReviewsHandler(a.products, a.reviews))
	r.POST("/products/:slug/reviews", httpx.RequireUser(), createReviewHandler(a.products, a.reviews, a.notifier, a.cfg.AdminEmail))

	authed := r.Group("/", httpx.RequireUser())
	authed.GET("/wishlist", listWishlistHandler(a.wishlist))
	authed.POST("/wishlist/:product_id", toggleWishlistHandler(a.wishlist))
	authed.DELETE("/wishlist/:product_id", removeWishlistHandler(a.wishlist))

	authed.GET("/cart", getCartHandler(a.carts, a.cfg.CartTaxRate))
	authed.POST("/cart/items", addCartItemHandler(a.carts))
	authed.PUT("/cart/items/:id", updateCartItemHandler(a.carts))
	authed.DELETE("/cart/items/:id", removeCartItemHandler(a.carts))

	authed.GET("/checkout/preview", checkoutPreviewHandler(a.carts, a.cfg.CheckoutTaxRate))
	authed.POST("/checkout", checkoutHandler(a.orders))

	authed.GET("/orders", listOrdersHandler(a.orders))
	authed.GET("/orders/:id", getOrderHandler(a.orders))
	authed.POST("/orders/:id/pay", payOrderHandler(a.orders))
	authed.POST("/orders/:id/cancel", cancelOrderHandler(a.orders))

	authed.GET("/account/profile", getProfileHandler(a.users))
	authed.PUT("/account/profile", updateProfileHandler(a.users))
	authed.DELETE("/account", deleteAccountHandler(a.users))

	r.POST("/payments/webhook", webhookHandler(a.orders, a.cfg.StripeWebhookSecret))
	r.POST("/contact", contactHandler(a.contact, a.users))
	r.POST("/chat", chatHandler())
	r.GET("/chat/ws", gin.WrapF(chat.ServeWS))

	admin := r.Group("/admin", httpx.RequireStaff())
	admin.PUT("/orders/:id/status", updateOrderStatusHandler(a.orders))
	admin.GET("/analytics", analyticsHandler(a.orders))
	admin.PUT("/reviews/:id/approve", approveReviewHandler(a.reviews))

	return r
}
