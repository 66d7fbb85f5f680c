package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MikeMC777/joyeria-ecom/internal/auth"
	"github.com/MikeMC777/joyeria-ecom/internal/cart"
	"github.com/MikeMC777/joyeria-ecom/internal/config"
	"github.com/MikeMC777/joyeria-ecom/internal/contact"
	"github.com/MikeMC777/joyeria-ecom/internal/db"
	"github.com/MikeMC777/joyeria-ecom/internal/logger"
	"github.com/MikeMC777/joyeria-ecom/internal/memstore"
	"github.com/MikeMC777/joyeria-ecom/internal/notify"
	"github.com/MikeMC777/joyeria-ecom/internal/order"
	"github.com/MikeMC777/joyeria-ecom/internal/payment"
	"github.com/MikeMC777/joyeria-ecom/internal/product"
	"github.com/MikeMC777/joyeria-ecom/internal/user"
)

const catalogCacheTTL = 5 * time.Minute

// app holds everything the HTTP handlers depend on.
type app struct {
	cfg      config.Config
	issuer   *auth.Issuer
	products product.Repository
	reviews  product.ReviewRepository
	wishlist product.WishlistRepository
	carts    *cart.Service
	orders   *order.Workflow
	users    *user.Service
	contact  *contact.Service
	notifier *notify.Dispatcher
}

type stores struct {
	products product.Repository
	reviews  product.ReviewRepository
	wishlist product.WishlistRepository
	carts    cart.Repository
	orders   order.Repository
	coupons  order.CouponRepository
	users    user.Repository
	contacts contact.Repository
}

// openStores picks the storage driver. The returned func releases it.
func openStores(ctx context.Context, cfg config.Config) (stores, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		st := memstore.New()
		demo := db.DemoData(time.Now().UTC())
		for _, c := range demo.Categories {
			st.PutCategory(c)
		}
		for _, p := range demo.Products {
			st.PutProduct(p)
		}
		for _, c := range demo.Coupons {
			st.PutCoupon(c)
		}
		return stores{
			products: st.Catalog(),
			reviews:  st.Catalog(),
			wishlist: st.Catalog(),
			carts:    st.Carts(),
			orders:   st.Orders(),
			coupons:  st.Orders(),
			users:    st.Users(),
			contacts: st.Contacts(),
		}, func() {}, nil
	case "postgres":
		pool, err := db.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return stores{}, nil, err
		}
		return stores{
			products: product.NewPGRepo(pool),
			reviews:  product.NewPGReviewRepo(pool),
			wishlist: product.NewPGWishlistRepo(pool),
			carts:    cart.NewPGRepo(pool),
			orders:   order.NewPGRepo(pool),
			coupons:  order.NewPGCouponRepo(pool),
			users:    user.NewPGRepo(pool),
			contacts: contact.NewPGRepo(pool),
		}, pool.Close, nil
	default:
		return stores{}, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func newNotifier(cfg config.Config) (*notify.Dispatcher, func()) {
	channels := []notify.Channel{
		notify.NewMailer(notify.SMTP{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.DefaultFromEmail,
		}),
		notify.NewSMSSender(notify.Twilio{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			From:       cfg.TwilioFromNumber,
		}),
	}
	closer := func() {}
	if brokers := notify.ParseBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		pub := notify.NewEventPublisher(brokers, cfg.KafkaTopic)
		channels = append(channels, pub)
		closer = func() { _ = pub.Close() }
	}
	return notify.NewDispatcher(channels...), closer
}

func newGateway(cfg config.Config) payment.Gateway {
	if cfg.StripeSecretKey == "" {
		return payment.Unconfigured{}
	}
	return payment.NewStripeGateway(payment.StripeConfig{
		SecretKey: cfg.StripeSecretKey,
		Currency:  cfg.PaymentCurrency,
		Timeout:   cfg.PaymentTimeout,
	})
}

// newApp wires the services on top of the stores.
func newApp(cfg config.Config, s stores, rdb *redis.Client, n *notify.Dispatcher, gw payment.Gateway) *app {
	catalog := product.NewCachedRepo(s.products, rdb, catalogCacheTTL)
	users := user.NewService(s.users)
	users.AfterCreate(users.CreateProfile)

	return &app{
		cfg:      cfg,
		issuer:   auth.NewIssuer(cfg.JWTSecret, 24*time.Hour),
		products: catalog,
		reviews:  s.reviews,
		wishlist: s.wishlist,
		carts:    cart.NewService(s.carts, catalog),
		orders: order.NewWorkflow(order.Deps{
			Orders:   s.orders,
			Carts:    s.carts,
			Coupons:  s.coupons,
			Gateway:  gw,
			Notifier: n,
			Catalog:  catalog,
			Phones:   users,
		}, order.Settings{
			LowStockThreshold: cfg.LowStockThreshold,
			AdminEmail:        cfg.AdminEmail,
			PublicBaseURL:     cfg.PublicBaseURL,
		}),
		users:    users,
		contact:  contact.NewService(s.contacts, n, cfg.AdminEmail),
		notifier: n,
	}
}

func newRedis(ctx context.Context, addr string) *redis.Client {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.FromCtx(ctx).Warn("redis unavailable, catalog cache disabled", "addr", addr, "error", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}
