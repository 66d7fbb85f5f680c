package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/joyeria-ecom/internal/cart"
	"github.com/MikeMC777/joyeria-ecom/internal/order"
	"github.com/MikeMC777/joyeria-ecom/internal/product"
	"github.com/MikeMC777/joyeria-ecom/internal/user"
)

func seedOrder(t *testing.T, s *Store, userID string, productID string) order.Order {
	t.Helper()
	o := order.Order{ID: uuid.NewString(), Number: "ORD-20240101-" + uuid.NewString()[:6], UserID: &userID, Status: order.StatusPending, Total: decimal.NewFromInt(10)}
	pid := productID
	items := []order.Item{{ID: uuid.NewString(), ProductID: &pid, ProductName: "Ring", Quantity: 1, Price: decimal.NewFromInt(10)}}
	require.NoError(t, s.Orders().Create(context.Background(), &o, items, nil))
	return o
}

func TestOrders_CreateRejectsDuplicateNumber(t *testing.T) {
	s := New()
	o := seedOrder(t, s, "u1", "p1")
	dup := order.Order{ID: uuid.NewString(), Number: o.Number}
	err := s.Orders().Create(context.Background(), &dup, nil, nil)
	assert.ErrorIs(t, err, order.ErrDuplicateNumber)
}

func TestOrders_UpdateStatusIsCompareAndSet(t *testing.T) {
	s := New()
	ctx := context.Background()
	o := seedOrder(t, s, "u1", "p1")

	ok, err := s.Orders().UpdateStatus(ctx, o.ID, []order.Status{order.StatusConfirmed}, order.StatusProcessing)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Orders().UpdateStatus(ctx, o.ID, []order.Status{order.StatusPending, order.StatusConfirmed}, order.StatusCancelled)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Orders().UpdateStatus(ctx, "missing", []order.Status{order.StatusPending}, order.StatusCancelled)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOrders_ListByUserPaginates(t *testing.T) {
	s := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		s.SetClock(func() time.Time { return at })
		seedOrder(t, s, "u1", "p1")
	}
	seedOrder(t, s, "u2", "p1")

	got, err := s.Orders().ListByUser(context.Background(), "u1", 2, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt))

	got, err = s.Orders().ListByUser(context.Background(), "u1", 2, 2)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestOrders_CouponLookupIgnoresCase(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.PutCoupon(order.Coupon{ID: "c1", Code: "WELCOME10"})

	c, err := s.Orders().GetByCode(ctx, "Welcome10")
	require.NoError(t, err)
	require.NoError(t, s.Orders().IncrementUsage(ctx, c.ID))
	c, err = s.Orders().GetByCode(ctx, "welcome10")
	require.NoError(t, err)
	assert.Equal(t, 1, c.UsedCount)

	_, err = s.Orders().GetByCode(ctx, "nope")
	assert.ErrorIs(t, err, order.ErrCouponNotFound)
}

func TestUsers_DeleteOrphansOrders(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := &user.User{ID: uuid.NewString(), Username: "ana", Email: "Ana@Example.com"}
	require.NoError(t, s.Users().Create(ctx, u))
	assert.ErrorIs(t, s.Users().Create(ctx, &user.User{ID: uuid.NewString(), Username: "other", Email: "ana@example.com"}), user.ErrAlreadyExist)
	require.NoError(t, s.Users().SaveProfile(ctx, &user.Profile{UserID: u.ID, Phone: "+1"}))

	s.PutProduct(product.Product{ID: "p1", Name: "Ring", Price: decimal.NewFromInt(10), Stock: 3})
	require.NoError(t, s.Carts().InsertLine(ctx, &cart.Line{ID: "l1", UserID: u.ID, ProductID: "p1", Quantity: 1}))
	o := seedOrder(t, s, u.ID, "p1")

	ok, err := s.Users().Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, _, err := s.Orders().GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UserID)
	_, err = s.Users().GetProfile(ctx, u.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)
	lines, err := s.Carts().Lines(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCatalog_ListFiltersAndSorts(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.PutCategory(product.Category{ID: "c1", Slug: "rings", Name: "Rings"})
	s.PutProduct(product.Product{ID: "p1", Name: "Gold ring", CategoryID: "c1", Price: decimal.NewFromInt(300), Featured: true})
	s.PutProduct(product.Product{ID: "p2", Name: "Silver ring", CategoryID: "c1", Price: decimal.NewFromInt(80)})
	s.PutProduct(product.Product{ID: "p3", Name: "Pearl necklace", Price: decimal.NewFromInt(150)})

	got, err := s.Catalog().List(ctx, product.Query{CategorySlug: "rings", Sort: product.SortPriceLow})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p2", got[0].ID)

	got, err = s.Catalog().List(ctx, product.Query{Q: "PEARL"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = s.Catalog().List(ctx, product.Query{FeaturedOnly: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
}

func TestCatalog_ReviewsAndWishlist(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.PutProduct(product.Product{ID: "p1", Name: "Ring", Price: decimal.NewFromInt(10)})

	r := &product.Review{ID: "r1", ProductID: "p1", UserID: "u1", Rating: 5, Approved: true}
	require.NoError(t, s.Catalog().CreateReview(ctx, r))
	assert.False(t, r.Approved)
	assert.ErrorIs(t, s.Catalog().CreateReview(ctx, &product.Review{ID: "r2", ProductID: "p1", UserID: "u1", Rating: 4}), product.ErrReviewExists)

	approved, err := s.Catalog().ListApproved(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, approved)
	_, err = s.Catalog().Approve(ctx, "r1")
	require.NoError(t, err)
	approved, err = s.Catalog().ListApproved(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, approved, 1)

	in, err := s.Catalog().Toggle(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.True(t, in)
	in, err = s.Catalog().Toggle(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.False(t, in)
	_, err = s.Catalog().Toggle(ctx, "u1", "missing")
	assert.ErrorIs(t, err, product.ErrNotFound)
}
