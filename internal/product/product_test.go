package product

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountPercentage(t *testing.T) {
	orig := decimal.RequireFromString("1250")
	p := Product{Price: decimal.RequireFromString("950"), OriginalPrice: &orig}
	assert.Equal(t, 24, p.DiscountPercentage())

	p.OriginalPrice = nil
	assert.Equal(t, 0, p.DiscountPercentage())
}

func TestValid(t *testing.T) {
	p := Product{Name: "Ring", Price: decimal.NewFromInt(10), Stock: 0}
	assert.True(t, p.Valid())
	p.Price = decimal.Zero
	assert.False(t, p.Valid())
	p.Price, p.Stock = decimal.NewFromInt(10), -1
	assert.False(t, p.Valid())
}

func TestQueryNormalize(t *testing.T) {
	q := Query{Q: "  ring ", Limit: 500, Offset: -3}.Normalize()
	assert.Equal(t, "ring", q.Q)
	assert.Equal(t, 20, q.Limit)
	assert.Equal(t, 0, q.Offset)

	q = Query{Limit: 50}.Normalize()
	assert.Equal(t, 50, q.Limit)
}

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 0.0, AverageRating(nil))
	assert.Equal(t, 4.5, AverageRating([]Review{{Rating: 4}, {Rating: 5}}))
}

func TestCacheable(t *testing.T) {
	assert.True(t, cacheable(Query{FeaturedOnly: true}))
	assert.True(t, cacheable(Query{NewOnly: true}))
	assert.False(t, cacheable(Query{}))
	assert.False(t, cacheable(Query{FeaturedOnly: true, Q: "ring"}))
	assert.False(t, cacheable(Query{NewOnly: true, CategorySlug: "rings"}))
	assert.False(t, cacheable(Query{FeaturedOnly: true, Sort: SortPriceLow}))

	assert.NotEqual(t,
		cacheKey(Query{FeaturedOnly: true, Limit: 8}),
		cacheKey(Query{NewOnly: true, Limit: 8}))
}

type countingRepo struct {
	Repository
	calls int
}

func (r *countingRepo) List(context.Context, Query) ([]Product, error) {
	r.calls++
	return []Product{{ID: "p1"}}, nil
}

func TestCachedRepo_NilClientPassesThrough(t *testing.T) {
	inner := &countingRepo{}
	c := NewCachedRepo(inner, nil, time.Minute)

	for i := 0; i < 2; i++ {
		out, err := c.List(context.Background(), Query{FeaturedOnly: true})
		require.NoError(t, err)
		assert.Len(t, out, 1)
	}
	assert.Equal(t, 2, inner.calls)
	assert.NoError(t, c.Invalidate(context.Background()))
}
