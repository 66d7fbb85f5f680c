package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/joyeria-ecom/internal/httpx"
	"github.com/MikeMC777/joyeria-ecom/internal/logger"
	"github.com/MikeMC777/joyeria-ecom/internal/notify"
	"github.com/MikeMC777/joyeria-ecom/internal/product"
)

const homeListingSize = 8

// productDetail is the product page payload.
type productDetail struct {
	product.Product
	DiscountPercentage int              `json:"discount_percentage"`
	AverageRating      float64          `json:"average_rating"`
	Reviews            []product.Review `json:"reviews"`
}

// featuredResponse feeds the home page.
type featuredResponse struct {
	Featured []product.Product `json:"featured"`
	New      []product.Product `json:"new"`
}

type reviewsResponse struct {
	AverageRating float64          `json:"average_rating"`
	Reviews       []product.Review `json:"reviews"`
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

func queryBool(c *gin.Context, key string) bool {
	b, _ := strconv.ParseBool(c.Query(key))
	return b
}

func parseSort(s string) product.Sort {
	switch product.Sort(s) {
	case product.SortPriceLow, product.SortPriceHigh, product.SortNewest:
		return product.Sort(s)
	}
	return ""
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// listCategoriesHandler godoc
// @Summary      List categories
// @Tags         catalog
// @Produce      json
// @Success      200  {array}  product.Category
// @Router       /categories [get]
func listCategoriesHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := repo.Categories(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, nonNil(cats))
	}
}

// listProductsHandler godoc
// @Summary      List products
// @Tags         catalog
// @Produce      json
// @Param        category  query     string  false  "Category slug"
// @Param        featured  query     bool    false  "Featured only"
// @Param        new       query     bool    false  "New arrivals only"
// @Param        sort      query     string  false  "newest, price_low or price_high"
// @Param        limit     query     int     false  "Page size (max 100)"
// @Param        offset    query     int     false  "Offset"
// @Success      200       {object}  product.ListResponse
// @Router       /products [get]
func listProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pageParams(c)
		q := product.Query{
			CategorySlug: c.Query("category"),
			FeaturedOnly: queryBool(c, "featured"),
			NewOnly:      queryBool(c, "new"),
			Sort:         parseSort(c.Query("sort")),
			Limit:        limit,
			Offset:       offset,
		}.Normalize()
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, product.ListResponse{
			Category: q.CategorySlug,
			Limit:    q.Limit,
			Offset:   q.Offset,
			Items:    nonNil(items),
		})
	}
}

// searchProductsHandler godoc
// @Summary      Search products by name or description
// @Tags         catalog
// @Produce      json
// @Param        q       query     string  true   "Search text"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Param        offset  query     int     false  "Offset"
// @Success      200     {object}  product.ListResponse
// @Failure      400     {object}  product.HTTPError
// @Router       /products/search [get]
func searchProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		text := strings.TrimSpace(c.Query("q"))
		if text == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
			return
		}
		limit, offset := pageParams(c)
		q := product.Query{Q: text, Limit: limit, Offset: offset}.Normalize()
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, product.ListResponse{Q: q.Q, Limit: q.Limit, Offset: q.Offset, Items: nonNil(items)})
	}
}

// featuredProductsHandler godoc
// @Summary      Featured products and new arrivals
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  featuredResponse
// @Router       /products/featured [get]
func featuredProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		featured, err := repo.List(ctx, product.Query{FeaturedOnly: true, Limit: homeListingSize})
		if err != nil {
			writeError(c, err)
			return
		}
		fresh, err := repo.List(ctx, product.Query{NewOnly: true, Limit: homeListingSize})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, featuredResponse{Featured: nonNil(featured), New: nonNil(fresh)})
	}
}

// getProductHandler godoc
// @Summary      Product detail with approved reviews
// @Tags         catalog
// @Produce      json
// @Param        slug  path      string  true  "Product slug"
// @Success      200   {object}  productDetail
// @Failure      404   {object}  product.HTTPError
// @Router       /products/{slug} [get]
func getProductHandler(repo product.Repository, reviews product.ReviewRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		p, err := repo.GetBySlug(ctx, c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}
		rs, err := reviews.ListApproved(ctx, p.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, productDetail{
			Product:            *p,
			DiscountPercentage: p.DiscountPercentage(),
			AverageRating:      product.AverageRating(rs),
			Reviews:            nonNil(rs),
		})
	}
}

// listReviewsHandler godoc
// @Summary      Approved reviews of a product
// @Tags         reviews
// @Produce      json
// @Param        slug  path      string  true  "Product slug"
// @Success      200   {object}  reviewsResponse
// @Failure      404   {object}  product.HTTPError
// @Router       /products/{slug}/reviews [get]
func listReviewsHandler(repo product.Repository, reviews product.ReviewRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		p, err := repo.GetBySlug(ctx, c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}
		rs, err := reviews.ListApproved(ctx, p.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, reviewsResponse{AverageRating: product.AverageRating(rs), Reviews: nonNil(rs)})
	}
}

// createReviewHandler godoc
// @Summary      Review a product
// @Description  One review per user and product. Reviews stay hidden until staff approve them.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        slug  path      string                       true  "Product slug"
// @Param        body  body      product.CreateReviewRequest  true  "Review"
// @Success      201   {object}  product.Review
// @Failure      400   {object}  product.HTTPError
// @Failure      409   {object}  product.HTTPError
// @Router       /products/{slug}/reviews [post]
func createReviewHandler(repo product.Repository, reviews product.ReviewRepository, n *notify.Dispatcher, adminEmail string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var req product.CreateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if req.Rating < 1 || req.Rating > 5 {
			writeError(c, product.ErrInvalidRating)
			return
		}
		p, err := repo.GetBySlug(ctx, c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}
		rv := &product.Review{
			ID:        uuid.NewString(),
			ProductID: p.ID,
			UserID:    httpx.Actor(c).UserID,
			Rating:    req.Rating,
			Comment:   strings.TrimSpace(req.Comment),
		}
		if err := reviews.CreateReview(ctx, rv); err != nil {
			writeError(c, err)
			return
		}
		logger.FromCtx(ctx).Info("review submitted", "review_id", rv.ID, "product", p.Slug)
		if adminEmail != "" {
			n.Dispatch(ctx, notify.Message{
				Kind:    notify.KindReviewModeration,
				To:      adminEmail,
				Subject: fmt.Sprintf("New review for %s", p.Name),
				Body:    fmt.Sprintf("Rating: %d/5\n\n%s\n\nApprove with PUT /admin/reviews/%s/approve\n", rv.Rating, rv.Comment, rv.ID),
			})
		}
		c.JSON(http.StatusCreated, rv)
	}
}

// approveReviewHandler godoc
// @Summary      Publish a review
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Review ID"
// @Success      200  {object}  product.Review
// @Failure      404  {object}  product.HTTPError
// @Router       /admin/reviews/{id}/approve [put]
func approveReviewHandler(reviews product.ReviewRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := uuid.Parse(id); err != nil {
			writeError(c, product.ErrNotFound)
			return
		}
		rv, err := reviews.Approve(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rv)
	}
}

// listWishlistHandler godoc
// @Summary      Wishlist of the current user
// @Tags         wishlist
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  product.Product
// @Router       /wishlist [get]
func listWishlistHandler(wl product.WishlistRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := wl.Wishlist(c.Request.Context(), httpx.Actor(c).UserID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, nonNil(items))
	}
}

// toggleWishlistHandler godoc
// @Summary      Add or remove a product from the wishlist
// @Tags         wishlist
// @Produce      json
// @Security     BearerAuth
// @Param        product_id  path      string  true  "Product ID"
// @Success      200         {object}  map[string]bool
// @Failure      404         {object}  product.HTTPError
// @Router       /wishlist/{product_id} [post]
func toggleWishlistHandler(wl product.WishlistRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		pid := c.Param("product_id")
		if _, err := uuid.Parse(pid); err != nil {
			writeError(c, product.ErrNotFound)
			return
		}
		in, err := wl.Toggle(c.Request.Context(), httpx.Actor(c).UserID, pid)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"in_wishlist": in})
	}
}

// removeWishlistHandler godoc
// @Summary      Remove a product from the wishlist
// @Tags         wishlist
// @Security     BearerAuth
// @Param        product_id  path  string  true  "Product ID"
// @Success      204
// @Router       /wishlist/{product_id} [delete]
func removeWishlistHandler(wl product.WishlistRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := httpx.Actor(c).UserID
		pid := c.Param("product_id")
		items, err := wl.Wishlist(ctx, userID)
		if err != nil {
			writeError(c, err)
			return
		}
		for _, p := range items {
			if p.ID != pid {
				continue
			}
			if _, err := wl.Toggle(ctx, userID, pid); err != nil {
				writeError(c, err)
				return
			}
			break
		}
		c.Status(http.StatusNoContent)
	}
}
