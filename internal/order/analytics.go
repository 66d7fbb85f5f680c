package order

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/joyeria-ecom/internal/auth"
)

const dashboardDays = 30

type DailySales struct {
	Day    string          `json:"day"` // YYYY-MM-DD, UTC
	Total  decimal.Decimal `json:"total"`
	Orders int             `json:"orders"`
}

type TopProduct struct {
	ProductID string          `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Dashboard summarizes the last 30 days, today included.
// swagger:model Dashboard
type Dashboard struct {
	Since       time.Time       `json:"since"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	OrderCount  int             `json:"orders_count"`
	Daily       []DailySales    `json:"daily"`
	TopProducts []TopProduct    `json:"top_products"`
}

func (w *Workflow) Dashboard(ctx context.Context, actor auth.Actor) (*Dashboard, error) {
	if !actor.Staff {
		return nil, ErrForbidden
	}
	today := truncateDay(w.now())
	since := today.AddDate(0, 0, -(dashboardDays - 1))
	orders, items, err := w.Orders.ListSince(ctx, since)
	if err != nil {
		return nil, err
	}
	d := BuildDashboard(orders, items, since, dashboardDays)
	return &d, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BuildDashboard aggregates orders created on or after since into a per-day
// series of `days` entries and the five best-selling products by revenue.
func BuildDashboard(orders []Order, items []Item, since time.Time, days int) Dashboard {
	since = truncateDay(since)
	d := Dashboard{Since: since, TotalSales: decimal.Zero, Daily: make([]DailySales, days)}
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		d.Daily[i] = DailySales{Day: day, Total: decimal.Zero}
		index[day] = i
	}

	inWindow := make(map[string]bool, len(orders))
	for _, o := range orders {
		i, ok := index[o.CreatedAt.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		inWindow[o.ID] = true
		d.TotalSales = d.TotalSales.Add(o.Total)
		d.OrderCount++
		d.Daily[i].Total = d.Daily[i].Total.Add(o.Total)
		d.Daily[i].Orders++
	}

	byProduct := map[string]*TopProduct{}
	for _, it := range items {
		if !inWindow[it.OrderID] {
			continue
		}
		key := it.ProductName
		if it.ProductID != nil {
			key = *it.ProductID
		}
		tp, ok := byProduct[key]
		if !ok {
			tp = &TopProduct{Name: it.ProductName, Revenue: decimal.Zero}
			if it.ProductID != nil {
				tp.ProductID = *it.ProductID
			}
			byProduct[key] = tp
		}
		tp.Quantity += it.Quantity
		tp.Revenue = tp.Revenue.Add(it.Subtotal())
	}
	for _, tp := range byProduct {
		d.TopProducts = append(d.TopProducts, *tp)
	}
	sort.Slice(d.TopProducts, func(i, j int) bool {
		a, b := d.TopProducts[i], d.TopProducts[j]
		if !a.Revenue.Equal(b.Revenue) {
			return a.Revenue.GreaterThan(b.Revenue)
		}
		return a.Name < b.Name
	})
	if len(d.TopProducts) > 5 {
		d.TopProducts = d.TopProducts[:5]
	}
	return d
}
