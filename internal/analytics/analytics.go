package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/jinzhu/gorm"

	"mesob/internal/models"
)

// ItemSales is one menu item's sold quantity within a report row.
type ItemSales struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// WaitressSales is the per-waitress slice of the sales report.
type WaitressSales struct {
	Waitress      WaitressRef `json:"waitress"`
	TotalSales    float64     `json:"totalSales"`
	ItemizedSales []ItemSales `json:"itemizedSales"`
}

type WaitressRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Service runs one-shot reporting queries over completed orders. It
// reads live state but never mutates it.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// periodStart maps a report period to its inclusive start time.
func periodStart(period string, now time.Time) (time.Time, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case "", "today":
		return start, nil
	case "week":
		return start.AddDate(0, 0, -7), nil
	case "month":
		return start.AddDate(0, -1, 0), nil
	}
	return time.Time{}, fmt.Errorf("unknown report period %q", period)
}

// SalesByWaitress aggregates completed orders since the period start
// into per-waitress totals and itemized quantities, sorted by total
// descending. Snapshotted item names are used, so the report stays
// correct even after menu edits.
func (s *Service) SalesByWaitress(period string) ([]WaitressSales, error) {
	start, err := periodStart(period, time.Now())
	if err != nil {
		return nil, err
	}
	completed := string(models.OrderStatusCompleted)

	totalRows, err := s.db.Raw(`
		SELECT u.id, u.name, SUM(o.total_price) AS total
		FROM orders o
		JOIN users u ON u.id = o.waitress_id
		WHERE o.overall_status = ? AND o.created_at >= ?
		GROUP BY u.id, u.name`, completed, start).Rows()
	if err != nil {
		return nil, err
	}

	byWaitress := make(map[string]*WaitressSales)
	var report []*WaitressSales
	for totalRows.Next() {
		ws := &WaitressSales{}
		if err := totalRows.Scan(&ws.Waitress.ID, &ws.Waitress.Name, &ws.TotalSales); err != nil {
			totalRows.Close()
			return nil, err
		}
		byWaitress[ws.Waitress.ID] = ws
		report = append(report, ws)
	}
	// Release the connection before the second query; the pool may
	// hold a single SQLite connection.
	totalRows.Close()

	itemRows, err := s.db.Raw(`
		SELECT o.waitress_id, oi.name_snapshot, SUM(oi.quantity) AS quantity
		FROM orders o
		JOIN ordered_items oi ON oi.order_id = o.id
		WHERE o.overall_status = ? AND o.created_at >= ?
		GROUP BY o.waitress_id, oi.name_snapshot`, completed, start).Rows()
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var waitressID string
		var item ItemSales
		if err := itemRows.Scan(&waitressID, &item.Name, &item.Quantity); err != nil {
			return nil, err
		}
		if ws, ok := byWaitress[waitressID]; ok {
			ws.ItemizedSales = append(ws.ItemizedSales, item)
		}
	}

	sort.Slice(report, func(i, j int) bool {
		return report[i].TotalSales > report[j].TotalSales
	})

	out := make([]WaitressSales, len(report))
	for i, ws := range report {
		out[i] = *ws
	}
	return out, nil
}
