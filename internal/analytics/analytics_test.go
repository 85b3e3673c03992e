package analytics

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mesob/internal/database"
	"mesob/internal/models"
)

func analyticsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "analytics.db")
	db, err := gorm.Open("sqlite3", path+"?_busy_timeout=5000")
	require.NoError(t, err)
	db.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func newWaitress(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{Name: name, Username: name, Role: models.RoleWaitress}
	require.NoError(t, user.SetPIN("1234"))
	require.NoError(t, db.Create(&user).Error)
	return user
}

func newOrder(t *testing.T, db *gorm.DB, number int, waitressID string, status models.OrderStatus, total float64, items ...models.OrderedItem) models.Order {
	t.Helper()
	order := models.Order{
		OrderNumber:   number,
		WaitressID:    waitressID,
		Items:         items,
		TotalPrice:    total,
		OrderType:     models.OrderTypeServeHere,
		OverallStatus: status,
		IsPaid:        status == models.OrderStatusCompleted,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func line(name string, quantity int, station models.PreparationStation) models.OrderedItem {
	return models.OrderedItem{
		MenuItemID:   1,
		NameSnapshot: name,
		UnitPrice:    100,
		Quantity:     quantity,
		Station:      station,
	}
}

func TestSalesByWaitress(t *testing.T) {
	db := analyticsTestDB(t)
	svc := NewService(db)

	almaz := newWaitress(t, db, "Almaz")
	sara := newWaitress(t, db, "Sara")
	idle := newWaitress(t, db, "Hirut")

	newOrder(t, db, 1, almaz.ID, models.OrderStatusCompleted, 300,
		line("Doro Wat", 2, models.StationKitchen))
	newOrder(t, db, 2, almaz.ID, models.OrderStatusCompleted, 200,
		line("Doro Wat", 1, models.StationKitchen),
		line("Mango Juice", 1, models.StationJuiceBar))
	newOrder(t, db, 3, sara.ID, models.OrderStatusCompleted, 120,
		line("Mango Juice", 1, models.StationJuiceBar))

	// Open and voided orders never count as sales.
	newOrder(t, db, 4, sara.ID, models.OrderStatusInProgress, 900,
		line("Doro Wat", 3, models.StationKitchen))
	newOrder(t, db, 5, sara.ID, models.OrderStatusVoided, 500,
		line("Doro Wat", 2, models.StationKitchen))

	report, err := svc.SalesByWaitress("today")
	require.NoError(t, err)
	require.Len(t, report, 2, "waitresses without completed sales are omitted")

	assert.Equal(t, almaz.ID, report[0].Waitress.ID, "sorted by total descending")
	assert.Equal(t, "Almaz", report[0].Waitress.Name)
	assert.Equal(t, 500.0, report[0].TotalSales)
	assert.ElementsMatch(t, []ItemSales{
		{Name: "Doro Wat", Quantity: 3},
		{Name: "Mango Juice", Quantity: 1},
	}, report[0].ItemizedSales)

	assert.Equal(t, sara.ID, report[1].Waitress.ID)
	assert.Equal(t, 120.0, report[1].TotalSales)

	for _, ws := range report {
		assert.NotEqual(t, idle.ID, ws.Waitress.ID)
	}
}

func TestSalesByWaitressPeriods(t *testing.T) {
	db := analyticsTestDB(t)
	svc := NewService(db)
	almaz := newWaitress(t, db, "Almaz")

	today := newOrder(t, db, 1, almaz.ID, models.OrderStatusCompleted, 100,
		line("Doro Wat", 1, models.StationKitchen))
	_ = today

	old := newOrder(t, db, 2, almaz.ID, models.OrderStatusCompleted, 999,
		line("Doro Wat", 1, models.StationKitchen))
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", old.ID).
		Update("created_at", time.Now().AddDate(0, 0, -3)).Error)

	report, err := svc.SalesByWaitress("today")
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, 100.0, report[0].TotalSales, "a three-day-old sale is outside today")

	report, err = svc.SalesByWaitress("week")
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, 1099.0, report[0].TotalSales)

	report, err = svc.SalesByWaitress("")
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, 100.0, report[0].TotalSales, "empty period means today")

	_, err = svc.SalesByWaitress("fortnight")
	assert.Error(t, err)
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2026, time.March, 15, 13, 45, 0, 0, time.UTC)
	midnight := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	start, err := periodStart("today", now)
	require.NoError(t, err)
	assert.Equal(t, midnight, start)

	start, err = periodStart("week", now)
	require.NoError(t, err)
	assert.Equal(t, midnight.AddDate(0, 0, -7), start)

	start, err = periodStart("month", now)
	require.NoError(t, err)
	assert.Equal(t, midnight.AddDate(0, -1, 0), start)

	_, err = periodStart("year", now)
	assert.Error(t, err)
}
