package models

import (
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "counter_test.db")
	db, err := gorm.Open("sqlite3", path+"?_busy_timeout=5000")
	require.NoError(t, err)
	db.DB().SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Counter{}).Error)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNextSequenceStartsAtOne(t *testing.T) {
	db := counterTestDB(t)

	n, err := NextSequence(db, "orderNumber")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = NextSequence(db, "orderNumber")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNextSequenceNamesAreIndependent(t *testing.T) {
	db := counterTestDB(t)

	for i := 1; i <= 3; i++ {
		n, err := NextSequence(db, "orderNumber")
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	n, err := NextSequence(db, "receiptNumber")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// N concurrent callers receive N distinct values with no duplicates
// and no holes from a cold start.
func TestNextSequenceConcurrent(t *testing.T) {
	db := counterTestDB(t)

	const callers = 20
	const callsEach = 3
	results := make(chan int, callers*callsEach)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < callsEach; j++ {
				n, err := NextSequence(db, "orderNumber")
				assert.NoError(t, err)
				results <- n
			}
		}()
	}
	wg.Wait()
	close(results)

	var got []int
	for n := range results {
		got = append(got, n)
	}
	sort.Ints(got)

	require.Len(t, got, callers*callsEach)
	for i, n := range got {
		assert.Equal(t, i+1, n, "sequence must be gapless and duplicate-free from a cold start")
	}
}
