package repository

import (
	"CircuitEye/internal/model"
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSummaryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.DailySummary{}))
	return db
}

func TestSaveOrUpdateSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("same user and date stays one row with the latest value", func(t *testing.T) {
		db := newSummaryTestDB(t)
		repo := NewDailySummaryRepo(db)

		require.NoError(t, repo.SaveOrUpdateSummary(ctx, &model.DailySummary{
			UserID: 1, Date: "2026-08-28", DefectivePercentage: 12.5,
		}))
		require.NoError(t, repo.SaveOrUpdateSummary(ctx, &model.DailySummary{
			UserID: 1, Date: "2026-08-28", DefectivePercentage: 33.33,
		}))

		var count int64
		require.NoError(t, db.Model(&model.DailySummary{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)

		summaries, err := repo.GetSummariesSince(ctx, 1, "2026-08-01")
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, 33.33, summaries[0].DefectivePercentage)
	})

	t.Run("different user or date gets its own row", func(t *testing.T) {
		db := newSummaryTestDB(t)
		repo := NewDailySummaryRepo(db)

		require.NoError(t, repo.SaveOrUpdateSummary(ctx, &model.DailySummary{
			UserID: 1, Date: "2026-08-27", DefectivePercentage: 10,
		}))
		require.NoError(t, repo.SaveOrUpdateSummary(ctx, &model.DailySummary{
			UserID: 1, Date: "2026-08-28", DefectivePercentage: 20,
		}))
		require.NoError(t, repo.SaveOrUpdateSummary(ctx, &model.DailySummary{
			UserID: 2, Date: "2026-08-28", DefectivePercentage: 30,
		}))

		var count int64
		require.NoError(t, db.Model(&model.DailySummary{}).Count(&count).Error)
		assert.Equal(t, int64(3), count)
	})

	t.Run("summaries since return in date ascending order", func(t *testing.T) {
		db := newSummaryTestDB(t)
		repo := NewDailySummaryRepo(db)

		for _, date := range []string{"2026-08-28", "2026-08-26", "2026-08-27"} {
			require.NoError(t, repo.SaveOrUpdateSummary(ctx, &model.DailySummary{
				UserID: 1, Date: date, DefectivePercentage: 1,
			}))
		}

		summaries, err := repo.GetSummariesSince(ctx, 1, "2026-08-26")
		require.NoError(t, err)
		require.Len(t, summaries, 3)
		assert.Equal(t, "2026-08-26", summaries[0].Date)
		assert.Equal(t, "2026-08-28", summaries[2].Date)
	})
}
