package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shieldtip/shieldtip-backend/internal/model"
)

func seedConfirmed(ms *memStore, creatorID uuid.UUID, amount, reference string, age time.Duration) {
	var ref *decimal.Decimal
	if reference != "" {
		v := decimal.RequireFromString(reference)
		ref = &v
	}

	id := uuid.New()
	ms.records[id] = &model.TipTransaction{
		ID:               id,
		CreatorID:        &creatorID,
		RecipientAddress: "zs1creatorshieldedaddr",
		AmountAsset:      decimal.RequireFromString(amount),
		AmountReference:  ref,
		Status:           model.TransactionStatusConfirmed,
		SourcePlatform:   model.SourcePlatformWeb,
		CreatedAt:        time.Now().Add(-age),
	}
}

func TestGetCreatorStats(t *testing.T) {
	t.Run("no confirmed tips yields zero values", func(t *testing.T) {
		svc := newTestLedger(newMemStore())

		stats, err := svc.GetCreatorStats(uuid.New())
		require.NoError(t, err)
		require.NotNil(t, stats)

		assert.Equal(t, int64(0), stats.TotalTips)
		assert.True(t, stats.TotalAssetVolume.IsZero())
		assert.True(t, stats.TotalReferenceVolume.IsZero())
		assert.True(t, stats.AverageTipAsset.IsZero())
		assert.True(t, stats.LargestTipAsset.IsZero())
	})

	t.Run("pending and failed records are excluded", func(t *testing.T) {
		ms := newMemStore()
		svc := newTestLedger(ms)
		creator := uuid.New()

		seedConfirmed(ms, creator, "1", "30", time.Hour)
		for _, status := range []model.TransactionStatus{model.TransactionStatusPending, model.TransactionStatusFailed} {
			id := uuid.New()
			ms.records[id] = &model.TipTransaction{
				ID:               id,
				CreatorID:        &creator,
				RecipientAddress: "zs1creatorshieldedaddr",
				AmountAsset:      decimal.NewFromInt(100),
				Status:           status,
				SourcePlatform:   model.SourcePlatformWeb,
				CreatedAt:        time.Now(),
			}
		}

		stats, err := svc.GetCreatorStats(creator)
		require.NoError(t, err)

		assert.Equal(t, int64(1), stats.TotalTips)
		assert.Equal(t, "1", stats.TotalAssetVolume.String())
	})

	t.Run("other creators do not leak in", func(t *testing.T) {
		ms := newMemStore()
		svc := newTestLedger(ms)
		creator := uuid.New()

		seedConfirmed(ms, creator, "2", "60", time.Hour)
		seedConfirmed(ms, uuid.New(), "9", "270", time.Hour)

		stats, err := svc.GetCreatorStats(creator)
		require.NoError(t, err)

		assert.Equal(t, int64(1), stats.TotalTips)
		assert.Equal(t, "2", stats.TotalAssetVolume.String())
	})

	t.Run("aggregates volumes average and largest", func(t *testing.T) {
		ms := newMemStore()
		svc := newTestLedger(ms)
		creator := uuid.New()

		seedConfirmed(ms, creator, "0.1", "3.05", time.Hour)
		seedConfirmed(ms, creator, "0.25", "7.63", 2*time.Hour)
		seedConfirmed(ms, creator, "1.5", "", 3*time.Hour)

		stats, err := svc.GetCreatorStats(creator)
		require.NoError(t, err)

		assert.Equal(t, int64(3), stats.TotalTips)
		assert.True(t, stats.TotalAssetVolume.Equal(decimal.RequireFromString("1.85")),
			"total asset volume = %s", stats.TotalAssetVolume)
		assert.True(t, stats.TotalReferenceVolume.Equal(decimal.RequireFromString("10.68")),
			"total reference volume = %s", stats.TotalReferenceVolume)
		assert.True(t, stats.LargestTipAsset.Equal(decimal.RequireFromString("1.5")),
			"largest = %s", stats.LargestTipAsset)
		// 1.85 / 3 rounded to asset resolution.
		assert.True(t, stats.AverageTipAsset.Equal(decimal.RequireFromString("0.61666667")),
			"average = %s", stats.AverageTipAsset)
	})

	t.Run("rounds once at the end of aggregation", func(t *testing.T) {
		ms := newMemStore()
		svc := newTestLedger(ms)
		creator := uuid.New()

		// Each amount carries more precision than the asset column keeps.
		// Summing first then rounding gives 0.00000037; rounding per row
		// would give 0.00000038.
		seedConfirmed(ms, creator, "0.000000125", "", time.Hour)
		seedConfirmed(ms, creator, "0.000000125", "", time.Hour)
		seedConfirmed(ms, creator, "0.000000115", "", time.Hour)

		stats, err := svc.GetCreatorStats(creator)
		require.NoError(t, err)

		assert.True(t, stats.TotalAssetVolume.Equal(decimal.RequireFromString("0.00000037")),
			"total = %s", stats.TotalAssetVolume)
	})

	t.Run("rolling windows count by creation time", func(t *testing.T) {
		ms := newMemStore()
		svc := newTestLedger(ms)
		creator := uuid.New()

		seedConfirmed(ms, creator, "1", "", time.Hour)       // inside every window
		seedConfirmed(ms, creator, "1", "", 3*24*time.Hour)  // 7d and 30d
		seedConfirmed(ms, creator, "1", "", 20*24*time.Hour) // 30d only
		seedConfirmed(ms, creator, "1", "", 45*24*time.Hour) // outside all windows

		stats, err := svc.GetCreatorStats(creator)
		require.NoError(t, err)

		assert.Equal(t, int64(4), stats.TotalTips)
		assert.Equal(t, int64(1), stats.TipsLast24Hours)
		assert.Equal(t, int64(2), stats.TipsLast7Days)
		assert.Equal(t, int64(3), stats.TipsLast30Days)
	})
}
