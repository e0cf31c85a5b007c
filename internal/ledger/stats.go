package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shieldtip/shieldtip-backend/internal/consts"
	"github.com/shieldtip/shieldtip-backend/internal/model"
)

// GetCreatorStats recomputes a creator's rollups by rescanning confirmed
// records. There is no incremental counter to drift from the ledger; the
// read pays for that. Rounding is applied once at the end of aggregation,
// never per row.
func (l *Ledger) GetCreatorStats(creatorID uuid.UUID) (*CreatorStats, error) {
	var records []*model.TipTransaction
	err := l.withRetry("creator stats scan", func() error {
		var listErr error
		records, listErr = l.store.TipTransaction.ListConfirmedByCreator(l.db, creatorID)
		return listErr
	})
	if err != nil {
		return nil, err
	}

	stats := &CreatorStats{}
	if len(records) == 0 {
		return stats, nil
	}

	now := time.Now()
	assetTotal := decimal.Zero
	referenceTotal := decimal.Zero
	largest := decimal.Zero

	for _, record := range records {
		stats.TotalTips++
		assetTotal = assetTotal.Add(record.AmountAsset)
		if record.AmountReference != nil {
			referenceTotal = referenceTotal.Add(*record.AmountReference)
		}
		if record.AmountAsset.GreaterThan(largest) {
			largest = record.AmountAsset
		}

		age := now.Sub(record.CreatedAt)
		if age <= 24*time.Hour {
			stats.TipsLast24Hours++
		}
		if age <= 7*24*time.Hour {
			stats.TipsLast7Days++
		}
		if age <= 30*24*time.Hour {
			stats.TipsLast30Days++
		}
	}

	stats.TotalAssetVolume = assetTotal.Round(consts.ASSET_DECIMALS)
	stats.TotalReferenceVolume = referenceTotal.Round(consts.REFERENCE_DECIMALS)
	stats.AverageTipAsset = assetTotal.
		Div(decimal.NewFromInt(stats.TotalTips)).
		Round(consts.ASSET_DECIMALS)
	stats.LargestTipAsset = largest.Round(consts.ASSET_DECIMALS)

	return stats, nil
}
