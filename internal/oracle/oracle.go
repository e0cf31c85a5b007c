package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/shieldtip/shieldtip-backend/internal/utils/config"
	"github.com/shieldtip/shieldtip-backend/internal/utils/logger"
)

type cachedRate struct {
	rate      decimal.Decimal
	fetchedAt time.Time
}

type PriceOracle struct {
	mux *sync.Mutex

	cache     map[string]cachedRate
	baseURL   string
	cacheTTL  time.Duration
	client    *http.Client
	appConfig *config.AppConfig
	logger    *logger.Logger
}

func New(appConfig *config.AppConfig, logger *logger.Logger) IOracle {
	return &PriceOracle{
		mux:       &sync.Mutex{},
		cache:     map[string]cachedRate{},
		baseURL:   appConfig.Oracle.PriceFeedURL,
		cacheTTL:  appConfig.Oracle.CacheTTL,
		client:    &http.Client{Timeout: 30 * time.Second},
		appConfig: appConfig,
		logger:    logger,
	}
}

func (o *PriceOracle) GetAssetRate(ctx context.Context, token, currency string) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/price?token=%s&currency=%s", o.baseURL, token, currency), nil)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to create request")
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "price feed request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to read price feed response")
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, errors.Errorf("price feed: status %d: %s", resp.StatusCode, string(raw))
	}

	var body struct {
		Rate decimal.Decimal `json:"rate"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to decode price feed response")
	}
	if !body.Rate.IsPositive() {
		return decimal.Zero, errors.Errorf("price feed returned non-positive rate %s for %s/%s", body.Rate, token, currency)
	}

	o.mux.Lock()
	o.cache[cacheKey(token, currency)] = cachedRate{rate: body.Rate, fetchedAt: time.Now()}
	o.mux.Unlock()

	return body.Rate, nil
}

func (o *PriceOracle) GetCachedAssetRate(ctx context.Context, token, currency string) (decimal.Decimal, error) {
	o.mux.Lock()
	cached, ok := o.cache[cacheKey(token, currency)]
	o.mux.Unlock()

	if ok && time.Since(cached.fetchedAt) < o.cacheTTL {
		return cached.rate, nil
	}

	return o.GetAssetRate(ctx, token, currency)
}

func cacheKey(token, currency string) string {
	return token + "/" + currency
}
