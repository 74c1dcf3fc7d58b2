package factors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wonny/fundfactor/internal/contracts"
	"github.com/wonny/fundfactor/pkg/logger"
	"github.com/wonny/fundfactor/pkg/redis"
)

// Datasets names the two library datasets a region is built from
type Datasets struct {
	FiveFactor string
	Momentum   string
}

// regionDatasets is the full set of supported regions
var regionDatasets = map[contracts.Region]Datasets{
	contracts.RegionUnitedStates: {FiveFactor: "F-F_Research_Data_5_Factors_2x3", Momentum: "F-F_Momentum_Factor"},
	contracts.RegionDeveloped:    {FiveFactor: "Developed_5_Factors", Momentum: "Developed_Mom_Factor"},
	contracts.RegionEurope:       {FiveFactor: "Europe_5_Factors", Momentum: "Europe_Mom_Factor"},
	contracts.RegionEmerging:     {FiveFactor: "Emerging_5_Factors", Momentum: "Emerging_MOM_Factor"},
}

// usMomentumLabel is how the US momentum file labels its column (padded with spaces upstream)
const usMomentumLabel = "Mom"

// DatasetsFor returns the datasets of region
func DatasetsFor(region contracts.Region) (Datasets, error) {
	ds, ok := regionDatasets[region]
	if !ok {
		return Datasets{}, &contracts.ConfigError{Field: "region", Value: string(region), Reason: "no factor datasets for region"}
	}
	return ds, nil
}

// TableCache stores merged factor tables; *redis.Cache satisfies it
type TableCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Provider assembles region factor tables from a factor data source
type Provider struct {
	source contracts.FactorDataProvider
	logger *logger.Logger

	cache    TableCache
	cacheTTL time.Duration

	mu   sync.Mutex
	memo map[string]*contracts.FactorTable
}

// NewProvider creates a provider reading datasets from source
func NewProvider(source contracts.FactorDataProvider, log *logger.Logger) *Provider {
	return &Provider{
		source: source,
		logger: log.Component("factors"),
		memo:   make(map[string]*contracts.FactorTable),
	}
}

// WithCache stores merged tables in cache for ttl
func (p *Provider) WithCache(cache TableCache, ttl time.Duration) *Provider {
	p.cache = cache
	p.cacheTTL = ttl
	return p
}

// Fetch returns the merged factor table of region between start and end.
// Only months present in both datasets survive.
func (p *Provider) Fetch(ctx context.Context, region contracts.Region, start, end time.Time) (*contracts.FactorTable, error) {
	ds, err := DatasetsFor(region)
	if err != nil {
		return nil, err
	}

	key := redis.FactorTableKey(string(region), start, end)
	if table := p.lookup(ctx, key); table != nil {
		return table, nil
	}

	five, err := p.fetchSet(ctx, ds.FiveFactor, start, end)
	if err != nil {
		return nil, err
	}
	mom, err := p.fetchSet(ctx, ds.Momentum, start, end)
	if err != nil {
		return nil, err
	}

	if region == contracts.RegionUnitedStates {
		renameColumn(mom, usMomentumLabel, contracts.FactorWML)
	}

	table, err := Join(region, five, mom)
	if err != nil {
		return nil, fmt.Errorf("region %s: %w", region, err)
	}

	p.logger.WithFields(map[string]interface{}{
		"region":   string(region),
		"five":     len(five.Rows),
		"momentum": len(mom.Rows),
		"merged":   len(table.Rows),
	}).Debug("Merged factor datasets")

	p.store(ctx, key, table)
	return table, nil
}

func (p *Provider) fetchSet(ctx context.Context, dataset string, start, end time.Time) (*contracts.RawFactorSet, error) {
	set, err := p.source.FetchFactorSet(ctx, dataset, start, end)
	if err != nil {
		p.logger.WithError(err).WithField("dataset", dataset).Error("Failed to fetch factor dataset")
		if errors.Is(err, contracts.ErrDataUnavailable) || errors.Is(err, contracts.ErrFormat) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: dataset %s: %w", contracts.ErrDataUnavailable, dataset, err)
	}
	if set == nil || len(set.Rows) == 0 {
		return nil, fmt.Errorf("%w: dataset %s has no rows", contracts.ErrDataUnavailable, dataset)
	}
	return set, nil
}

func (p *Provider) lookup(ctx context.Context, key string) *contracts.FactorTable {
	p.mu.Lock()
	table, ok := p.memo[key]
	p.mu.Unlock()
	if ok {
		return table
	}

	if p.cache == nil {
		return nil
	}
	var cached contracts.FactorTable
	found, err := p.cache.Get(ctx, key, &cached)
	if err != nil {
		p.logger.WithError(err).WithField("key", key).Warn("Factor cache read failed")
		return nil
	}
	if !found {
		return nil
	}

	p.mu.Lock()
	p.memo[key] = &cached
	p.mu.Unlock()
	return &cached
}

func (p *Provider) store(ctx context.Context, key string, table *contracts.FactorTable) {
	p.mu.Lock()
	p.memo[key] = table
	p.mu.Unlock()

	if p.cache == nil {
		return
	}
	if err := p.cache.Set(ctx, key, table, p.cacheTTL); err != nil {
		p.logger.WithError(err).WithField("key", key).Warn("Factor cache write failed")
	}
}

// renameColumn relabels the column whose trimmed label equals from
func renameColumn(set *contracts.RawFactorSet, from, to string) {
	cols := make([]string, len(set.Columns))
	for i, c := range set.Columns {
		cols[i] = c
		if strings.TrimSpace(c) == from {
			cols[i] = to
		}
	}
	set.Columns = cols
}

// Join inner-joins the five-factor and momentum sets on period and selects
// the canonical columns in order
func Join(region contracts.Region, five, mom *contracts.RawFactorSet) (*contracts.FactorTable, error) {
	fiveCols := contracts.FactorColumns[:len(contracts.FactorColumns)-1]
	fiveIdx := make([]int, len(fiveCols))
	for i, label := range fiveCols {
		fiveIdx[i] = five.ColumnIndex(label)
		if fiveIdx[i] < 0 {
			return nil, fmt.Errorf("%w: dataset %s has no %q column (have %q)", contracts.ErrFormat, five.Name, label, five.Columns)
		}
	}
	wmlIdx := mom.ColumnIndex(contracts.FactorWML)
	if wmlIdx < 0 {
		return nil, fmt.Errorf("%w: dataset %s has no %q column (have %q)", contracts.ErrFormat, mom.Name, contracts.FactorWML, mom.Columns)
	}

	momByPeriod := make(map[contracts.Period]float64, len(mom.Rows))
	for _, r := range mom.Rows {
		if wmlIdx >= len(r.Values) {
			return nil, fmt.Errorf("%w: dataset %s row %s is short", contracts.ErrFormat, mom.Name, r.Period)
		}
		momByPeriod[r.Period] = r.Values[wmlIdx]
	}

	seen := make(map[contracts.Period]bool, len(five.Rows))
	table := &contracts.FactorTable{Region: region}
	for _, r := range five.Rows {
		wml, ok := momByPeriod[r.Period]
		if !ok || seen[r.Period] {
			continue
		}
		seen[r.Period] = true

		values := make([]float64, 0, len(contracts.FactorColumns))
		for _, idx := range fiveIdx {
			if idx >= len(r.Values) {
				return nil, fmt.Errorf("%w: dataset %s row %s is short", contracts.ErrFormat, five.Name, r.Period)
			}
			values = append(values, r.Values[idx])
		}
		values = append(values, wml)

		row, err := contracts.FactorRowFromValues(r.Period, values)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, row)
	}

	sort.Slice(table.Rows, func(i, j int) bool {
		return table.Rows[i].Period < table.Rows[j].Period
	})
	return table, nil
}
