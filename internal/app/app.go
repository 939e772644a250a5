// Package app wires the fusion pipeline together and exposes the
// interaction surface: pincode queries, rating submissions, and layer
// rendering.
package app

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/geowerk/plzatlas/internal/config"
	"github.com/geowerk/plzatlas/internal/filter"
	"github.com/geowerk/plzatlas/internal/ledger"
	"github.com/geowerk/plzatlas/internal/loader"
	"github.com/geowerk/plzatlas/internal/maplayer"
	"github.com/geowerk/plzatlas/internal/model"
	"github.com/geowerk/plzatlas/internal/preprocess"
)

// Standard layer names.
const (
	LayerResidents = "Residents"
	LayerStations  = "Charging Stations"
)

// App owns the loaded datasets, the layer registry, and the rating ledger.
// Datasets are immutable after Load. The visualizer and the ledger are the
// mutable state: each query builds a fresh visualizer and swaps it in under
// mu, so concurrent renders always see a complete, immutable registry.
type App struct {
	cfg *config.Config

	boundaries []model.BoundaryRecord
	residents  []model.ResidentRecord
	aggregates []model.StationAggregate

	mu         sync.RWMutex
	visualizer *maplayer.Visualizer

	ledger *ledger.Ledger
}

// QueryResult is the outcome of one pincode interaction. On a miss or
// invalid input the datasets are the full, unfiltered ones and the message
// explains why.
type QueryResult struct {
	Residents        []model.ResidentRecord
	Stations         []model.StationAggregate
	ResidentsMessage string
	StationsMessage  string
}

// New creates an unloaded App.
func New(cfg *config.Config) *App {
	return &App{
		cfg:        cfg,
		visualizer: maplayer.NewVisualizer(),
		ledger:     ledger.New(),
	}
}

// Load reads the three sources concurrently, then joins and aggregates.
// Any source failure is fatal; no partial pipeline can proceed.
func (a *App) Load(ctx context.Context) error {
	var schema *model.Schema
	if a.cfg.Sources.SchemaFile != "" {
		s, err := model.LoadSchema(a.cfg.Sources.SchemaFile)
		if err != nil {
			return err
		}
		schema = s
	}

	delim := ';'
	if a.cfg.Sources.Delimiter != "" {
		delim = []rune(a.cfg.Sources.Delimiter)[0]
	}
	ld := loader.New(schema, loader.Options{
		Delimiter: delim,
		Charset:   a.cfg.Sources.Charset,
		SheetName: a.cfg.Sources.SheetName,
		SkipRows:  a.cfg.Sources.SkipRows,
	})

	var (
		stations  []model.StationRecord
		residents []model.ResidentRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		stations, err = ld.LoadStations(a.cfg.Sources.Stations)
		return err
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		a.boundaries, err = ld.LoadBoundaries(a.cfg.Sources.Boundaries)
		return err
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		residents, err = ld.LoadResidents(a.cfg.Sources.Residents)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	joined, dropped := preprocess.PreprocessStations(stations, a.boundaries)
	a.residents = preprocess.PreprocessResidents(residents, a.boundaries)
	a.aggregates = preprocess.AggregateStationCounts(joined, a.boundaries)

	if err := a.buildLayers(a.residents, a.aggregates); err != nil {
		return err
	}

	zap.L().Info("pipeline loaded",
		zap.String("component", "app"),
		zap.Int("boundaries", len(a.boundaries)),
		zap.Int("residents", len(a.residents)),
		zap.Int("aggregates", len(a.aggregates)),
		zap.Int("stations_dropped", dropped),
	)
	return nil
}

// SubmitPincodeQuery filters both datasets by the raw user-supplied code
// and rebuilds the two standard layers from the filtered data, so a
// following render reflects the query.
func (a *App) SubmitPincodeQuery(raw string) (QueryResult, error) {
	res := QueryResult{}
	res.Residents, res.ResidentsMessage = filter.ByPincode(a.residents, raw)
	res.Stations, res.StationsMessage = filter.ByPincode(a.aggregates, raw)

	if err := a.buildLayers(res.Residents, res.Stations); err != nil {
		return QueryResult{}, err
	}
	return res, nil
}

// SubmitRating records a rating and review for a postal code.
func (a *App) SubmitRating(plz, rating int, review string) (ledger.Submission, error) {
	return a.ledger.Submit(plz, rating, review)
}

// RatingSummary returns the accumulated rating view for a postal code.
func (a *App) RatingSummary(plz int) ledger.Summary {
	return a.ledger.Summary(plz)
}

// RenderLayers renders the named layers in order against the visualizer
// state current at the time of the call. Unknown names fail per-name without
// aborting the rest. A query running concurrently swaps in a whole new
// visualizer, so a render never observes a half-rebuilt registry.
func (a *App) RenderLayers(names []string) []maplayer.Result {
	return maplayer.Render(a.snapshot(), names)
}

// LayerNames returns the registered layer names.
func (a *App) LayerNames() []string {
	return a.snapshot().Names()
}

func (a *App) snapshot() *maplayer.Visualizer {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.visualizer
}

// buildLayers assembles a fresh visualizer from the given datasets and swaps
// it in. The previous visualizer stays valid for renders already holding it.
func (a *App) buildLayers(residents []model.ResidentRecord, aggregates []model.StationAggregate) error {
	rStyle := a.cfg.Layers.Residents
	rLayer, err := maplayer.NewLayer(maplayer.ResidentDataset(residents), rStyle.ValueColumn, rStyle.ColorRange, rStyle.Tooltip)
	if err != nil {
		return err
	}
	sStyle := a.cfg.Layers.Stations
	sLayer, err := maplayer.NewLayer(maplayer.AggregateDataset(aggregates), sStyle.ValueColumn, sStyle.ColorRange, sStyle.Tooltip)
	if err != nil {
		return err
	}

	v := maplayer.NewVisualizer()
	v.AddLayer(LayerResidents, rLayer)
	v.AddLayer(LayerStations, sLayer)

	a.mu.Lock()
	a.visualizer = v
	a.mu.Unlock()
	return nil
}
