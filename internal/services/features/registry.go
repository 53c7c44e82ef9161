package features

import (
	"sort"
	"strconv"

	"AnomalyLens/internal/domain/models"
)

// Family groups strategies by the shape of their transform.
type Family string

const (
	FamilyClose       Family = "close"
	FamilyCrossTerms  Family = "cross_terms"
	FamilyRatioChange Family = "ratio_change"
	FamilyMomentum    Family = "momentum"
	FamilyRegime      Family = "volatility_regime"
	FamilyVIXMomentum Family = "vix_momentum"
)

// Strategy is one immutable registry entry.
type Strategy struct {
	ID          string
	Folder      string
	Instruments []string
	Family      Family
	transform   Transform
	count       func(n int) int
}

// ExpectedFeatureCount evaluates the strategy's feature-count formula.
func (s *Strategy) ExpectedFeatureCount() int {
	return s.count(len(s.Instruments))
}

// RequiredInstruments returns a copy of the required instrument list.
func (s *Strategy) RequiredInstruments() []string {
	out := make([]string, len(s.Instruments))
	copy(out, s.Instruments)
	return out
}

// Info renders the entry for listing.
func (s *Strategy) Info() models.StrategyInfo {
	return models.StrategyInfo{
		ID:                   s.ID,
		Folder:               s.Folder,
		RequiredInstruments:  s.RequiredInstruments(),
		ExpectedFeatureCount: s.ExpectedFeatureCount(),
	}
}

func perInstrument(n int) int { return n }

func fixed(k int) func(int) int { return func(int) int { return k } }

func plus(k int) func(int) int { return func(n int) int { return n + k } }

func times(k int) func(int) int { return func(n int) int { return n * k } }

var (
	equities    = []string{"MXUS", "MXEU", "MXJP", "MXCN"}
	commodities = []string{"XAU BGNL", "Cl1", "BDIY"}
)

// Registry maps strategy ids to their specs. It is read-only after construction.
type Registry struct {
	byID map[string]*Strategy
}

func closeStrategy(id, folder string, instruments ...string) *Strategy {
	return &Strategy{ID: id, Folder: folder, Instruments: instruments, Family: FamilyClose, transform: CloseOnly, count: perInstrument}
}

// NewRegistry builds the fixed set of 25 strategies.
func NewRegistry() *Registry {
	entries := []*Strategy{
		closeStrategy("1", "all_features", "VIX", "MXUS", "MXEU", "MXJP", "MXCN", "XAU BGNL", "Cl1", "USGG10YR", "DXY", "BDIY"),
		closeStrategy("2", "vix_only", "VIX"),
		closeStrategy("3", "equities", equities...),
		closeStrategy("4", "commodities", commodities...),
		{
			ID: "5", Folder: "equities_vs_commodities", Instruments: []string{"MXUS", "XAU BGNL", "Cl1"}, Family: FamilyCrossTerms,
			transform: BaseWithPairs(
				PairOp{Name: "MXUS_XAU_CORR", Left: "MXUS", Right: "XAU BGNL", Fn: Product},
				PairOp{Name: "MXUS_CL1_CORR", Left: "MXUS", Right: "Cl1", Fn: Product},
			),
			count: plus(2),
		},
		closeStrategy("6", "equities_vs_bonds", "MXUS", "USGG10YR"),
		{
			ID: "7", Folder: "volatility_vs_equities", Instruments: []string{"MXUS", "VIX"}, Family: FamilyCrossTerms,
			transform: BaseWithPairs(
				PairOp{Name: "MXUS_VIX_CORR", Left: "MXUS", Right: "VIX", Fn: Product},
				PairOp{Name: "MXUS_VIX_RATIO", Left: "MXUS", Right: "VIX", Fn: Ratio},
			),
			count: plus(2),
		},
		closeStrategy("8", "equity_dispersion", equities...),
		closeStrategy("9", "commodity_dispersion", commodities...),
		closeStrategy("10", "yield_curve_metrics", "USGG3M", "USGG2YR", "USGG10YR"),
		closeStrategy("11", "market_stress", "VIX", "MXUS", "USGG10YR", "DXY"),
		closeStrategy("12", "global_market_stress", "VIX", "MXUS", "MXEU", "MXJP", "MXCN", "DXY"),
		{
			ID: "13", Folder: "volatility_regime", Instruments: []string{"VIX", "MXUS", "MXEU", "MXJP", "DXY", "XAU BGNL"},
			Family: FamilyRegime, transform: VolatilityRegime, count: times(3),
		},
		{
			ID: "14", Folder: "cross_asset_momentum", Instruments: []string{"MXUS", "XAU BGNL", "DXY", "Cl1", "BDIY"},
			Family: FamilyMomentum, transform: Momentum(MomentumPeriods...), count: times(1 + 2*len(MomentumPeriods)),
		},
		closeStrategy("15", "yield_curve_enhanced", "USGG3M", "USGG2YR", "USGG10YR", "USGG30YR"),
		closeStrategy("16", "combined_stress", "VIX", "MXUS", "USGG10YR", "DXY", "XAU BGNL", "Cl1"),
		{
			ID: "17", Folder: "vix_momentum", Instruments: []string{"VIX"},
			Family: FamilyVIXMomentum, transform: VIXMomentum, count: fixed(4),
		},
		closeStrategy("18", "yield_spread_momentum", "USGG2YR", "USGG10YR"),
		{
			ID: "19", Folder: "dxy_gold_correlation", Instruments: []string{"DXY", "XAU BGNL"}, Family: FamilyRatioChange,
			transform: RatioWithChanges("DXY_Gold_Ratio", "DXY", "XAU BGNL",
				Change{Name: "DXY_7D_Change", Of: "DXY"},
				Change{Name: "Gold_7D_Change", Of: "XAU BGNL"},
			),
			count: fixed(3),
		},
		{
			ID: "20", Folder: "em_vs_dm", Instruments: []string{"MXCN", "MXUS"}, Family: FamilyRatioChange,
			transform: RatioWithChanges("MXCN_MXUS_Ratio", "MXCN", "MXUS",
				Change{Name: "MXCN_7D_Change", Of: "MXCN"},
				Change{Name: "MXCN_MXUS_Ratio_7D_Change", Of: "MXCN_MXUS_Ratio"},
			),
			count: fixed(3),
		},
		{
			ID: "21", Folder: "oil_dxy_relationship", Instruments: []string{"Cl1", "DXY"}, Family: FamilyRatioChange,
			transform: RatioWithChanges("Oil_DXY_Ratio", "Cl1", "DXY",
				Change{Name: "Oil_7D_Change", Of: "Cl1"},
				Change{Name: "Oil_DXY_Ratio_7D_Change", Of: "Oil_DXY_Ratio"},
			),
			count: fixed(3),
		},
		closeStrategy("22", "us_eu_yield_spread", "USGG10YR", "GDBR10"),
		closeStrategy("23", "bond_market_stress", "USGG2YR", "USGG10YR", "VIX"),
		closeStrategy("24", "jpy_yield_correlation", "USDJPY", "USGG10YR"),
		{
			ID: "25", Folder: "equity_vix_ratio", Instruments: []string{"MXUS", "VIX"}, Family: FamilyRatioChange,
			transform: RatioWithChanges("MXUS_VIX_Ratio", "MXUS", "VIX",
				Change{Name: "MXUS_7D_Change", Of: "MXUS"},
				Change{Name: "MXUS_VIX_Ratio_7D_Change", Of: "MXUS_VIX_Ratio"},
			),
			count: fixed(3),
		},
	}
	r := &Registry{byID: make(map[string]*Strategy, len(entries))}
	for _, s := range entries {
		r.byID[s.ID] = s
	}
	return r
}

// Lookup returns the strategy for id or an UnknownStrategy error.
func (r *Registry) Lookup(id string) (*Strategy, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, models.ErrUnknownStrategy(id)
	}
	return s, nil
}

// All returns every strategy ordered by numeric id.
func (r *Registry) All() []*Strategy {
	out := make([]*Strategy, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i].ID)
		b, _ := strconv.Atoi(out[j].ID)
		return a < b
	})
	return out
}
