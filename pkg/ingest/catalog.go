package ingest

import (
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/racevision/ingest-service-go/pkg/ergast"
	"github.com/racevision/ingest-service-go/pkg/model"
)

type Granularity int

const (
	// Global entities have no season dimension (one sub-scope).
	Global Granularity = iota
	// PerSeason entities are fetched once per season.
	PerSeason
	// PerRound entities are fetched once per round; the rounds are read
	// from the already ingested races collection.
	PerRound
)

// EntitySpec describes one entity type of the ingestion catalog. The
// twelve writers share a single control flow; the per-entity behavior
// lives in this table.
type EntitySpec struct {
	Name        string
	Collection  string
	Granularity Granularity
	// AvailableFrom is the first season the upstream API carries data
	// for this entity; empty results for earlier seasons are counted as
	// skipped, not missing. Zero means always available.
	AvailableFrom int
	Endpoint      func(scope model.Scope) string
	Extract       func(pages []*ergast.MRData) ([]any, error)
}

func (s EntitySpec) knownAbsent(season int) bool {
	return s.AvailableFrom > 0 && season < s.AvailableFrom
}

// Tiers is the fixed dependency order of the catalog. Writers within a
// tier operate on disjoint collections and may run concurrently.
var Tiers = [][]string{
	{"seasons", "circuits"},
	{"races", "drivers", "constructors"},
	{"results", "qualifying", "sprint", "pitstops", "laptimes"},
	{"driverstandings", "constructorstandings"},
}

// Catalog returns the entity table. Callers may filter it by name.
//
//nolint:funlen // declarative table
func Catalog() []EntitySpec {
	return []EntitySpec{
		{
			Name:        "seasons",
			Collection:  "seasons",
			Granularity: Global,
			Endpoint:    func(model.Scope) string { return "seasons" },
			Extract:     extractSeasons,
		},
		{
			Name:        "circuits",
			Collection:  "circuits",
			Granularity: Global,
			Endpoint:    func(model.Scope) string { return "circuits" },
			Extract:     extractCircuits,
		},
		{
			Name:        "races",
			Collection:  "races",
			Granularity: PerSeason,
			Endpoint: func(s model.Scope) string {
				return fmt.Sprintf("%d/races", s.Season)
			},
			Extract: extractRaces,
		},
		{
			Name:        "drivers",
			Collection:  "drivers",
			Granularity: PerSeason,
			Endpoint: func(s model.Scope) string {
				return fmt.Sprintf("%d/drivers", s.Season)
			},
			Extract: extractDrivers,
		},
		{
			Name:        "constructors",
			Collection:  "constructors",
			Granularity: PerSeason,
			Endpoint: func(s model.Scope) string {
				return fmt.Sprintf("%d/constructors", s.Season)
			},
			Extract: extractConstructors,
		},
		{
			Name:        "results",
			Collection:  "results",
			Granularity: PerRound,
			Endpoint: func(s model.Scope) string {
				return fmt.Sprintf("%d/%d/results", s.Season, s.Round)
			},
			Extract: extractResults,
		},
		{
			Name:        "qualifying",
			Collection:  "qualifying",
			Granularity: PerRound,
			Endpoint: func(s model.Scope) string {
				return fmt.Sprintf("%d/%d/qualifying", s.Season, s.Round)
			},
			Extract: extractQualifying,
		},
		{
			Name:          "sprint",
			Collection:    "sprint",
			Granularity:   PerRound,
			AvailableFrom: 2021,
			Endpoint: func(s model.Scope) string {
				return fmt.Sprintf("%d/%d/sprint", s.Season, s.Round)
			},
			Extract: extractSprint,
		},
		{
			Name:          "pitstops",
			Collection:    "pitstops",
			Granularity:   PerRound,
			AvailableFrom: 2012,
			Endpoint: func(s model.Scope) string {
				return fmt.Sprintf("%d/%d/pitstops", s.Season, s.Round)
			},
			Extract: extractPitStops,
		},
		{
			Name:          "laptimes",
			Collection:    "laptimes",
			Granularity:   PerRound,
			AvailableFrom: 1996,
			Endpoint: func(s model.Scope) string {
				return fmt.Sprintf("%d/%d/laps", s.Season, s.Round)
			},
			Extract: extractLapTimes,
		},
		{
			Name:        "driverstandings",
			Collection:  "driver_standings",
			Granularity: PerSeason,
			Endpoint: func(s model.Scope) string {
				return fmt.Sprintf("%d/driverStandings", s.Season)
			},
			Extract: extractDriverStandings,
		},
		{
			Name:        "constructorstandings",
			Collection:  "constructor_standings",
			Granularity: PerSeason,
			Endpoint: func(s model.Scope) string {
				return fmt.Sprintf("%d/constructorStandings", s.Season)
			},
			Extract: extractConstructorStandings,
		},
	}
}

// CatalogByName returns the catalog entries matching the given names,
// in catalog order. Empty names selects the full catalog.
func CatalogByName(names []string) ([]EntitySpec, error) {
	all := Catalog()
	if len(names) == 0 {
		return all, nil
	}
	byName := lo.SliceToMap(all, func(s EntitySpec) (string, EntitySpec) {
		return s.Name, s
	})
	for _, n := range names {
		if _, ok := byName[n]; !ok {
			return nil, fmt.Errorf("unknown entity %q", n)
		}
	}
	return lo.Filter(all, func(s EntitySpec, _ int) bool {
		return lo.Contains(names, s.Name)
	}), nil
}

func raceID(season, round int) string {
	return fmt.Sprintf("%d_%d", season, round)
}

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

// atoiPtr keeps non numeric values (e.g. position "R" for retired) as nil
func atoiPtr(s string) *int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

func points(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return v
}

func driverName(d ergast.Driver) string {
	return d.GivenName + " " + d.FamilyName
}

func extractSeasons(pages []*ergast.MRData) ([]any, error) {
	var ret []any
	for _, page := range pages {
		if page.SeasonTable == nil {
			continue
		}
		for _, s := range page.SeasonTable.Seasons {
			ret = append(ret, &model.SeasonDoc{Year: atoi(s.Season), URL: s.URL})
		}
	}
	return ret, nil
}

func extractCircuits(pages []*ergast.MRData) ([]any, error) {
	var ret []any
	for _, page := range pages {
		if page.CircuitTable == nil {
			continue
		}
		for _, c := range page.CircuitTable.Circuits {
			ret = append(ret, &model.CircuitDoc{
				CircuitID: c.CircuitID,
				Name:      c.CircuitName,
				Locality:  c.Location.Locality,
				Country:   c.Location.Country,
				Lat:       c.Location.Lat,
				Long:      c.Location.Long,
			})
		}
	}
	return ret, nil
}

func extractRaces(pages []*ergast.MRData) ([]any, error) {
	var ret []any
	for _, page := range pages {
		if page.RaceTable == nil {
			continue
		}
		for _, r := range page.RaceTable.Races {
			season := atoi(r.Season)
			round := atoi(r.Round)
			ret = append(ret, &model.RaceDoc{
				RaceID:    raceID(season, round),
				Year:      season,
				Round:     round,
				RaceName:  r.RaceName,
				Date:      r.Date,
				Circuit:   r.Circuit.CircuitName,
				CircuitID: r.Circuit.CircuitID,
			})
		}
	}
	return ret, nil
}

func extractDrivers(pages []*ergast.MRData) ([]any, error) {
	var ret []any
	for _, page := range pages {
		if page.DriverTable == nil {
			continue
		}
		for _, d := range page.DriverTable.Drivers {
			ret = append(ret, &model.DriverDoc{
				DriverID:    d.DriverID,
				Code:        d.Code,
				Number:      d.PermanentNumber,
				GivenName:   d.GivenName,
				FamilyName:  d.FamilyName,
				DateOfBirth: d.DateOfBirth,
				Nationality: d.Nationality,
			})
		}
	}
	return ret, nil
}

func extractConstructors(pages []*ergast.MRData) ([]any, error) {
	var ret []any
	for _, page := range pages {
		if page.ConstructorTable == nil {
			continue
		}
		for _, c := range page.ConstructorTable.Constructors {
			ret = append(ret, &model.ConstructorDoc{
				ConstructorID: c.ConstructorID,
				Name:          c.Name,
				Nationality:   c.Nationality,
			})
		}
	}
	return ret, nil
}

func extractResults(pages []*ergast.MRData) ([]any, error) {
	var ret []any
	for _, r := range collectRaces(pages) {
		season := atoi(r.Season)
		round := atoi(r.Round)
		for _, res := range r.Results {
			doc := &model.RaceResultDoc{
				RaceID:        raceID(season, round),
				DriverID:      res.Driver.DriverID,
				DriverName:    driverName(res.Driver),
				ConstructorID: res.Constructor.ConstructorID,
				Constructor:   res.Constructor.Name,
				Position:      atoiPtr(res.Position),
				Points:        points(res.Points),
				Grid:          atoiPtr(res.Grid),
				Laps:          atoi(res.Laps),
				Status:        res.Status,
			}
			if res.Time != nil {
				doc.Time = res.Time.Time
			}
			ret = append(ret, doc)
		}
	}
	return ret, nil
}

func extractQualifying(pages []*ergast.MRData) ([]any, error) {
	var ret []any
	for _, r := range collectRaces(pages) {
		season := atoi(r.Season)
		round := atoi(r.Round)
		for _, q := range r.QualifyingResults {
			ret = append(ret, &model.QualifyingResultDoc{
				RaceID:        raceID(season, round),
				DriverID:      q.Driver.DriverID,
				DriverName:    driverName(q.Driver),
				ConstructorID: q.Constructor.ConstructorID,
				Constructor:   q.Constructor.Name,
				Position:      atoi(q.Position),
				Q1:            q.Q1,
				Q2:            q.Q2,
				Q3:            q.Q3,
			})
		}
	}
	return ret, nil
}

func extractSprint(pages []*ergast.MRData) ([]any, error) {
	var ret []any
	for _, r := range collectRaces(pages) {
		season := atoi(r.Season)
		round := atoi(r.Round)
		for _, res := range r.SprintResults {
			ret = append(ret, &model.SprintResultDoc{
				RaceID:        raceID(season, round),
				DriverID:      res.Driver.DriverID,
				DriverName:    driverName(res.Driver),
				ConstructorID: res.Constructor.ConstructorID,
				Constructor:   res.Constructor.Name,
				Position:      atoiPtr(res.Position),
				Points:        points(res.Points),
				Laps:          atoi(res.Laps),
				Status:        res.Status,
			})
		}
	}
	return ret, nil
}

func extractPitStops(pages []*ergast.MRData) ([]any, error) {
	var ret []any
	for _, r := range collectRaces(pages) {
		season := atoi(r.Season)
		round := atoi(r.Round)
		for _, ps := range r.PitStops {
			ret = append(ret, &model.PitStopDoc{
				RaceID:   raceID(season, round),
				DriverID: ps.DriverID,
				Stop:     atoi(ps.Stop),
				Lap:      atoi(ps.Lap),
				Duration: ps.Duration,
			})
		}
	}
	return ret, nil
}

func extractLapTimes(pages []*ergast.MRData) ([]any, error) {
	var ret []any
	for _, r := range collectRaces(pages) {
		season := atoi(r.Season)
		round := atoi(r.Round)
		for _, lap := range r.Laps {
			lapNum := atoi(lap.Number)
			for _, t := range lap.Timings {
				ret = append(ret, &model.LapTimeDoc{
					RaceID:   raceID(season, round),
					DriverID: t.DriverID,
					Lap:      lapNum,
					Position: atoi(t.Position),
					Time:     t.Time,
				})
			}
		}
	}
	return ret, nil
}

func extractDriverStandings(pages []*ergast.MRData) ([]any, error) {
	var ret []any
	for _, sl := range collectStandingsLists(pages) {
		for _, ds := range sl.DriverStandings {
			doc := &model.DriverStandingDoc{
				DriverID:   ds.Driver.DriverID,
				DriverName: driverName(ds.Driver),
				Position:   atoi(ds.Position),
				Points:     points(ds.Points),
				Wins:       atoi(ds.Wins),
			}
			if len(ds.Constructors) > 0 {
				doc.Constructor = ds.Constructors[0].Name
			}
			ret = append(ret, doc)
		}
	}
	return ret, nil
}

func extractConstructorStandings(pages []*ergast.MRData) ([]any, error) {
	var ret []any
	for _, sl := range collectStandingsLists(pages) {
		for _, cs := range sl.ConstructorStandings {
			ret = append(ret, &model.ConstructorStandingDoc{
				ConstructorID: cs.Constructor.ConstructorID,
				Constructor:   cs.Constructor.Name,
				Position:      atoi(cs.Position),
				Points:        points(cs.Points),
				Wins:          atoi(cs.Wins),
			})
		}
	}
	return ret, nil
}

func collectRaces(pages []*ergast.MRData) []ergast.Race {
	return lo.FlatMap(pages, func(page *ergast.MRData, _ int) []ergast.Race {
		if page.RaceTable == nil {
			return nil
		}
		return page.RaceTable.Races
	})
}

func collectStandingsLists(pages []*ergast.MRData) []ergast.StandingsList {
	return lo.FlatMap(pages, func(page *ergast.MRData, _ int) []ergast.StandingsList {
		if page.StandingsTable == nil {
			return nil
		}
		return page.StandingsTable.StandingsLists
	})
}
