package ingest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gotest.tools/v3/assert"

	"github.com/racevision/ingest-service-go/pkg/ergast"
	"github.com/racevision/ingest-service-go/pkg/model"
)

func TestTiersCoverCatalog(t *testing.T) {
	tierNames := lo.Flatten(Tiers)
	catalogNames := lo.Map(Catalog(), func(s EntitySpec, _ int) string {
		return s.Name
	})
	assert.Equal(t, len(tierNames), len(catalogNames))
	for _, name := range catalogNames {
		assert.Assert(t, lo.Contains(tierNames, name), "missing in tiers: %s", name)
	}
}

func TestCatalogByName(t *testing.T) {
	tests := []struct {
		name      string
		arg       []string
		wantNames []string
		wantErr   bool
	}{
		{
			name:      "empty selects all",
			arg:       []string{},
			wantNames: lo.Map(Catalog(), func(s EntitySpec, _ int) string { return s.Name }),
		},
		{
			name:      "subset keeps catalog order",
			arg:       []string{"results", "races"},
			wantNames: []string{"races", "results"},
		},
		{
			name:    "unknown entity",
			arg:     []string{"races", "powerboats"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CatalogByName(tt.arg)
			if tt.wantErr {
				assert.Assert(t, err != nil)
				return
			}
			assert.NilError(t, err)
			gotNames := lo.Map(got, func(s EntitySpec, _ int) string { return s.Name })
			assert.DeepEqual(t, tt.wantNames, gotNames)
		})
	}
}

func TestKnownAbsentWindows(t *testing.T) {
	byName := lo.SliceToMap(Catalog(), func(s EntitySpec) (string, EntitySpec) {
		return s.Name, s
	})
	tests := []struct {
		entity string
		season int
		want   bool
	}{
		{"sprint", 2020, true},
		{"sprint", 2021, false},
		{"pitstops", 2011, true},
		{"pitstops", 2012, false},
		{"laptimes", 1995, true},
		{"laptimes", 1996, false},
		{"results", 1950, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, byName[tt.entity].knownAbsent(tt.season),
			"%s/%d", tt.entity, tt.season)
	}
}

func TestExtractResults(t *testing.T) {
	pages := []*ergast.MRData{{
		RaceTable: &ergast.RaceTable{Races: []ergast.Race{{
			Season: "2023", Round: "5",
			Results: []ergast.Result{
				{
					Position: "1", Points: "25.5", Grid: "2", Laps: "57",
					Status: "Finished",
					Driver: ergast.Driver{
						DriverID: "max_verstappen",
						GivenName: "Max", FamilyName: "Verstappen",
					},
					Constructor: ergast.Constructor{
						ConstructorID: "red_bull", Name: "Red Bull",
					},
					Time: &ergast.ResultTime{Time: "1:33:56.736"},
				},
				{
					// retired entries carry no numeric position
					Position: "R", Points: "0", Grid: "20", Laps: "12",
					Status: "Collision",
					Driver: ergast.Driver{
						DriverID: "stroll",
						GivenName: "Lance", FamilyName: "Stroll",
					},
					Constructor: ergast.Constructor{
						ConstructorID: "aston_martin", Name: "Aston Martin",
					},
				},
			},
		}}},
	}}
	docs, err := extractResults(pages)
	assert.NilError(t, err)
	assert.Equal(t, 2, len(docs))

	decimalCmp := cmp.Comparer(func(a, b decimal.Decimal) bool {
		return a.Equal(b)
	})
	one := 1
	two := 2
	want := &model.RaceResultDoc{
		RaceID:        "2023_5",
		DriverID:      "max_verstappen",
		DriverName:    "Max Verstappen",
		ConstructorID: "red_bull",
		Constructor:   "Red Bull",
		Position:      &one,
		Points:        decimal.RequireFromString("25.5"),
		Grid:          &two,
		Laps:          57,
		Status:        "Finished",
		Time:          "1:33:56.736",
	}
	if diff := cmp.Diff(want, docs[0], decimalCmp); diff != "" {
		t.Errorf("first result mismatch (-want +got):\n%s", diff)
	}

	second := docs[1].(*model.RaceResultDoc)
	assert.Assert(t, second.Position == nil)
	assert.Equal(t, "0", second.Points.String())
}

func TestExtractLapTimes(t *testing.T) {
	pages := []*ergast.MRData{{
		RaceTable: &ergast.RaceTable{Races: []ergast.Race{{
			Season: "2023", Round: "1",
			Laps: []ergast.Lap{
				{Number: "1", Timings: []ergast.Timing{
					{DriverID: "max_verstappen", Position: "1", Time: "1:39.019"},
					{DriverID: "perez", Position: "2", Time: "1:40.230"},
				}},
				{Number: "2", Timings: []ergast.Timing{
					{DriverID: "max_verstappen", Position: "1", Time: "1:37.974"},
				}},
			},
		}}},
	}}
	docs, err := extractLapTimes(pages)
	assert.NilError(t, err)
	assert.Equal(t, 3, len(docs))
	last := docs[2].(*model.LapTimeDoc)
	assert.Equal(t, "2023_1", last.RaceID)
	assert.Equal(t, 2, last.Lap)
	assert.Equal(t, "1:37.974", last.Time)
}

func TestExtractQualifying(t *testing.T) {
	pages := []*ergast.MRData{{
		RaceTable: &ergast.RaceTable{Races: []ergast.Race{{
			Season: "2023", Round: "3",
			QualifyingResults: []ergast.QualifyingResult{{
				Position: "1",
				Q1:       "1:17.227", Q2: "1:17.071", Q3: "1:16.732",
				Driver: ergast.Driver{
					DriverID: "max_verstappen",
					GivenName: "Max", FamilyName: "Verstappen",
				},
				Constructor: ergast.Constructor{
					ConstructorID: "red_bull", Name: "Red Bull",
				},
			}},
		}}},
	}}
	docs, err := extractQualifying(pages)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(docs))
	doc := docs[0].(*model.QualifyingResultDoc)
	assert.Equal(t, "2023_3", doc.RaceID)
	assert.Equal(t, 1, doc.Position)
	assert.Equal(t, "1:16.732", doc.Q3)
}

func TestExtractStandingsAcrossPages(t *testing.T) {
	pages := []*ergast.MRData{
		{StandingsTable: &ergast.StandingsTable{
			StandingsLists: []ergast.StandingsList{{
				Season: "2023",
				DriverStandings: []ergast.DriverStanding{{
					Position: "1", Points: "575", Wins: "19",
					Driver: ergast.Driver{
						DriverID: "max_verstappen",
						GivenName: "Max", FamilyName: "Verstappen",
					},
					Constructors: []ergast.Constructor{
						{ConstructorID: "red_bull", Name: "Red Bull"},
					},
				}},
			}},
		}},
		{StandingsTable: &ergast.StandingsTable{
			StandingsLists: []ergast.StandingsList{{
				Season: "2023",
				DriverStandings: []ergast.DriverStanding{{
					Position: "2", Points: "285", Wins: "2",
					Driver: ergast.Driver{
						DriverID: "perez",
						GivenName: "Sergio", FamilyName: "Perez",
					},
					Constructors: []ergast.Constructor{
						{ConstructorID: "red_bull", Name: "Red Bull"},
					},
				}},
			}},
		}},
	}
	docs, err := extractDriverStandings(pages)
	assert.NilError(t, err)
	assert.Equal(t, 2, len(docs))
	doc := docs[0].(*model.DriverStandingDoc)
	assert.Equal(t, "Red Bull", doc.Constructor)
	assert.Equal(t, 19, doc.Wins)
}
