package ergast

// Response models for the Ergast compatible API (jolpi.ca).
// Numeric attributes arrive as strings on the wire; they are kept as
// strings here and converted when the documents are built.

type ResponseWrapper struct {
	MRData *MRData `json:"MRData"`
}

type MRData struct {
	Series string `json:"series"`
	Limit  string `json:"limit"`
	Offset string `json:"offset"`
	Total  string `json:"total"`

	SeasonTable      *SeasonTable      `json:"SeasonTable,omitempty"`
	CircuitTable     *CircuitTable     `json:"CircuitTable,omitempty"`
	RaceTable        *RaceTable        `json:"RaceTable,omitempty"`
	DriverTable      *DriverTable      `json:"DriverTable,omitempty"`
	ConstructorTable *ConstructorTable `json:"ConstructorTable,omitempty"`
	StandingsTable   *StandingsTable   `json:"StandingsTable,omitempty"`
}

// recordCount returns the number of paginated records in the page.
// The API paginates over the innermost record type of the endpoint
// (timings for laps, results for results, races for race listings),
// which may be fewer than the requested page size: the server caps
// the limit parameter.
func (m *MRData) recordCount() int {
	switch {
	case m.SeasonTable != nil:
		return len(m.SeasonTable.Seasons)
	case m.CircuitTable != nil:
		return len(m.CircuitTable.Circuits)
	case m.DriverTable != nil:
		return len(m.DriverTable.Drivers)
	case m.ConstructorTable != nil:
		return len(m.ConstructorTable.Constructors)
	case m.StandingsTable != nil:
		count := 0
		for _, sl := range m.StandingsTable.StandingsLists {
			count += len(sl.DriverStandings) + len(sl.ConstructorStandings)
		}
		return count
	case m.RaceTable != nil:
		count := 0
		for _, r := range m.RaceTable.Races {
			nested := len(r.Results) + len(r.QualifyingResults) +
				len(r.SprintResults) + len(r.PitStops)
			for _, lap := range r.Laps {
				nested += len(lap.Timings)
			}
			if nested == 0 {
				count++
			} else {
				count += nested
			}
		}
		return count
	}
	return 0
}

type SeasonTable struct {
	Seasons []Season `json:"Seasons"`
}

type Season struct {
	Season string `json:"season"`
	URL    string `json:"url"`
}

type CircuitTable struct {
	Circuits []Circuit `json:"Circuits"`
}

type Circuit struct {
	CircuitID   string   `json:"circuitId"`
	CircuitName string   `json:"circuitName"`
	URL         string   `json:"url"`
	Location    Location `json:"Location"`
}

type Location struct {
	Lat      string `json:"lat"`
	Long     string `json:"long"`
	Locality string `json:"locality"`
	Country  string `json:"country"`
}

type RaceTable struct {
	Season string `json:"season"`
	Round  string `json:"round"`
	Races  []Race `json:"Races"`
}

type Race struct {
	Season   string  `json:"season"`
	Round    string  `json:"round"`
	RaceName string  `json:"raceName"`
	Date     string  `json:"date"`
	Time     string  `json:"time"`
	URL      string  `json:"url"`
	Circuit  Circuit `json:"Circuit"`

	Results           []Result            `json:"Results,omitempty"`
	QualifyingResults []QualifyingResult  `json:"QualifyingResults,omitempty"`
	SprintResults     []Result            `json:"SprintResults,omitempty"`
	Laps              []Lap               `json:"Laps,omitempty"`
	PitStops          []PitStop           `json:"PitStops,omitempty"`
}

type DriverTable struct {
	Drivers []Driver `json:"Drivers"`
}

type Driver struct {
	DriverID        string `json:"driverId"`
	PermanentNumber string `json:"permanentNumber"`
	Code            string `json:"code"`
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
	DateOfBirth     string `json:"dateOfBirth"`
	Nationality     string `json:"nationality"`
	URL             string `json:"url"`
}

type ConstructorTable struct {
	Constructors []Constructor `json:"Constructors"`
}

type Constructor struct {
	ConstructorID string `json:"constructorId"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality"`
	URL           string `json:"url"`
}

type Result struct {
	Number       string      `json:"number"`
	Position     string      `json:"position"`
	PositionText string      `json:"positionText"`
	Points       string      `json:"points"`
	Grid         string      `json:"grid"`
	Laps         string      `json:"laps"`
	Status       string      `json:"status"`
	Driver       Driver      `json:"Driver"`
	Constructor  Constructor `json:"Constructor"`
	Time         *ResultTime `json:"Time,omitempty"`
	FastestLap   *FastestLap `json:"FastestLap,omitempty"`
}

type ResultTime struct {
	Millis string `json:"millis"`
	Time   string `json:"time"`
}

type FastestLap struct {
	Rank string   `json:"rank"`
	Lap  string   `json:"lap"`
	Time *LapTime `json:"Time,omitempty"`
}

type LapTime struct {
	Time string `json:"time"`
}

type QualifyingResult struct {
	Number      string      `json:"number"`
	Position    string      `json:"position"`
	Driver      Driver      `json:"Driver"`
	Constructor Constructor `json:"Constructor"`
	Q1          string      `json:"Q1"`
	Q2          string      `json:"Q2"`
	Q3          string      `json:"Q3"`
}

type Lap struct {
	Number  string   `json:"number"`
	Timings []Timing `json:"Timings"`
}

type Timing struct {
	DriverID string `json:"driverId"`
	Position string `json:"position"`
	Time     string `json:"time"`
}

type PitStop struct {
	DriverID string `json:"driverId"`
	Stop     string `json:"stop"`
	Lap      string `json:"lap"`
	Time     string `json:"time"`
	Duration string `json:"duration"`
}

type StandingsTable struct {
	Season         string          `json:"season"`
	StandingsLists []StandingsList `json:"StandingsLists"`
}

type StandingsList struct {
	Season               string                `json:"season"`
	Round                string                `json:"round"`
	DriverStandings      []DriverStanding      `json:"DriverStandings,omitempty"`
	ConstructorStandings []ConstructorStanding `json:"ConstructorStandings,omitempty"`
}

type DriverStanding struct {
	Position     string        `json:"position"`
	PositionText string        `json:"positionText"`
	Points       string        `json:"points"`
	Wins         string        `json:"wins"`
	Driver       Driver        `json:"Driver"`
	Constructors []Constructor `json:"Constructors"`
}

type ConstructorStanding struct {
	Position     string      `json:"position"`
	PositionText string      `json:"positionText"`
	Points       string      `json:"points"`
	Wins         string      `json:"wins"`
	Constructor  Constructor `json:"Constructor"`
}
