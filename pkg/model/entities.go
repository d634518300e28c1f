package model

import "github.com/shopspring/decimal"

// Flat entity documents as stored in the raw collections. The nested
// upstream records are projected onto these shapes; no cleaning or
// aggregation happens at this layer. RaceID follows the
// "{season}_{round}" convention used throughout the platform.

type SeasonDoc struct {
	Year int    `json:"year"`
	URL  string `json:"url"`
}

type CircuitDoc struct {
	CircuitID string `json:"circuitId"`
	Name      string `json:"name"`
	Locality  string `json:"locality"`
	Country   string `json:"country"`
	Lat       string `json:"lat"`
	Long      string `json:"long"`
}

type RaceDoc struct {
	RaceID    string `json:"raceId"`
	Year      int    `json:"year"`
	Round     int    `json:"round"`
	RaceName  string `json:"raceName"`
	Date      string `json:"date"`
	Circuit   string `json:"circuit"`
	CircuitID string `json:"circuitId"`
}

type DriverDoc struct {
	DriverID    string `json:"driverId"`
	Code        string `json:"code"`
	Number      string `json:"number"`
	GivenName   string `json:"givenName"`
	FamilyName  string `json:"familyName"`
	DateOfBirth string `json:"dateOfBirth"`
	Nationality string `json:"nationality"`
}

type ConstructorDoc struct {
	ConstructorID string `json:"constructorId"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality"`
}

type RaceResultDoc struct {
	RaceID        string          `json:"raceId"`
	DriverID      string          `json:"driverId"`
	DriverName    string          `json:"driverName"`
	ConstructorID string          `json:"constructorId"`
	Constructor   string          `json:"constructor"`
	Position      *int            `json:"position"` // nil for non classified entries
	Points        decimal.Decimal `json:"points"`
	Grid          *int            `json:"grid"`
	Laps          int             `json:"laps"`
	Status        string          `json:"status"`
	Time          string          `json:"time,omitempty"`
}

type QualifyingResultDoc struct {
	RaceID        string `json:"raceId"`
	DriverID      string `json:"driverId"`
	DriverName    string `json:"driverName"`
	ConstructorID string `json:"constructorId"`
	Constructor   string `json:"constructor"`
	Position      int    `json:"position"`
	Q1            string `json:"q1,omitempty"`
	Q2            string `json:"q2,omitempty"`
	Q3            string `json:"q3,omitempty"`
}

type SprintResultDoc struct {
	RaceID        string          `json:"raceId"`
	DriverID      string          `json:"driverId"`
	DriverName    string          `json:"driverName"`
	ConstructorID string          `json:"constructorId"`
	Constructor   string          `json:"constructor"`
	Position      *int            `json:"position"`
	Points        decimal.Decimal `json:"points"`
	Laps          int             `json:"laps"`
	Status        string          `json:"status"`
}

type PitStopDoc struct {
	RaceID   string `json:"raceId"`
	DriverID string `json:"driverId"`
	Stop     int    `json:"stop"`
	Lap      int    `json:"lap"`
	Duration string `json:"duration,omitempty"`
}

type LapTimeDoc struct {
	RaceID   string `json:"raceId"`
	DriverID string `json:"driverId"`
	Lap      int    `json:"lap"`
	Position int    `json:"position"`
	Time     string `json:"time"`
}

type DriverStandingDoc struct {
	DriverID    string          `json:"driverId"`
	DriverName  string          `json:"driverName"`
	Position    int             `json:"position"`
	Points      decimal.Decimal `json:"points"`
	Wins        int             `json:"wins"`
	Constructor string          `json:"constructor"`
}

type ConstructorStandingDoc struct {
	ConstructorID string          `json:"constructorId"`
	Constructor   string          `json:"constructor"`
	Position      int             `json:"position"`
	Points        decimal.Decimal `json:"points"`
	Wins          int             `json:"wins"`
}
