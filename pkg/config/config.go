package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                 string   // connection string for the database
	WaitForServices    string   // duration to wait for other services to be ready
	LogLevel           string   // sets the log level (zap log level values)
	LogFormat          string   // text vs json
	LogConfig          string   // path to log config file
	BaseURL            string   // base URL of the Ergast compatible API
	DataSource         string   // value for the data_source metadata attribute
	PageSize           int      // page size for API requests
	MaxTries           int      // max attempts for a single API request
	RequestsPerSecond  float64  // rate limit towards the API
	FirstSeason        int      // first season of the ingestion range
	LastSeason         int      // last season of the ingestion range (0 means current year)
	Entities           []string // entity subset to ingest (empty means all)
	Parallel           bool     // run writers of a tier concurrently
	MigrationSourceURL string   // location of migration files
)
