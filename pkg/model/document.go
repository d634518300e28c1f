package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Scope is the (season, round) coordinate an ingestion operation targets.
// Season 0 marks collections without a season dimension (seasons, circuits),
// round 0 marks season level documents.
type Scope struct {
	Season int `json:"season"`
	Round  int `json:"round"`
}

// Envelope carries the provenance metadata attached to every stored
// document. (Collection, Season, Round) is the idempotency filter:
// re-ingesting a scope replaces all documents matching that triple.
type Envelope struct {
	Season         int       `json:"season"`
	Round          int       `json:"round"`
	SourceEndpoint string    `json:"source_endpoint"`
	IngestedAt     time.Time `json:"ingested_at"`
	DataSource     string    `json:"data_source"`
	RunID          uuid.UUID `json:"run_id"`
}

// RawDocument is one entry of the document store: an entity payload
// plus its metadata envelope, addressed by collection name.
type RawDocument struct {
	ID         int64  `json:"id"`
	Collection string `json:"collection"`
	Envelope
	Data any `json:"data"`
}
