package ir

// NOTE: These are store-internal types used by the SQLite history log.

// MatchRun records one matcher invocation (store-layer).
type MatchRun struct {
	ID       string   `json:"id"`  // UUID
	Seq      int64    `json:"seq"` // Logical clock, assigned by the store
	Words    []string `json:"words"`
	MinMatch int      `json:"min_match"`
	Matches  []Match  `json:"matches"`
}
