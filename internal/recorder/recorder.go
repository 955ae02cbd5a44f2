package recorder

// CycleRecord captures one completed market-data refresh cycle.
type CycleRecord struct {
	Stocks      int
	Indices     int
	Commodities int
	ElapsedMS   int64
}

// CloseRecord captures one market-close save.
type CloseRecord struct {
	Symbols int
	File    string
}

// Recorder persists operational history. Failures are logged by callers
// and never interrupt the refresh loops.
type Recorder interface {
	RecordCycle(rec *CycleRecord) error
	RecordCloseSave(rec *CloseRecord) error
	Close() error
}
