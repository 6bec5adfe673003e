package tracing

import (
	"sync"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/tally/datarecording"
	"github.com/sarchlab/tally/idgen"
	"github.com/sarchlab/tally/processor"
)

// Tables written by the DBTracer.
const (
	RecordTable = "records"
	QueryTable  = "queries"
)

// RecordEntry is a row of the records table.
type RecordEntry struct {
	Seq    int
	Line   int
	Artist string
	Song   string
	Count  int
}

// QueryEntry is a row of the queries table.
type QueryEntry struct {
	Seq      int
	Line     int
	Artist   string
	Response string
	Found    bool
}

// MapDBTables maps the tables that a DBTracer writes onto their entry types.
func MapDBTables(reader datarecording.DataReader) {
	reader.MapTable(RecordTable, RecordEntry{})
	reader.MapTable(QueryTable, QueryEntry{})
}

// DBTracer stores every record and top query in a database.
type DBTracer struct {
	mu         sync.Mutex
	backend    datarecording.DataRecorder
	seq        *idgen.Sequential
	line       int
	terminated bool
}

// NewDBTracer creates a new DBTracer and the tables it writes to.
func NewDBTracer(dataRecorder datarecording.DataRecorder) *DBTracer {
	dataRecorder.CreateTable(RecordTable, RecordEntry{})
	dataRecorder.CreateTable(QueryTable, QueryEntry{})

	t := &DBTracer{
		backend: dataRecorder,
		seq:     idgen.NewSequential(),
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// StartLine remembers the line number for the entries that follow.
func (t *DBTracer) StartLine(_ string, number int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.line = number
}

// Record stores a record.
func (t *DBTracer) Record(detail processor.RecordDetail) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.InsertData(RecordTable, RecordEntry{
		Seq:    int(t.seq.Next()),
		Line:   t.line,
		Artist: detail.Artist,
		Song:   detail.Song,
		Count:  detail.Count,
	})
}

// Top stores a top query.
func (t *DBTracer) Top(detail processor.TopDetail) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.InsertData(QueryTable, QueryEntry{
		Seq:      int(t.seq.Next()),
		Line:     t.line,
		Artist:   detail.Artist,
		Response: detail.Response,
		Found:    detail.Found,
	})
}

// Terminate flushes the stored entries.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	t.terminated = true
	t.backend.Flush()
}
