package sqlite

// Schema DDL for the run journal. Statements are idempotent so an existing
// journal.db is reused across invocations.
const (
	createRuns = `CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    status TEXT NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT,
    counter1 INTEGER NOT NULL DEFAULT 0,
    counter2 INTEGER NOT NULL DEFAULT 0,
    limit_value INTEGER NOT NULL DEFAULT 0,
    steps INTEGER NOT NULL DEFAULT 0,
    error TEXT
);`

	createSteps = `CREATE TABLE IF NOT EXISTS steps (
    run_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    processor TEXT NOT NULL,
    step INTEGER NOT NULL,
    more INTEGER NOT NULL,
    PRIMARY KEY (run_id, seq),
    FOREIGN KEY (run_id) REFERENCES runs(run_id)
);`

	createStepsIndex = `CREATE INDEX IF NOT EXISTS idx_steps_processor ON steps(run_id, processor);`
)

// schemaStatements lists DDL in execution order.
var schemaStatements = []string{
	createRuns,
	createSteps,
	createStepsIndex,
}
