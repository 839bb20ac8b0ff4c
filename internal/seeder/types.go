package seeder

// SinkConfig controls how a generated dataset is written into a table.
type SinkConfig struct {
	Table         string // Target table; must be a plain identifier
	Batch         int    // Rows per INSERT statement
	Truncate      bool   // Clear the table before inserting
	CreateTable   bool   // CREATE TABLE IF NOT EXISTS from the dataset's value kinds
	NoTransaction bool   // Disable transaction wrapping
}

// SinkResult reports what Seed wrote.
type SinkResult struct {
	Table     string
	Columns   []string
	Rows      int
	Batches   int
	Created   bool
	Truncated bool
}

type column struct {
	Field   string
	Name    string
	SQLType string
}
