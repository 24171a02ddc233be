// Package database provides SQLite-based storage for marsatmo run history.
//
// Every processed spectrum report is saved as JSON alongside queryable
// scalar columns (source file, detection outcome, radius). The stored
// history feeds the compare command, which tracks detection flips and
// radius drift for a source file across runs.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
