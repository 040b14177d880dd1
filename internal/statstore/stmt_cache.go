package statstore

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"

	"github.com/Chrisc1124/statpad/internal/metrics"
)

// getPreparedStmt returns or prepares and caches a statement.
func (s *Store) getPreparedStmt(ctx context.Context, db *sql.DB, sqlText string) (*sql.Stmt, error) {
	// fast path read
	s.stmtMu.RLock()
	if stmt, ok := s.stmtCache[sqlText]; ok {
		s.stmtMu.RUnlock()
		metrics.Default().IncStmtCacheHit("prepare")
		return stmt, nil
	}
	s.stmtMu.RUnlock()
	metrics.Default().IncStmtCacheMiss("prepare")

	// prepare and store
	stmt, err := db.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare statement")
	}
	s.stmtMu.Lock()
	if cached, ok := s.stmtCache[sqlText]; ok {
		// Another goroutine prepared it first; keep theirs.
		s.stmtMu.Unlock()
		_ = stmt.Close()
		return cached, nil
	}
	s.stmtCache[sqlText] = stmt
	s.stmtMu.Unlock()
	return stmt, nil
}
