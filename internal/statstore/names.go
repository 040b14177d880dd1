package statstore

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"

	"github.com/Chrisc1124/statpad/internal/apptype"
	"github.com/Chrisc1124/statpad/internal/metrics"
)

// AllKnownNames returns every resolvable name of one kind, ordered by name.
// This feeds entity index builds.
func (s *Store) AllKnownNames(ctx context.Context, kind apptype.EntityKind) ([]apptype.NameEntry, error) {
	done := metrics.TimeOp("db_all_known_names")
	success := false
	defer func() { done(success) }()
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var entries []apptype.NameEntry
	switch kind {
	case apptype.KindPlayer:
		stmt, err := s.getPreparedStmt(ctx, db, "SELECT player_id, name FROM players ORDER BY name")
		if err != nil {
			return nil, err
		}
		rows, err := stmt.QueryContext(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to query player names")
		}
		defer rows.Close()
		for rows.Next() {
			e := apptype.NameEntry{Kind: apptype.KindPlayer}
			if err := rows.Scan(&e.ID, &e.Name); err != nil {
				return nil, errors.Wrap(err, "failed to scan player name")
			}
			entries = append(entries, e)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
	case apptype.KindTeam:
		stmt, err := s.getPreparedStmt(ctx, db, "SELECT team_id, team_name, team_abbrev, city FROM teams ORDER BY team_name")
		if err != nil {
			return nil, err
		}
		rows, err := stmt.QueryContext(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to query team names")
		}
		defer rows.Close()
		for rows.Next() {
			e := apptype.NameEntry{Kind: apptype.KindTeam}
			var city sql.NullString
			if err := rows.Scan(&e.ID, &e.Name, &e.Abbrev, &city); err != nil {
				return nil, errors.Wrap(err, "failed to scan team name")
			}
			e.City = city.String
			entries = append(entries, e)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Newf("unknown entity kind %q", kind)
	}

	success = true
	return entries, nil
}

// CountNames returns the number of rows in one name pool. Used by health
// reporting.
func (s *Store) CountNames(ctx context.Context, kind apptype.EntityKind) (int, error) {
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}
	table := "players"
	if kind == apptype.KindTeam {
		table = "teams"
	}
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, errors.Wrapf(err, "failed to count %s", table)
	}
	return n, nil
}
