package statstore

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/Chrisc1124/statpad/internal/apptype"
	"github.com/Chrisc1124/statpad/internal/metrics"
)

// seedSeasons covers the league years the importers understand.
var seedSeasons = []apptype.Season{
	{Season: "2015-16", StartYear: 2015, EndYear: 2016},
	{Season: "2016-17", StartYear: 2016, EndYear: 2017},
	{Season: "2017-18", StartYear: 2017, EndYear: 2018},
	{Season: "2018-19", StartYear: 2018, EndYear: 2019},
	{Season: "2019-20", StartYear: 2019, EndYear: 2020},
	{Season: "2020-21", StartYear: 2020, EndYear: 2021},
	{Season: "2021-22", StartYear: 2021, EndYear: 2022},
	{Season: "2022-23", StartYear: 2022, EndYear: 2023},
	{Season: "2023-24", StartYear: 2023, EndYear: 2024},
	{Season: "2024-25", StartYear: 2024, EndYear: 2025, IsCurrent: true},
}

// seedTeams is the current 30-team league.
var seedTeams = []apptype.Team{
	{Abbrev: "ATL", Name: "Atlanta Hawks", City: "Atlanta", Conference: "East", Division: "Southeast", Arena: "State Farm Arena"},
	{Abbrev: "BOS", Name: "Boston Celtics", City: "Boston", Conference: "East", Division: "Atlantic", Arena: "TD Garden"},
	{Abbrev: "BKN", Name: "Brooklyn Nets", City: "Brooklyn", Conference: "East", Division: "Atlantic", Arena: "Barclays Center"},
	{Abbrev: "CHA", Name: "Charlotte Hornets", City: "Charlotte", Conference: "East", Division: "Southeast", Arena: "Spectrum Center"},
	{Abbrev: "CHI", Name: "Chicago Bulls", City: "Chicago", Conference: "East", Division: "Central", Arena: "United Center"},
	{Abbrev: "CLE", Name: "Cleveland Cavaliers", City: "Cleveland", Conference: "East", Division: "Central", Arena: "Rocket Mortgage FieldHouse"},
	{Abbrev: "DAL", Name: "Dallas Mavericks", City: "Dallas", Conference: "West", Division: "Southwest", Arena: "American Airlines Center"},
	{Abbrev: "DEN", Name: "Denver Nuggets", City: "Denver", Conference: "West", Division: "Northwest", Arena: "Ball Arena"},
	{Abbrev: "DET", Name: "Detroit Pistons", City: "Detroit", Conference: "East", Division: "Central", Arena: "Little Caesars Arena"},
	{Abbrev: "GSW", Name: "Golden State Warriors", City: "San Francisco", Conference: "West", Division: "Pacific", Arena: "Chase Center"},
	{Abbrev: "HOU", Name: "Houston Rockets", City: "Houston", Conference: "West", Division: "Southwest", Arena: "Toyota Center"},
	{Abbrev: "IND", Name: "Indiana Pacers", City: "Indianapolis", Conference: "East", Division: "Central", Arena: "Gainbridge Fieldhouse"},
	{Abbrev: "LAC", Name: "Los Angeles Clippers", City: "Los Angeles", Conference: "West", Division: "Pacific", Arena: "Intuit Dome"},
	{Abbrev: "LAL", Name: "Los Angeles Lakers", City: "Los Angeles", Conference: "West", Division: "Pacific", Arena: "Crypto.com Arena"},
	{Abbrev: "MEM", Name: "Memphis Grizzlies", City: "Memphis", Conference: "West", Division: "Southwest", Arena: "FedExForum"},
	{Abbrev: "MIA", Name: "Miami Heat", City: "Miami", Conference: "East", Division: "Southeast", Arena: "Kaseya Center"},
	{Abbrev: "MIL", Name: "Milwaukee Bucks", City: "Milwaukee", Conference: "East", Division: "Central", Arena: "Fiserv Forum"},
	{Abbrev: "MIN", Name: "Minnesota Timberwolves", City: "Minneapolis", Conference: "West", Division: "Northwest", Arena: "Target Center"},
	{Abbrev: "NOP", Name: "New Orleans Pelicans", City: "New Orleans", Conference: "West", Division: "Southwest", Arena: "Smoothie King Center"},
	{Abbrev: "NYK", Name: "New York Knicks", City: "New York", Conference: "East", Division: "Atlantic", Arena: "Madison Square Garden"},
	{Abbrev: "OKC", Name: "Oklahoma City Thunder", City: "Oklahoma City", Conference: "West", Division: "Northwest", Arena: "Paycom Center"},
	{Abbrev: "ORL", Name: "Orlando Magic", City: "Orlando", Conference: "East", Division: "Southeast", Arena: "Kia Center"},
	{Abbrev: "PHI", Name: "Philadelphia 76ers", City: "Philadelphia", Conference: "East", Division: "Atlantic", Arena: "Wells Fargo Center"},
	{Abbrev: "PHX", Name: "Phoenix Suns", City: "Phoenix", Conference: "West", Division: "Pacific", Arena: "Footprint Center"},
	{Abbrev: "POR", Name: "Portland Trail Blazers", City: "Portland", Conference: "West", Division: "Northwest", Arena: "Moda Center"},
	{Abbrev: "SAC", Name: "Sacramento Kings", City: "Sacramento", Conference: "West", Division: "Pacific", Arena: "Golden 1 Center"},
	{Abbrev: "SAS", Name: "San Antonio Spurs", City: "San Antonio", Conference: "West", Division: "Southwest", Arena: "Frost Bank Center"},
	{Abbrev: "TOR", Name: "Toronto Raptors", City: "Toronto", Conference: "East", Division: "Atlantic", Arena: "Scotiabank Arena"},
	{Abbrev: "UTA", Name: "Utah Jazz", City: "Salt Lake City", Conference: "West", Division: "Northwest", Arena: "Delta Center"},
	{Abbrev: "WAS", Name: "Washington Wizards", City: "Washington", Conference: "East", Division: "Southeast", Arena: "Capital One Arena"},
}

// KnownSeasons returns the seeded league years in chronological order.
func KnownSeasons() []string {
	out := make([]string, len(seedSeasons))
	for i, s := range seedSeasons {
		out[i] = s.Season
	}
	return out
}

// CurrentSeason returns the league year marked current in the seed data.
func CurrentSeason() string {
	for _, s := range seedSeasons {
		if s.IsCurrent {
			return s.Season
		}
	}
	return seedSeasons[len(seedSeasons)-1].Season
}

// SeedSeasons inserts the known league years. Existing rows are kept.
func (s *Store) SeedSeasons(ctx context.Context) (int, error) {
	done := metrics.TimeOp("db_seed_seasons")
	success := false
	defer func() { done(success) }()
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	inserted := 0
	for _, season := range seedSeasons {
		res, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO seasons (season, start_year, end_year, is_current) VALUES (?, ?, ?, ?)",
			season.Season, season.StartYear, season.EndYear, season.IsCurrent)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to seed season %s", season.Season)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	success = true
	return inserted, nil
}

// SeedTeams inserts the league's franchises. Existing rows are kept.
func (s *Store) SeedTeams(ctx context.Context) (int, error) {
	done := metrics.TimeOp("db_seed_teams")
	success := false
	defer func() { done(success) }()
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	inserted := 0
	for _, team := range seedTeams {
		res, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO teams (team_abbrev, team_name, city, conference, division, arena) VALUES (?, ?, ?, ?, ?, ?)",
			team.Abbrev, team.Name, team.City, team.Conference, team.Division, team.Arena)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to seed team %s", team.Abbrev)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	success = true
	return inserted, nil
}
