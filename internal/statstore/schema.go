package statstore

// schema is the DDL applied in one transaction when a database is opened.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS teams (
        team_id INTEGER PRIMARY KEY AUTOINCREMENT,
        team_abbrev TEXT UNIQUE NOT NULL,
        team_name TEXT UNIQUE NOT NULL,
        conference TEXT,
        division TEXT,
        city TEXT,
        arena TEXT
    )`,

	`CREATE TABLE IF NOT EXISTS players (
        player_id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT UNIQUE NOT NULL,
        team_id INTEGER,
        position TEXT,
        age INTEGER,
        height TEXT,
        weight INTEGER,
        college TEXT,
        draft_year INTEGER,
        draft_pick INTEGER,
        FOREIGN KEY (team_id) REFERENCES teams(team_id)
    )`,

	`CREATE TABLE IF NOT EXISTS seasons (
        season_id INTEGER PRIMARY KEY AUTOINCREMENT,
        season TEXT UNIQUE NOT NULL,
        start_year INTEGER NOT NULL,
        end_year INTEGER NOT NULL,
        is_current BOOLEAN DEFAULT 0
    )`,

	// Season-level aggregates; counting stats are per-game averages.
	`CREATE TABLE IF NOT EXISTS player_stats (
        stat_id INTEGER PRIMARY KEY AUTOINCREMENT,
        player_id INTEGER NOT NULL,
        season_id INTEGER NOT NULL,
        team_id INTEGER,
        games_played INTEGER DEFAULT 0,
        wins INTEGER DEFAULT 0,
        losses INTEGER DEFAULT 0,
        minutes_per_game REAL DEFAULT 0,
        points_per_game REAL DEFAULT 0,
        field_goals_made REAL DEFAULT 0,
        field_goals_attempted REAL DEFAULT 0,
        field_goal_percentage REAL DEFAULT 0,
        three_pointers_made REAL DEFAULT 0,
        three_pointers_attempted REAL DEFAULT 0,
        three_point_percentage REAL DEFAULT 0,
        free_throws_made REAL DEFAULT 0,
        free_throws_attempted REAL DEFAULT 0,
        free_throw_percentage REAL DEFAULT 0,
        offensive_rebounds REAL DEFAULT 0,
        defensive_rebounds REAL DEFAULT 0,
        total_rebounds REAL DEFAULT 0,
        assists REAL DEFAULT 0,
        turnovers REAL DEFAULT 0,
        steals REAL DEFAULT 0,
        blocks REAL DEFAULT 0,
        personal_fouls REAL DEFAULT 0,
        fantasy_points REAL DEFAULT 0,
        double_doubles INTEGER DEFAULT 0,
        triple_doubles INTEGER DEFAULT 0,
        plus_minus REAL DEFAULT 0,
        true_shooting_percentage REAL DEFAULT 0,
        UNIQUE(player_id, season_id),
        FOREIGN KEY (player_id) REFERENCES players(player_id),
        FOREIGN KEY (season_id) REFERENCES seasons(season_id),
        FOREIGN KEY (team_id) REFERENCES teams(team_id)
    )`,

	`CREATE TABLE IF NOT EXISTS games (
        game_id INTEGER PRIMARY KEY AUTOINCREMENT,
        season_id INTEGER NOT NULL,
        game_date DATE NOT NULL,
        home_team_id INTEGER NOT NULL,
        away_team_id INTEGER NOT NULL,
        home_score INTEGER DEFAULT 0,
        away_score INTEGER DEFAULT 0,
        home_win BOOLEAN DEFAULT 0,
        game_type TEXT DEFAULT 'Regular Season',
        UNIQUE(season_id, game_date, home_team_id, away_team_id),
        FOREIGN KEY (season_id) REFERENCES seasons(season_id),
        FOREIGN KEY (home_team_id) REFERENCES teams(team_id),
        FOREIGN KEY (away_team_id) REFERENCES teams(team_id)
    )`,

	// Per-player box scores.
	`CREATE TABLE IF NOT EXISTS game_stats (
        game_stat_id INTEGER PRIMARY KEY AUTOINCREMENT,
        game_id INTEGER NOT NULL,
        player_id INTEGER NOT NULL,
        team_id INTEGER NOT NULL,
        minutes_played REAL DEFAULT 0,
        points INTEGER DEFAULT 0,
        field_goals_made INTEGER DEFAULT 0,
        field_goals_attempted INTEGER DEFAULT 0,
        three_pointers_made INTEGER DEFAULT 0,
        three_pointers_attempted INTEGER DEFAULT 0,
        free_throws_made INTEGER DEFAULT 0,
        free_throws_attempted INTEGER DEFAULT 0,
        offensive_rebounds INTEGER DEFAULT 0,
        defensive_rebounds INTEGER DEFAULT 0,
        total_rebounds INTEGER DEFAULT 0,
        assists INTEGER DEFAULT 0,
        turnovers INTEGER DEFAULT 0,
        steals INTEGER DEFAULT 0,
        blocks INTEGER DEFAULT 0,
        personal_fouls INTEGER DEFAULT 0,
        plus_minus INTEGER DEFAULT 0,
        UNIQUE(game_id, player_id),
        FOREIGN KEY (game_id) REFERENCES games(game_id),
        FOREIGN KEY (player_id) REFERENCES players(player_id),
        FOREIGN KEY (team_id) REFERENCES teams(team_id)
    )`,

	`CREATE INDEX IF NOT EXISTS idx_players_name ON players(name)`,
	`CREATE INDEX IF NOT EXISTS idx_player_stats_player_season ON player_stats(player_id, season_id)`,
	`CREATE INDEX IF NOT EXISTS idx_game_stats_game_player ON game_stats(game_id, player_id)`,
	`CREATE INDEX IF NOT EXISTS idx_game_stats_player ON game_stats(player_id)`,
	`CREATE INDEX IF NOT EXISTS idx_games_date ON games(game_date)`,
	`CREATE INDEX IF NOT EXISTS idx_games_teams ON games(home_team_id, away_team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_games_season ON games(season_id)`,
}
