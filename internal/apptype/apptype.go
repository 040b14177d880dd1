package apptype

// EntityKind discriminates the two name pools served by the entity index.
type EntityKind string

const (
	KindPlayer EntityKind = "player"
	KindTeam   EntityKind = "team"
)

// NameEntry is one resolvable name as fed into the entity index.
type NameEntry struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	Abbrev  string     `json:"abbrev,omitempty"`
	City    string     `json:"city,omitempty"`
	Kind    EntityKind `json:"kind"`
	Aliases []string   `json:"aliases,omitempty"`
}

// Team is a franchise row.
type Team struct {
	ID         int64  `json:"team_id"`
	Name       string `json:"team_name"`
	Abbrev     string `json:"team_abbrev"`
	City       string `json:"city,omitempty"`
	Conference string `json:"conference,omitempty"`
	Division   string `json:"division,omitempty"`
	Arena      string `json:"arena,omitempty"`
}

// Player is a roster row.
type Player struct {
	ID        int64  `json:"player_id"`
	Name      string `json:"name"`
	TeamID    int64  `json:"team_id,omitempty"`
	Position  string `json:"position,omitempty"`
	Age       int    `json:"age,omitempty"`
	Height    string `json:"height,omitempty"`
	Weight    int    `json:"weight,omitempty"`
	College   string `json:"college,omitempty"`
	DraftYear int    `json:"draft_year,omitempty"`
	DraftPick int    `json:"draft_pick,omitempty"`
}

// Season is one league year, canonical form "YYYY-YY".
type Season struct {
	ID        int64  `json:"season_id"`
	Season    string `json:"season"`
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`
	IsCurrent bool   `json:"is_current"`
}

// PlayerSeasonLine is one player's line for one season. Counting stats are
// per-game averages, including the made/attempted pairs.
type PlayerSeasonLine struct {
	PlayerID   int64  `json:"player_id"`
	Name       string `json:"name"`
	Position   string `json:"position,omitempty"`
	TeamName   string `json:"team_name,omitempty"`
	TeamAbbrev string `json:"team_abbrev,omitempty"`
	Season     string `json:"season"`

	GamesPlayed int `json:"games_played"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`

	MinutesPerGame float64 `json:"minutes_per_game"`
	PointsPerGame  float64 `json:"points_per_game"`

	FieldGoalsMade      float64 `json:"field_goals_made"`
	FieldGoalsAttempted float64 `json:"field_goals_attempted"`
	FieldGoalPct        float64 `json:"field_goal_percentage"`

	ThreePointersMade      float64 `json:"three_pointers_made"`
	ThreePointersAttempted float64 `json:"three_pointers_attempted"`
	ThreePointPct          float64 `json:"three_point_percentage"`

	FreeThrowsMade      float64 `json:"free_throws_made"`
	FreeThrowsAttempted float64 `json:"free_throws_attempted"`
	FreeThrowPct        float64 `json:"free_throw_percentage"`

	OffensiveRebounds float64 `json:"offensive_rebounds"`
	DefensiveRebounds float64 `json:"defensive_rebounds"`
	TotalRebounds     float64 `json:"total_rebounds"`
	Assists           float64 `json:"assists"`
	Turnovers         float64 `json:"turnovers"`
	Steals            float64 `json:"steals"`
	Blocks            float64 `json:"blocks"`
	PersonalFouls     float64 `json:"personal_fouls"`

	FantasyPoints   float64 `json:"fantasy_points"`
	DoubleDoubles   int     `json:"double_doubles"`
	TripleDoubles   int     `json:"triple_doubles"`
	PlusMinus       float64 `json:"plus_minus"`
	TrueShootingPct float64 `json:"true_shooting_percentage"`
}

// PlayerComparison pairs two season lines for the same season.
type PlayerComparison struct {
	Season  string            `json:"season"`
	Player1 *PlayerSeasonLine `json:"player1"`
	Player2 *PlayerSeasonLine `json:"player2"`
}

// BoxLine is one player's line in one head-to-head game.
type BoxLine struct {
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
	Rebounds int    `json:"rebounds"`
	Assists  int    `json:"assists"`
}

// HeadToHeadLog is one game in which both compared players appeared on
// opposing teams.
type HeadToHeadLog struct {
	GameID         int64   `json:"game_id"`
	GameDate       string  `json:"game_date"`
	Season         string  `json:"season"`
	HomeTeamName   string  `json:"home_team_name"`
	HomeTeamAbbrev string  `json:"home_team_abbrev"`
	AwayTeamName   string  `json:"away_team_name"`
	AwayTeamAbbrev string  `json:"away_team_abbrev"`
	HomeScore      int     `json:"home_score"`
	AwayScore      int     `json:"away_score"`
	HomeWin        bool    `json:"home_win"`
	GameType       string  `json:"game_type,omitempty"`
	Player1        BoxLine `json:"player1"`
	Player2        BoxLine `json:"player2"`
}

// HeadToHeadResult wraps the game logs for a player head-to-head lookup.
type HeadToHeadResult struct {
	Player1  string          `json:"player1"`
	Player2  string          `json:"player2"`
	Season   string          `json:"season,omitempty"`
	LastN    int             `json:"last_n,omitempty"`
	GameLogs []HeadToHeadLog `json:"game_logs"`
}

// TeamSeasonLine aggregates one team's games for one season.
type TeamSeasonLine struct {
	TeamID            int64   `json:"team_id"`
	TeamName          string  `json:"team_name"`
	TeamAbbrev        string  `json:"team_abbrev"`
	Season            string  `json:"season"`
	Wins              int     `json:"wins"`
	Losses            int     `json:"losses"`
	WinPct            float64 `json:"win_percentage"`
	PointsPerGame     float64 `json:"points_per_game"`
	OpponentPPG       float64 `json:"opponent_points_per_game"`
	PointDifferential float64 `json:"point_differential"`
}

// TeamGameLog is one meeting between the two compared teams.
type TeamGameLog struct {
	GameID       int64  `json:"game_id"`
	GameDate     string `json:"game_date"`
	Season       string `json:"season"`
	HomeTeamName string `json:"home_team_name"`
	AwayTeamName string `json:"away_team_name"`
	HomeScore    int    `json:"home_score"`
	AwayScore    int    `json:"away_score"`
	HomeWin      bool   `json:"home_win"`
	GameType     string `json:"game_type,omitempty"`
}

// TeamComparison pairs two team season lines with the meetings between them.
type TeamComparison struct {
	Season   string         `json:"season"`
	Team1    TeamSeasonLine `json:"team1"`
	Team2    TeamSeasonLine `json:"team2"`
	GameLogs []TeamGameLog  `json:"game_logs,omitempty"`
}

// PlayerStatsResult wraps a single season line for response payloads.
type PlayerStatsResult struct {
	Stats *PlayerSeasonLine `json:"stats"`
}

// TeamGameLogsResult wraps the meetings between two teams, most recent first.
type TeamGameLogsResult struct {
	Team1    string        `json:"team1"`
	Team2    string        `json:"team2"`
	Season   string        `json:"season,omitempty"`
	LastN    int           `json:"last_n,omitempty"`
	GameLogs []TeamGameLog `json:"game_logs"`
}
