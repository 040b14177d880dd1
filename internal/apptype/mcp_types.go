package apptype

// QueryArgs represents the arguments for the query tool
type QueryArgs struct {
	Query string `json:"query" jsonschema:"The question in plain English, e.g. 'Compare LeBron James and Kevin Durant in the 2023-24 season'."`
}

// PlayerSeasonStatsArgs represents the arguments for the player_season_stats tool
type PlayerSeasonStatsArgs struct {
	Player string `json:"player" jsonschema:"Player name. Partial names and common short forms are resolved."`
	Season string `json:"season,omitempty" jsonschema:"Season in YYYY-YY form, e.g. 2023-24. If omitted, all seasons are returned."`
}

// PlayerSeasonStatsResult carries one season line, or the full career when
// no season was requested.
type PlayerSeasonStatsResult struct {
	Stats   *PlayerSeasonLine  `json:"stats,omitempty"`
	Seasons []PlayerSeasonLine `json:"seasons,omitempty"`
}

// ComparePlayersArgs represents the arguments for the compare_players tool
type ComparePlayersArgs struct {
	Player1 string `json:"player1" jsonschema:"First player name."`
	Player2 string `json:"player2" jsonschema:"Second player name."`
	Season  string `json:"season" jsonschema:"Season in YYYY-YY form, e.g. 2023-24."`
}

// HeadToHeadGamesArgs represents the arguments for the head_to_head_games tool
type HeadToHeadGamesArgs struct {
	Player1 string `json:"player1" jsonschema:"First player name."`
	Player2 string `json:"player2" jsonschema:"Second player name."`
	Season  string `json:"season,omitempty" jsonschema:"Season in YYYY-YY form. If omitted, meetings across all seasons are returned."`
	LastN   int    `json:"lastN,omitempty" jsonschema:"Limit to the most recent N meetings. 0 returns all available games."`
}

// CompareTeamsArgs represents the arguments for the compare_teams tool
type CompareTeamsArgs struct {
	Team1           string `json:"team1" jsonschema:"First team name or abbreviation."`
	Team2           string `json:"team2" jsonschema:"Second team name or abbreviation."`
	Season          string `json:"season,omitempty" jsonschema:"Season in YYYY-YY form. If omitted, the current season is compared."`
	IncludeGameLogs bool   `json:"includeGameLogs,omitempty" jsonschema:"Include the head-to-head meeting list alongside the season aggregates."`
	LastN           int    `json:"lastN,omitempty" jsonschema:"Limit included meetings to the most recent N."`
}

// ListKnownNamesArgs represents the arguments for the list_known_names tool
type ListKnownNamesArgs struct {
	Kind string `json:"kind,omitempty" jsonschema:"Restrict to one pool: player|team. If omitted, both pools are returned."`
}

// KnownNamesResult holds the resolvable names grouped by pool.
type KnownNamesResult struct {
	Players []NameEntry `json:"players,omitempty"`
	Teams   []NameEntry `json:"teams,omitempty"`
}

// RefreshEntityIndexArgs represents the arguments for the refresh_entity_index tool
type RefreshEntityIndexArgs struct{}

// RefreshEntityIndexResult reports the rebuilt index sizes.
type RefreshEntityIndexResult struct {
	Players   int   `json:"players"`
	Teams     int   `json:"teams"`
	ElapsedMs int64 `json:"elapsedMs"`
}

// Health
type HealthArgs struct{}

type HealthResult struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	BuildDate string `json:"buildDate"`
	Database  string `json:"database"`
	Players   int    `json:"players"`
	Teams     int    `json:"teams"`
}
