package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/Chrisc1124/statpad/internal/apptype"
	"github.com/Chrisc1124/statpad/internal/config"
	"github.com/Chrisc1124/statpad/internal/metrics"
	"github.com/Chrisc1124/statpad/internal/statstore"
)

// apiSource pulls league data from a hosted stats API. Endpoints are
// cursor-paginated; the free tier is request-rate capped, so every call
// clears a client-side limiter first.
type apiSource struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter

	teamOnce sync.Once
	teamErr  error
	teamByID map[int64]apptype.Team
}

func newAPISource(cfg config.IngestConfig) (*apiSource, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("ingest.api_key is required for the api source")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if base == "" {
		return nil, errors.New("ingest.api_base_url is required for the api source")
	}
	timeout := time.Duration(cfg.HTTPTimeoutS) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 1
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}
	return &apiSource{
		baseURL: base,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(perSec), burst),
	}, nil
}

type apiTeam struct {
	ID           int64  `json:"id"`
	Abbreviation string `json:"abbreviation"`
	City         string `json:"city"`
	Conference   string `json:"conference"`
	Division     string `json:"division"`
	FullName     string `json:"full_name"`
}

type apiPlayer struct {
	ID          int64   `json:"id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Position    string  `json:"position"`
	Height      string  `json:"height"`
	Weight      string  `json:"weight"`
	College     string  `json:"college"`
	DraftYear   int     `json:"draft_year"`
	DraftNumber int     `json:"draft_number"`
	Team        apiTeam `json:"team"`
}

// apiGameRef is the slim game object embedded in per-player stat rows.
type apiGameRef struct {
	ID            int64  `json:"id"`
	Date          string `json:"date"`
	HomeTeamID    int64  `json:"home_team_id"`
	VisitorTeamID int64  `json:"visitor_team_id"`
	Postseason    bool   `json:"postseason"`
}

// apiGameRow is the full game object from the games endpoint.
type apiGameRow struct {
	Date             string  `json:"date"`
	HomeTeam         apiTeam `json:"home_team"`
	VisitorTeam      apiTeam `json:"visitor_team"`
	HomeTeamScore    int     `json:"home_team_score"`
	VisitorTeamScore int     `json:"visitor_team_score"`
	Postseason       bool    `json:"postseason"`
	Status           string  `json:"status"`
}

type apiStatRow struct {
	Min       string     `json:"min"`
	Pts       int        `json:"pts"`
	Fgm       int        `json:"fgm"`
	Fga       int        `json:"fga"`
	Fg3m      int        `json:"fg3m"`
	Fg3a      int        `json:"fg3a"`
	Ftm       int        `json:"ftm"`
	Fta       int        `json:"fta"`
	Oreb      int        `json:"oreb"`
	Dreb      int        `json:"dreb"`
	Reb       int        `json:"reb"`
	Ast       int        `json:"ast"`
	Stl       int        `json:"stl"`
	Blk       int        `json:"blk"`
	Turnover  int        `json:"turnover"`
	Pf        int        `json:"pf"`
	PlusMinus int        `json:"plus_minus"`
	Player    apiPlayer  `json:"player"`
	Team      apiTeam    `json:"team"`
	Game      apiGameRef `json:"game"`
}

// apiSeasonLine embeds the store's season line directly; the averages
// endpoint serves the same snake_case stat names the store keeps.
type apiSeasonLine struct {
	apptype.PlayerSeasonLine
	Player apiPlayer `json:"player"`
	Team   apiTeam   `json:"team"`
}

type apiPage[T any] struct {
	Data []T `json:"data"`
	Meta struct {
		NextCursor int `json:"next_cursor"`
	} `json:"meta"`
}

func (s *apiSource) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limit wait interrupted")
	}
	u := s.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to build request for %s", path)
	}
	req.Header.Set("Authorization", s.apiKey)
	req.Header.Set("Accept", "application/json")

	done := metrics.TimeHTTP("upstream " + path)
	resp, err := s.http.Do(req)
	if err != nil {
		done(0)
		return errors.Wrapf(err, "stats api request failed for %s", path)
	}
	defer resp.Body.Close()
	done(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var b struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&b)
		if b.Error != "" {
			return errors.Newf("stats api error for %s: %s", path, b.Error)
		}
		return errors.Newf("stats api status for %s: %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode %s response", path)
	}
	return nil
}

// fetchAll walks a cursor-paginated endpoint to the end.
func fetchAll[T any](ctx context.Context, s *apiSource, path string, query url.Values) ([]T, error) {
	var out []T
	cursor := 0
	for {
		q := url.Values{}
		for k, vs := range query {
			q[k] = vs
		}
		q.Set("per_page", "100")
		if cursor > 0 {
			q.Set("cursor", strconv.Itoa(cursor))
		}
		var page apiPage[T]
		if err := s.getJSON(ctx, path, q, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Data...)
		if page.Meta.NextCursor == 0 {
			return out, nil
		}
		cursor = page.Meta.NextCursor
	}
}

func (s *apiSource) Teams(ctx context.Context) ([]apptype.Team, error) {
	rows, err := fetchAll[apiTeam](ctx, s, "/teams", nil)
	if err != nil {
		return nil, err
	}
	teams := make([]apptype.Team, 0, len(rows))
	for _, r := range rows {
		if r.Abbreviation == "" || r.FullName == "" {
			continue
		}
		teams = append(teams, apptype.Team{
			Name:       r.FullName,
			Abbrev:     r.Abbreviation,
			City:       r.City,
			Conference: r.Conference,
			Division:   r.Division,
		})
	}
	return teams, nil
}

// teams lazily builds the id -> team map used to resolve the home and away
// sides embedded in stat rows as bare ids.
func (s *apiSource) teams(ctx context.Context) (map[int64]apptype.Team, error) {
	s.teamOnce.Do(func() {
		rows, err := fetchAll[apiTeam](ctx, s, "/teams", nil)
		if err != nil {
			s.teamErr = err
			return
		}
		byID := make(map[int64]apptype.Team, len(rows))
		for _, r := range rows {
			byID[r.ID] = apptype.Team{Name: r.FullName, Abbrev: r.Abbreviation, City: r.City}
		}
		s.teamByID = byID
	})
	return s.teamByID, s.teamErr
}

func (s *apiSource) Players(ctx context.Context, season string) ([]apptype.Player, error) {
	year, err := seasonStartYear(season)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("seasons[]", strconv.Itoa(year))
	rows, err := fetchAll[apiPlayer](ctx, s, "/players", q)
	if err != nil {
		return nil, err
	}
	players := make([]apptype.Player, 0, len(rows))
	for _, r := range rows {
		name := playerName(r)
		if name == "" {
			continue
		}
		weight, _ := strconv.Atoi(r.Weight)
		players = append(players, apptype.Player{
			Name:      name,
			Position:  r.Position,
			Height:    r.Height,
			Weight:    weight,
			College:   r.College,
			DraftYear: r.DraftYear,
			DraftPick: r.DraftNumber,
		})
	}
	return players, nil
}

func (s *apiSource) PlayerSeasonAverages(ctx context.Context, season string) ([]apptype.PlayerSeasonLine, error) {
	year, err := seasonStartYear(season)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("season", strconv.Itoa(year))
	rows, err := fetchAll[apiSeasonLine](ctx, s, "/season_averages", q)
	if err != nil {
		return nil, err
	}
	lines := make([]apptype.PlayerSeasonLine, 0, len(rows))
	for _, r := range rows {
		name := playerName(r.Player)
		if name == "" {
			continue
		}
		line := r.PlayerSeasonLine
		line.PlayerID = 0
		line.Name = name
		line.Position = r.Player.Position
		line.TeamAbbrev = r.Team.Abbreviation
		line.TeamName = r.Team.FullName
		line.Season = season
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *apiSource) PlayerGameLogs(ctx context.Context, season string) ([]statstore.GameStatRow, error) {
	year, err := seasonStartYear(season)
	if err != nil {
		return nil, err
	}
	byID, err := s.teams(ctx)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("seasons[]", strconv.Itoa(year))
	rows, err := fetchAll[apiStatRow](ctx, s, "/stats", q)
	if err != nil {
		return nil, err
	}
	stats := make([]statstore.GameStatRow, 0, len(rows))
	for _, r := range rows {
		name := playerName(r.Player)
		home, homeOK := byID[r.Game.HomeTeamID]
		away, awayOK := byID[r.Game.VisitorTeamID]
		if name == "" || !homeOK || !awayOK {
			continue
		}
		stats = append(stats, statstore.GameStatRow{
			PlayerName:             name,
			TeamAbbrev:             r.Team.Abbreviation,
			GameDate:               trimDate(r.Game.Date),
			HomeAbbrev:             home.Abbrev,
			AwayAbbrev:             away.Abbrev,
			GameType:               gameType(r.Game.Postseason),
			MinutesPlayed:          parseMinutes(r.Min),
			Points:                 r.Pts,
			FieldGoalsMade:         r.Fgm,
			FieldGoalsAttempted:    r.Fga,
			ThreePointersMade:      r.Fg3m,
			ThreePointersAttempted: r.Fg3a,
			FreeThrowsMade:         r.Ftm,
			FreeThrowsAttempted:    r.Fta,
			OffensiveRebounds:      r.Oreb,
			DefensiveRebounds:      r.Dreb,
			TotalRebounds:          r.Reb,
			Assists:                r.Ast,
			Turnovers:              r.Turnover,
			Steals:                 r.Stl,
			Blocks:                 r.Blk,
			PersonalFouls:          r.Pf,
			PlusMinus:              r.PlusMinus,
		})
	}
	return stats, nil
}

func (s *apiSource) TeamGameLogs(ctx context.Context, season string) ([]statstore.TeamScoreRow, error) {
	year, err := seasonStartYear(season)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("seasons[]", strconv.Itoa(year))
	rows, err := fetchAll[apiGameRow](ctx, s, "/games", q)
	if err != nil {
		return nil, err
	}
	scores := make([]statstore.TeamScoreRow, 0, 2*len(rows))
	for _, r := range rows {
		if r.Status != "" && r.Status != "Final" {
			continue
		}
		date := trimDate(r.Date)
		scores = append(scores,
			statstore.TeamScoreRow{
				GameDate:   date,
				HomeAbbrev: r.HomeTeam.Abbreviation,
				AwayAbbrev: r.VisitorTeam.Abbreviation,
				TeamAbbrev: r.HomeTeam.Abbreviation,
				Points:     r.HomeTeamScore,
			},
			statstore.TeamScoreRow{
				GameDate:   date,
				HomeAbbrev: r.HomeTeam.Abbreviation,
				AwayAbbrev: r.VisitorTeam.Abbreviation,
				TeamAbbrev: r.VisitorTeam.Abbreviation,
				Points:     r.VisitorTeamScore,
			})
	}
	return scores, nil
}

func playerName(p apiPlayer) string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// seasonStartYear maps "2023-24" to the 2023 the upstream API expects.
func seasonStartYear(season string) (int, error) {
	if len(season) < 4 {
		return 0, errors.Newf("invalid season %q", season)
	}
	year, err := strconv.Atoi(season[:4])
	if err != nil {
		return 0, errors.Newf("invalid season %q", season)
	}
	return year, nil
}

// trimDate cuts an RFC 3339 timestamp down to its date part.
func trimDate(s string) string {
	if i := strings.IndexByte(s, 'T'); i > 0 {
		return s[:i]
	}
	return s
}

// parseMinutes accepts "35:18", "35.5", and "35".
func parseMinutes(min string) float64 {
	min = strings.TrimSpace(min)
	if min == "" {
		return 0
	}
	if i := strings.IndexByte(min, ':'); i >= 0 {
		whole, _ := strconv.Atoi(min[:i])
		secs, _ := strconv.Atoi(min[i+1:])
		return float64(whole) + float64(secs)/60
	}
	v, _ := strconv.ParseFloat(min, 64)
	return v
}

func gameType(postseason bool) string {
	if postseason {
		return "Playoffs"
	}
	return "Regular Season"
}
