package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/scorekeep/server/internal/domain"
	"github.com/scorekeep/server/internal/service"
)

// Handlers binds the protocol actions to the domain services.
type Handlers struct {
	accounts    *service.AccountService
	stats       *service.StatsService
	moderation  *service.ModerationService
	premium     *service.PremiumService
	chats       *service.ChatService
	tournaments *service.TournamentService
}

// NewHandlers creates the handler set.
func NewHandlers(accounts *service.AccountService, stats *service.StatsService, moderation *service.ModerationService,
	premium *service.PremiumService, chats *service.ChatService, tournaments *service.TournamentService) *Handlers {
	return &Handlers{
		accounts:    accounts,
		stats:       stats,
		moderation:  moderation,
		premium:     premium,
		chats:       chats,
		tournaments: tournaments,
	}
}

// Register wires every protocol action into the router.
func (h *Handlers) Register(r *Router) {
	r.Handle("ping", h.ping)
	r.Handle("register", h.register)
	r.Handle("login", h.login)

	r.Handle("update_stats", h.updateStats)
	r.Handle("get_stats", h.getStats)
	r.Handle("get_leaderboard", h.getLeaderboard)
	r.Handle("get_elo_history", h.getRatingHistory)
	r.Handle("get_map_statistics", h.getMapStatistics)
	r.Handle("get_time_statistics", h.getTimeStatistics)
	r.Handle("get_season_comparison", h.getSeasonComparison)
	r.Handle("get_detailed_player_profile", h.getDetailedProfile)

	r.Handle("admin_get_players", h.adminGetPlayers)
	r.Handle("admin_get_matches", h.adminGetMatches)
	r.Handle("admin_get_stats", h.adminGetStats)
	r.Handle("admin_change_role", h.adminChangeRole)
	r.Handle("admin_ban_player", h.adminBanPlayer)
	r.Handle("admin_unban_player", h.adminUnbanPlayer)
	r.Handle("admin_verify_match", h.adminVerifyMatch)
	r.Handle("admin_delete_match", h.adminDeleteMatch)
	r.Handle("admin_reset_stats", h.adminResetStats)

	r.Handle("check_premium_status", h.checkPremiumStatus)
	r.Handle("grant_premium", h.grantPremium)
	r.Handle("create_season", h.createSeason)
	r.Handle("get_active_seasons", h.getActiveSeasons)
	r.Handle("add_2v2_match", h.add2v2Match)

	r.Handle("send_message", h.sendMessage)
	r.Handle("get_chat_messages", h.getChatMessages)
	r.Handle("get_user_chats", h.getUserChats)

	r.Handle("create_tournament", h.createTournament)
	r.Handle("get_tournaments", h.getTournaments)
	r.Handle("register_for_tournament", h.registerForTournament)
	r.Handle("get_tournament_matches", h.getTournamentMatches)
}

func (h *Handlers) ping(ctx context.Context, raw json.RawMessage) (Response, error) {
	return OK("pong"), nil
}

func (h *Handlers) register(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		Nickname string `json:"nickname"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	if err := h.accounts.Register(ctx, req.Nickname, req.Password, req.Email); err != nil {
		return nil, err
	}
	return OK("registration successful"), nil
}

func (h *Handlers) login(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		Nickname string `json:"nickname"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	role, err := h.accounts.Login(ctx, req.Nickname, req.Password)
	if err != nil {
		return nil, err
	}
	return OK("login successful").With("role", role), nil
}

// matchPayload is the per-match submission attached to update_stats. The
// client's own rating fields are ignored; the server draws the delta itself.
type matchPayload struct {
	Result string  `json:"result"`
	Kills  int     `json:"kills"`
	Deaths int     `json:"deaths"`
	HS     float64 `json:"hs"`
	Map    string  `json:"map"`
}

func (h *Handlers) updateStats(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		Nickname string              `json:"nickname"`
		Stats    *domain.StatsUpdate `json:"stats"`
		Match    *matchPayload       `json:"match"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}

	if req.Match != nil {
		sub := domain.MatchSubmission{
			Result:       domain.MatchResult(req.Match.Result),
			Kills:        req.Match.Kills,
			Deaths:       req.Match.Deaths,
			HSPercentage: req.Match.HS,
			MapName:      req.Match.Map,
		}
		stats, err := h.stats.SubmitMatch(ctx, req.Nickname, sub)
		if err != nil {
			return nil, err
		}
		return OK("match recorded").With("stats", stats), nil
	}

	if req.Stats == nil {
		return Fail("stats or match payload is required"), nil
	}
	if err := h.stats.SyncStats(ctx, req.Nickname, *req.Stats); err != nil {
		return nil, err
	}
	return OK("stats updated"), nil
}

func (h *Handlers) getStats(ctx context.Context, raw json.RawMessage) (Response, error) {
	nickname, resp := requireNickname(raw)
	if resp != nil {
		return resp, nil
	}
	stats, err := h.stats.GetStats(ctx, nickname)
	if err != nil {
		return nil, err
	}
	return OK("").With("stats", stats), nil
}

func (h *Handlers) getLeaderboard(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		SortBy string `json:"sort_by"`
		Limit  int    `json:"limit"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	board, err := h.stats.Leaderboard(ctx, req.SortBy, req.Limit)
	if err != nil {
		return nil, err
	}
	if board == nil {
		board = []domain.PlayerStats{}
	}
	return OK("").With("leaderboard", board), nil
}

func (h *Handlers) getRatingHistory(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		Nickname string `json:"nickname"`
		Limit    int    `json:"limit"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	history, err := h.stats.RatingHistory(ctx, req.Nickname, req.Limit)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []domain.RatingPoint{}
	}
	return OK("").With("history", history), nil
}

func (h *Handlers) getMapStatistics(ctx context.Context, raw json.RawMessage) (Response, error) {
	nickname, resp := requireNickname(raw)
	if resp != nil {
		return resp, nil
	}
	stats, err := h.stats.MapStatistics(ctx, nickname)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []domain.MapStats{}
	}
	return OK("").With("stats", stats), nil
}

func (h *Handlers) getTimeStatistics(ctx context.Context, raw json.RawMessage) (Response, error) {
	nickname, resp := requireNickname(raw)
	if resp != nil {
		return resp, nil
	}
	stats, err := h.stats.TimeStatistics(ctx, nickname)
	if err != nil {
		return nil, err
	}
	return OK("").With("stats", stats), nil
}

func (h *Handlers) getSeasonComparison(ctx context.Context, raw json.RawMessage) (Response, error) {
	nickname, resp := requireNickname(raw)
	if resp != nil {
		return resp, nil
	}
	seasons, err := h.stats.SeasonComparison(ctx, nickname)
	if err != nil {
		return nil, err
	}
	if seasons == nil {
		seasons = []domain.SeasonStats{}
	}
	return OK("").With("seasons", seasons), nil
}

func (h *Handlers) getDetailedProfile(ctx context.Context, raw json.RawMessage) (Response, error) {
	nickname, resp := requireNickname(raw)
	if resp != nil {
		return resp, nil
	}
	profile, err := h.stats.DetailedProfile(ctx, nickname)
	if err != nil {
		return nil, err
	}
	return OK("").With("profile", profile), nil
}

func (h *Handlers) adminGetPlayers(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	players, total, err := h.moderation.ListPlayers(ctx, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	if players == nil {
		players = []domain.PlayerSummary{}
	}
	return OK("").With("players", players).With("total", total), nil
}

func (h *Handlers) adminGetMatches(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		Limit int `json:"limit"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	matches, err := h.moderation.RecentMatches(ctx, req.Limit)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []domain.AdminMatch{}
	}
	return OK("").With("matches", matches), nil
}

func (h *Handlers) adminGetStats(ctx context.Context, raw json.RawMessage) (Response, error) {
	stats, err := h.moderation.ServerStats(ctx)
	if err != nil {
		return nil, err
	}
	return OK("").With("stats", stats), nil
}

func (h *Handlers) adminChangeRole(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		Target  string `json:"target_nickname"`
		NewRole string `json:"new_role"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	actor := ActorFrom(ctx)
	if err := h.moderation.ChangeRole(ctx, actor, req.Target, domain.Role(req.NewRole)); err != nil {
		return nil, err
	}
	return OK(fmt.Sprintf("role of %s changed to %s", req.Target, req.NewRole)), nil
}

func (h *Handlers) adminBanPlayer(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		Target string `json:"target_nickname"`
		Reason string `json:"reason"`
		Days   int    `json:"days"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	msg, err := h.moderation.Ban(ctx, ActorFrom(ctx), req.Target, req.Reason, req.Days)
	if err != nil {
		return nil, err
	}
	return OK(msg), nil
}

func (h *Handlers) adminUnbanPlayer(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		Target string `json:"target_nickname"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	if err := h.moderation.Unban(ctx, ActorFrom(ctx), req.Target); err != nil {
		return nil, err
	}
	return OK(fmt.Sprintf("player %s unbanned", req.Target)), nil
}

func (h *Handlers) adminVerifyMatch(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		MatchID int64 `json:"match_id"`
		Verify  bool  `json:"verify"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	if err := h.moderation.SetMatchVerified(ctx, ActorFrom(ctx), req.MatchID, req.Verify); err != nil {
		return nil, err
	}
	if req.Verify {
		return OK("match verified"), nil
	}
	return OK("match verification rejected"), nil
}

func (h *Handlers) adminDeleteMatch(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		MatchID int64 `json:"match_id"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	if err := h.moderation.DeleteMatch(ctx, ActorFrom(ctx), req.MatchID); err != nil {
		return nil, err
	}
	return OK("match deleted"), nil
}

func (h *Handlers) adminResetStats(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		Target string `json:"target_nickname"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	if err := h.moderation.ResetStats(ctx, ActorFrom(ctx), req.Target); err != nil {
		return nil, err
	}
	return OK(fmt.Sprintf("stats of %s reset", req.Target)), nil
}

func (h *Handlers) checkPremiumStatus(ctx context.Context, raw json.RawMessage) (Response, error) {
	nickname, resp := requireNickname(raw)
	if resp != nil {
		return resp, nil
	}
	status, err := h.premium.Status(ctx, nickname)
	if err != nil {
		return nil, err
	}
	return OK("").With("premium_data", status), nil
}

func (h *Handlers) grantPremium(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		Nickname string `json:"nickname"`
		Days     int    `json:"days"`
		Source   string `json:"source"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	status, err := h.premium.Grant(ctx, ActorFrom(ctx), req.Nickname, req.Days, req.Source)
	if err != nil {
		return nil, err
	}
	return OK(fmt.Sprintf("premium granted to %s for %d days", req.Nickname, req.Days)).
		With("premium_data", status), nil
}

func (h *Handlers) createSeason(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		Name          string `json:"name"`
		StartDate     string `json:"start_date"`
		EndDate       string `json:"end_date"`
		PremiumReward int    `json:"premium_reward"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return Fail("invalid start_date"), nil
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return Fail("invalid end_date"), nil
	}
	season, err := h.premium.CreateSeason(ctx, ActorFrom(ctx), req.Name, start, end, req.PremiumReward)
	if err != nil {
		return nil, err
	}
	return OK(fmt.Sprintf("season %q created", season.Name)), nil
}

func (h *Handlers) getActiveSeasons(ctx context.Context, raw json.RawMessage) (Response, error) {
	seasons, err := h.premium.ActiveSeasons(ctx)
	if err != nil {
		return nil, err
	}
	if seasons == nil {
		seasons = []domain.Season{}
	}
	return OK("").With("seasons", seasons), nil
}

func (h *Handlers) add2v2Match(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		Nickname  string `json:"nickname"`
		SeasonID  int64  `json:"season_id"`
		Teammate  string `json:"teammate_nickname"`
		Opponent1 string `json:"opponent1_nickname"`
		Opponent2 string `json:"opponent2_nickname"`
		Score1    int    `json:"team1_score"`
		Score2    int    `json:"team2_score"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	err := h.premium.Add2v2(ctx, req.Nickname, req.SeasonID, req.Teammate, req.Opponent1, req.Opponent2, req.Score1, req.Score2)
	if err != nil {
		return nil, err
	}
	return OK("2v2 match recorded"), nil
}

func (h *Handlers) sendMessage(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		Sender   string `json:"sender_nickname"`
		Receiver string `json:"receiver_nickname"`
		Text     string `json:"message_text"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	if err := h.chats.SendMessage(ctx, req.Sender, req.Receiver, req.Text); err != nil {
		return nil, err
	}
	return OK("message sent"), nil
}

func (h *Handlers) getChatMessages(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		Player1 string `json:"player1_nickname"`
		Player2 string `json:"player2_nickname"`
		Limit   int    `json:"limit"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	messages, err := h.chats.Messages(ctx, req.Player1, req.Player2, req.Limit)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return OK("").With("messages", messages), nil
}

func (h *Handlers) getUserChats(ctx context.Context, raw json.RawMessage) (Response, error) {
	nickname, resp := requireNickname(raw)
	if resp != nil {
		return resp, nil
	}
	chats, err := h.chats.UserChats(ctx, nickname)
	if err != nil {
		return nil, err
	}
	if chats == nil {
		chats = []domain.ChatSummary{}
	}
	return OK("").With("chats", chats), nil
}

func (h *Handlers) createTournament(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
		MaxPlayers  int    `json:"max_players"`
		PrizePool   string `json:"prize_pool"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return Fail("invalid start_date"), nil
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return Fail("invalid end_date"), nil
	}
	t, err := h.tournaments.Create(ctx, ActorFrom(ctx), req.Name, req.Description, start, end, req.MaxPlayers, req.PrizePool)
	if err != nil {
		return nil, err
	}
	return OK(fmt.Sprintf("tournament %q created", t.Name)), nil
}

func (h *Handlers) getTournaments(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	tournaments, err := h.tournaments.List(ctx, req.Status)
	if err != nil {
		return nil, err
	}
	if tournaments == nil {
		tournaments = []domain.Tournament{}
	}
	return OK("").With("tournaments", tournaments), nil
}

func (h *Handlers) registerForTournament(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		Nickname     string `json:"nickname"`
		TournamentID int64  `json:"tournament_id"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	if err := h.tournaments.Register(ctx, req.Nickname, req.TournamentID); err != nil {
		return nil, err
	}
	return OK("registered for tournament"), nil
}

func (h *Handlers) getTournamentMatches(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req struct {
		TournamentID int64 `json:"tournament_id"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return Fail("malformed request"), nil
	}
	matches, err := h.tournaments.Matches(ctx, req.TournamentID)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []domain.TournamentMatch{}
	}
	return OK("").With("matches", matches), nil
}

// requireNickname extracts the nickname field shared by the single-player
// read actions.
func requireNickname(raw json.RawMessage) (string, Response) {
	var req struct {
		Nickname string `json:"nickname"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return "", Fail("malformed request")
	}
	if req.Nickname == "" {
		return "", Fail("nickname is required")
	}
	return req.Nickname, nil
}

// parseDate accepts the date formats older clients send.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
