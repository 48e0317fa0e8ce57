package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeopardy-ctf/scoring-api/internal/api/middleware"
	"github.com/jeopardy-ctf/scoring-api/internal/domain"
	"github.com/jeopardy-ctf/scoring-api/internal/service"
)

type stubSubmit struct {
	in     service.SubmitInput
	result service.SubmitResult
	err    error
}

func (s *stubSubmit) SubmitFlag(_ context.Context, in service.SubmitInput) (service.SubmitResult, error) {
	s.in = in
	return s.result, s.err
}

type stubBoards struct {
	board     domain.Leaderboard
	standings domain.LeagueStandings
	err       error
}

func (s *stubBoards) EventLeaderboard(_ context.Context, eventID string, kind domain.LeaderboardKind) (domain.Leaderboard, error) {
	s.board.EventID, s.board.Kind = eventID, kind
	return s.board, s.err
}

func (s *stubBoards) LeagueStandings(_ context.Context, leagueID string) (domain.LeagueStandings, error) {
	s.standings.LeagueID = leagueID
	return s.standings, s.err
}

type stubAdmin struct {
	actor string
	flag  string
	err   error
}

func (s *stubAdmin) SetFlag(_ context.Context, actorUID, _, flagText string, _ bool) error {
	s.actor, s.flag = actorUID, flagText
	return s.err
}

func (s *stubAdmin) CreateEvent(_ context.Context, actorUID string, event domain.Event) (domain.Event, error) {
	s.actor = actorUID
	return event, s.err
}

func (s *stubAdmin) CreateChallenge(_ context.Context, actorUID string, challenge domain.Challenge) (domain.Challenge, error) {
	s.actor = actorUID
	return challenge, s.err
}

func (s *stubAdmin) CreateQuest(_ context.Context, actorUID string, quest domain.Quest) (domain.Quest, error) {
	s.actor = actorUID
	quest.ID = "q1"
	return quest, s.err
}

func (s *stubAdmin) Recompute(_ context.Context, actorUID, _ string) error {
	s.actor = actorUID
	return s.err
}

func (s *stubAdmin) UpdateProfile(_ context.Context, actorUID, uid string, update service.ProfileUpdate) (domain.Profile, error) {
	s.actor = actorUID
	p := domain.Profile{UID: uid, Role: domain.RolePlayer}
	if update.Role != nil {
		p.Role = *update.Role
	}
	return p, s.err
}

type stubUsers struct {
	uid string
	err error
}

func (s *stubUsers) GetProgress(_ context.Context, uid string) (domain.Progress, []domain.QuestProgress, error) {
	s.uid = uid
	return domain.Progress{UID: uid, XP: 125, Level: 1, Badges: map[string]bool{"first_solve": true}}, []domain.QuestProgress{}, s.err
}

// withUID stands in for the JWT middleware.
func withUID(uid string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if uid != "" {
			ctx.Set(middleware.ContextKeyUID, uid)
		}
		ctx.Next()
	}
}

func newTestRouter(uid string, submit SubmitService, boards LeaderboardService, admin AdminService, users UserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", HandleHealthcheck)
	r.GET("/events/:eventID/leaderboards/:kind", NewLeaderboardHandler(boards).HandleGetEventLeaderboard)
	r.GET("/leagues/:leagueID/standings", NewLeaderboardHandler(boards).HandleGetLeagueStandings)

	authed := r.Group("", withUID(uid))
	authed.POST("/submit-flag", NewSubmitHandler(submit).HandleSubmitFlag)
	authed.GET("/users/:uid/progress", NewUserHandler(users).HandleGetProgress)
	authed.PUT("/admin/challenges/:challengeID/flag", NewAdminHandler(admin).HandleSetFlag)
	authed.POST("/admin/events", NewAdminHandler(admin).HandleCreateEvent)
	authed.POST("/admin/events/:eventID/challenges", NewAdminHandler(admin).HandleCreateChallenge)
	authed.POST("/admin/events/:eventID/leaderboards/recompute", NewAdminHandler(admin).HandleRecompute)
	authed.POST("/admin/quests", NewAdminHandler(admin).HandleCreateQuest)
	authed.PUT("/admin/users/:uid", NewAdminHandler(admin).HandleUpdateProfile)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHandleSubmitFlag_Success(t *testing.T) {
	points := 100
	svc := &stubSubmit{result: service.SubmitResult{Correct: true, AttemptsLeft: 29, ScoreAwarded: &points}}
	r := newTestRouter("alice", svc, nil, nil, nil)

	w := do(t, r, http.MethodPost, "/submit-flag", map[string]string{
		"eventId": "ev1", "challengeId": "c1", "flagText": "CTF{x}",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.SubmitInput{UID: "alice", EventID: "ev1", ChallengeID: "c1", FlagText: "CTF{x}"}, svc.in)
	body := decode(t, w)
	assert.Equal(t, true, body["correct"])
	assert.Equal(t, false, body["alreadySolved"])
	assert.EqualValues(t, 29, body["attemptsLeft"])
	assert.EqualValues(t, 0, body["cooldownRemaining"])
	assert.EqualValues(t, 100, body["scoreAwarded"])
}

func TestHandleSubmitFlag_WrongOmitsScore(t *testing.T) {
	svc := &stubSubmit{result: service.SubmitResult{AttemptsLeft: 28, CooldownRemaining: 10}}
	r := newTestRouter("alice", svc, nil, nil, nil)

	w := do(t, r, http.MethodPost, "/submit-flag", map[string]string{"eventId": "ev1", "challengeId": "c1", "flagText": "nope"})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.NotContains(t, body, "scoreAwarded")
	assert.EqualValues(t, 10, body["cooldownRemaining"])
}

func TestHandleSubmitFlag_Errors(t *testing.T) {
	tests := []struct {
		name       string
		uid        string
		body       map[string]string
		err        error
		wantStatus int
		wantReason string
		wantHints  bool
	}{
		{name: "missing uid", uid: "", wantStatus: http.StatusUnauthorized, wantReason: "unauthenticated"},
		{name: "missing flag", uid: "alice", body: map[string]string{"eventId": "ev1", "challengeId": "c1"}, wantStatus: http.StatusBadRequest, wantReason: "invalid_request"},
		{name: "event not live", uid: "alice", err: service.ErrEventNotLive, wantStatus: http.StatusForbidden, wantReason: "event_not_live"},
		{name: "unpublished", uid: "alice", err: service.ErrChallengeUnpublished, wantStatus: http.StatusForbidden, wantReason: "challenge_unpublished"},
		{name: "disabled", uid: "alice", err: service.ErrAccountDisabled, wantStatus: http.StatusForbidden, wantReason: "account_disabled"},
		{name: "event missing", uid: "alice", err: fmt.Errorf("s.events.FindByID -> %w", service.ErrEventNotFound), wantStatus: http.StatusNotFound, wantReason: "not_found"},
		{name: "challenge missing", uid: "alice", err: service.ErrChallengeNotFound, wantStatus: http.StatusNotFound, wantReason: "not_found"},
		{name: "no flag", uid: "alice", err: fmt.Errorf("s.events.FindSecret -> %w", service.ErrFlagNotConfigured), wantStatus: http.StatusNotFound, wantReason: "flag_not_configured"},
		{name: "exhausted", uid: "alice", err: &service.RejectionError{Err: service.ErrAttemptsExhausted}, wantStatus: http.StatusForbidden, wantReason: "attempts_exhausted", wantHints: true},
		{name: "cooldown", uid: "alice", err: &service.RejectionError{Err: service.ErrCooldownActive, CooldownRemaining: 7, AttemptsLeft: 20}, wantStatus: http.StatusTooManyRequests, wantReason: "cooldown_active", wantHints: true},
		{name: "rate limited", uid: "alice", err: &service.RejectionError{Err: service.ErrRateLimited, AttemptsLeft: 20}, wantStatus: http.StatusTooManyRequests, wantReason: "rate_limited", wantHints: true},
		{name: "internal", uid: "alice", err: errors.New("connection reset"), wantStatus: http.StatusInternalServerError, wantReason: "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := tt.body
			if body == nil {
				body = map[string]string{"eventId": "ev1", "challengeId": "c1", "flagText": "CTF{x}"}
			}
			r := newTestRouter(tt.uid, &stubSubmit{err: tt.err}, nil, nil, nil)

			w := do(t, r, http.MethodPost, "/submit-flag", body)

			assert.Equal(t, tt.wantStatus, w.Code)
			got := decode(t, w)
			assert.Equal(t, tt.wantReason, got["reason"])
			if tt.wantHints {
				assert.Contains(t, got, "cooldownRemaining")
				assert.Contains(t, got, "attemptsLeft")
			} else {
				assert.NotContains(t, got, "cooldownRemaining")
			}
		})
	}
}

func TestHandleSubmitFlag_CooldownHint(t *testing.T) {
	r := newTestRouter("alice", &stubSubmit{err: &service.RejectionError{Err: service.ErrCooldownActive, CooldownRemaining: 7, AttemptsLeft: 20}}, nil, nil, nil)

	w := do(t, r, http.MethodPost, "/submit-flag", map[string]string{"eventId": "ev1", "challengeId": "c1", "flagText": "x"})

	got := decode(t, w)
	assert.EqualValues(t, 7, got["cooldownRemaining"])
	assert.EqualValues(t, 20, got["attemptsLeft"])
}

func TestHandleInternalErrorHidesCause(t *testing.T) {
	r := newTestRouter("alice", &stubSubmit{err: errors.New("password=hunter2")}, nil, nil, nil)

	w := do(t, r, http.MethodPost, "/submit-flag", map[string]string{"eventId": "ev1", "challengeId": "c1", "flagText": "x"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")
}

func TestHandleGetEventLeaderboard(t *testing.T) {
	boards := &stubBoards{board: domain.Leaderboard{Rows: []domain.LeaderboardRow{{ID: "alice", Score: 300, LastSolveAt: time.Now()}}}}
	r := newTestRouter("", nil, boards, nil, nil)

	w := do(t, r, http.MethodGet, "/events/ev1/leaderboards/individual", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var board domain.Leaderboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	assert.Equal(t, "ev1", board.EventID)
	require.Len(t, board.Rows, 1)
	assert.Equal(t, 300, board.Rows[0].Score)

	w = do(t, r, http.MethodGet, "/events/ev1/leaderboards/clans", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetEventLeaderboard_UnknownEvent(t *testing.T) {
	r := newTestRouter("", nil, &stubBoards{err: service.ErrEventNotFound}, nil, nil)

	w := do(t, r, http.MethodGet, "/events/nope/leaderboards/teams", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGetLeagueStandings(t *testing.T) {
	boards := &stubBoards{standings: domain.LeagueStandings{Retention: domain.Retention{OneEvent: 2, TwoEvents: 1}}}
	r := newTestRouter("", nil, boards, nil, nil)

	w := do(t, r, http.MethodGet, "/leagues/spring/standings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var standings domain.LeagueStandings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &standings))
	assert.Equal(t, "spring", standings.LeagueID)
	assert.Equal(t, 2, standings.Retention.OneEvent)
}

func TestHandleGetProgress(t *testing.T) {
	users := &stubUsers{}
	r := newTestRouter("alice", nil, nil, nil, users)

	w := do(t, r, http.MethodGet, "/users/me/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", users.uid)

	w = do(t, r, http.MethodGet, "/users/bob/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bob", users.uid)

	r = newTestRouter("alice", nil, nil, nil, &stubUsers{err: service.ErrUserNotFound})
	w = do(t, r, http.MethodGet, "/users/ghost/progress", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleSetFlag(t *testing.T) {
	admin := &stubAdmin{}
	r := newTestRouter("owner", nil, nil, admin, nil)

	w := do(t, r, http.MethodPut, "/admin/challenges/c1/flag", map[string]any{"flag": "CTF{x}", "caseSensitive": true})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "owner", admin.actor)
	assert.Equal(t, "CTF{x}", admin.flag)

	tests := []struct {
		err        error
		wantStatus int
	}{
		{err: service.ErrForbidden, wantStatus: http.StatusForbidden},
		{err: service.ErrFlagFormatMismatch, wantStatus: http.StatusBadRequest},
		{err: service.ErrChallengeNotFound, wantStatus: http.StatusNotFound},
		{err: service.ErrInvalidChallengeID, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		r := newTestRouter("owner", nil, nil, &stubAdmin{err: tt.err}, nil)
		w := do(t, r, http.MethodPut, "/admin/challenges/c1/flag", map[string]any{"flag": "CTF{x}"})
		assert.Equal(t, tt.wantStatus, w.Code, tt.err.Error())
	}
}

func TestHandleAdminCreate(t *testing.T) {
	admin := &stubAdmin{}
	r := newTestRouter("root", nil, nil, admin, nil)
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	w := do(t, r, http.MethodPost, "/admin/events", map[string]any{
		"id": "ev1", "name": "Spring", "starts_at": start, "ends_at": start.Add(48 * time.Hour), "team_mode": true,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPost, "/admin/events/ev1/challenges", map[string]any{
		"id": "c1", "title": "Warmup", "category": "web", "points_fixed": 100,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ev1", decode(t, w)["event_id"])

	w = do(t, r, http.MethodPost, "/admin/quests", map[string]any{
		"title": "Solve 3", "rule_type": "solve_total", "target": 3, "reward_xp": 50,
		"active_from": start, "active_to": start.Add(time.Hour),
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPost, "/admin/events/ev1/leaderboards/recompute", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	r = newTestRouter("root", nil, nil, &stubAdmin{err: service.ErrEventExists}, nil)
	w = do(t, r, http.MethodPost, "/admin/events", map[string]any{
		"id": "ev1", "name": "Spring", "starts_at": start, "ends_at": start.Add(time.Hour),
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleUpdateProfile(t *testing.T) {
	admin := &stubAdmin{}
	r := newTestRouter("root", nil, nil, admin, nil)

	w := do(t, r, http.MethodPut, "/admin/users/alice", map[string]any{"role": "owner", "team_id": "red"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "owner", decode(t, w)["role"])
	assert.Equal(t, "root", admin.actor)

	w = do(t, r, http.MethodPut, "/admin/users/alice", map[string]any{"role": "superuser"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleHealthcheck(t *testing.T) {
	r := newTestRouter("", nil, nil, nil, nil)
	w := do(t, r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
