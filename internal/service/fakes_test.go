package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jeopardy-ctf/scoring-api/internal/domain"
)

type fakeEvents struct {
	mu         sync.Mutex
	events     map[string]domain.Event
	challenges map[string]domain.Challenge
	secrets    map[string]domain.ChallengeSecret
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{
		events:     map[string]domain.Event{},
		challenges: map[string]domain.Challenge{},
		secrets:    map[string]domain.ChallengeSecret{},
	}
}

func (f *fakeEvents) Create(_ context.Context, e domain.Event) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[e.ID]; ok {
		return domain.Event{}, ErrEventExists
	}
	f.events[e.ID] = e
	return e, nil
}

func (f *fakeEvents) FindByID(_ context.Context, id string) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return domain.Event{}, ErrEventNotFound
	}
	return e, nil
}

func (f *fakeEvents) FindByLeague(_ context.Context, leagueID string) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Event
	for _, e := range f.events {
		if e.LeagueID != nil && *e.LeagueID == leagueID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEvents) CreateChallenge(_ context.Context, c domain.Challenge) (domain.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.challenges[c.ID]; ok {
		return domain.Challenge{}, ErrChallengeExists
	}
	f.challenges[c.ID] = c
	return c, nil
}

func (f *fakeEvents) FindChallenge(_ context.Context, id string) (domain.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.challenges[id]
	if !ok {
		return domain.Challenge{}, ErrChallengeNotFound
	}
	return c, nil
}

func (f *fakeEvents) FindSecret(_ context.Context, challengeID string) (domain.ChallengeSecret, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.secrets[challengeID]
	if !ok {
		return domain.ChallengeSecret{}, ErrFlagNotConfigured
	}
	return s, nil
}

func (f *fakeEvents) SaveSecret(_ context.Context, s domain.ChallengeSecret) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.secrets[s.ChallengeID] = s
	return nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
}

func newFakeProfiles(profiles ...domain.Profile) *fakeProfiles {
	f := &fakeProfiles{profiles: map[string]domain.Profile{}}
	for _, p := range profiles {
		f.profiles[p.UID] = p
	}
	return f
}

func (f *fakeProfiles) Profile(_ context.Context, uid string) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[uid]
	if !ok {
		p = domain.Profile{UID: uid, Role: domain.RolePlayer}
		f.profiles[uid] = p
	}
	return p, nil
}

func (f *fakeProfiles) SaveProfile(_ context.Context, p domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.UID] = p
	return nil
}

type fakeSubmissions struct {
	mu          sync.Mutex
	submissions []domain.Submission
	createErr   error
}

func (f *fakeSubmissions) History(_ context.Context, eventID, uid, challengeID string, windowStart time.Time) (domain.AttemptHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var h domain.AttemptHistory
	for i := range f.submissions {
		s := f.submissions[i]
		if s.EventID != eventID || s.UID != uid {
			continue
		}
		if s.SubmittedAt.After(windowStart) {
			h.InWindow++
		}
		if s.ChallengeID != challengeID {
			continue
		}
		h.PriorAttempts++
		if h.Last == nil || !s.SubmittedAt.Before(h.Last.SubmittedAt) {
			last := s
			h.Last = &last
		}
	}
	return h, nil
}

func (f *fakeSubmissions) Create(_ context.Context, s domain.Submission) (domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.Submission{}, f.createErr
	}
	f.submissions = append(f.submissions, s)
	return s, nil
}

func (f *fakeSubmissions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submissions)
}

type fakeLedger struct {
	mu     sync.Mutex
	solves map[string]domain.Solve
	events []domain.PostSolveEvent
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{solves: map[string]domain.Solve{}}
}

func (f *fakeLedger) RecordSolveIfFirst(_ context.Context, solve domain.Solve, e domain.PostSolveEvent) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	solve.ID = domain.SolveID(solve.UID, solve.ChallengeID)
	if _, ok := f.solves[solve.ID]; ok {
		return false, nil
	}
	f.solves[solve.ID] = solve

	rank := 1
	for _, s := range f.solves {
		if s.ChallengeID == solve.ChallengeID && s.SolvedAt.Before(solve.SolvedAt) {
			rank++
		}
	}
	e.SolveID = solve.ID
	e.SolveRank = rank
	f.events = append(f.events, e)
	return true, nil
}

func (f *fakeLedger) FindByEvent(_ context.Context, eventID string) ([]domain.Solve, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Solve
	for _, s := range f.solves {
		if s.EventID == eventID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeLedger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.solves)
}

type recomputeSpy struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (r *recomputeSpy) RecomputeEvent(_ context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventID)
	return r.err
}

func (r *recomputeSpy) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type fakeBoards struct {
	mu        sync.Mutex
	boards    map[string]domain.Leaderboard
	standings map[string]domain.LeagueStandings
	finds     int
	// afterFind runs once a Find has read its snapshot, outside the lock.
	afterFind func()
}

func newFakeBoards() *fakeBoards {
	return &fakeBoards{
		boards:    map[string]domain.Leaderboard{},
		standings: map[string]domain.LeagueStandings{},
	}
}

func (f *fakeBoards) Save(_ context.Context, b domain.Leaderboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.boards[b.EventID+"/"+string(b.Kind)] = b
	return nil
}

func (f *fakeBoards) Find(_ context.Context, eventID string, kind domain.LeaderboardKind) (domain.Leaderboard, error) {
	f.mu.Lock()
	f.finds++
	b, ok := f.boards[eventID+"/"+string(kind)]
	hook := f.afterFind
	f.afterFind = nil
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		return domain.Leaderboard{}, ErrLeaderboardNotFound
	}
	return b, nil
}

func (f *fakeBoards) SaveStandings(_ context.Context, s domain.LeagueStandings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.standings[s.LeagueID] = s
	return nil
}

func (f *fakeBoards) FindStandings(_ context.Context, leagueID string) (domain.LeagueStandings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.standings[leagueID]
	if !ok {
		return domain.LeagueStandings{}, ErrStandingsNotFound
	}
	return s, nil
}

// fakeCache stores values as-is; Get only supports the two leaderboard shapes.
type fakeCache struct {
	mu      sync.Mutex
	values  map[string]any
	deleted []string
	getErr  error
	setErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]any{}}
}

func (f *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return false, f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.Leaderboard:
		*d = v.(domain.Leaderboard)
	case *domain.LeagueStandings:
		*d = v.(domain.LeagueStandings)
	default:
		return false, errors.New("unsupported cache type")
	}
	return true, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	return nil
}

func (f *fakeCache) SetIfAbsent(_ context.Context, key string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	if _, ok := f.values[key]; !ok {
		f.values[key] = value
	}
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.values, k)
		f.deleted = append(f.deleted, k)
	}
	return nil
}

// fakeProgress mirrors the grant ledger semantics of the user repository.
type fakeProgress struct {
	mu       sync.Mutex
	progress map[string]*domain.Progress
	grants   map[string]bool
	quests   []domain.Quest
	qp       map[string]*domain.QuestProgress
	grantErr map[string]error
}

func newFakeProgress(quests ...domain.Quest) *fakeProgress {
	return &fakeProgress{
		progress: map[string]*domain.Progress{},
		grants:   map[string]bool{},
		quests:   quests,
		qp:       map[string]*domain.QuestProgress{},
		grantErr: map[string]error{},
	}
}

func (f *fakeProgress) get(uid string) *domain.Progress {
	p, ok := f.progress[uid]
	if !ok {
		p = &domain.Progress{UID: uid, Level: 1, Badges: map[string]bool{}, Stats: domain.Stats{CategorySolves: map[string]int{}}}
		f.progress[uid] = p
	}
	return p
}

func (f *fakeProgress) Progress(_ context.Context, uid string) (domain.Progress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.get(uid)
	cp := *p
	cp.Badges = map[string]bool{}
	for k, v := range p.Badges {
		cp.Badges[k] = v
	}
	cp.Stats.CategorySolves = map[string]int{}
	for k, v := range p.Stats.CategorySolves {
		cp.Stats.CategorySolves[k] = v
	}
	return cp, nil
}

func (f *fakeProgress) ApplyGrant(_ context.Context, g domain.Grant) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.grantErr[g.Key]; err != nil {
		return false, err
	}
	key := g.UID + "|" + g.Key
	if f.grants[key] {
		return false, nil
	}
	f.grants[key] = true

	p := f.get(g.UID)
	p.XP += g.XP
	p.Level = domain.LevelForXP(p.XP)
	if g.Badge != "" {
		p.Badges[g.Badge] = true
	}
	if g.Solve != nil {
		p.Stats.Solves++
		if g.Solve.FirstTry {
			p.Stats.FirstTrySolves++
		}
		p.Stats.CategorySolves[g.Solve.Category]++
	}
	if g.CompletesQuest != "" {
		if qp, ok := f.qp[g.UID+"|"+g.CompletesQuest]; ok {
			qp.Completed = true
		}
	}
	return true, nil
}

func (f *fakeProgress) ActiveQuests(_ context.Context, now time.Time) ([]domain.Quest, error) {
	var out []domain.Quest
	for _, q := range f.quests {
		if q.ActiveAt(now) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeProgress) QuestProgress(_ context.Context, uid string) ([]domain.QuestProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.QuestProgress
	for _, qp := range f.qp {
		if qp.UID == uid {
			out = append(out, *qp)
		}
	}
	return out, nil
}

func (f *fakeProgress) AdvanceQuest(_ context.Context, uid, questID, stepKey string) (domain.QuestProgress, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	qp, ok := f.qp[uid+"|"+questID]
	if !ok {
		qp = &domain.QuestProgress{UID: uid, QuestID: questID}
		f.qp[uid+"|"+questID] = qp
	}
	key := uid + "|" + stepKey
	if f.grants[key] {
		return *qp, false, nil
	}
	f.grants[key] = true
	qp.Progress++
	return *qp, true, nil
}

type fakeQuests struct {
	created []domain.Quest
}

func (f *fakeQuests) CreateQuest(_ context.Context, q domain.Quest) (domain.Quest, error) {
	f.created = append(f.created, q)
	return q, nil
}

type fakeAudit struct {
	entries []domain.AuditEntry
}

func (f *fakeAudit) Record(_ context.Context, e domain.AuditEntry) error {
	f.entries = append(f.entries, e)
	return nil
}
