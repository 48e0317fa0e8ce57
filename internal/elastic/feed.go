package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/jeopardy-ctf/scoring-api/internal/domain"
)

type SolveDoc struct {
	SolveID       string    `json:"solve_id"`
	EventID       string    `json:"event_id"`
	ChallengeID   string    `json:"challenge_id"`
	UID           string    `json:"uid"`
	TeamID        string    `json:"team_id,omitempty"`
	Category      string    `json:"category"`
	Points        int       `json:"points"`
	AttemptNumber int       `json:"attempt_number"`
	SolveRank     int       `json:"solve_rank"`
	FirstBlood    bool      `json:"first_blood"`
	SolvedAt      time.Time `json:"solved_at"`
}

func BuildSolveDoc(e domain.PostSolveEvent) ([]byte, error) {
	doc := SolveDoc{
		SolveID:       e.SolveID,
		EventID:       e.EventID,
		ChallengeID:   e.ChallengeID,
		UID:           e.UID,
		Category:      e.Category,
		Points:        e.Points,
		AttemptNumber: e.AttemptNumber,
		SolveRank:     e.SolveRank,
		FirstBlood:    e.FirstBlood(),
		SolvedAt:      e.SolvedAt,
	}
	if e.TeamID != nil {
		doc.TeamID = *e.TeamID
	}
	return json.Marshal(doc)
}

// SolveFeed indexes solves under their solve id, so reindexing the same solve overwrites it.
type SolveFeed struct {
	client *es.Client
	index  string
}

func NewSolveFeed(client *es.Client, index string) *SolveFeed {
	return &SolveFeed{
		client: client,
		index:  index,
	}
}

func (f *SolveFeed) HandleSolve(ctx context.Context, e domain.PostSolveEvent) error {
	return f.IndexSolves(ctx, []domain.PostSolveEvent{e})
}

// IndexSolves bulk-indexes the solves and returns the first item failure.
func (f *SolveFeed) IndexSolves(ctx context.Context, solves []domain.PostSolveEvent) error {
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     f.client,
		Index:      f.index,
		FlushBytes: 5 << 20,
		NumWorkers: 2,
	})
	if err != nil {
		return fmt.Errorf("esutil.NewBulkIndexer -> %w", err)
	}

	var (
		mu       sync.Mutex
		failures []error
	)
	for _, s := range solves {
		body, err := BuildSolveDoc(s)
		if err != nil {
			return fmt.Errorf("BuildSolveDoc -> %w", err)
		}

		docID := s.SolveID
		if err := bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: docID,
			Body:       bytes.NewReader(body),
			OnFailure: func(_ context.Context, _ esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				msg := ""
				switch {
				case err != nil:
					msg = err.Error()
				case res.Error.Reason != "":
					msg = fmt.Sprintf("%s: %s", res.Error.Type, res.Error.Reason)
				default:
					msg = fmt.Sprintf("status=%d failed to index", res.Status)
				}
				mu.Lock()
				failures = append(failures, fmt.Errorf("index solve %s: %s", docID, msg))
				mu.Unlock()
			},
		}); err != nil {
			return fmt.Errorf("bi.Add -> %w", err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("bi.Close -> %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	return errors.Join(failures...)
}
