// Package elastic mirrors new solves into a search index for the activity feed.
package elastic

import (
	"bytes"
	"context"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/jeopardy-ctf/scoring-api/internal/config"
)

const solvesMapping = `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
	"solve_id":{"type":"keyword"},"event_id":{"type":"keyword"},"challenge_id":{"type":"keyword"},
	"uid":{"type":"keyword"},"team_id":{"type":"keyword"},"category":{"type":"keyword"},
	"points":{"type":"integer"},"attempt_number":{"type":"integer"},"solve_rank":{"type":"integer"},
	"first_blood":{"type":"boolean"},"solved_at":{"type":"date"}
}}}`

func Connect(conf *config.ElasticConfig) (*es.Client, error) {
	client, err := es.NewClient(es.Config{
		Addresses: conf.Addresses,
	})
	if err != nil {
		return nil, fmt.Errorf("es.NewClient -> %w", err)
	}

	zap.L().Info("elasticsearch client configured", zap.Strings("addresses", conf.Addresses))

	return client, nil
}

func EnsureIndexes(ctx context.Context, c *es.Client, index string) error {
	return ensure(ctx, c, index, solvesMapping)
}

func ensure(ctx context.Context, c *es.Client, index, body string) error {
	exists, err := c.Indices.Exists([]string{index}, c.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("c.Indices.Exists %s -> %w", index, err)
	}
	defer exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := c.Indices.Create(index, c.Indices.Create.WithBody(bytes.NewBufferString(body)), c.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", index, res.String())
	}

	return nil
}
