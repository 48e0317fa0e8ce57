package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeopardy-ctf/scoring-api/internal/config"
	"github.com/jeopardy-ctf/scoring-api/internal/domain"
)

type fakeWebhook struct {
	calls []*discordgo.WebhookParams
	id    string
	err   error
}

func (f *fakeWebhook) WebhookExecute(webhookID, _ string, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.id = webhookID
	f.calls = append(f.calls, data)
	return nil, f.err
}

func TestFirstBloodNotifier(t *testing.T) {
	hook := &fakeWebhook{}
	n := NewFirstBloodNotifier(hook, &config.DiscordConfig{WebhookID: "123", WebhookToken: "tok"})

	require.NoError(t, n.HandleSolve(context.Background(), domain.PostSolveEvent{UID: "alice", ChallengeID: "c1", SolveRank: 2}))
	assert.Empty(t, hook.calls)

	require.NoError(t, n.HandleSolve(context.Background(), domain.PostSolveEvent{UID: "alice", ChallengeID: "c1", Category: "web", Points: 100, SolveRank: 1}))
	require.Len(t, hook.calls, 1)
	assert.Equal(t, "123", hook.id)
	require.Len(t, hook.calls[0].Embeds, 1)
	assert.Contains(t, hook.calls[0].Embeds[0].Description, "alice")
}

func TestFirstBloodNotifier_Error(t *testing.T) {
	hook := &fakeWebhook{err: errors.New("429")}
	n := NewFirstBloodNotifier(hook, &config.DiscordConfig{WebhookID: "123", WebhookToken: "tok"})

	err := n.HandleSolve(context.Background(), domain.PostSolveEvent{UID: "bob", SolveRank: 1})
	assert.Error(t, err)
}
