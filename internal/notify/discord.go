// Package notify announces first bloods on a Discord channel webhook.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/jeopardy-ctf/scoring-api/internal/config"
	"github.com/jeopardy-ctf/scoring-api/internal/domain"
)

const colorFirstBlood = 0xC0392B

// WebhookExecutor is the part of *discordgo.Session the notifier uses.
type WebhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type FirstBloodNotifier struct {
	session WebhookExecutor
	id      string
	token   string
}

// NewSession builds an unauthenticated session; webhooks carry their own token.
func NewSession() (*discordgo.Session, error) {
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discordgo.New -> %w", err)
	}
	return session, nil
}

func NewFirstBloodNotifier(session WebhookExecutor, conf *config.DiscordConfig) *FirstBloodNotifier {
	return &FirstBloodNotifier{
		session: session,
		id:      conf.WebhookID,
		token:   conf.WebhookToken,
	}
}

func (n *FirstBloodNotifier) HandleSolve(ctx context.Context, e domain.PostSolveEvent) error {
	if !e.FirstBlood() {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       "First blood!",
		Description: fmt.Sprintf("**%s** was the first to solve `%s`", e.UID, e.ChallengeID),
		Color:       colorFirstBlood,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Category", Value: e.Category, Inline: true},
			{Name: "Points", Value: fmt.Sprintf("%d", e.Points), Inline: true},
			{Name: "Attempts", Value: fmt.Sprintf("%d", e.AttemptNumber), Inline: true},
		},
		Timestamp: e.SolvedAt.UTC().Format(time.RFC3339),
	}

	if _, err := n.session.WebhookExecute(n.id, n.token, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("n.session.WebhookExecute -> %w", err)
	}

	zap.L().Info("first blood announced", zap.String("uid", e.UID), zap.String("challenge_id", e.ChallengeID))

	return nil
}
