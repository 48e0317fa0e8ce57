package service

import (
	"context"
	"fmt"

	"github.com/jeopardy-ctf/scoring-api/internal/domain"
)

type UserRepository interface {
	Progress(ctx context.Context, uid string) (domain.Progress, error)
	QuestProgress(ctx context.Context, uid string) ([]domain.QuestProgress, error)
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetProgress(ctx context.Context, uid string) (domain.Progress, []domain.QuestProgress, error) {
	progress, err := s.repo.Progress(ctx, uid)
	if err != nil {
		return domain.Progress{}, nil, fmt.Errorf("s.repo.Progress -> %w", err)
	}

	quests, err := s.repo.QuestProgress(ctx, uid)
	if err != nil {
		return domain.Progress{}, nil, fmt.Errorf("s.repo.QuestProgress -> %w", err)
	}

	return progress, quests, nil
}
