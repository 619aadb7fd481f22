package repository

import (
	"context"
	"time"

	"channelpass/gatekeeper/internal/model"
)

type CodeRepository interface {
	Create(ctx context.Context, code *model.Code) error
	GetByCode(ctx context.Context, code string) (*model.Code, error)
	// MarkUsed binds an unused code to userID in a single conditional update.
	// It reports false when the code was already used (or does not exist).
	MarkUsed(ctx context.Context, code string, userID int64, usedAt time.Time) (bool, error)
	List(ctx context.Context) ([]model.Code, error)
}
