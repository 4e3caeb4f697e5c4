package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/policy-digest-api/internal/models"
)

type documentSaver interface {
	Save(ctx context.Context, sortOrder int, doc models.PolicyDocument) error
}

type versionSaver interface {
	Save(ctx context.Context, v models.DocumentVersion) error
}

type userSaver interface {
	Save(ctx context.Context, user models.User) error
}

// Targets are the repositories the dataset is written to.
type Targets struct {
	Documents documentSaver
	Versions  versionSaver
	Users     userSaver
}

// Load writes the demo dataset and the demo account. It is safe to run
// repeatedly since every write is an upsert.
func Load(ctx context.Context, targets Targets, demo models.User, now time.Time) error {
	for i, doc := range Documents(now) {
		if err := targets.Documents.Save(ctx, i, doc); err != nil {
			return fmt.Errorf("seed document %s: %w", doc.ID, err)
		}
	}
	for _, v := range Versions() {
		if err := targets.Versions.Save(ctx, v); err != nil {
			return fmt.Errorf("seed version %s: %w", v.ID, err)
		}
	}
	if targets.Users != nil && demo.ID != "" {
		if demo.CreatedAt.IsZero() {
			demo.CreatedAt = now.UTC()
		}
		if err := targets.Users.Save(ctx, demo); err != nil {
			return fmt.Errorf("seed user %s: %w", demo.ID, err)
		}
	}
	return nil
}
