package runner

import (
	"context"

	"github.com/go-go-golems/actionrunner/pkg/action"
	"github.com/go-go-golems/actionrunner/pkg/alert"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type SupabaseResult struct {
	Success bool `json:"success,omitempty"`
	// Pending means execution is left to whoever handles the alert.
	Pending bool `json:"pending,omitempty"`
}

func (r *Runner) HandleSupabaseAction(ctx context.Context, a action.SupabaseAction) (SupabaseResult, error) {
	if err := ctx.Err(); err != nil {
		return SupabaseResult{}, err
	}
	log.Debug().Str("operation", string(a.Operation)).Str("path", a.FilePath).Msg("supabase action")

	switch a.Operation {
	case action.SupabaseMigration:
		if a.FilePath == "" {
			return SupabaseResult{}, errors.New("Migration requires a filePath")
		}
		r.opts.Alerts.Supabase(alert.SupabaseAlert{
			Type:        alert.TypeInfo,
			Title:       "Supabase Migration",
			Description: "Create migration file: " + a.FilePath,
			Content:     a.Content,
			Source:      "supabase",
		})
		r.writeFile(a.FilePath, a.Content)
		return SupabaseResult{Success: true}, nil

	case action.SupabaseQuery:
		r.opts.Alerts.Supabase(alert.SupabaseAlert{
			Type:        alert.TypeInfo,
			Title:       "Supabase Query",
			Description: "Execute database query",
			Content:     a.Content,
			Source:      "supabase",
		})
		return SupabaseResult{Pending: true}, nil

	default:
		return SupabaseResult{}, errors.Errorf("Unknown operation: %s", a.Operation)
	}
}
