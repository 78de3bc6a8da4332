package workflow

import (
	"context"
	"fmt"
	"strings"

	"reviewflow/internal/logging"
	"reviewflow/internal/metadata"
	"reviewflow/internal/privilege"
	"reviewflow/internal/services"
	"reviewflow/internal/store"
)

const rejectionTimeLayout = "2006-01-02T15:04:05Z"

// SendBackToSubmitter returns item to its submitter. The item leaves the step
// graph, its role assignments and step completions are removed, and a
// provenance note naming actor and message is recorded. item is updated in place.
func (e *Engine) SendBackToSubmitter(ctx context.Context, item *store.Item, actor *store.Person, prefix, message string) error {
	if item == nil {
		return services.Wrap(services.ErrValidation, "workflow", "send back", "item is required", nil)
	}
	previousStep := item.Step
	item.Status = store.StatusReturned
	item.Step = ""
	if err := e.store.UpdateItem(ctx, item); err != nil {
		return fmt.Errorf("return item: %w", err)
	}
	if err := e.store.DeleteRolesForItem(ctx, item.ID); err != nil {
		return fmt.Errorf("remove role assignments: %w", err)
	}
	if err := e.store.ClearCompletions(ctx, item.ID); err != nil {
		return fmt.Errorf("clear completions: %w", err)
	}

	note := e.rejectionNote(prefix, actor, message)
	err := privilege.Run(ctx, func(ctx context.Context) error {
		return e.store.AddMetadata(ctx, item.ID, metadata.Provenance, metadata.ProvenanceLanguage, note)
	})
	if err != nil {
		return fmt.Errorf("record rejection: %w", err)
	}

	logging.WithContext(services.ForItem(ctx, item.ID), e.logger).Info("item returned to submitter",
		logging.String(logging.FieldStep, previousStep),
		logging.String(logging.FieldActor, actor.DisplayName()),
		logging.String(logging.FieldReason, message),
	)
	return nil
}

func (e *Engine) rejectionNote(prefix string, actor *store.Person, message string) string {
	var b strings.Builder
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		b.WriteString(prefix)
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "Rejected by %s, reason: %s on %s (GMT)",
		actor.DisplayName(), message, e.now().UTC().Format(rejectionTimeLayout))
	return b.String()
}
