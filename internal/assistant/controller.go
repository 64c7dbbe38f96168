package assistant

import (
	"context"

	apperrors "github.com/argus-ai/argus/internal/errors"
	"github.com/argus-ai/argus/internal/protocol"
	"github.com/argus-ai/argus/internal/stats"
	"github.com/argus-ai/argus/internal/tools/executor"
	"github.com/argus-ai/argus/pkg/models"
)

// protocolController adapts the protocol registry and executor to the slice
// the protocol tools need.
type protocolController struct {
	registry  *protocol.Registry
	executor  *protocol.Executor
	collector *stats.Collector
}

var _ executor.ProtocolController = (*protocolController)(nil)

func (p *protocolController) Protocols() []executor.ProtocolSummary {
	defs := p.registry.List()
	out := make([]executor.ProtocolSummary, 0, len(defs))
	for _, def := range defs {
		out = append(out, executor.ProtocolSummary{
			ID:       def.ID,
			Name:     def.Name,
			Category: def.Category,
			Triggers: def.Triggers,
			Steps:    len(def.Steps),
		})
	}
	return out
}

// StartByQuery matches the query against protocol triggers and starts the
// first match. Definitions marked Background detach; the rest block.
func (p *protocolController) StartByQuery(ctx context.Context, query string) (string, string, error) {
	matches := p.registry.FindByTrigger(query)
	if len(matches) == 0 {
		return "", "", apperrors.Newf(apperrors.CodeUnknownProtocol, apperrors.CategoryUser,
			"no protocol matches %q", query)
	}

	def := matches[0]
	executionID, err := p.executor.Start(ctx, def.ID, def.Background)
	if err != nil {
		return "", "", err
	}
	if p.collector != nil {
		p.collector.RecordProtocolRun()
	}
	return executionID, def.ID, nil
}

func (p *protocolController) ExecutionStatus(id string) (*models.ProtocolStatusView, error) {
	return p.executor.Status(id)
}
