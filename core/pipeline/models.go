package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/leofalp/loregen/internal/utils"
)

// modelList mirrors the OpenAI-compatible GET /models response shape.
type modelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ListModels fetches the model identifiers offered by the configured
// endpoint, for populating a host-side model dropdown. When
// [Config.ModelFilter] is set, only identifiers containing it are returned.
//
// The models URL is derived from the configured endpoint: a chat-completions
// path is rewritten to its sibling /models, anything else gets /models
// appended.
func (p *Pipeline) ListModels(ctx context.Context) ([]string, error) {
	_, list, err := utils.DoGetSync[modelList](ctx, p.config.HTTPClient, p.modelsURL(), p.config.APIKey)
	if err != nil {
		return nil, fmt.Errorf("%w: listing models: %w", ErrTransport, err)
	}

	models := make([]string, 0, len(list.Data))
	for _, model := range list.Data {
		if p.config.ModelFilter == "" || strings.Contains(model.ID, p.config.ModelFilter) {
			models = append(models, model.ID)
		}
	}
	return models, nil
}

func (p *Pipeline) modelsURL() string {
	endpoint := p.config.endpoint()
	if trimmed, ok := strings.CutSuffix(endpoint, "/chat/completions"); ok {
		return trimmed + "/models"
	}
	return strings.TrimSuffix(endpoint, "/") + "/models"
}
