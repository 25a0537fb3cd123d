// internal/app/system/apiclient/mutate.go
package apiclient

import (
	"context"
	"net/http"

	"github.com/scanmenu/admindesk/internal/domain/models"
)

// mutationEnvelope is the {success, message?, data?} body of a mutation.
type mutationEnvelope struct {
	models.MutationResult
}

func (e *mutationEnvelope) accepted() error {
	if !e.Success {
		return &MutationError{Message: e.Message}
	}
	return nil
}

// Update sends a partial update (PUT) to path.
func (c *Client) Update(ctx context.Context, resource, path string, patch map[string]any) (models.MutationResult, error) {
	var env mutationEnvelope
	err := c.do(ctx, request{resource: resource, method: http.MethodPut, path: path, body: patch}, &env)
	return env.MutationResult, err
}

// Delete removes the record at path.
func (c *Client) Delete(ctx context.Context, resource, path string) (models.MutationResult, error) {
	var env mutationEnvelope
	err := c.do(ctx, request{resource: resource, method: http.MethodDelete, path: path}, &env)
	return env.MutationResult, err
}
