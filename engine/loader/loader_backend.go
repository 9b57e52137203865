package loader

import (
	"context"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/scene"
)

// decodeContext carries the per-load state a backend needs.
type decodeContext struct {
	ctx     context.Context
	token   *CancelToken
	tracker *common.ResourceTracker
	name    string
	ext     string
}

// err returns ErrCancelled once the load has been cancelled.
func (dc *decodeContext) err() error {
	return cancelled(dc.ctx, dc.token)
}

// loaderBackend decodes fetched bytes of one file format into a detached scene node.
// On any error, including cancellation, the backend disposes whatever it allocated.
type loaderBackend interface {
	// Decode builds the scene node for an asset.
	//
	// Parameters:
	//   - dc: the load's context, tracker and cancellation token
	//   - asset: the fetched bytes and the filesystem for relative references
	//
	// Returns:
	//   - *scene.Node: the detached root node
	//   - error: error if decoding fails or the load was cancelled
	Decode(dc *decodeContext, asset *fetchedAsset) (*scene.Node, error)
}
