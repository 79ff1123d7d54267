package repo

import "context"

// UpstreamResponse is the raw reply of a proxied upstream call.
type UpstreamResponse struct {
	Status int
	Body   []byte
}

type MolMIMRepo interface {
	// Generate forwards body to the generation endpoint; a non-2xx reply is
	// returned as is, only transport failures are errors.
	Generate(ctx context.Context, body []byte) (*UpstreamResponse, error)
}
