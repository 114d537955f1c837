package stream

import (
	"encoding/json"
	"fmt"

	"github.com/relabs-tech/angular_computer/internal/angle"
)

// EncodeBatch frames one outgoing message: a two-element JSON array of
// the session token and the drained batch, each sample a 22-element array
// of degrees. The remote endpoint's parser expects exactly this
// token-then-list-of-lists shape.
func EncodeBatch(token string, batch []angle.Sample) ([]byte, error) {
	payload, err := json.Marshal([2]any{token, batch})
	if err != nil {
		return nil, fmt.Errorf("stream: encode batch: %w", err)
	}
	return payload, nil
}
