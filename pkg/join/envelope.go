package join

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/terabiome/kubeboot/internal/api"
)

// DecodeRequest reads the single JSON request object from r. Anything
// that is not one well-formed object is an invalid request.
func DecodeRequest(r io.Reader) (api.JoinRequest, error) {
	var req api.JoinRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return api.JoinRequest{}, fmt.Errorf("%w: failed to decode request: %v", api.ErrInvalidRequest, err)
	}
	return req, nil
}

// EncodeResponse writes the response as one compact JSON object with
// exactly the {"command": string} shape. Callers validate this schema
// strictly, so nothing is written unless marshalling fully succeeds.
func EncodeResponse(w io.Writer, resp api.JoinResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
