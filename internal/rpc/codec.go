package rpc

import "encoding/json"

// jsonCodec lets Connect carry plain Go structs. It registers under the name
// "json" so it replaces the protobuf JSON codec for application/json
// requests.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
