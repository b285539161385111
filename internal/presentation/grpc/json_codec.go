package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// The service has no generated protobuf types; its messages are the
// application DTOs, carried as JSON. Clients dial with
// grpc.WithDefaultCallOptions(grpc.CallContentSubtype("json")).
func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return "json"
}
