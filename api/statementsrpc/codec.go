// Package statementsrpc defines the StatementService gRPC contract. Messages
// are plain Go structs carried by a JSON codec registered under CodecName.
package statementsrpc

import (
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// CallOption selects the JSON codec on a client call or connection.
func CallOption() grpc.CallOption {
	return grpc.CallContentSubtype(CodecName)
}
