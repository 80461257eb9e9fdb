package api

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// ServiceName is the gRPC service carrying the same operations as the HTTP
// API. Messages are the JSON bodies of this package, sent with the "json"
// content subtype.
const ServiceName = "sundaram.v1.Sundaram"

const (
	MethodRegister          = "Register"
	MethodAuthenticate      = "Authenticate"
	MethodGenerate          = "Generate"
	MethodGetCurrent        = "GetCurrent"
	MethodDeleteCurrent     = "DeleteCurrent"
	MethodSaveParams        = "SaveParams"
	MethodListSavedParams   = "ListSavedParams"
	MethodDeleteSavedParams = "DeleteSavedParams"
	MethodGetHistory        = "GetHistory"
	MethodDeleteHistory     = "DeleteHistory"
	MethodChangePassword    = "ChangePassword"
	MethodPing              = "Ping"
)

// FullMethod returns the gRPC path of method, e.g. /sundaram.v1.Sundaram/Ping.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

const CodecName = "json"

// JSONCodec marshals gRPC messages with encoding/json.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSONCodec) Name() string                       { return CodecName }

func init() {
	encoding.RegisterCodec(JSONCodec{})
}
