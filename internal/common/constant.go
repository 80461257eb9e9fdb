package common

const (
	// SignatureHeaderName carries the hex request signature.
	SignatureHeaderName = "Authorization"

	// SessionTokenHeaderName carries the optional session token used as a
	// lookup hint by the authenticator. It is never a credential on its own.
	SessionTokenHeaderName = "X-Session-Token"

	// gRPC metadata keys are lower-case.
	SignatureMetadataKey    = "authorization"
	SessionTokenMetadataKey = "x-session-token"
)
