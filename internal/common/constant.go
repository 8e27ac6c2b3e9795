package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// session token on protected calls.
const AccessTokenHeaderName = "access_token"

// TokenType is returned next to issued tokens, the same way OAuth2 bearer
// responses label them.
const TokenType = "bearer"
