package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound and outbound requests.
const AccessTokenHeaderName = "access_token"

// MemoryDSN selects the in-process log record store instead of PostgreSQL.
const MemoryDSN = "memory"
