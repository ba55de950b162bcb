package common

// AuthorizationHeaderName carries the bearer access token on inbound requests.
const AuthorizationHeaderName = "Authorization"

// DefaultPIIKeyLabel is the well-known label of the symmetric key used to
// encrypt member PII fields. A key record is provisioned under this label on
// first use.
const DefaultPIIKeyLabel = "pii_aes_key"

// DefaultPIIKeySizeBits is the size of newly provisioned PII keys.
const DefaultPIIKeySizeBits = 256
