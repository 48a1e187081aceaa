package common

const (
	// SearchResultLimit bounds the number of catalog hits requested per search.
	SearchResultLimit = 20

	// SessionTokenKey is the metadata key holding the signed-in session token.
	SessionTokenKey = "session_token"

	// EnvPrefix prefixes environment variables read for secrets.
	EnvPrefix = "POCKETLIBRARY_"
)
