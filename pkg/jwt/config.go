package jwt

// Config holds token verification settings.
type Config struct {
	SigningKey string `env:"JWT_SIGNING_KEY,required"`
	Issuer     string `env:"JWT_ISSUER"`
}
