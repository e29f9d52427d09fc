package integrity

// Config controls digest enforcement.
type Config struct {
	// Required rejects submissions without a digest.
	Required bool `env:"INTEGRITY_REQUIRED" envDefault:"false"`
	// SharedSecret is appended to the contents before hashing.
	SharedSecret string `env:"INTEGRITY_SHARED_SECRET"`
	// Algorithm selects the 256-bit hash.
	Algorithm Algorithm `env:"INTEGRITY_ALGORITHM" envDefault:"sha256"`
}
