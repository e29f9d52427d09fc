package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env files into the process environment. Variables that are
// already set are never overwritten, so earlier files win over later ones
// and the real environment wins over all of them. Missing files are skipped.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Join(ErrLoadingEnvFile, err)
		}
	}
	return nil
}

// LoadEnvironment loads ".env.<env>" and then ".env", so per-environment
// files override shared defaults such as the queue memory ceiling.
func LoadEnvironment(appEnv string) error {
	appEnv = strings.ToLower(strings.TrimSpace(appEnv))
	if appEnv == "" {
		return LoadEnv(".env")
	}
	return LoadEnv(".env."+appEnv, ".env")
}

// LoadAppEnvironment resolves APP_ENV and calls LoadEnvironment. A value in
// the process environment wins; otherwise APP_ENV is read from ./.env, so a
// setting that exists only there still selects ".env.<env>".
func LoadAppEnvironment() error {
	appEnv, ok := os.LookupEnv("APP_ENV")
	if !ok {
		shared, err := readEnvFile(".env")
		if err != nil {
			return err
		}
		appEnv = shared["APP_ENV"]
	}
	return LoadEnvironment(appEnv)
}

func readEnvFile(path string) (map[string]string, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.Join(ErrLoadingEnvFile, err)
	}
	return values, nil
}
