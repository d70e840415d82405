package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const defaultEnvFile = ".env"

// loadEnv loads PLANTUML_* settings from envfile into the environment, or
// from ./.env when envfile is empty. A missing ./.env is not an error.
// Variables already set win over the file.
func loadEnv(envfile string) error {
	if envfile == "" {
		if _, err := os.Stat(defaultEnvFile); os.IsNotExist(err) {
			return nil
		}
		envfile = defaultEnvFile
	}
	if err := godotenv.Load(envfile); err != nil {
		return errors.Wrapf(err, "failed to load env file %s", envfile)
	}
	return nil
}
