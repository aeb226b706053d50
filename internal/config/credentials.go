package config

import (
	"fmt"
	"strings"
)

// Names of the environment variables holding the AWS credentials.
const (
	EnvAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
)

// Credentials is an AWS access key pair.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// MissingEnvError reports a required environment variable that is unset or
// empty. It is a configuration problem, not a command-line one.
type MissingEnvError struct {
	Name string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("Please set %s in the environment", e.Name)
}

// LoadCredentials reads the access key pair using getenv, normally
// os.Getenv. The access key ID is checked before the secret.
func LoadCredentials(getenv func(string) string) (Credentials, error) {
	var creds Credentials

	creds.AccessKeyID = strings.TrimSpace(getenv(EnvAccessKeyID))
	if creds.AccessKeyID == "" {
		return Credentials{}, &MissingEnvError{Name: EnvAccessKeyID}
	}

	creds.SecretAccessKey = strings.TrimSpace(getenv(EnvSecretAccessKey))
	if creds.SecretAccessKey == "" {
		return Credentials{}, &MissingEnvError{Name: EnvSecretAccessKey}
	}

	return creds, nil
}
