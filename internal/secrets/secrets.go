package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/rs/zerolog/log"

	"github.com/schoolatlas-dev/schoolatlas/config"
)

// secretsClient is the slice of the Secrets Manager API we use, kept narrow
// for testability.
type secretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// appSecrets mirrors the JSON document stored under the configured secret
// name. Empty fields leave the corresponding config value untouched.
type appSecrets struct {
	MongoURI         string `json:"MONGO_URI"`
	JWTSecret        string `json:"JWT_SECRET"`
	GoogleMapsAPIKey string `json:"GOOGLE_MAPS_API_KEY"`
	MailServerToken  string `json:"MAIL_SERVER_TOKEN"`
	MailFromAddress  string `json:"MAIL_FROM_ADDRESS"`
	RedisPassword    string `json:"REDIS_PASSWORD"`
}

// Overlay fetches the secret named in cfg and merges non-empty values into it.
// A blank AWSSecretName disables the lookup. Retrieval failures are returned
// to the caller, which decides whether env-provided values are enough.
func Overlay(ctx context.Context, cfg *config.Config) error {
	if cfg.AWSSecretName == "" {
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	return overlay(ctx, cfg, secretsmanager.NewFromConfig(awsCfg))
}

func overlay(ctx context.Context, cfg *config.Config, client secretsClient) error {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &cfg.AWSSecretName,
	})
	if err != nil {
		return fmt.Errorf("get secret %q: %w", cfg.AWSSecretName, err)
	}
	if out.SecretString == nil {
		return fmt.Errorf("secret %q has no string payload", cfg.AWSSecretName)
	}

	var s appSecrets
	if err := json.Unmarshal([]byte(*out.SecretString), &s); err != nil {
		return fmt.Errorf("decode secret %q: %w", cfg.AWSSecretName, err)
	}

	if s.MongoURI != "" {
		cfg.MongoURI = s.MongoURI
	}
	if s.JWTSecret != "" {
		cfg.JWTSecret = s.JWTSecret
	}
	if s.GoogleMapsAPIKey != "" {
		cfg.GoogleMapsAPIKey = s.GoogleMapsAPIKey
	}
	if s.MailServerToken != "" {
		cfg.MailServerToken = s.MailServerToken
	}
	if s.MailFromAddress != "" {
		cfg.MailFromAddress = s.MailFromAddress
	}
	if s.RedisPassword != "" {
		cfg.RedisPassword = s.RedisPassword
	}

	log.Info().Str("secret", cfg.AWSSecretName).Msg("Configuration overlaid from Secrets Manager")
	return nil
}
