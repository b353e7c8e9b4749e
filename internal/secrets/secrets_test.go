package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolatlas-dev/schoolatlas/config"
)

type fakeSecretsClient struct {
	payload string
	err     error
}

func (f *fakeSecretsClient) GetSecretValue(_ context.Context, _ *secretsmanager.GetSecretValueInput,
	_ ...func(*secretsmanager.Options),
) (*secretsmanager.GetSecretValueOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: &f.payload}, nil
}

func TestOverlayMergesNonEmptyFields(t *testing.T) {
	cfg := &config.Config{
		AWSSecretName: "schoolatlas/prod",
		MongoURI:      "mongodb://localhost:27017/dev",
		JWTSecret:     "env-secret",
	}
	client := &fakeSecretsClient{
		payload: `{"JWT_SECRET":"vault-secret","GOOGLE_MAPS_API_KEY":"maps-key"}`,
	}

	require.NoError(t, overlay(context.Background(), cfg, client))

	assert.Equal(t, "vault-secret", cfg.JWTSecret)
	assert.Equal(t, "maps-key", cfg.GoogleMapsAPIKey)
	// Absent from the payload, so the env value stays.
	assert.Equal(t, "mongodb://localhost:27017/dev", cfg.MongoURI)
}

func TestOverlayRetrievalError(t *testing.T) {
	cfg := &config.Config{AWSSecretName: "schoolatlas/prod"}
	client := &fakeSecretsClient{err: errors.New("access denied")}

	err := overlay(context.Background(), cfg, client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schoolatlas/prod")
}

func TestOverlayMalformedPayload(t *testing.T) {
	cfg := &config.Config{AWSSecretName: "schoolatlas/prod"}
	client := &fakeSecretsClient{payload: "not-json"}

	require.Error(t, overlay(context.Background(), cfg, client))
}
