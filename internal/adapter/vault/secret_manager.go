package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/vault/api"
)

var ErrSecretNotFound = errors.New("secret not found")

// StripeSecrets are the Stripe credentials kept in Vault.
type StripeSecrets struct {
	SecretKey     string
	WebhookSecret string
}

type SecretManager struct {
	client *api.Client
}

func NewSecretManager(address, token string) (*SecretManager, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	client.SetToken(token)

	return &SecretManager{client: client}, nil
}

// GetStripeSecrets reads secret_key and webhook_secret from a KV v2 path
// such as secret/data/stripe. Keys missing from the secret come back empty.
func (sm *SecretManager) GetStripeSecrets(ctx context.Context, path string) (StripeSecrets, error) {
	data, err := sm.readKV(ctx, path)
	if err != nil {
		return StripeSecrets{}, err
	}

	return StripeSecrets{
		SecretKey:     stringValue(data, "secret_key"),
		WebhookSecret: stringValue(data, "webhook_secret"),
	}, nil
}

func (sm *SecretManager) readKV(ctx context.Context, path string) (map[string]interface{}, error) {
	secret, err := sm.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("vault read %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("vault read %s: %w", path, ErrSecretNotFound)
	}

	// KV v2 nests the payload under "data"; v1 does not.
	if nested, ok := secret.Data["data"].(map[string]interface{}); ok {
		return nested, nil
	}
	return secret.Data, nil
}

func stringValue(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}
