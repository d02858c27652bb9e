package config

import (
	"context"
	"fmt"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
)

const apiKeyEnvVar = "COINGECKO_API_KEY"

// ResolveAPIKey supplies the market-data API key so the client never touches
// process environment itself. In prod the key comes from SSM Parameter Store;
// otherwise from a local .env file or the process environment.
func ResolveAPIKey(cfg CoinGeckoConfig, env string) (string, error) {
	if env == "prod" && cfg.APIKeyParameter != "" {
		if key := getParameterStoreValue(cfg.APIKeyParameter, true); key != "" {
			return key, nil
		}
		return "", fmt.Errorf("api key parameter %s not found in parameter store", cfg.APIKeyParameter)
	}

	_ = godotenv.Load() // .env is optional
	if key := os.Getenv(apiKeyEnvVar); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%s not set", apiKeyEnvVar)
}

func getParameterStoreValue(parameterName string, decrypt bool) string {
	baseCtx := context.Background()
	ctxWithTimeout, cancel := context.WithTimeout(baseCtx, 5*time.Second)
	defer cancel()

	cfg, err := awsconfig.LoadDefaultConfig(ctxWithTimeout)
	if err != nil {
		return ""
	}

	client := ssm.NewFromConfig(cfg)

	input := &ssm.GetParameterInput{
		Name:           &parameterName,
		WithDecryption: &decrypt,
	}

	result, err := client.GetParameter(ctxWithTimeout, input)
	if err != nil {
		return ""
	}

	if result.Parameter.Value == nil {
		return ""
	}

	return *result.Parameter.Value
}
