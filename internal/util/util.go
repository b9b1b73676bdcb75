package util

import (
	"encoding/json"
	"fmt"
	"os"
)

func Pprint(i interface{}) {
	bytes, err := json.MarshalIndent(i, "", "    ")
	if err != nil {
		panic(err)
	}
	fmt.Println(string(bytes))
}

type Secrets struct {
	CoinMarketCapApiKey string       `json:"coinMarketCap"`
	ChatGPTApiKey       string       `json:"gpt"`
	Redis               RedisSecrets `json:"redis"`
	RiskTierStrategy    string       `json:"riskTierStrategy"`
}

type RedisSecrets struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r RedisSecrets) Addr() string {
	port := r.Port
	if port == "" {
		port = "6379"
	}
	return fmt.Sprintf("%s:%s", r.Host, port)
}

// LoadSecrets reads secrets.json, falling back to env vars when the file
// is absent so the docker/.env setup still works.
func LoadSecrets() (*Secrets, error) {
	secretsFile := "secrets.json"
	if os.Getenv("AETHERUM_ENV") == "dev" {
		secretsFile = "secrets-dev.json"
	} else if os.Getenv("AETHERUM_ENV") == "test" {
		secretsFile = "secrets-test.json"
	}

	f, err := os.ReadFile(secretsFile)
	if os.IsNotExist(err) {
		return secretsFromEnv(), nil
	} else if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", secretsFile, err)
	}

	secrets := Secrets{}
	err = json.Unmarshal(f, &secrets)
	if err != nil {
		return nil, err
	}

	return &secrets, nil
}

func secretsFromEnv() *Secrets {
	return &Secrets{
		CoinMarketCapApiKey: os.Getenv("CMC_API_KEY"),
		ChatGPTApiKey:       os.Getenv("OPENAI_API_KEY"),
		Redis: RedisSecrets{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     os.Getenv("REDIS_PORT"),
			Username: os.Getenv("REDIS_USERNAME"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		RiskTierStrategy: os.Getenv("RISK_TIER_STRATEGY"),
	}
}
