package connectors

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	FinnhubAPIKey  string `envconfig:"FINNHUB_KEY" default:""`
	FinnhubBaseURL string `envconfig:"FINNHUB_BASE_URL" default:"https://finnhub.io/api/v1"`

	SECAPIKey  string `envconfig:"SEC_API_KEY" default:""`
	SECBaseURL string `envconfig:"SEC_BASE_URL" default:"https://api.sec-api.io"`

	StorageBaseURL    string `envconfig:"STORAGE_BASE_URL" default:"http://localhost:54321/storage/v1"`
	StorageServiceKey string `envconfig:"STORAGE_SERVICE_KEY" default:""`
	StorageBucket     string `envconfig:"STORAGE_BUCKET" default:"screenshots"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
