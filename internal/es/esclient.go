package es

import (
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/motoexpress/pedidos_api/internal/config"
)

// NewClient connects to Elasticsearch and verifies the node is reachable.
// An empty ES_URL disables search: the returned client is nil and the search
// endpoint reports the feature as unavailable.
func NewClient(cfg *config.Config) (*elasticsearch.Client, error) {
	if cfg.ES_URL == "" {
		return nil, nil
	}

	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.ES_URL},
		Username:  cfg.ES_USER,
		Password:  cfg.ES_PASSWORD,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("es: create client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es: info request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es: node responded with %s: %s", res.Status(), body)
	}

	return client, nil
}
