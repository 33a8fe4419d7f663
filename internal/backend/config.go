package backend

import (
	"foodwaste/internal/config"
	"foodwaste/internal/core"
	"foodwaste/internal/llm"
)

// converter builds the unit converter with the configured heuristics.
func converter(cfg *config.Config) *core.UnitConverter {
	var opts []core.UnitOption
	if cfg.ServingKg > 0 {
		opts = append(opts, core.WithServingKg(cfg.ServingKg))
	}
	if cfg.ItemKg > 0 {
		opts = append(opts, core.WithItemKg(cfg.ItemKg))
	}
	return core.NewUnitConverter(opts...)
}

func remoteConfig(cfg *config.Config) llm.Config {
	return llm.Config{
		APIKey:   cfg.ChatAPIKey,
		URL:      cfg.ChatAPIURL,
		Model:    cfg.ChatModel,
		Timeout:  cfg.ChatRemoteTimeout,
		CacheTTL: cfg.ChatCacheTTL,
	}
}

func localConfig(cfg *config.Config) llm.LocalConfig {
	return llm.LocalConfig{
		URL:     cfg.LocalModelURL,
		Model:   cfg.LocalModelName,
		Timeout: cfg.LocalModelTimeout,
	}
}
