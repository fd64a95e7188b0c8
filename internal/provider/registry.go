package provider

import (
	"github.com/habitlog/internal/config"
	"github.com/habitlog/internal/service"
	"github.com/sirupsen/logrus"
)

// BuildProviders 按配置注册可用的数据源，凭据缺失的数据源直接跳过
func BuildProviders(cfg config.AppConfig, cache Cache, logger logrus.FieldLogger) []service.DataProvider {
	var providers []service.DataProvider

	if cfg.GitHubEnabled() {
		providers = append(providers, NewGitHubProvider(GitHubOptions{
			Token:     cfg.GitHubToken,
			Username:  cfg.GitHubUsername,
			BaseURL:   cfg.GitHubAPIURL,
			Timeout:   cfg.ProviderTimeout,
			RateLimit: cfg.GitHubRateLimit,
			CacheTTL:  cfg.ProviderCacheTTL,
		}, cache, logger))
		logger.WithField("provider", service.ProviderGitHub).Info("data provider registered")
	} else {
		logger.WithField("provider", service.ProviderGitHub).Info("GITHUB_TOKEN or GITHUB_USERNAME not set, provider disabled")
	}

	return providers
}
