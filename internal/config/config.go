package config

import (
	"errors"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Runtime holds process settings shared by every entry point.
type Runtime struct {
	HTTPAddr           string
	HomeCountry        string
	Workers            int
	IndexCacheMaxItems int
	ObsBuffer          int
	LogLevel           string
}

const (
	keyHTTPAddr      = "http_addr"
	keyHomeCountry   = "home_country"
	keyWorkers       = "decide_workers"
	keyIndexCacheMax = "index_cache_max_items"
	keyObsBuffer     = "rule_obs_buffer"
	keyLogLevel      = "log_level"
)

var defaults = Runtime{
	HTTPAddr:           ":8080",
	HomeCountry:        "kan",
	Workers:            1,
	IndexCacheMaxItems: 64,
	ObsBuffer:          4096,
	LogLevel:           "info",
}

// Load reads defaults, then an optional config.yaml from . or ./config, then
// environment variables named after the upper-cased keys.
func Load() (Runtime, error) {
	return load(viper.New(), ".", "config")
}

func load(v *viper.Viper, paths ...string) (Runtime, error) {
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault(keyHTTPAddr, defaults.HTTPAddr)
	v.SetDefault(keyHomeCountry, defaults.HomeCountry)
	v.SetDefault(keyWorkers, defaults.Workers)
	v.SetDefault(keyIndexCacheMax, defaults.IndexCacheMaxItems)
	v.SetDefault(keyObsBuffer, defaults.ObsBuffer)
	v.SetDefault(keyLogLevel, defaults.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Runtime{}, err
		}
	}

	return Runtime{
		HTTPAddr:           getString(v, keyHTTPAddr, defaults.HTTPAddr),
		HomeCountry:        getString(v, keyHomeCountry, defaults.HomeCountry),
		Workers:            getInt(v, keyWorkers, defaults.Workers, 1),
		IndexCacheMaxItems: getInt(v, keyIndexCacheMax, defaults.IndexCacheMaxItems, 1),
		ObsBuffer:          getInt(v, keyObsBuffer, defaults.ObsBuffer, 1),
		LogLevel:           getString(v, keyLogLevel, defaults.LogLevel),
	}, nil
}

func getString(v *viper.Viper, key, fallback string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	return fallback
}

// getInt returns fallback when the value does not parse or is below min.
func getInt(v *viper.Viper, key string, fallback, min int) int {
	n, err := cast.ToIntE(v.Get(key))
	if err != nil || n < min {
		return fallback
	}
	return n
}
