// Package config charge la configuration du run: valeurs par défaut, fichier YAML,
// variables d'environnement CLTV_*, puis flags de la ligne de commande.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"cltv-predict/pkg/models"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ErrInvalidConfig est renvoyée par Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// flags courts de la CLI → clés de configuration
var flagKeys = map[string]string{
	"input":   "input.path",
	"sheet":   "input.sheet",
	"table":   "input.table",
	"country": "prep.country",
	"top":     "report.top_n",
	"export":  "report.export_path",
	"chart":   "report.chart_path",
	"verbose": "verbose",
}

// Load charge la configuration. Priorité: flags > env > fichier > défauts.
// Renvoie aussi le chemin du fichier utilisé (vide si aucun).
func Load(cfgFile string, flags *pflag.FlagSet) (models.Config, string, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return models.Config{}, "", fmt.Errorf("load defaults: %w", err)
	}

	used := cfgFile
	if used == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			used = DefaultConfigFile
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return models.Config{}, "", fmt.Errorf("read config file %s: %w", used, err)
		}
	}

	// CLTV_MODEL__BGF_PENALIZER -> model.bgf_penalizer
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return models.Config{}, "", fmt.Errorf("load env: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return models.Config{}, "", fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg models.Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return models.Config{}, "", fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return models.Config{}, "", err
	}
	return cfg, used, nil
}

// Default renvoie la configuration par défaut, sans fichier ni environnement.
func Default() models.Config {
	k := koanf.New(".")
	var cfg models.Config
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		panic(err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

// Validate vérifie les bornes des paramètres numériques.
func Validate(cfg models.Config) error {
	var problems []string
	p := cfg.Prep
	if p.LowerQuantile < 0 || p.LowerQuantile > 1 || p.UpperQuantile < 0 || p.UpperQuantile > 1 {
		problems = append(problems, "quantiles must be within [0, 1]")
	}
	if p.LowerQuantile > p.UpperQuantile {
		problems = append(problems, "lower_quantile must not exceed upper_quantile")
	}
	if p.IQRMultiplier < 0 {
		problems = append(problems, "iqr_multiplier must be non-negative")
	}
	if cfg.Model.BGFPenalizer < 0 || cfg.Model.GGFPenalizer < 0 {
		problems = append(problems, "penalizers must be non-negative")
	}
	if cfg.Model.PredictionWeeks <= 0 {
		problems = append(problems, "prediction_weeks must be positive")
	}
	if cfg.CLTV.Months <= 0 {
		problems = append(problems, "cltv.months must be positive")
	}
	switch strings.ToUpper(cfg.CLTV.Freq) {
	case "W", "M", "D", "H":
	default:
		problems = append(problems, fmt.Sprintf("unknown cltv.freq %q (W, M, D, H)", cfg.CLTV.Freq))
	}
	if cfg.CLTV.DiscountRate <= -1 {
		problems = append(problems, "discount_rate must be greater than -1")
	}
	if cfg.Report.TopN < 0 || cfg.Report.HeadRows < 0 {
		problems = append(problems, "top_n and head_rows must be non-negative")
	}
	if cfg.Report.MaxFrequency <= 0 {
		problems = append(problems, "max_frequency must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
