package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/tmek2/sflrp-bot/internal/models"
	"gopkg.in/ini.v1"
)

// LoadConfig builds the process configuration. Values come from, lowest
// precedence first: the INI file at iniPath, the dotenv file at envFile and the
// process environment. Either file may be missing.
func LoadConfig(iniPath, envFile string) (*models.Config, error) {
	vars, err := readINI(iniPath)
	if err != nil {
		return nil, err
	}

	dotenv, err := readDotenv(envFile)
	if err != nil {
		return nil, err
	}
	for k, v := range dotenv {
		vars[k] = v
	}

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			vars[k] = v
		}
	}

	return Parse(vars)
}

// Parse decodes a flat variable map into a validated Config.
func Parse(vars map[string]string) (*models.Config, error) {
	cfg := &models.Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.AutoRoleIDs = trimAll(cfg.AutoRoleIDs)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields the bot cannot run without.
func Validate(cfg *models.Config) error {
	if strings.TrimSpace(cfg.Token) == "" {
		return errors.New("DISCORD_TOKEN is empty")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", cfg.Port)
	}
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("METRICS_PORT out of range: %d", cfg.MetricsPort)
	}
	if cfg.MetricsPort == cfg.Port {
		return fmt.Errorf("METRICS_PORT must differ from PORT (%d)", cfg.Port)
	}
	if cfg.CommandPrefix == "" {
		return errors.New("COMMAND_PREFIX is empty")
	}
	if strings.TrimSpace(cfg.BannedPhrase) == "" {
		return errors.New("BANNED_PHRASE is empty")
	}
	if err := validateSnowflake("WELCOME_CHANNEL_ID", cfg.WelcomeChannelID); err != nil {
		return err
	}
	if cfg.ModLogChannelID != "" {
		if err := validateSnowflake("MOD_LOG_CHANNEL_ID", cfg.ModLogChannelID); err != nil {
			return err
		}
	}
	for _, id := range cfg.AutoRoleIDs {
		if err := validateSnowflake("AUTO_ROLE_IDS", id); err != nil {
			return err
		}
	}

	u, err := url.Parse(cfg.LinkURL)
	if err != nil {
		return fmt.Errorf("LINK_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("LINK_URL must be an absolute http(s) URL: %q", cfg.LinkURL)
	}
	return nil
}

// readINI loads the default section of an INI file as a flat variable map.
// Keys use the same names as the environment variables.
func readINI(path string) (map[string]string, error) {
	vars := make(map[string]string)
	if path == "" {
		return vars, nil
	}

	cfgFile, err := ini.LooseLoad(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	for _, key := range cfgFile.Section("").Keys() {
		vars[key.Name()] = key.String()
	}
	return vars, nil
}

func readDotenv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return vars, nil
}

func validateSnowflake(name, id string) error {
	if id == "" {
		return fmt.Errorf("%s is empty", name)
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return fmt.Errorf("%s: invalid id %q", name, id)
	}
	return nil
}

func trimAll(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
