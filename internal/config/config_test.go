package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func baseVars() map[string]string {
	return map[string]string{"DISCORD_TOKEN": "token"}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(baseVars())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != 10000 {
		t.Fatalf("expected default port 10000, got %d", cfg.Port)
	}
	if cfg.CommandPrefix != "s!" {
		t.Fatalf("expected prefix s!, got %q", cfg.CommandPrefix)
	}
	if len(cfg.AutoRoleIDs) != 2 {
		t.Fatalf("expected two auto roles, got %v", cfg.AutoRoleIDs)
	}
	if !cfg.CountHumansOnly {
		t.Fatalf("expected humans-only by default")
	}
	if cfg.SecretRoleName != "Gamer" || cfg.LinkLabel != "Information" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Log.File != "discord.log" {
		t.Fatalf("expected default log file, got %q", cfg.Log.File)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"missing token", map[string]string{}, "DISCORD_TOKEN"},
		{"blank token", map[string]string{"DISCORD_TOKEN": "  "}, "DISCORD_TOKEN"},
		{"port range", map[string]string{"DISCORD_TOKEN": "t", "PORT": "70000"}, "PORT"},
		{"port not int", map[string]string{"DISCORD_TOKEN": "t", "PORT": "abc"}, "Port"},
		{"metrics clash", map[string]string{"DISCORD_TOKEN": "t", "PORT": "9000", "METRICS_PORT": "9000"}, "METRICS_PORT"},
		{"bad role id", map[string]string{"DISCORD_TOKEN": "t", "AUTO_ROLE_IDS": "123,abc"}, "AUTO_ROLE_IDS"},
		{"bad channel", map[string]string{"DISCORD_TOKEN": "t", "WELCOME_CHANNEL_ID": "general"}, "WELCOME_CHANNEL_ID"},
		{"relative url", map[string]string{"DISCORD_TOKEN": "t", "LINK_URL": "/rules"}, "LINK_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.vars)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}

func TestParseTrimsRoleList(t *testing.T) {
	vars := baseVars()
	vars["AUTO_ROLE_IDS"] = " 111 , 222 ,"
	cfg, err := Parse(vars)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cfg.AutoRoleIDs) != 2 || cfg.AutoRoleIDs[0] != "111" || cfg.AutoRoleIDs[1] != "222" {
		t.Fatalf("unexpected roles: %q", cfg.AutoRoleIDs)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	iniPath := filepath.Join(dir, "config.ini")
	envPath := filepath.Join(dir, ".env")

	iniBody := "DISCORD_TOKEN = from-ini\nSECRET_ROLE_NAME = IniRole\nLINK_LABEL = Rules\n"
	if err := os.WriteFile(iniPath, []byte(iniBody), 0o600); err != nil {
		t.Fatal(err)
	}
	envBody := "SECRET_ROLE_NAME=DotenvRole\nPORT=8080\n"
	if err := os.WriteFile(envPath, []byte(envBody), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "8081")

	cfg, err := LoadConfig(iniPath, envPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Token != "from-ini" {
		t.Fatalf("expected token from ini, got %q", cfg.Token)
	}
	if cfg.LinkLabel != "Rules" {
		t.Fatalf("expected link label from ini, got %q", cfg.LinkLabel)
	}
	if cfg.SecretRoleName != "DotenvRole" {
		t.Fatalf("expected dotenv to override ini, got %q", cfg.SecretRoleName)
	}
	if cfg.Port != 8081 {
		t.Fatalf("expected process env to override dotenv, got %d", cfg.Port)
	}
}

func TestLoadConfigMissingFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DISCORD_TOKEN", "env-token")

	cfg, err := LoadConfig(filepath.Join(dir, "none.ini"), filepath.Join(dir, "none.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Token != "env-token" {
		t.Fatalf("expected token from env, got %q", cfg.Token)
	}
}
