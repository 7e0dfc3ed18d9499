// config.go - Haupt-Konfigurationsfunktionen fuer maskform
//
// Dieses Modul enthaelt:
// - Host: Gibt Scheme und Host zurueck (MASKFORM_HOST)
// - AllowedOrigins: Gibt erlaubte Origins zurueck (MASKFORM_ORIGINS)
// - CacheDir: Gibt Cache-Verzeichnis-Override zurueck (MASKFORM_CACHE)
// - StorePath: Gibt Pfad der Modell-Datenbank zurueck (MASKFORM_STORE)
// - PullTimeout: Gibt Timeout fuer Pull-Operationen zurueck (MASKFORM_PULL_TIMEOUT)
// - LogLevel: Gibt Log-Level zurueck (MASKFORM_DEBUG)
//
// Weitere Konfigurationen sind ausgelagert:
// - config_features.go: Feature-Flags und Hub-Variablen
// - config_utils.go: Utility-Funktionen und AsMap/Values
package envconfig

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Host gibt Scheme und Host zurueck
// Konfigurierbar via MASKFORM_HOST
// Default: http://127.0.0.1:11437
func Host() *url.URL {
	defaultPort := "11437"

	s := strings.TrimSpace(Var("MASKFORM_HOST"))
	scheme, hostport, ok := strings.Cut(s, "://")
	switch {
	case !ok:
		scheme, hostport = "http", s
	case scheme == "http":
		defaultPort = "80"
	case scheme == "https":
		defaultPort = "443"
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = "127.0.0.1", defaultPort
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			host = ip.String()
		} else if hostport != "" {
			host = hostport
		}
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n > 65535 || n < 0 {
		slog.Warn("invalid port, using default", "port", port, "default", defaultPort)
		port = defaultPort
	}

	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, port),
		Path:   path,
	}
}

// AllowedOrigins gibt erlaubte Origins zurueck
// Konfigurierbar via MASKFORM_ORIGINS (komma-separiert)
// Enthaelt Standard-Origins fuer localhost
func AllowedOrigins() (origins []string) {
	if s := Var("MASKFORM_ORIGINS"); s != "" {
		origins = strings.Split(s, ",")
	}

	// Standard-Origins fuer localhost
	for _, origin := range []string{"localhost", "127.0.0.1", "0.0.0.0"} {
		origins = append(origins,
			fmt.Sprintf("http://%s", origin),
			fmt.Sprintf("https://%s", origin),
			fmt.Sprintf("http://%s", net.JoinHostPort(origin, "*")),
			fmt.Sprintf("https://%s", net.JoinHostPort(origin, "*")),
		)
	}

	// App-Protokolle
	origins = append(origins,
		"app://*",
		"file://*",
		"tauri://*",
		"vscode-webview://*",
		"vscode-file://*",
	)

	return origins
}

// CacheDir gibt ein Override fuer das Hub-Cache-Verzeichnis zurueck
// Konfigurierbar via MASKFORM_CACHE
// Leer = huggingface_hub Standard-Aufloesung (HF_HUB_CACHE, HF_HOME, XDG)
func CacheDir() string {
	return Var("MASKFORM_CACHE")
}

// StorePath gibt den Pfad der Modell-Datenbank zurueck
// Konfigurierbar via MASKFORM_STORE
// Default: $HOME/.maskform/maskform.db
func StorePath() string {
	if s := Var("MASKFORM_STORE"); s != "" {
		return s
	}

	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}

	return filepath.Join(home, ".maskform", "maskform.db")
}

// PullTimeout gibt das Timeout fuer Pull-Operationen zurueck
// Konfigurierbar via MASKFORM_PULL_TIMEOUT
// 0 oder negative Werte = unendlich
// Default: 5 Minuten
func PullTimeout() (pullTimeout time.Duration) {
	pullTimeout = 5 * time.Minute
	if s := Var("MASKFORM_PULL_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			pullTimeout = d
		} else if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			pullTimeout = time.Duration(n) * time.Second
		}
	}

	if pullTimeout <= 0 {
		return time.Duration(math.MaxInt64)
	}

	return pullTimeout
}

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via MASKFORM_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("MASKFORM_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
