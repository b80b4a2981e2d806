// Package config provides configuration loading and defaults for courtside.
package config

import "time"

// DefaultConfigDir is the default location for courtside configuration.
const DefaultConfigDir = "~/.config/courtside"

// DefaultDBName is the filename for the SQLite feed cache.
const DefaultDBName = "courtside.db"

// DefaultSeasonType is the season type requested from the stats API.
const DefaultSeasonType = "Regular Season"

// DefaultCache holds the default feed cache settings.
var DefaultCache = Cache{
	TTL:          time.Hour,
	StaleOnError: true,
	Keep:         3,
}

// DefaultStatsAPI holds the default stats API client settings.
var DefaultStatsAPI = StatsAPI{
	BaseURL:      "https://stats.nba.com/stats",
	Timeout:      60 * time.Second,
	RequestDelay: 600 * time.Millisecond,
}

// DefaultLog holds the default logging settings.
var DefaultLog = Log{
	Level:  "info",
	Pretty: true,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}

// DefaultServe holds the default HTTP server settings.
var DefaultServe = Serve{
	Addr:            ":8080",
	RefreshSchedule: "@every 1h",
}
