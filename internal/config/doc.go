// Package config loads the shelf configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/shelf/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. SHELF_API_URL, when set, replaces api_base_url
//
// # Default Values
//
//   - API base URL: https://dummyjson.com
//   - Data directory: ~/.local/share/shelf
//   - Log file: <data_dir>/shelf.log
//   - File store: <data_dir>/store
//   - SQLite store: <data_dir>/shelf.db
//   - Session lifetime hint: 30 minutes
//   - Request pacing: 10 requests per second
//
// # TOML Format
//
//	api_base_url = "https://dummyjson.com"
//	data_dir = "~/.local/share/shelf"
//	session_minutes = 30
//	fetch_limit = 0            # 0 fetches the whole catalog
//	requests_per_second = 10.0 # 0 disables pacing
//	remote_echo = false
//	log_level = "info"
//
//	[store]
//	backend = "file"           # file, memory, redis or sqlite
//	redis_addr = "127.0.0.1:6379"
//	redis_prefix = "shelf:"
//	sqlite_path = "~/.local/share/shelf/shelf.db"
//
// Every field is optional. Tilde expansion is applied to data_dir and
// sqlite_path.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML parse errors and unknown store backends. A missing
// file is not an error.
package config
