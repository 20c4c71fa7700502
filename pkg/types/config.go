package types

import "time"

// ToolsConfig holds explicit tool locations. Any non-empty field replaces the
// value the environment resolver would otherwise discover.
type ToolsConfig struct {
	// BaseDir is the installation directory searched for jars. It takes
	// precedence over MYMINDMAP_BASE_DIR and the executable's directory.
	BaseDir string `json:"base_dir" yaml:"base_dir" mapstructure:"base_dir"`

	// Java is the path to the java launcher.
	Java string `json:"java" yaml:"java" mapstructure:"java"`

	PlantUMLJar        string `json:"plantuml_jar" yaml:"plantuml_jar" mapstructure:"plantuml_jar"`
	BatikRasterizerJar string `json:"batik_rasterizer_jar" yaml:"batik_rasterizer_jar" mapstructure:"batik_rasterizer_jar"`
	BatikAllJar        string `json:"batik_all_jar" yaml:"batik_all_jar" mapstructure:"batik_all_jar"`

	// BatikLibDir is a Batik distribution lib/ directory used as a classpath.
	BatikLibDir string `json:"batik_lib_dir" yaml:"batik_lib_dir" mapstructure:"batik_lib_dir"`
}

// ConversionConfig holds settings for the conversion pipeline.
type ConversionConfig struct {
	// OutputDir is where synthesized output files go when no path is given.
	// Empty means the base directory.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Timeout bounds each external process (default 2m, 0 disables).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// HistoryConfig holds settings for the conversion history store.
type HistoryConfig struct {
	// Path is the SQLite database file (default: mindmap-pdf/history.db in the
	// user's XDG data directory).
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// Disabled turns off recording entirely.
	Disabled bool `json:"disabled" yaml:"disabled" mapstructure:"disabled"`
}

// ServerConfig holds settings for the HTTP front end.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// MaxConcurrent bounds the number of conversions running at once (default 2).
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// WatchConfig holds settings for watch mode.
type WatchConfig struct {
	// Debounce is the quiet period after a change before converting (default 500ms).
	Debounce time.Duration `json:"debounce" yaml:"debounce" mapstructure:"debounce"`
}

// Config groups all settings for the mindmap-pdf binary.
type Config struct {
	LogLevel   string           `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	Tools      ToolsConfig      `json:"tools" yaml:"tools" mapstructure:"tools"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	History    HistoryConfig    `json:"history" yaml:"history" mapstructure:"history"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Watch      WatchConfig      `json:"watch" yaml:"watch" mapstructure:"watch"`
}
