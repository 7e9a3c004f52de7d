// Package config loads the site's build options and the host's own settings.
// Values come from .blog.yaml (in $HOME or the working directory, or the file
// named by --config), then BLOG_* environment variables, which may be seeded
// from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"maze.io/x/duration"

	"github.com/tech-vexy/blog/siteurl"
)

// Build holds the options handed to the static-site generator.  The host
// reads Site, Base and CheckOrigin; the rest are carried for `blogd config`.
type Build struct {
	Site              string   `yaml:"site"`
	Base              string   `yaml:"base"`
	Integrations      []string `yaml:"integrations"`
	InlineStylesheets string   `yaml:"inline_stylesheets"`
	CompressHTML      bool     `yaml:"compress_html"`
	Minify            string   `yaml:"minify"`
	CSSMinify         bool     `yaml:"css_minify"`
	CheckOrigin       bool     `yaml:"check_origin"`
}

// Config is everything blogd needs at startup.
type Config struct {
	Build Build `yaml:"build"`

	ListenAddress  string        `yaml:"listen_address"`
	DistDir        string        `yaml:"dist_dir"`
	EnableCaching  bool          `yaml:"enable_caching"`
	RobotsMaxAge   time.Duration `yaml:"robots_max_age"`
	StaticMaxAge   time.Duration `yaml:"static_max_age"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	Tarpit         bool          `yaml:"tarpit"`
}

var inlineStylesheetModes = []string{"auto", "always", "never"}

// SetDefaults installs the defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("site_url", "https://tech-vexy.github.io")
	v.SetDefault("base", "/")
	v.SetDefault("integrations", []string{"mdx", "sitemap"})
	v.SetDefault("inline_stylesheets", "auto")
	v.SetDefault("compress_html", true)
	v.SetDefault("minify", "esbuild")
	v.SetDefault("css_minify", true)
	v.SetDefault("check_origin", true)

	v.SetDefault("listen_address", ":8080")
	v.SetDefault("dist_dir", "dist")
	v.SetDefault("enable_caching", true)
	v.SetDefault("robots_max_age", "1d")
	v.SetDefault("static_max_age", "1h")
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("tarpit", true)
}

// Init prepares v.  configFile may be empty, in which case .blog.yaml is
// searched for.  A missing file is not an error.
func Init(v *viper.Viper, configFile string) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("can't load .env: %v", err)
	}

	SetDefaults(v)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".blog")
		v.AddConfigPath(".")
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		log.Printf("viper can't read config file: %v", err)
	} else {
		log.Printf("using config file %s", v.ConfigFileUsed())
	}
}

// Load prepares a fresh viper instance and reads the configuration from it.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	Init(v, configFile)
	return FromViper(v)
}

// FromViper builds and validates a Config.  A bad site URL comes back as a
// *siteurl.InvalidConfigurationError so startup fails before any request.
func FromViper(v *viper.Viper) (*Config, error) {
	site := strings.TrimSpace(v.GetString("site_url"))
	if _, err := siteurl.Parse(site); err != nil {
		return nil, err
	}

	mode := v.GetString("inline_stylesheets")
	if !slices.Contains(inlineStylesheetModes, mode) {
		return nil, fmt.Errorf("inline_stylesheets %q: want one of %v", mode, inlineStylesheetModes)
	}

	robotsMaxAge, err := parseDuration(v, "robots_max_age")
	if err != nil {
		return nil, err
	}
	staticMaxAge, err := parseDuration(v, "static_max_age")
	if err != nil {
		return nil, err
	}

	return &Config{
		Build: Build{
			Site:              site,
			Base:              NormalizeBase(v.GetString("base")),
			Integrations:      stringList(v, "integrations"),
			InlineStylesheets: mode,
			CompressHTML:      v.GetBool("compress_html"),
			Minify:            v.GetString("minify"),
			CSSMinify:         v.GetBool("css_minify"),
			CheckOrigin:       v.GetBool("check_origin"),
		},
		ListenAddress:  v.GetString("listen_address"),
		DistDir:        v.GetString("dist_dir"),
		EnableCaching:  v.GetBool("enable_caching"),
		RobotsMaxAge:   robotsMaxAge,
		StaticMaxAge:   staticMaxAge,
		AllowedOrigins: stringList(v, "allowed_origins"),
		Tarpit:         v.GetBool("tarpit"),
	}, nil
}

// stringList reads a list that may also come from the environment as a
// comma-separated string, e.g. BLOG_ALLOWED_ORIGINS=https://a.example,https://b.example.
func stringList(v *viper.Viper, key string) []string {
	r := []string{}
	for _, item := range v.GetStringSlice(key) {
		for part := range strings.SplitSeq(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				r = append(r, part)
			}
		}
	}
	return r
}

// parseDuration accepts Go durations plus day and week units ("1d", "2w").
func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	s := v.GetString(key)
	d, err := duration.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", key, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s %q: negative", key, s)
	}
	return time.Duration(d), nil
}

// NormalizeBase makes base start and end with a slash.
func NormalizeBase(base string) string {
	base = strings.Trim(base, "/")
	if base == "" {
		return "/"
	}
	return "/" + base + "/"
}
