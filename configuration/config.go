package configuration

import "github.com/jinzhu/configor"

type Config struct {
	// server
	Addr     string `yaml:"addr" default:":8383"`
	DataDir  string `yaml:"data-dir"`
	JwtKey   string `yaml:"jwt-key"`
	LogLevel string `yaml:"log-level" default:"info"`

	// client
	Url      string `yaml:"url" default:"http://localhost:8383"`
	Owner    string `yaml:"owner"`
	Group    string `yaml:"group"`
	BarPause int    `yaml:"bar-pause" default:"500"`
}

// Load reads the config file, falling back to the defaults and
// PIXST_* environment variables when no path is given.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	loader := configor.New(&configor.Config{ENVPrefix: "PIXST", Silent: true})
	var err error
	if path == "" {
		err = loader.Load(cfg)
	} else {
		err = loader.Load(cfg, path)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
