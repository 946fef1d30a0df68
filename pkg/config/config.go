package config

import (
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
	"sigs.k8s.io/yaml"
)

type Config struct {
	// Port Settings
	Host       string `json:"host"`       // The domain name of the server.
	ServerAddr string `json:"serverAddr"` // The address the server endpoint binds to.

	Auth struct {
		AccessTokenSecret      string `json:"accessTokenSecret"`
		RefreshTokenSecret     string `json:"refreshTokenSecret"`
		AccessTokenExpiryHour  int    `json:"accessTokenExpiryHour"`
		RefreshTokenExpiryHour int    `json:"refreshTokenExpiryHour"`
	} `json:"auth"`

	Postgres struct {
		Host     string `json:"host"`
		Port     string `json:"port"`
		DBName   string `json:"dbname"`
		User     string `json:"user"`
		Password string `json:"password"`
		SSLMode  string `json:"sslmode"`
		TimeZone string `json:"TimeZone"`
	} `json:"postgres"`

	// SMTP settings for assignment notifications. Notifications are
	// skipped entirely when Host is empty.
	SMTP struct {
		Host   string `json:"host"`
		Port   string `json:"port"`
		User   string `json:"user"`
		Pass   string `json:"password"`
		Sender string `json:"sender"`
	} `json:"smtp"`
}

var (
	once   sync.Once
	config *Config
)

func GetConfig() *Config {
	once.Do(func() {
		config = initConfig()
	})
	return config
}

func IsDebugMode() bool {
	return gin.Mode() == gin.DebugMode
}

// initConfig reads the yaml configuration file. In debug mode the
// path can be overridden with SOFTDESK_DEBUG_CONFIG_PATH; otherwise
// the file is mounted at /etc/config/config.yaml.
func initConfig() *Config {
	config := &Config{}
	var configPath string
	if IsDebugMode() {
		if os.Getenv("SOFTDESK_DEBUG_CONFIG_PATH") != "" {
			configPath = os.Getenv("SOFTDESK_DEBUG_CONFIG_PATH")
		} else {
			configPath = "./etc/debug-config.yaml"
		}
	} else {
		configPath = "/etc/config/config.yaml"
	}
	klog.Info("config path: ", configPath)

	if err := readConfig(configPath, config); err != nil {
		klog.Error("init config", err)
		panic(err)
	}
	return config
}

func readConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, config)
}
