package configfile

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/rootnroll/go-sdk/internal/env"
)

type profileConfig struct {
	Username   string  `toml:"username" yaml:"username"`
	Password   string  `toml:"password" yaml:"password"`
	APIURL     string  `toml:"api_url" yaml:"api_url"`
	Timeout    float64 `toml:"timeout" yaml:"timeout"`
	MaxRetries *int    `toml:"max_retries" yaml:"max_retries"`
}

var (
	profileConfigs      map[string]*profileConfig
	profileConfigsError error
	profileConfigsOnce  sync.Once
)

func CredentialsFromConfigFile() (string, string, error) {
	profile, err := getProfile()
	if err != nil || profile == nil {
		return "", "", err
	} else if profile.Username == "" || profile.Password == "" {
		return "", "", nil
	}
	return profile.Username, profile.Password, nil
}

func APIURLFromConfigFile() (string, error) {
	profile, err := getProfile()
	if err != nil || profile == nil {
		return "", err
	}
	return strings.TrimSpace(profile.APIURL), nil
}

// TimeoutFromConfigFile 返回配置文件中以秒为单位的超时时长，未配置时返回 0
func TimeoutFromConfigFile() (time.Duration, error) {
	profile, err := getProfile()
	if err != nil || profile == nil || profile.Timeout <= 0 {
		return 0, err
	}
	return time.Duration(profile.Timeout * float64(time.Second)), nil
}

func MaxRetriesFromConfigFile() (int, bool, error) {
	profile, err := getProfile()
	if err != nil || profile == nil || profile.MaxRetries == nil || *profile.MaxRetries < 0 {
		return 0, false, err
	}
	return *profile.MaxRetries, true, nil
}

func getProfile() (*profileConfig, error) {
	if err := load(); err != nil {
		return nil, err
	}
	profileName := env.ProfileFromEnvironment()
	if profileName == "" {
		profileName = "default"
	}
	profile, ok := profileConfigs[profileName]
	if !ok || profile == nil {
		return nil, nil
	}
	return profile, nil
}

func load() error {
	profileConfigsOnce.Do(func() {
		profileConfigsError = _load()
	})
	return profileConfigsError
}

func _load() error {
	configFilePath := env.ConfigFileFromEnvironment()
	if configFilePath == "" {
		configFilePath = getDefaultConfigFilePath()
		// 默认路径的配置文件可以不存在
		if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
			return nil
		}
	}
	switch strings.ToLower(filepath.Ext(configFilePath)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(configFilePath)
		if err != nil {
			return err
		}
		return yaml.Unmarshal(data, &profileConfigs)
	default:
		_, err := toml.DecodeFile(configFilePath, &profileConfigs)
		return err
	}
}

func getDefaultConfigFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}
	return filepath.Join(homeDir, ".rootnroll", "config.toml")
}
