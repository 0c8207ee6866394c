package env

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	environmentVariableNameUsername   = "ROOTNROLL_USERNAME"
	environmentVariableNamePassword   = "ROOTNROLL_PASSWORD"
	environmentVariableNameAPIURL     = "ROOTNROLL_API_URL"
	environmentVariableNameConfigFile = "ROOTNROLL_CONFIG_FILE"
	environmentVariableNameProfile    = "ROOTNROLL_PROFILE"
	environmentVariableNameTimeout    = "ROOTNROLL_TIMEOUT"
	environmentVariableNameMaxRetries = "ROOTNROLL_MAX_RETRIES"
	environmentVariableNameDebug      = "ROOTNROLL_DEBUG"
)

func CredentialsFromEnvironment() (string, string) {
	username := os.Getenv(environmentVariableNameUsername)
	password := os.Getenv(environmentVariableNamePassword)
	if username == "" || password == "" {
		return "", ""
	}
	return username, password
}

func APIURLFromEnvironment() string {
	return strings.TrimSpace(os.Getenv(environmentVariableNameAPIURL))
}

func ConfigFileFromEnvironment() string {
	return os.Getenv(environmentVariableNameConfigFile)
}

func ProfileFromEnvironment() string {
	return os.Getenv(environmentVariableNameProfile)
}

// TimeoutFromEnvironment 读取以秒为单位的超时时长，未设置或无法解析时第二个返回值为 false
func TimeoutFromEnvironment() (time.Duration, bool) {
	value := strings.TrimSpace(os.Getenv(environmentVariableNameTimeout))
	if value == "" {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || seconds <= 0 {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

func MaxRetriesFromEnvironment() (int, bool) {
	value := strings.TrimSpace(os.Getenv(environmentVariableNameMaxRetries))
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func DebugFromEnvironment() (bool, bool) {
	value := strings.ToLower(os.Getenv(environmentVariableNameDebug))
	if value == "" {
		return false, false
	}
	return value == "true" || value == "yes" || value == "y" || value == "1", true
}
