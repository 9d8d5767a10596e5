package config

import (
	"os"

	"github.com/go-yaml/yaml"

	"github.com/aichampion/hall/internal/domain"
)

type Config struct {
	Server  Server  `yaml:"server"`
	Gemini  Gemini  `yaml:"gemini"`
	Storage Storage `yaml:"storage"`
	Hall    Hall    `yaml:"hall"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Gemini struct {
	APIKey     string `yaml:"apikey"`
	TextModel  string `yaml:"textModel"`
	ImageModel string `yaml:"imageModel"`
}

type Storage struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentialsFile"`
}

type Hall struct {
	// MasterSecret empty disables the operator override entirely.
	MasterSecret      string `yaml:"masterSecret"`
	MinVisionLen      int    `yaml:"minVisionLen"`
	MinAchievementLen int    `yaml:"minAchievementLen"`
	SessionTTLMinutes int    `yaml:"sessionTTLMinutes"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.Listen == "" {
		config.Server.Listen = ":8000"
	}
	if config.Gemini.TextModel == "" {
		config.Gemini.TextModel = "gemini-3-flash-preview"
	}
	if config.Gemini.ImageModel == "" {
		config.Gemini.ImageModel = "gemini-3-pro-image-preview"
	}
	if config.Hall.MinVisionLen == 0 {
		config.Hall.MinVisionLen = domain.DefaultMinVisionLen
	}
	if config.Hall.MinAchievementLen == 0 {
		config.Hall.MinAchievementLen = domain.DefaultMinAchievementLen
	}
	if config.Hall.SessionTTLMinutes == 0 {
		config.Hall.SessionTTLMinutes = 12 * 60
	}

	return config, nil
}
