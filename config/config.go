package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Postgres struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (p Postgres) ConnStr() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s", p.Host, p.User, p.Password, p.DBName, p.Port, p.SSLMode)
}

type Nats struct {
	Host               string `mapstructure:"host"`
	Port               string `mapstructure:"port"`
	Stream             string `mapstructure:"stream"`
	RestaurantsSubject string `mapstructure:"restaurantsSubject"`
}

func (n Nats) ConnStr() string {
	return fmt.Sprintf("nats://%s:%s", n.Host, n.Port)
}

type OpenAI struct {
	APIKey          string `mapstructure:"apiKey"`
	ClassifierModel string `mapstructure:"classifierModel"`
	ExtractorModel  string `mapstructure:"extractorModel"`
	ChatModel       string `mapstructure:"chatModel"`
	TimeoutSeconds  int    `mapstructure:"timeoutSeconds"`
}

type Yelp struct {
	APIKey         string `mapstructure:"apiKey"`
	BaseURL        string `mapstructure:"baseUrl"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
}

type Cache struct {
	File string `mapstructure:"file"`
}

type Server struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type Ingest struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queueSize"`
}

type Chat struct {
	DefaultLocation string `mapstructure:"defaultLocation"`
	ResultLimit     int    `mapstructure:"resultLimit"`
	HistoryLimit    int    `mapstructure:"historyLimit"`
}

type Config struct {
	Postgres Postgres `mapstructure:"postgres"`
	Nats     Nats     `mapstructure:"nats"`
	OpenAI   OpenAI   `mapstructure:"openai"`
	Yelp     Yelp     `mapstructure:"yelp"`
	Cache    Cache    `mapstructure:"cache"`
	Server   Server   `mapstructure:"server"`
	Ingest   Ingest   `mapstructure:"ingest"`
	Chat     Chat     `mapstructure:"chat"`
}

func LoadConfig() *Config {
	viper.SetConfigFile("./config/config.yaml")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatal(err)
	}

	return &config
}
