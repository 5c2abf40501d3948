package config

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	mu sync.RWMutex `yaml:"-"`

	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Queue     QueueConfig     `yaml:"queue"`
	Trigger   TriggerConfig   `yaml:"trigger"`
	Grid      GridConfig      `yaml:"grid"`
	Web       WebConfig       `yaml:"web"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Messaging MessagingConfig `yaml:"messaging"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	MySQL    MySQLConfig    `yaml:"mysql"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// QueueConfig selects where case queue records live and how hard
// writers retry a lost compare-and-swap before giving up.
type QueueConfig struct {
	Backend    string `yaml:"backend"` // "sql" or "redis"
	MaxRetries int    `yaml:"max_retries"`
}

type TriggerConfig struct {
	Workers           int           `yaml:"workers"`
	MaxDeliveries     int           `yaml:"max_deliveries"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
}

// GridConfig names the floor cells. Empty means the 3x3 factory grid.
type GridConfig struct {
	Cells map[string]GridPoint `yaml:"cells"`
}

type GridPoint struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	SessionSecret string `yaml:"session_secret"`
}

type GRPCConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

type MessagingConfig struct {
	Backend             string        `yaml:"backend"` // "mqtt" or "kafka"
	MQTT                MQTTConfig    `yaml:"mqtt"`
	Kafka               KafkaConfig   `yaml:"kafka"`
	EventsTopic         string        `yaml:"events_topic"`
	PushTopic           string        `yaml:"push_topic"`
	KartTopic           string        `yaml:"kart_topic"`
	OutboxDrainInterval time.Duration `yaml:"outbox_drain_interval"`
	StationID           string        `yaml:"station_id"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
}

func Defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "kartcore.db"},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "kartcore",
				User:     "kartcore",
				SSLMode:  "disable",
			},
			MySQL: MySQLConfig{
				Host:     "localhost",
				Port:     3306,
				Database: "kartcore",
				User:     "kartcore",
			},
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
		},
		Queue: QueueConfig{
			Backend:    "sql",
			MaxRetries: 10,
		},
		Trigger: TriggerConfig{
			Workers:           4,
			MaxDeliveries:     5,
			RetryDelay:        200 * time.Millisecond,
			ReconcileInterval: time.Minute,
		},
		Web: WebConfig{
			Host:          "0.0.0.0",
			Port:          8090,
			SessionSecret: "change-me-in-production",
		},
		GRPC: GRPCConfig{
			Enabled: true,
			Address: ":9090",
		},
		Messaging: MessagingConfig{
			Backend: "mqtt",
			MQTT: MQTTConfig{
				Broker:   "localhost",
				Port:     1883,
				ClientID: "kartcore",
			},
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				GroupID: "kartcore",
			},
			EventsTopic:         "kartcore/events",
			PushTopic:           "kartcore/push",
			KartTopic:           "kartcore/karts",
			OutboxDrainInterval: 5 * time.Second,
			StationID:           "kartcore",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Lock()   { c.mu.Lock() }
func (c *Config) Unlock() { c.mu.Unlock() }
