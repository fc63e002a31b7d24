package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DeviceConfig configures the gate scanner binary. It runs on handheld
// devices at the door, separate from the API server.
type DeviceConfig struct {
	ServerURL  string `envconfig:"SERVER_URL" required:"true"`
	AuthToken  string `envconfig:"AUTH_TOKEN" required:"true"`
	EventID    string `envconfig:"EVENT_ID" required:"true"`
	DeviceID   string `envconfig:"DEVICE_ID" required:"true"`
	QueuePath  string `envconfig:"QUEUE_PATH" default:"/var/lib/nightgate/scans.db"`
	QRSecret   string `envconfig:"QR_SIGNING_SECRET" required:"true"`
	ListenAddr string `envconfig:"LISTEN_ADDR" default:"127.0.0.1:8090"`

	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"5m"`
	SyncInterval    time.Duration `envconfig:"SYNC_INTERVAL" default:"30s"`
	BackoffBase     time.Duration `envconfig:"QUEUE_BACKOFF_BASE" default:"1m"`
	BackoffMax      time.Duration `envconfig:"QUEUE_BACKOFF_MAX" default:"30m"`
}

func LoadDeviceConfig() (DeviceConfig, error) {
	var cfg DeviceConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return DeviceConfig{}, fmt.Errorf("failed to process device env config: %w", err)
	}
	return cfg, nil
}
