package internal

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	TransportLibp2p   = "libp2p"
	TransportLoopback = "loopback"
)

var validate = validator.New()

type Config struct {
	LogLevel        string        `env:"LOG_LEVEL,default=INFO" validate:"required"`
	Transport       string        `env:"TRANSPORT,default=libp2p" validate:"oneof=libp2p loopback"`
	ListenAddress   string        `env:"LISTEN_ADDRESS,default=/ip4/0.0.0.0/tcp/0" validate:"required"`
	Topic           string        `env:"TOPIC,default=chat" validate:"required"`
	EnableMDNS      bool          `env:"ENABLE_MDNS,default=true"`
	MDNSServiceTag  string        `env:"MDNS_SERVICE_TAG,default=peer-chat" validate:"required_if=EnableMDNS true"`
	EchoOwnMessages bool          `env:"ECHO_OWN_MESSAGES,default=false"`
	DedupPolicy     string        `env:"DEDUP_POLICY,default=none" validate:"oneof=none own-echo"`
	AnonymousPolicy string        `env:"ANONYMOUS_POLICY,default=render" validate:"oneof=render reject"`
	BufferSize      int           `env:"BUFFER_SIZE,default=256" validate:"gt=0"`
	SinkTimeout     time.Duration `env:"SINK_TIMEOUT,default=2s" validate:"gt=0"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=1s" validate:"gt=0"`
	CensoredWords   string        `env:"CENSORED_WORDS"`
	CharReplacement string        `env:"CHARACTER_REPLACEMENT,default=*"`
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := CharacterRune(c.CharReplacement); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
