package kafka

import (
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// Config holds Kafka connection parameters shared by producers and consumers.
type Config struct {
	ClientID      string
	ConsumerGroup string

	// SASLMechanism is "PLAIN", "SCRAM-SHA-256" or "SCRAM-SHA-512".
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string

	Brokers []string

	TLS         bool
	SASLEnabled bool
}

// Validate reports missing or unsupported settings.
func (c Config) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("kafka: at least one broker is required")
	}
	if c.SASLEnabled {
		if _, err := c.mechanism(); err != nil {
			return err
		}
	}
	return nil
}

// tlsConfig returns nil when TLS is disabled.
func (c Config) tlsConfig() *tls.Config {
	if !c.TLS {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

func (c Config) mechanism() (sasl.Mechanism, error) {
	switch c.SASLMechanism {
	case "PLAIN", "":
		return &plain.Mechanism{Username: c.SASLUsername, Password: c.SASLPassword}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, c.SASLUsername, c.SASLPassword)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, c.SASLUsername, c.SASLPassword)
	default:
		return nil, fmt.Errorf("kafka: unsupported SASL mechanism %q", c.SASLMechanism)
	}
}

// dialer builds the reader-side dialer, or nil when the defaults suffice.
func (c Config) dialer() (*kafkago.Dialer, error) {
	if !c.TLS && !c.SASLEnabled && c.ClientID == "" {
		return nil, nil
	}
	d := &kafkago.Dialer{
		ClientID:  c.ClientID,
		Timeout:   10 * time.Second,
		DualStack: true,
		TLS:       c.tlsConfig(),
	}
	if c.SASLEnabled {
		m, err := c.mechanism()
		if err != nil {
			return nil, err
		}
		d.SASLMechanism = m
	}
	return d, nil
}

// transport builds the writer-side transport, or nil for the default.
func (c Config) transport() (*kafkago.Transport, error) {
	if !c.TLS && !c.SASLEnabled && c.ClientID == "" {
		return nil, nil
	}
	t := &kafkago.Transport{
		ClientID: c.ClientID,
		TLS:      c.tlsConfig(),
	}
	if c.SASLEnabled {
		m, err := c.mechanism()
		if err != nil {
			return nil, err
		}
		t.SASL = m
	}
	return t, nil
}
