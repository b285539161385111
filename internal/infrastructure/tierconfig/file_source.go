// Package tierconfig loads rate configuration documents and serves them as
// atomically swapped snapshots.
package tierconfig

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/bibbank/pricing-service/internal/domain/model"
)

// FileSource reads a YAML rate configuration document.
type FileSource struct {
	mu     sync.Mutex
	v      *viper.Viper
	logger *slog.Logger
}

func NewFileSource(path string, logger *slog.Logger) *FileSource {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	return &FileSource{v: v, logger: logger}
}

// Load re-reads the file on every call.
func (s *FileSource) Load(ctx context.Context) (model.RateConfig, error) {
	if err := ctx.Err(); err != nil {
		return model.RateConfig{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.v.ReadInConfig(); err != nil {
		return model.RateConfig{}, fmt.Errorf("read rate config %s: %w", s.v.ConfigFileUsed(), err)
	}

	var cfg model.RateConfig
	if err := s.v.Unmarshal(&cfg, decoderOptions); err != nil {
		return model.RateConfig{}, fmt.Errorf("decode rate config %s: %w", s.v.ConfigFileUsed(), err)
	}
	return cfg, nil
}

// Watch calls onChange whenever the file is written. Bursts of events from
// editors that write in several steps are collapsed into one call.
func (s *FileSource) Watch(onChange func()) {
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	s.v.OnConfigChange(func(e fsnotify.Event) {
		s.logger.Info("rate config file changed", slog.String("file", e.Name), slog.String("op", e.Op.String()))
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(250*time.Millisecond, onChange)
	})
	s.v.WatchConfig()
}

// decoderOptions matches document keys against the json tags on the model
// and converts YAML scalars to decimals and timestamps.
func decoderOptions(dc *mapstructure.DecoderConfig) {
	dc.TagName = "json"
	dc.ErrorUnused = true
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		decimalHook,
		mapstructure.StringToTimeHookFunc(time.RFC3339),
	)
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func decimalHook(from, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return nil, fmt.Errorf("cannot convert %s to decimal", from)
	}
}
