package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Config holds the settings of the counter processor scenario and the run
// journal. The CLI fills it from config.yaml; tests build it directly.
type Config struct {
	DataDir  string `json:"data_dir" yaml:"data_dir,omitempty" mapstructure:"data_dir"`
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=trace debug info warn warning error disabled off"`

	Processor ProcessorConfig `json:"processor" yaml:"processor" mapstructure:"processor"`
	Journal   JournalConfig   `json:"journal" yaml:"journal" mapstructure:"journal"`
}

// ProcessorConfig seeds the shared object used by the counter scenario.
type ProcessorConfig struct {
	Counter1 uint32 `json:"counter1" yaml:"counter1" mapstructure:"counter1"`
	Counter2 uint32 `json:"counter2" yaml:"counter2" mapstructure:"counter2"`
	Limit    uint32 `json:"limit" yaml:"limit" mapstructure:"limit" validate:"gtefield=Counter1"`
	Step     uint32 `json:"step" yaml:"step" mapstructure:"step" validate:"gt=0"`
	MaxSteps int    `json:"max_steps" yaml:"max_steps" mapstructure:"max_steps" validate:"gt=0"`
}

// JournalConfig controls whether runs are recorded in the data directory.
type JournalConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
}

// Default processor values, matching the two-processor example.
const (
	DefaultCounter1 = 0
	DefaultCounter2 = 1
	DefaultLimit    = 4
	DefaultStep     = 2
	DefaultMaxSteps = 1000
	DefaultLogLevel = "info"
)

// LogLevels lists the accepted log_level values besides the empty string.
var LogLevels = []string{"trace", "debug", "info", "warn", "warning", "error", "disabled", "off"}

// Config validation errors.
var (
	ErrStepInvalid     = errors.New("step must be positive")
	ErrMaxStepsInvalid = errors.New("max steps must be positive")
	ErrLimitInvalid    = errors.New("limit must not be below counter1")
	ErrLogLevelUnknown = errors.New("unknown log level")
)

// fieldErrors maps a failing struct field to its sentinel.
var fieldErrors = map[string]error{
	"LogLevel": ErrLogLevelUnknown,
	"Step":     ErrStepInvalid,
	"MaxSteps": ErrMaxStepsInvalid,
	"Limit":    ErrLimitInvalid,
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their config key.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// check validates v against its struct tags and reports the first failing
// field as its sentinel, wrapped with the offending value.
func check(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	sentinel, ok := fieldErrors[fe.StructField()]
	if !ok {
		return err
	}
	return fmt.Errorf("%w: %s=%v", sentinel, fe.Field(), fe.Value())
}

// DefaultConfig returns a Config with every processor default applied.
func DefaultConfig() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		Processor: ProcessorConfig{
			Counter1: DefaultCounter1,
			Counter2: DefaultCounter2,
			Limit:    DefaultLimit,
			Step:     DefaultStep,
			MaxSteps: DefaultMaxSteps,
		},
		Journal: JournalConfig{Enabled: true},
	}
}

// Validate checks that the Config is well-formed. It returns an error
// wrapping a sentinel from this package on failure.
func (c Config) Validate() error {
	return check(c)
}

// Validate checks the processor settings.
func (p ProcessorConfig) Validate() error {
	return check(p)
}
