package config

import (
	"time"

	"github.com/muurk/contactform/internal/form"
	"github.com/muurk/contactform/internal/urls"
)

// CurrentVersion is the only config file version this build understands.
const CurrentVersion = 1

// Config is the entire user configuration file. Every field has a
// compiled-in default, so the file itself is optional.
type Config struct {
	Version    int              `yaml:"version" validate:"eq=1"`
	Endpoints  []string         `yaml:"endpoints" validate:"required,min=1,dive,http_url"`
	Submission SubmissionConfig `yaml:"submission"`
	Form       FormConfig       `yaml:"form"`
	Logging    LoggingConfig    `yaml:"logging"`
	Intake     IntakeConfig     `yaml:"intake"`
	Discovery  DiscoveryConfig  `yaml:"discovery"`
}

// SubmissionConfig controls the HTTP requests sent to endpoints.
type SubmissionConfig struct {
	// Timeout per endpoint attempt. Zero leaves the transport default.
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
	UserAgent string        `yaml:"user_agent,omitempty"`
}

// FormConfig controls validation and the submit button.
type FormConfig struct {
	ResetDelay      time.Duration `yaml:"reset_delay" validate:"gt=0"`
	PhonePolicy     string        `yaml:"phone_policy" validate:"phone_policy"`
	ServiceRequired bool          `yaml:"service_required"`
	SubmitLabel     string        `yaml:"submit_label" validate:"required"`
	Services        []string      `yaml:"services" validate:"dive,required"`
	Destinations    []string      `yaml:"destinations" validate:"min=1,dive,required"`
}

// LoggingConfig selects zap output. An empty level keeps logging silent.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	File  string `yaml:"file,omitempty"`
}

// IntakeConfig configures the local mock intake service.
type IntakeConfig struct {
	Listen         string   `yaml:"listen" validate:"required,hostname_port"`
	FormID         string   `yaml:"form_id" validate:"required,alphanum"`
	AllowedOrigins []string `yaml:"allowed_origins" validate:"dive,required"`
	Advertise      bool     `yaml:"advertise"`
}

// DiscoveryConfig controls mDNS browsing for local intake services.
type DiscoveryConfig struct {
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Version:   CurrentVersion,
		Endpoints: urls.DefaultEndpoints(),
		Form: FormConfig{
			ResetDelay:      form.DefaultResetDelay,
			PhonePolicy:     form.RegionalPhonePolicy.Name,
			ServiceRequired: true,
			SubmitLabel:     form.DefaultIdleLabel,
			Services:        []string{"Study Abroad", "Work Permit", "Visitor Visa", "Permanent Residency"},
			Destinations:    []string{"USA", "Canada", "Germany"},
		},
		Intake: IntakeConfig{
			Listen:         "127.0.0.1:8787",
			FormID:         "local",
			AllowedOrigins: []string{"*"},
			Advertise:      true,
		},
		Discovery: DiscoveryConfig{
			Timeout: 3 * time.Second,
		},
	}
}

// PhonePolicy resolves the configured phone policy.
func (c *Config) PhonePolicy() (form.PhonePolicy, error) {
	return form.PhonePolicyByName(c.Form.PhonePolicy)
}
