package nutransport

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the frozen parameter record, loaded once at init and
// never mutated during a step. Field names mirror the transport model's
// own snake_case vocabulary, so the YAML keys read the same way.
type Config struct {
	StepSize Real `yaml:"step_size"`
	MinPacketNumber Real `yaml:"min_packet_number"`
	MaxPacketNumber Real `yaml:"max_packet_number"`
	MaxParticles int `yaml:"max_particles"`

	RCore Real `yaml:"r_core"`
	NEmitCorePerBin int `yaml:"n_emit_core_per_bin"`
	NEmitZonesPerBin int `yaml:"n_emit_zones_per_bin"`
	TCore []Real `yaml:"t_core"`
	MuCore []Real `yaml:"mu_core"`
	CoreLumMultiplier Real `yaml:"core_lum_multiplier"`
	LeptonNumber []Real `yaml:"lepton_number"`

	ExponentialDecay bool `yaml:"exponential_decay"`

	RandomwalkSphereSize Real `yaml:"randomwalk_sphere_size"`
	RandomwalkMinOpticalDepth Real `yaml:"randomwalk_min_optical_depth"`
	RandomwalkMaxX Real `yaml:"randomwalk_max_x"`
	RandomwalkSumN int `yaml:"randomwalk_sumn"`
	RandomwalkNPoints int `yaml:"randomwalk_npoints"`
	RandomwalkNIsotropic int `yaml:"randomwalk_n_isotropic"`

	UseScatteringKernels bool `yaml:"use_scattering_kernels"`
	DoGR bool `yaml:"do_gr"`
	ReflectOuter bool `yaml:"reflect_outer"`

	NRanks int `yaml:"n_ranks"`
	NWorkers int `yaml:"n_workers"` // 0 = runtime.NumCPU()
	Seed int64 `yaml:"seed"`
}

// LoadConfig merges the embedded defaults with an optional override file.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing embedded defaults: %v", ErrConfig, err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: reading config file: %v", ErrConfig, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parsing config file: %v", ErrConfig, err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MinPacketNumber <= 0 || c.MaxPacketNumber <= c.MinPacketNumber {
		return fmt.Errorf("%w: min_packet_number/max_packet_number must satisfy 0 < min < max", ErrConfig)
	}
	if c.MaxParticles <= 0 {
		return fmt.Errorf("%w: max_particles must be positive", ErrConfig)
	}
	if c.StepSize <= 0 {
		return fmt.Errorf("%w: step_size must be positive", ErrConfig)
	}
	if len(c.TCore) != len(c.MuCore) {
		return fmt.Errorf("%w: t_core and mu_core must have equal length", ErrConfig)
	}
	return nil
}

// NumSpecies is the species count implied by the core emission tables.
func (c *Config) NumSpecies() int { return len(c.TCore) }
