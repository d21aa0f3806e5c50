package config

import (
	"github.com/BurntSushi/toml"
	"github.com/ajwerner/fasttrie"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	defaultWidth       = 32
	defaultOps         = 1000000
	defaultAddRatio    = 0.5
	defaultRemoveRatio = 0.25
	defaultSeed        = 1
	defaultSplitPolicy = "probabilistic"
	defaultVerify      = true

	defaultLogFormat = "text"
)

// Config is the fasttrie-bench configuration.
type Config struct {
	flagSet    *flag.FlagSet
	configFile string

	Log      log.Config `toml:"log" json:"log"`
	Logger   *zap.Logger
	LogProps *log.ZapProperties

	Width       int     `toml:"width" json:"width"`
	Ops         int     `toml:"ops" json:"ops"`
	KeyRange    uint64  `toml:"key-range" json:"key-range"`
	AddRatio    float64 `toml:"add-ratio" json:"add-ratio"`
	RemoveRatio float64 `toml:"remove-ratio" json:"remove-ratio"`
	Seed        int64   `toml:"seed" json:"seed"`
	SplitPolicy string  `toml:"split-policy" json:"split-policy"`
	Verify      bool    `toml:"verify" json:"verify"`

	// Policy is SplitPolicy parsed by Parse.
	Policy fasttrie.SplitPolicy `toml:"-" json:"-"`
}

// NewConfig return a set of settings.
func NewConfig() *Config {
	cfg := &Config{}
	cfg.flagSet = flag.NewFlagSet("fasttrie-bench", flag.ContinueOnError)
	fs := cfg.flagSet
	fs.StringVar(&cfg.configFile, "config", "", "config file")
	fs.IntVar(&cfg.Width, "width", 0, "key width in bits")
	fs.IntVar(&cfg.Ops, "ops", 0, "number of operations to run")
	fs.Uint64Var(&cfg.KeyRange, "key-range", 0, "keys are drawn from [0, key-range); 0 means the whole universe")
	fs.Float64Var(&cfg.AddRatio, "add-ratio", 0, "fraction of operations that add a key")
	fs.Float64Var(&cfg.RemoveRatio, "remove-ratio", 0, "fraction of operations that remove a key, the rest are finds")
	fs.Int64Var(&cfg.Seed, "seed", 0, "workload seed")
	fs.StringVar(&cfg.SplitPolicy, "split-policy", "", "bucket split policy: probabilistic or threshold")
	fs.BoolVar(&cfg.Verify, "verify", defaultVerify, "check every result against a reference btree")
	fs.StringVar(&cfg.Log.Level, "L", "", "log level: debug, info, warn, error, fatal (default 'info')")
	fs.StringVar(&cfg.Log.File.Filename, "log-file", "", "log file path")

	return cfg
}

// Parse parses flag definitions from the argument list.
func (c *Config) Parse(arguments []string) error {
	// Parse first to get config file.
	err := c.flagSet.Parse(arguments)
	if err != nil {
		return errors.WithStack(err)
	}

	// Load config file if specified.
	meta := &toml.MetaData{}
	if c.configFile != "" {
		meta, err = configFromFile(c, c.configFile)
		if err != nil {
			return err
		}
	}

	// Parse again to replace with command line options.
	err = c.flagSet.Parse(arguments)
	if err != nil {
		return errors.WithStack(err)
	}

	if len(c.flagSet.Args()) != 0 {
		return errors.Errorf("'%s' is an invalid flag", c.flagSet.Arg(0))
	}

	c.Adjust(meta)
	return c.Validate()
}

func configFromFile(c interface{}, path string) (*toml.MetaData, error) {
	meta, err := toml.DecodeFile(path, c)
	return &meta, errors.WithStack(err)
}

func (c *Config) isSet(meta *toml.MetaData, key string) bool {
	return meta.IsDefined(key) || c.flagSet.Changed(key)
}

// Adjust is used to adjust configurations
func (c *Config) Adjust(meta *toml.MetaData) {
	if len(c.Log.Format) == 0 {
		c.Log.Format = defaultLogFormat
	}
	if !c.isSet(meta, "width") {
		adjustInt(&c.Width, defaultWidth)
	}
	if !c.isSet(meta, "ops") {
		adjustInt(&c.Ops, defaultOps)
	}
	if !c.isSet(meta, "add-ratio") {
		adjustFloat64(&c.AddRatio, defaultAddRatio)
	}
	if !c.isSet(meta, "remove-ratio") {
		adjustFloat64(&c.RemoveRatio, defaultRemoveRatio)
	}
	if !c.isSet(meta, "seed") && c.Seed == 0 {
		c.Seed = defaultSeed
	}
	if len(c.SplitPolicy) == 0 {
		c.SplitPolicy = defaultSplitPolicy
	}
	if !c.isSet(meta, "verify") {
		c.Verify = defaultVerify
	}
}

// Validate checks that the adjusted configuration describes a runnable
// workload.
func (c *Config) Validate() error {
	if c.Width < 1 || c.Width > 64 {
		return errors.Errorf("width %d out of range [1, 64]", c.Width)
	}
	if c.Ops < 0 {
		return errors.Errorf("negative ops %d", c.Ops)
	}
	if c.Width < 64 && c.KeyRange > uint64(1)<<uint(c.Width) {
		return errors.Errorf("key-range %d exceeds %d-bit universe", c.KeyRange, c.Width)
	}
	if c.AddRatio < 0 || c.RemoveRatio < 0 || c.AddRatio+c.RemoveRatio > 1 {
		return errors.Errorf("invalid ratios add=%v remove=%v", c.AddRatio, c.RemoveRatio)
	}
	p, err := fasttrie.ParseSplitPolicy(c.SplitPolicy)
	if err != nil {
		return err
	}
	c.Policy = p
	return nil
}

func adjustInt(v *int, defValue int) {
	if *v == 0 {
		*v = defValue
	}
}

func adjustFloat64(v *float64, defValue float64) {
	if *v == 0 {
		*v = defValue
	}
}
