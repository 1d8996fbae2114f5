package server

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/df-mc/earthgen/server/block"
	"github.com/df-mc/earthgen/server/world/generator/earth"
	"github.com/df-mc/earthgen/server/world/generator/earth/biome"
	"github.com/df-mc/earthgen/server/world/provider"
	"github.com/df-mc/earthgen/server/world/provider/chunkdb"
	"github.com/df-mc/earthgen/server/world/provider/sqlitedb"
	"github.com/pelletier/go-toml"
)

// Config contains options for creating a Server.
type Config struct {
	// Log is the Logger to use for logging information. If nil, Log is set to
	// slog.Default().
	Log *slog.Logger
	// Name is the name of the world. It is stored in the world settings when
	// the world is first created.
	Name string
	// Seed is the world seed. If the Provider already holds settings with a
	// different seed, creating the Server fails.
	Seed uint64
	// Provider is the provider.Provider used for storing and loading chunks.
	// If left as nil, chunks are generated every time they are requested and
	// nothing is stored.
	Provider provider.Provider
	// Generator holds the settings of the terrain generator. Its Log and
	// Seed fields are overwritten with the values above.
	Generator earth.Config
	// Workers is the amount of goroutines used by Server.Pregenerate. If 0
	// or lower, the amount of usable CPUs is used.
	Workers int
	// QueueSize limits how many chunks may wait for a pregeneration worker.
	// If 0 or lower, a size proportional to Workers is used.
	QueueSize int
}

// New creates a Server using fields of conf. The world settings are loaded from the Provider, or created
// and stored if the Provider holds none yet.
func (conf Config) New() (*Server, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Name == "" {
		conf.Name = "World"
	}
	if conf.Provider == nil {
		conf.Provider = provider.NopProvider{}
	}
	conf.Generator.Log, conf.Generator.Seed = conf.Log, conf.Seed
	gen, err := conf.Generator.New()
	if err != nil {
		return nil, fmt.Errorf("create generator: %w", err)
	}

	settings, err := conf.Provider.Settings()
	switch {
	case errors.Is(err, provider.ErrNotFound):
		settings = provider.NewSettings(conf.Name, conf.Seed)
		if err := conf.Provider.SaveSettings(settings); err != nil {
			return nil, fmt.Errorf("save world settings: %w", err)
		}
		conf.Log.Info("world created", "name", settings.Name, "id", settings.ID, "seed", settings.Seed)
	case err != nil:
		return nil, fmt.Errorf("load world settings: %w", err)
	case settings.Seed != conf.Seed:
		return nil, fmt.Errorf("%w: world %v was generated with seed %d, configured seed is %d", ErrSeedMismatch, settings.Name, settings.Seed, conf.Seed)
	default:
		conf.Log.Info("world loaded", "name", settings.Name, "id", settings.ID, "seed", settings.Seed)
	}
	return &Server{conf: conf, gen: gen, settings: settings}, nil
}

// UserConfig is the user configuration for a world generation server. It
// may be serialised and can be converted to a Config by calling
// UserConfig.Config().
type UserConfig struct {
	World struct {
		// Name is the name of the world.
		Name string
		// Seed is the world seed. A decimal number is used as is, any other
		// text is hashed into a seed. If empty, the seed 1 is used.
		Seed string
		// Folder is the folder that the data of the world resides in.
		Folder string
		// Provider selects how chunks are stored: "leveldb", "sqlite" or
		// "none" to store nothing.
		Provider string
	}
	Generator struct {
		// Biomes is the path to a TOML or YAML biome table. If empty, the
		// built-in table is used.
		Biomes string
		// Caves controls if caves are carved out of the terrain.
		Caves bool
		// CaveField is the cave field used if Caves is true: "placeholder"
		// or "tunnels".
		CaveField string
		// MaxHeight is the height above which chunks are always air.
		MaxHeight int
		// LatticeWidth and LatticeHeight are the horizontal and vertical
		// spacing of the terrain sampling grid. Both must divide 16.
		LatticeWidth, LatticeHeight int
		// Workers is the number of goroutines pregenerating chunks. Set to 0
		// to use the amount of CPUs.
		Workers int
		// QueueSize determines how many chunks may wait for a worker. Set to
		// 0 to use an automatically chosen size.
		QueueSize int
	}
	Log struct {
		// Level is the minimum level of messages logged: "debug", "info",
		// "warn" or "error".
		Level string
	}
}

// Config converts a UserConfig to a Config, so that it may be used for
// creating a Server. An error is returned if loading the biome table or
// opening the world provider failed.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	if log == nil {
		log = slog.Default()
	}
	reg := block.DefaultRegistry()
	conf := Config{
		Log:       log,
		Name:      uc.World.Name,
		Seed:      ParseSeed(uc.World.Seed),
		Workers:   uc.Generator.Workers,
		QueueSize: uc.Generator.QueueSize,
		Generator: earth.Config{
			Registry:  reg,
			Lattice:   earth.Lattice{Width: uc.Generator.LatticeWidth, Height: uc.Generator.LatticeHeight},
			MaxHeight: uc.Generator.MaxHeight,
			Caves:     uc.Generator.Caves,
			CaveField: uc.Generator.CaveField,
		},
	}
	if path := strings.TrimSpace(uc.Generator.Biomes); path != "" {
		t, err := biome.Load(path, reg)
		if err != nil {
			return conf, err
		}
		conf.Generator.Biomes = t
	}

	var err error
	switch p := strings.ToLower(strings.TrimSpace(uc.World.Provider)); p {
	case "", "leveldb":
		conf.Provider, err = chunkdb.Config{Log: log}.Open(filepath.Join(uc.World.Folder, "db"))
	case "sqlite":
		conf.Provider, err = sqlitedb.Config{Log: log}.Open(filepath.Join(uc.World.Folder, "world.sqlite"))
	case "none":
		conf.Provider = provider.NopProvider{}
	default:
		return conf, fmt.Errorf("unknown world provider %q", uc.World.Provider)
	}
	if err != nil {
		return conf, fmt.Errorf("create world provider: %w", err)
	}
	return conf, nil
}

// LogLevel returns the slog.Level named in the Log section. Unknown or empty
// levels result in slog.LevelInfo.
func (uc UserConfig) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(uc.Log.Level))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseSeed turns the seed setting of a world into a seed. Decimal numbers
// are used as is, other text is hashed. An empty setting results in 1.
func ParseSeed(s string) uint64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1
	}
	if seed, err := strconv.ParseUint(s, 10, 64); err == nil {
		return seed
	}
	return xxhash.Sum64String(s)
}

// DefaultConfig returns a configuration with the default values filled out.
func DefaultConfig() UserConfig {
	c := UserConfig{}
	c.World.Name = "World"
	c.World.Seed = "1"
	c.World.Folder = "world"
	c.World.Provider = "leveldb"
	c.Generator.CaveField = earth.CaveFieldPlaceholder
	c.Generator.MaxHeight = earth.DefaultMaxHeight
	c.Generator.LatticeWidth = earth.DefaultLattice.Width
	c.Generator.LatticeHeight = earth.DefaultLattice.Height
	c.Log.Level = "info"
	return c
}

// ReadConfig reads the UserConfig stored at path. Settings missing from the
// file keep their default values. If the file does not exist yet, it is
// created with the values of DefaultConfig.
func ReadConfig(path string) (UserConfig, error) {
	c := DefaultConfig()
	contents, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return c, fmt.Errorf("read config: %w", err)
		}
		return c, WriteConfig(path, c)
	}
	if err := toml.Unmarshal(contents, &c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// WriteConfig encodes c as TOML and writes it to path.
func WriteConfig(path string, c UserConfig) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	encoded, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
