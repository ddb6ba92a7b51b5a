// Package project reads the sysyc.toml manifest that describes a batch
// build.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	semver "github.com/Masterminds/semver/v3"
)

// ManifestName is the file Find looks for.
const ManifestName = "sysyc.toml"

// ErrNoManifest is returned by LoadFromDir when no manifest is found.
var ErrNoManifest = errors.New("no " + ManifestName + " found")

type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
}

type PackageConfig struct {
	Name string `toml:"name"`
	// Toolchain is a semver constraint on the compiler version.
	Toolchain string `toml:"toolchain"`
}

type BuildConfig struct {
	Sources []string `toml:"sources"`
	Mode    string   `toml:"mode"`
	OutDir  string   `toml:"out_dir"`
	Jobs    int      `toml:"jobs"`
	Cache   *bool    `toml:"cache"`
}

// CacheEnabled defaults to true when the key is absent.
func (b BuildConfig) CacheEnabled() bool {
	return b.Cache == nil || *b.Cache
}

// Find walks up from startDir to locate sysyc.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadFromDir finds and loads the nearest manifest above startDir.
func LoadFromDir(startDir string) (*Manifest, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoManifest
	}
	return Load(path)
}

// Load parses and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: missing [package].name", path)
	}
	if cfg.Package.Toolchain != "" {
		if _, err := semver.NewConstraint(cfg.Package.Toolchain); err != nil {
			return nil, fmt.Errorf("%s: bad [package].toolchain %q: %w", path, cfg.Package.Toolchain, err)
		}
	}
	switch cfg.Build.Mode {
	case "":
		cfg.Build.Mode = "riscv"
	case "koopa", "riscv":
	default:
		return nil, fmt.Errorf("%s: [build].mode must be koopa or riscv, got %q", path, cfg.Build.Mode)
	}
	if cfg.Build.Jobs < 0 {
		return nil, fmt.Errorf("%s: [build].jobs must not be negative", path)
	}
	if len(cfg.Build.Sources) == 0 {
		cfg.Build.Sources = []string{"."}
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

// CheckToolchain reports an error when version does not satisfy the
// manifest's toolchain constraint.
func (m *Manifest) CheckToolchain(version string) error {
	expr := strings.TrimSpace(m.Config.Package.Toolchain)
	if expr == "" {
		return nil
	}
	con, err := semver.NewConstraint(expr)
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("toolchain version %q: %w", version, err)
	}
	if !con.Check(v) {
		return fmt.Errorf("%s requires toolchain %s, have %s", m.Path, expr, v)
	}
	return nil
}

// OutDir resolves [build].out_dir against the manifest root. Empty means
// outputs go next to their sources.
func (m *Manifest) OutDir() string {
	if m.Config.Build.OutDir == "" {
		return ""
	}
	return filepath.Join(m.Root, filepath.FromSlash(m.Config.Build.OutDir))
}
