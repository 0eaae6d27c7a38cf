package config

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Paths helper for default/profile files.
type Paths struct {
	BaseDir string // base directory, e.g., /etc/slimelab
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "default.yaml")
}
func (p Paths) ProfilePath(profile string) string {
	return filepath.Join(p.BaseDir, "profiles", profile+".yaml")
}

// Loader reads YAML configs and merges embedded defaults → default.yaml → profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: profile name, "" for no profile
}

// NewLoader creates a config loader with the given base directory. An empty base
// directory uses only the embedded defaults.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// Paths returns the files this loader reads, for watching.
func (l *Loader) Paths(profile string) []string {
	if l.paths.BaseDir == "" {
		return nil
	}
	out := []string{l.paths.DefaultPath()}
	if profile != "" {
		out = append(out, l.paths.ProfilePath(profile))
	}
	return out
}

// LoadMerged loads and merges all layers for profile (profile optional).
// It returns the merged RawConfig without validation.
func (l *Loader) LoadMerged(profile string) (RawConfig, error) {
	l.mu.RLock()
	if cfg, ok := l.cache[profile]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	merged, err := parseYAML(defaultsYAML)
	if err != nil {
		return RawConfig{}, fmt.Errorf("embedded defaults: %w", err)
	}
	if l.paths.BaseDir != "" {
		base, err := readYAML(l.paths.DefaultPath())
		if err != nil {
			return RawConfig{}, fmt.Errorf("read default: %w", err)
		}
		merged = mergeRaw(merged, base)
		if profile != "" {
			over, err := readYAML(l.paths.ProfilePath(profile))
			if err != nil {
				return RawConfig{}, fmt.Errorf("read profile %s: %w", profile, err)
			}
			merged = mergeRaw(merged, over)
		}
	}

	l.mu.Lock()
	l.cache[profile] = merged
	l.mu.Unlock()
	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	return parseYAML(b)
}

func parseYAML(b []byte) (RawConfig, error) {
	var cfg RawConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

// mergeRaw performs a deep merge: 'b' overrides 'a' where set.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	out.Breeding = mergeBreeding(a.Breeding, b.Breeding)

	// ranch
	switch {
	case out.Ranch == nil && b.Ranch != nil:
		c := cloneRanch(*b.Ranch)
		out.Ranch = &c
	case out.Ranch != nil && b.Ranch != nil:
		c := cloneRanch(*out.Ranch)
		override(&c.HabitatCapacity, b.Ranch.HabitatCapacity)
		if b.Ranch.AffinityBonus != "" {
			c.AffinityBonus = b.Ranch.AffinityBonus
		}
		if b.Ranch.StartingCoins != "" {
			c.StartingCoins = b.Ranch.StartingCoins
		}
		if len(b.Ranch.StartingHabitats) > 0 {
			c.StartingHabitats = append([]string(nil), b.Ranch.StartingHabitats...)
		}
		c.IncomePerMinute = mergeMap(c.IncomePerMinute, b.Ranch.IncomePerMinute)
		c.RitualSeconds = mergeMap(c.RitualSeconds, b.Ranch.RitualSeconds)
		c.HatchSeconds = mergeMap(c.HatchSeconds, b.Ranch.HatchSeconds)
		out.Ranch = &c
	}

	// shop
	if b.Shop != nil && len(b.Shop.Items) > 0 {
		out.Shop = &ShopConfig{Items: append([]ItemConfig(nil), b.Shop.Items...)}
	}
	return out
}

func mergeBreeding(a, b BreedingConfig) BreedingConfig {
	out := a
	override(&out.InheritParent1, b.InheritParent1)
	override(&out.InheritParent2, b.InheritParent2)
	override(&out.MutationRate, b.MutationRate)
	override(&out.BoostedMutationRate, b.BoostedMutationRate)
	override(&out.SizeDelta, b.SizeDelta)
	override(&out.IntDelta, b.IntDelta)
	override(&out.ModelInherit, b.ModelInherit)
	override(&out.JackpotChance, b.JackpotChance)
	override(&out.ComboBiasChance, b.ComboBiasChance)
	override(&out.ComplexityChance, b.ComplexityChance)
	override(&out.ComplexityThreshold, b.ComplexityThreshold)
	override(&out.MultiElementBonus, b.MultiElementBonus)
	override(&out.PreviewAttempts, b.PreviewAttempts)
	if b.BoostPolicy != "" {
		out.BoostPolicy = b.BoostPolicy
	}
	return out
}

func override[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func mergeMap[V any](a, b map[string]V) map[string]V {
	if len(b) == 0 {
		return a
	}
	out := make(map[string]V, len(a)+len(b))
	maps.Copy(out, a)
	maps.Copy(out, b)
	return out
}

func cloneRanch(r RanchConfig) RanchConfig {
	r.StartingHabitats = append([]string(nil), r.StartingHabitats...)
	r.IncomePerMinute = maps.Clone(r.IncomePerMinute)
	r.RitualSeconds = maps.Clone(r.RitualSeconds)
	r.HatchSeconds = maps.Clone(r.HatchSeconds)
	return r
}
