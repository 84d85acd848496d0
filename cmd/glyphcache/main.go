// Command glyphcache resolves the pictographic glyphs in a piece of text to
// image files, exercising the layered cache the renderer uses: memory first,
// then the on-disk store, then the CDN endpoints. It doubles as a cache
// warming and inspection tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/glyphkit/glyphcache/pkg/glyph"
	"github.com/glyphkit/glyphcache/pkg/imaging"
	"github.com/glyphkit/glyphcache/pkg/resolve"
)

var (
	text      = flag.String("text", "", "Text whose glyphs should be resolved")
	size      = flag.Int("size", 72, "Target render size in pixels")
	outDir    = flag.String("out", ".", "Directory to write resolved images to")
	cacheDir  = flag.String("cache-dir", "", "Glyph cache directory (default: ./.emoji-cache)")
	timeout   = flag.Duration("timeout", 0, "Per-endpoint fetch timeout (default 10s)")
	failedTTL = flag.Duration("failed-ttl", 0, "Suppression window after a failed fetch (default 1h)")
	list      = flag.Bool("list", false, "List cached glyphs instead of resolving")
	scale     = flag.Bool("scale", false, "Re-encode output images at the requested size")
	verbose   = flag.Bool("verbose", false, "Enable debug logging")
)

// envConfig carries environment overrides; explicit flags win over these.
type envConfig struct {
	CacheDir  string        `env:"GLYPHCACHE_DIR"`
	Timeout   time.Duration `env:"GLYPHCACHE_TIMEOUT"`
	FailedTTL time.Duration `env:"GLYPHCACHE_FAILED_TTL"`
	Endpoints []string      `env:"GLYPHCACHE_ENDPOINTS"`
}

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := buildConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	resolver := resolve.New(cfg)

	if *list {
		if err := listCached(resolver); err != nil {
			slog.Error("listing cache failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if *text == "" {
		fmt.Fprintln(os.Stderr, "Usage: glyphcache -text <string> [flags], or glyphcache -list")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := resolveText(context.Background(), resolver, *text); err != nil {
		slog.Error("writing output failed", "error", err)
		os.Exit(1)
	}
}

// buildConfig merges environment overrides with flags; flags that were set
// explicitly take precedence.
func buildConfig() (resolve.Config, error) {
	envCfg, err := env.ParseAs[envConfig]()
	if err != nil {
		return resolve.Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	cfg := resolve.Config{
		CacheDir:  envCfg.CacheDir,
		Timeout:   envCfg.Timeout,
		FailedTTL: envCfg.FailedTTL,
		Endpoints: envCfg.Endpoints,
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["cache-dir"] {
		cfg.CacheDir = *cacheDir
	}
	if set["timeout"] {
		cfg.Timeout = *timeout
	}
	if set["failed-ttl"] {
		cfg.FailedTTL = *failedTTL
	}

	// Misconfiguration is rejected here, at the boundary, so the resolver
	// and fetcher can assume sane values.
	if cfg.Timeout < 0 || (set["timeout"] && *timeout <= 0) {
		return resolve.Config{}, fmt.Errorf("timeout must be positive, got %v", cfg.Timeout)
	}
	if cfg.FailedTTL < 0 || (set["failed-ttl"] && *failedTTL <= 0) {
		return resolve.Config{}, fmt.Errorf("failed-ttl must be positive, got %v", cfg.FailedTTL)
	}
	if *size <= 0 {
		return resolve.Config{}, fmt.Errorf("size must be positive, got %d", *size)
	}
	return cfg, nil
}

// resolveText segments the input and resolves every pictographic sequence,
// writing one image file per distinct glyph. Unresolvable glyphs are reported
// and skipped; they do not fail the run.
func resolveText(ctx context.Context, resolver *resolve.Resolver, input string) error {
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	var resolved, unavailable int
	seen := make(map[glyph.Key]bool)
	for _, seg := range glyph.Split(input) {
		if seg.Kind != glyph.SegmentPictographic {
			continue
		}
		key := glyph.NewKey(seg.Text, *size)
		if seen[key] {
			continue
		}
		seen[key] = true

		data, ok := resolver.Resolve(ctx, seg.Text, *size)
		if !ok {
			slog.Warn("glyph unavailable", "glyph", seg.Text, "key", key)
			unavailable++
			continue
		}
		if err := writeGlyph(key, data); err != nil {
			return err
		}
		resolved++
	}

	slog.Info("resolution complete", "resolved", resolved, "unavailable", unavailable, "cache_dir", resolver.CacheDir())
	return nil
}

func writeGlyph(key glyph.Key, data []byte) error {
	path := filepath.Join(*outDir, key.Filename())

	if *scale {
		img, err := imaging.Scale(data, key.Size)
		if err != nil {
			// Cached bytes the decoder rejects still get written
			// raw; validation is not the cache's contract.
			slog.Warn("glyph decode failed, writing raw bytes", "key", key, "error", err)
			return os.WriteFile(path, data, 0o644)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		return imaging.EncodePNG(f, img)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func listCached(resolver *resolve.Resolver) error {
	keys, err := resolver.Cached()
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Printf("%s\t%q\tsize=%d\n", key.Filename(), key.Seq, key.Size)
	}
	slog.Info("cache listed", "entries", len(keys), "cache_dir", resolver.CacheDir())
	return nil
}
