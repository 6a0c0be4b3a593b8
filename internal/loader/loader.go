// Package loader reads the three batch resources from disk.
package loader

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/awmpietro/entry-decision-engine/internal/decision"
)

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrInvalidResource  = errors.New("invalid resource")
)

const (
	ResourceEntries   = "entries"
	ResourceWatchlist = "watchlist"
	ResourceCountries = "countries"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://entry-decision-engine/schemas/"

var compiledSchemas = sync.OnceValues(compileSchemas)

// Batch is one set of resources ready for the engine. All text fields are
// case-folded.
type Batch struct {
	Entries   []decision.Entry
	Watchlist []decision.WatchlistRecord
	Countries map[string]decision.Country
}

// Load reads entries, watchlist and countries concurrently. Files ending in
// .yaml or .yml are read as YAML, anything else as JSON.
func Load(ctx context.Context, entriesPath, watchlistPath, countriesPath string) (*Batch, error) {
	var (
		entries   []decision.Entry
		watchlist []decision.WatchlistRecord
		countries map[string]decision.Country
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loadResource(ctx, ResourceEntries, entriesPath, &entries)
	})
	g.Go(func() error {
		return loadResource(ctx, ResourceWatchlist, watchlistPath, &watchlist)
	})
	g.Go(func() error {
		return loadResource(ctx, ResourceCountries, countriesPath, &countries)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Batch{
		Entries:   decision.NormalizeEntries(entries),
		Watchlist: decision.NormalizeWatchlist(watchlist),
		Countries: decision.NormalizeCountries(countries),
	}, nil
}

func loadResource(ctx context.Context, name, path string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("%s: no path given: %w", name, ErrResourceNotFound)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s file %q: %w", name, path, ErrResourceNotFound)
		}
		return fmt.Errorf("failed to read %s file %q: %w", name, path, err)
	}

	if err := Decode(name, formatOf(path), data, out); err != nil {
		return fmt.Errorf("%s file %q: %w", name, path, err)
	}
	return nil
}

type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode checks data against the schema of the named resource and then
// decodes it into out. Shape problems wrap ErrInvalidResource; missing entry
// fields are left for the engine to reject.
func Decode(name string, format Format, data []byte, out any) error {
	schemas, err := compiledSchemas()
	if err != nil {
		return err
	}
	sch, ok := schemas[name]
	if !ok {
		return fmt.Errorf("unknown resource %q", name)
	}

	var doc any
	switch format {
	case FormatYAML:
		doc, err = yamlDocument(data)
	default:
		doc, err = jsonschema.UnmarshalJSON(bytes.NewReader(data))
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResource, err)
	}

	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResource, err)
	}

	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, out)
	default:
		err = json.Unmarshal(data, out)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResource, err)
	}
	return nil
}

// yamlDocument decodes data for schema checks. Unquoted dates stay strings,
// as they do when decoded into the typed records.
func yamlDocument(data []byte) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 {
		return nil, nil
	}
	retagTimestamps(&root)

	var doc any
	if err := root.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func retagTimestamps(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!timestamp" {
		n.Tag = "!!str"
	}
	for _, c := range n.Content {
		retagTimestamps(c)
	}
}

func compileSchemas() (map[string]*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	names := []string{ResourceEntries, ResourceWatchlist, ResourceCountries}

	for _, name := range names {
		raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, err
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s schema: %w", name, err)
		}
		if err := c.AddResource(schemaBaseURL+name+".json", doc); err != nil {
			return nil, fmt.Errorf("failed to add %s schema: %w", name, err)
		}
	}

	out := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		sch, err := c.Compile(schemaBaseURL + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s schema: %w", name, err)
		}
		out[name] = sch
	}
	return out, nil
}
