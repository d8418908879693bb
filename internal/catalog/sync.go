package catalog

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"propel-insights/internal/domain"
)

//go:embed definitions.yaml
var defaultDefinitions []byte

// fieldDef is one declarative catalog entry. The field name becomes the
// "dataset.field" key; source addresses the storage column, with one
// optional relation hop written as "relation__column".
type fieldDef struct {
	Field    string   `yaml:"field"`
	Label    string   `yaml:"label"`
	Source   string   `yaml:"source"`
	Type     string   `yaml:"type"`
	Synonyms []string `yaml:"synonyms"`
	Disabled bool     `yaml:"disabled"`
}

type definitionsFile struct {
	Datasets map[string][]fieldDef `yaml:"datasets"`
}

// Sync upserts the embedded declarative definitions into the metastore and
// reloads the snapshot. Source paths and data types are validated here, at
// sync time; queries never re-interpret them.
func (c *Catalog) Sync(ctx context.Context) error {
	return c.SyncDefinitions(ctx, defaultDefinitions)
}

// SyncDefinitions upserts the given YAML definitions and reloads.
func (c *Catalog) SyncDefinitions(ctx context.Context, raw []byte) error {
	var defs definitionsFile
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("parse catalog definitions: %w", err)
	}

	var keys []string
	for dataset, fields := range defs.Datasets {
		for _, f := range fields {
			source := f.Source
			if source == "" {
				source = f.Field
			}
			addr, err := domain.ParseFieldAddress(source)
			if err != nil {
				return fmt.Errorf("catalog definition %s.%s: %w", dataset, f.Field, err)
			}
			dt, ok := domain.ParseDataType(f.Type)
			if !ok {
				return fmt.Errorf("catalog definition %s.%s: unknown data type %q", dataset, f.Field, f.Type)
			}

			d := domain.FieldDescriptor{
				Key:      dataset + "." + f.Field,
				Label:    f.Label,
				Dataset:  dataset,
				Address:  addr,
				DataType: dt,
				Synonyms: f.Synonyms,
				Enabled:  !f.Disabled,
			}
			if err := c.repo.Upsert(ctx, d); err != nil {
				return fmt.Errorf("upsert catalog entry %s: %w", d.Key, err)
			}
			keys = append(keys, d.Key)
		}
	}

	// Fields dropped from the definitions stop being queryable.
	if err := c.repo.DisableAbsent(ctx, keys); err != nil {
		return fmt.Errorf("disable removed catalog entries: %w", err)
	}

	return c.Reload(ctx)
}
