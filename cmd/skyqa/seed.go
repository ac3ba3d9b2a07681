package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/MegaGrindStone/skyqa"
	"github.com/MegaGrindStone/skyqa/storage"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sky objects into the configured store",
		Long: "seed upserts the built-in objects, or the objects listed in a YAML file, into the " +
			"configured store. The in-memory catalog cannot be seeded.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			objects := storage.DefaultObjects()
			if file != "" {
				var err error
				if objects, err = readObjects(file); err != nil {
					return err
				}
			}

			a, err := setup(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			if a.seeder == nil {
				return errors.New("the memory catalog is read-only")
			}
			if err := storage.Seed(cmd.Context(), a.seeder, objects, a.cfg.Catalog.SeedConcurrency); err != nil {
				return fmt.Errorf("failed to seed catalog: %w", err)
			}
			a.logger.Info("Seeded catalog", "backend", a.cfg.Catalog.Backend, "objects", len(objects))

			fmt.Fprintf(cmd.OutOrStdout(), "%d Objekte gespeichert.\n", len(objects))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with a list of objects")
	return cmd
}

func readObjects(path string) ([]skyqa.SkyObject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read objects: %w", err)
	}
	var objects []skyqa.SkyObject
	if err := yaml.UnmarshalStrict(data, &objects); err != nil {
		return nil, fmt.Errorf("failed to parse objects %s: %w", path, err)
	}
	return objects, nil
}
