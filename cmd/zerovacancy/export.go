package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/zerovacancy/zerovacancy/internal/fixtures"
	"github.com/zerovacancy/zerovacancy/internal/storage/marketplace"
)

const exportPrefix = "exports/"

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Snapshot marketplace data to the archive",
	Long: `Writes creators, projects and applications from the configured store to
the archive as a fixtures file. The file can be fed back through
storage.fixtures_path.`,
	RunE: runExport,
}

var (
	exportKey  string
	exportList bool
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportKey, "key", "", "archive key (default exports/fixtures-<timestamp>.yaml)")
	exportCmd.Flags().BoolVar(&exportList, "list", false, "list existing exports instead of writing one")
}

func runExport(cmd *cobra.Command, args []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	log := rt.log
	defer log.Sync()

	ctx := context.Background()

	blobs, err := rt.openArchive()
	if err != nil {
		return err
	}

	if exportList {
		keys, err := blobs.List(ctx, exportPrefix)
		if err != nil {
			return fmt.Errorf("listing exports: %w", err)
		}
		if len(keys) == 0 {
			fmt.Println("No exports found.")
		}
		for _, k := range keys {
			fmt.Println(k)
		}
		return nil
	}

	store, err := rt.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	set, err := snapshot(ctx, store)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(set)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	key := exportKey
	if key == "" {
		key = exportPrefix + "fixtures-" + time.Now().UTC().Format("20060102T150405Z") + ".yaml"
	}
	if err := blobs.Write(ctx, key, data); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	log.Info("export written",
		zap.String("key", key),
		zap.Int("projects", len(set.Projects)),
		zap.Int("applications", len(set.Applications)),
	)
	fmt.Printf("Exported %d creators, %d projects, %d applications to %s\n",
		len(set.Creators), len(set.Projects), len(set.Applications), key)
	return nil
}

// snapshot reads everything a fixtures file can hold.
func snapshot(ctx context.Context, store marketplace.Store) (fixtures.Set, error) {
	creators, err := store.ListCreators(ctx)
	if err != nil {
		return fixtures.Set{}, fmt.Errorf("listing creators: %w", err)
	}
	projects, err := store.ListProjects(ctx, marketplace.ProjectFilter{})
	if err != nil {
		return fixtures.Set{}, fmt.Errorf("listing projects: %w", err)
	}
	apps, err := store.ListApplications(ctx, marketplace.ApplicationFilter{})
	if err != nil {
		return fixtures.Set{}, fmt.Errorf("listing applications: %w", err)
	}
	return fixtures.Set{Creators: creators, Projects: projects, Applications: apps}, nil
}
