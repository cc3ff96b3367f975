package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"lightcurve-lab/internal/catalogue"
	"lightcurve-lab/internal/pipeline"
)

var (
	importPath   string
	importSuffix string
	importOrigin string
	importClass  string
	importLCDir  string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load light-curve files into the star database",
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importPath, "path", "", "Directory of light-curve files")
	importCmd.Flags().StringVar(&importSuffix, "suffix", "dat", "Light-curve file suffix")
	importCmd.Flags().StringVar(&importOrigin, "origin", catalogue.DefaultFileOrigin, "Origin database name of the stars")
	importCmd.Flags().StringVar(&importClass, "class", "", "Class label of the stars")
	importCmd.Flags().StringVar(&importLCDir, "lc-dir", "lc_store", "Directory receiving the stored light curves")
	_ = importCmd.MarkFlagRequired("path")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	lcDir, err := filepath.Abs(importLCDir)
	if err != nil {
		return err
	}
	st, err := openStores(ctx, true)
	if err != nil {
		return err
	}
	defer st.Close()

	stars, err := catalogue.Load(ctx, catalogue.NameFileManager, catalogue.Query{
		"path":       importPath,
		"suffix":     importSuffix,
		"db_ident":   importOrigin,
		"star_class": importClass,
	}, catalogue.Env{Logger: logger.Named("catalogue")})
	if err != nil {
		return err
	}

	n, err := pipeline.NewImporter(st.stars, lcDir, logger.Named("import")).Import(ctx, stars)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d stars from %s\n", n, importPath)
	return nil
}
