package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove build output and the local cache",
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	for _, dir := range []string{p.outDir, filepath.Join(p.dir, filepath.Dir(p.cfg.CachePath))} {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", dir)
	}
	return nil
}
