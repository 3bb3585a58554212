package main

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	wb "github.com/henrik/wb"
	"github.com/henrik/wb/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new project",
	Long:  "Write the starter sources, templates and wb.json into the current directory.",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("wb project setup")
	fmt.Println("================")
	fmt.Println()

	cfg := config.Default()
	cfg.Title = prompt(reader, "Project title", cfg.Title)
	cfg.ListenAddr = prompt(reader, "Dev server listen address", cfg.ListenAddr)

	written, err := writeScaffold(dir)
	if err != nil {
		return fmt.Errorf("failed to write scaffold: %w", err)
	}

	if _, err := os.Stat(filepath.Join(dir, config.FileName)); os.IsNotExist(err) {
		if err := config.Save(dir, cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		written++
	} else {
		fmt.Println("Keeping existing wb.json")
	}

	fmt.Println()
	fmt.Printf("Wrote %d files.\n", written)
	fmt.Println()
	fmt.Println("Start the dev server with:")
	fmt.Println("  wb serve")
	return nil
}

// writeScaffold copies the embedded starter project into dir, skipping
// any file that already exists.
func writeScaffold(dir string) (int, error) {
	var written int
	err := fs.WalkDir(wb.Scaffold, "scaffold", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel := strings.TrimPrefix(path, "scaffold/")
		dst := filepath.Join(dir, filepath.FromSlash(rel))

		if _, err := os.Stat(dst); err == nil {
			return nil
		}

		data, err := wb.Scaffold.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return err
		}
		written++
		return nil
	})
	return written, err
}

func prompt(reader *bufio.Reader, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}

	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}
