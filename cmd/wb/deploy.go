package main

import (
	"fmt"

	"github.com/henrik/wb/internal/cache"
	"github.com/spf13/cobra"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Build and upload the output directory to S3",
	Long:  "Run a production build and upload every output file to the configured S3 bucket.",
	RunE:  runDeploy,
}

func runDeploy(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	if p.cfg.S3Bucket == "" {
		return fmt.Errorf("S3 bucket not configured; set s3_bucket in %s or WB_S3_BUCKET", "wb.json")
	}

	// Deploys are always production builds.
	p.flags.IsProduction = true

	if err := p.buildCached(cmd.Context()); err != nil {
		return err
	}

	s3Client, err := cache.NewS3Client(p.cfg)
	if err != nil {
		return err
	}

	uploaded, err := s3Client.DeployDir(cmd.Context(), p.outDir)
	if err != nil {
		return fmt.Errorf("deploy failed: %w", err)
	}

	fmt.Printf("Uploaded %d files to s3://%s/%s\n", uploaded, p.cfg.S3Bucket, p.cfg.S3Prefix)
	return nil
}
