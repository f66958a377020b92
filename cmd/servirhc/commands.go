package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/servir-hc/internal/service/backup"
)

type credentials struct {
	username string
	password string
}

func (c *credentials) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.username, "username", "", "Practitioner username")
	cmd.Flags().StringVar(&c.password, "password", "", "Practitioner password")
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the local database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(commandContext(cmd), *configPath)
			if err != nil {
				return err
			}
			a.close()
			return nil
		},
	}
}

func exportCmd(configPath *string) *cobra.Command {
	var (
		creds credentials
		out   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of the practitioner's data",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			logout, err := a.login(ctx, creds.username, creds.password)
			if err != nil {
				return err
			}
			defer logout()

			data, err := a.backup.ExportJSON(ctx)
			if err != nil {
				return err
			}
			if out == "" {
				out = backup.BackupFilename(a.cfg.App.Name, time.Now())
			}
			if err := writeFile(out, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backup written to %s\n", out)
			return nil
		},
	}
	creds.bind(cmd)
	cmd.Flags().StringVar(&out, "out", "", "Output file (defaults to <app>-backup-<date>.json)")
	return cmd
}

func importCmd(configPath *string) *cobra.Command {
	var (
		creds credentials
		file  string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Add the contents of a JSON backup to the practitioner's data",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read backup: %w", err)
			}

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			logout, err := a.login(ctx, creds.username, creds.password)
			if err != nil {
				return err
			}
			defer logout()

			result, err := a.backup.Import(ctx, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d patients, %d medical records, %d appointments\n",
				result.Patients, result.MedicalRecords, result.Appointments)
			return nil
		},
	}
	creds.bind(cmd)
	cmd.Flags().StringVar(&file, "file", "", "Backup file to import")
	return cmd
}

func renderCmd(configPath *string) *cobra.Command {
	var (
		creds     credentials
		patientID int64
		out       string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a patient's clinical history as PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			if patientID <= 0 {
				return fmt.Errorf("--patient is required")
			}

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			logout, err := a.login(ctx, creds.username, creds.password)
			if err != nil {
				return err
			}
			defer logout()

			doc, err := a.document.GenerateClinicalDocument(ctx, patientID)
			if err != nil {
				return err
			}
			if out == "" {
				out = doc.Filename
			}
			if err := writeFile(out, doc.Content); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "document written to %s\n", out)
			return nil
		},
	}
	creds.bind(cmd)
	cmd.Flags().Int64Var(&patientID, "patient", 0, "Patient id")
	cmd.Flags().StringVar(&out, "out", "", "Output file (defaults to historia_clinica_<name>_<date>.pdf)")
	return cmd
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
