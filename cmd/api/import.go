package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mishasvintus/bugcake/internal/importer"
	"github.com/mishasvintus/bugcake/internal/repository"
)

var (
	importFile  string
	importOwner string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load users, sheets and test cases from a YAML fixture",
	Long: `Load users, sheets, modules and test cases from a YAML fixture.

Sheets are created through the regular services and owned by --owner.
Test case "actions" are applied in order, so every status is reached through
the review workflow.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Path to the YAML fixture")
	importCmd.Flags().StringVar(&importOwner, "owner", "", "Email of the user who will own imported sheets")
	_ = importCmd.MarkFlagRequired("file")
	_ = importCmd.MarkFlagRequired("owner")
}

func runImport(cmd *cobra.Command, _ []string) error {
	file, err := os.Open(importFile)
	if err != nil {
		return fmt.Errorf("failed to open fixture: %w", err)
	}
	defer func() { _ = file.Close() }()

	fixture, err := importer.Load(file)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := repository.Migrate(a.db); err != nil {
		return err
	}

	im := importer.New(a.users, a.sheets, a.testCases, a.members, a.log)
	res, err := im.Run(cmd.Context(), fixture, importOwner)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d users, %d sheets, %d modules, %d test cases, %d members\n",
		res.Users, res.Sheets, res.Modules, res.TestCases, res.Members)
	return nil
}
