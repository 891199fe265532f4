package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/credtally/credtally/internal/cmd/output"
	"github.com/credtally/credtally/pkg/aboutbox"
	"github.com/credtally/credtally/pkg/credits"
	"github.com/credtally/credtally/pkg/errors"
	"github.com/credtally/credtally/pkg/inventory"
	"github.com/credtally/credtally/pkg/logging"
	"github.com/credtally/credtally/pkg/reconcile"
)

// NewScanCommand creates the scan command.
func (a *App) NewScanCommand() *cobra.Command {
	var (
		outputPath     string
		noRegistry     bool
		noLicenses     bool
		vendorPatterns []string
	)

	cmd := &cobra.Command{
		Use:   "scan [repo]",
		Short: "Scan a repository for third-party components",
		Long: `Scan walks a repository and builds a third-party inventory: declared
dependencies from requirements files, pyproject.toml and setup.py,
vendored code candidates, and bundled assets. The inventory is written
as JSON for later comparison.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repoPath := repoArg(args)
			ctx := logging.WithLogger(cmd.Context(), a.logger)

			scanner := a.NewScanner(!noRegistry, !noLicenses, vendorPatterns)
			inv, err := scanner.Scan(ctx, repoPath)
			if err != nil {
				return err
			}

			if outputPath != "" {
				if err := inv.SaveJSON(outputPath); err != nil {
					return err
				}
				a.logger.Info().Str("path", outputPath).Msg("inventory written")
				return nil
			}

			formatter := output.NewFormatter(output.FormatJSON)
			return formatter.Format(cmd.OutOrStdout(), inv)
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "", "write the inventory JSON to a file instead of stdout")
	cmd.Flags().BoolVar(&noRegistry, "no-registry", false, "skip package registry lookups")
	cmd.Flags().BoolVar(&noLicenses, "no-licenses", false, "skip license classification")
	cmd.Flags().StringSliceVar(&vendorPatterns, "vendor-patterns", nil, "additional vendor directory names")

	return cmd
}

// NewCompareCommand creates the compare command.
func (a *App) NewCompareCommand() *cobra.Command {
	var (
		inventoryPath string
		threshold     float64
		draftPath     string
		strict        bool
	)

	cmd := &cobra.Command{
		Use:   "compare [repo]",
		Short: "Compare detected components against software_credits",
		Long: `Compare scans the repository (or loads a saved inventory), parses its
software_credits file, and reconciles the two: components used but not
credited, credited but no longer used, and credited at the wrong
version. With --strict the command fails when the report is not clean.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repoPath := repoArg(args)
			ctx := logging.WithLogger(cmd.Context(), a.logger)

			inv, err := a.loadOrScan(ctx, repoPath, inventoryPath)
			if err != nil {
				return err
			}

			documented, err := documentedRecords(repoPath, inv.Credits)
			if err != nil {
				return err
			}

			result, err := reconcile.Reconcile(inv.Components(), documented,
				reconcile.WithThreshold(threshold))
			if err != nil {
				return err
			}

			if draftPath != "" {
				if err := writeDraft(draftPath, result.MissingInDocs); err != nil {
					return err
				}
				a.logger.Info().Str("path", draftPath).Msg("draft credits written")
			}

			formatter := output.NewFormatter(output.DetectFormat(a.config.Format))
			if err := formatter.Format(cmd.OutOrStdout(), result); err != nil {
				return err
			}

			if strict && result.HasDiscrepancies() {
				return ErrDiscrepancies
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inventoryPath, "inventory", "", "load a saved inventory JSON instead of scanning")
	cmd.Flags().Float64Var(&threshold, "threshold", a.config.Threshold, "minimum match score in [0,1]")
	cmd.Flags().StringVar(&draftPath, "draft", "", "write a draft credits file for undocumented components")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when discrepancies exist")

	return cmd
}

// NewDraftCommand creates the draft command.
func (a *App) NewDraftCommand() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "draft [repo]",
		Short: "Generate a draft software_credits file",
		Long: `Draft scans the repository and renders a skeleton software_credits file
covering every detected component, for a maintainer to fill in.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repoPath := repoArg(args)
			ctx := logging.WithLogger(cmd.Context(), a.logger)

			scanner := a.NewScanner(false, true, a.config.VendorPatterns)
			inv, err := scanner.Scan(ctx, repoPath)
			if err != nil {
				return err
			}

			if outputPath != "" {
				if err := writeDraft(outputPath, inv.Components()); err != nil {
					return err
				}
				a.logger.Info().Str("path", outputPath).Msg("draft credits written")
				return nil
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), credits.Draft("", credits.DraftEntries(inv.Components())))
			return err
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "", "write the draft to a file instead of stdout")

	return cmd
}

// NewAboutboxCommand creates the aboutbox command.
func (a *App) NewAboutboxCommand() *cobra.Command {
	var (
		outputPath string
		title      string
	)

	cmd := &cobra.Command{
		Use:   "aboutbox [repo]",
		Short: "Render the third-party license HTML document",
		Long: `Aboutbox aggregates the repository's software_credits records and
scanned dependency licenses into a single HTML license document, with a
source-availability notice for LGPL components.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repoPath := repoArg(args)
			ctx := logging.WithLogger(cmd.Context(), a.logger)

			scanner := a.NewScanner(false, true, a.config.VendorPatterns)
			inv, err := scanner.Scan(ctx, repoPath)
			if err != nil {
				return err
			}

			builder := aboutbox.NewBuilder(title)
			if inv.Credits != nil && inv.Credits.Exists && !inv.Credits.Placeholder {
				file, err := credits.ParseFile(filepath.Join(repoPath, inv.Credits.Path))
				if err != nil {
					return err
				}
				builder.AddCredits("credited", file)
			}
			builder.AddInventory("detected", inv)

			if outputPath == "" {
				return builder.Render(cmd.OutOrStdout())
			}
			f, err := os.Create(outputPath)
			if err != nil {
				return errors.WrapIO("create", outputPath, err)
			}
			defer f.Close()
			if err := builder.Render(f); err != nil {
				return err
			}
			a.logger.Info().Str("path", outputPath).Msg("about box written")
			return nil
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "", "write the HTML to a file instead of stdout")
	cmd.Flags().StringVar(&title, "title", "This application", "application name used in the document")

	return cmd
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "credtally %s (commit %s, built %s by %s)\n",
				a.version, a.commit, a.date, a.builtBy)
			return err
		},
	}
}

// loadOrScan loads a saved inventory when a path is given, otherwise
// scans the repository without registry enrichment.
func (a *App) loadOrScan(ctx context.Context, repoPath, inventoryPath string) (*inventory.Inventory, error) {
	if inventoryPath != "" {
		return inventory.Load(inventoryPath)
	}
	scanner := a.NewScanner(false, false, a.config.VendorPatterns)
	return scanner.Scan(ctx, repoPath)
}

// documentedRecords parses the software_credits file into documented
// records. A missing or placeholder file documents nothing.
func documentedRecords(repoPath string, info *inventory.CreditsInfo) ([]credits.Record, error) {
	if info == nil || !info.Exists || info.Placeholder {
		return nil, nil
	}
	file, err := credits.ParseFile(filepath.Join(repoPath, info.Path))
	if err != nil {
		return nil, err
	}
	return file.Records, nil
}

// writeDraft renders a draft credits file for the given components.
func writeDraft(path string, components []inventory.Component) error {
	text := credits.Draft("", credits.DraftEntries(components))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// repoArg returns the repository path argument, defaulting to the
// current directory.
func repoArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
