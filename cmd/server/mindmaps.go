package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mindcanvas/internal/config"
	"mindcanvas/internal/domain"
	"mindcanvas/internal/loader"
	"mindcanvas/internal/service"
)

func newListCmd(a *app) *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored mind maps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := a.openService(nil)
			if err != nil {
				return err
			}
			defer closeDB()

			var maps []domain.Mindmap
			if cmd.Flags().Changed("project") {
				maps, err = svc.ListByProject(cmd.Context(), projectID)
			} else {
				maps, err = svc.List(cmd.Context())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(maps) == 0 {
				subtle.Fprintln(out, "no mind maps")
				return nil
			}

			rows := make([][]string, 0, len(maps))
			for _, m := range maps {
				rows = append(rows, []string{
					strconv.FormatInt(m.ID, 10),
					m.Title,
					strconv.FormatInt(m.ProjectID, 10),
					strconv.Itoa(m.Data.Count()),
					m.UpdatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			printTable(out, []string{"ID", "TITLE", "PROJECT", "NODES", "UPDATED"}, rows)
			return nil
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "only list mind maps of this project")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write the document of a mind map as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid mind map id %q", args[0])
			}
			if format == "" {
				format = formatFromPath(output, "json")
			}

			svc, closeDB, err := a.openService(nil)
			if err != nil {
				return err
			}
			defer closeDB()

			if output == "" {
				return svc.Export(cmd.Context(), id, format, cmd.OutOrStdout())
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := svc.Export(cmd.Context(), id, format, f); err != nil {
				f.Close()
				os.Remove(output)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			good.Fprintf(cmd.ErrOrStderr(), "exported mind map %d to %s\n", id, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default: from output extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var format, title string
	var projectID, into int64

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create a mind map, or replace one, from a JSON or YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if format == "" {
				format = formatFromPath(path, "json")
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			svc, closeDB, err := a.openService(nil)
			if err != nil {
				return err
			}
			defer closeDB()

			var m *domain.Mindmap
			if into > 0 {
				m, err = svc.Import(cmd.Context(), into, format, f)
			} else {
				m, err = svc.ImportNew(cmd.Context(), title, projectID, format, f)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s mind map %d %s (%d nodes)\n",
				good.Sprint("imported"), m.ID, brand.Sprint(m.Title), m.Data.Count())
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default: from file extension)")
	cmd.Flags().StringVar(&title, "title", "", "title of the new mind map (default: root text)")
	cmd.Flags().Int64Var(&projectID, "project", 0, "project of the new mind map")
	cmd.Flags().Int64Var(&into, "into", 0, "replace the document of this mind map instead")
	return cmd
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Populate an empty database from a seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := a.openService(nil)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := a.seed(cmd.Context(), svc, args[0]); err != nil {
				return err
			}
			good.Fprintln(cmd.OutOrStdout(), "seed applied")
			return nil
		},
	}
}

// seed loads a seed file and applies it to an empty database
func (a *app) seed(ctx context.Context, svc *service.MindmapService, path string) error {
	maps, err := loader.LoadSeed(path)
	if err != nil {
		return fmt.Errorf("load seed %s: %w", path, err)
	}
	_, err = loader.Apply(ctx, svc, maps, a.logger)
	return err
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if a.cfgFile != "" {
				fmt.Fprintf(out, "%s %s\n", brand.Sprint("config:"), a.cfgFile)
			} else {
				fmt.Fprintf(out, "%s (defaults)\n", brand.Sprint("config:"))
				for _, p := range config.SearchPaths() {
					subtle.Fprintf(out, "  searched %s\n", p)
				}
			}
			fmt.Fprintln(out, a.cfg.Summary())
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			good.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}

// formatFromPath derives a codec format from a file extension
func formatFromPath(path, def string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "json", "yaml", "yml":
		return ext
	default:
		return def
	}
}
