package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/NicabarNimble/go-gitimport/internal/config"
	"github.com/NicabarNimble/go-gitimport/internal/git"
)

func newRefsCmd(root *rootOptions) *cobra.Command {
	var compare string

	cmd := &cobra.Command{
		Use:   "refs <organisation/repository>",
		Short: "List the refs of an imported repository",
		Long: `List the refs of an imported repository. With --compare, list instead the refs
of another local repository that the import lacks or holds at a different
commit, and fail if there are any.`,
		Example: `  gitimport refs acme/widgets
  gitimport refs acme/widgets --compare /srv/mirror/widgets.git`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closer, err := loadConfig(root)
			if err != nil {
				return err
			}
			defer closer.Close()

			org, repo, err := config.ParseTarget(args[0])
			if err != nil {
				return fmt.Errorf("invalid repository: %w", err)
			}

			refs, err := git.ListRefs(filepath.Join(cfg.GitDir, org, repo+".git"))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if compare != "" {
				return printMissing(out, compare, refs)
			}

			faint := color.New(color.Faint)
			for _, name := range git.RefNames(refs) {
				faint.Fprintf(out, "%s ", refs[name])
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&compare, "compare", "", "Local repository whose refs the import must contain")
	return cmd
}

func printMissing(out io.Writer, path string, imported map[string]string) error {
	want, err := git.ListRefs(path)
	if err != nil {
		return err
	}

	missing := git.MissingRefs(want, imported)
	if len(missing) == 0 {
		color.New(color.FgGreen).Fprintf(out, "All %d refs present\n", len(want))
		return nil
	}
	for _, name := range missing {
		color.New(color.FgRed).Fprintf(out, "%s ", want[name])
		fmt.Fprintln(out, name)
	}
	return fmt.Errorf("%d of %d refs missing", len(missing), len(want))
}
