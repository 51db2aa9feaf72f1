package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/NicabarNimble/go-gitimport/internal/config"
	"github.com/NicabarNimble/go-gitimport/internal/github"
	"github.com/NicabarNimble/go-gitimport/internal/gitlab"
	"github.com/NicabarNimble/go-gitimport/internal/token"
)

// newValidator is a variable so it can be replaced in tests
var newValidator = func(cfg *config.Config, provider token.Provider) token.Validator {
	if provider == token.ProviderGitLab {
		return gitlab.NewTokenValidator(cfg.GitLab.APIURL)
	}
	return github.NewTokenValidator(cfg.GitHub.APIURL)
}

func newTokenCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect source credentials",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate the configured source token",
		Long: `Read GIT_TOKEN_<KEY> and verify it with the API of the provider that issued it.
Classic GitHub tokens must carry the repo scope; GitLab tokens need
read_repository or api.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closer, err := loadConfig(root)
			if err != nil {
				return err
			}
			defer closer.Close()

			ctx := cmd.Context()
			t, err := token.NewEnvStorage().Retrieve(ctx, cfg.Token.Key)
			if err != nil {
				return fmt.Errorf("%s: %w", token.FormatEnvKey(cfg.Token.Key), err)
			}
			if err := newValidator(cfg, token.DetectProvider(t.Value)).Validate(ctx, &t); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprintf(out, "%s is valid\n", token.FormatEnvKey(cfg.Token.Key))
			if provider := token.DetectProvider(t.Value); provider != "" {
				fmt.Fprintf(out, "  Provider: %s\n", provider)
			}
			if t.Scope != "" {
				fmt.Fprintf(out, "  Scopes:   %s\n", t.Scope)
			}
			if !t.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "  Expires:  %s\n", t.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		},
	})
	return cmd
}
