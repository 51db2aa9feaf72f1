package main

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/NicabarNimble/go-gitimport/internal/config"
	"github.com/NicabarNimble/go-gitimport/internal/github"
	"github.com/NicabarNimble/go-gitimport/internal/gitserver"
	"github.com/NicabarNimble/go-gitimport/internal/importer"
	"github.com/NicabarNimble/go-gitimport/internal/token"
	"github.com/NicabarNimble/go-gitimport/internal/urlutils"
)

// newFactory is a variable so it can be replaced in tests
var newFactory = buildFactory

// buildFactory wires the production collaborators described by cfg.
func buildFactory(ctx context.Context, cfg *config.Config) (*importer.Factory, error) {
	storage := token.NewEnvStorage()

	sources, err := newSourceResolver(ctx, cfg, storage)
	if err != nil {
		return nil, err
	}

	return importer.NewFactory(importer.Deps{
		GitDir:        cfg.GitDir,
		ImportAccount: cfg.ImportAccount,
		Provisioner: gitserver.NewProvisioner(gitserver.ProvisionerConfig{
			URL:     cfg.GitServer.URL,
			Token:   cfg.GitServer.Token,
			Timeout: cfg.GitServerTimeout(),
		}),
		Sources: sources,
		Credentials: newCredentials(cfg, storage),
	})
}

// newCredentials checks the source token with its issuer before the first fetch.
func newCredentials(cfg *config.Config, storage token.Storage) *token.CredentialsProvider {
	return &token.CredentialsProvider{
		Storage:        storage,
		Key:            cfg.Token.Key,
		AllowAnonymous: cfg.Token.AllowAnonymous,
		Validator: token.ProviderValidator(func(p token.Provider) token.Validator {
			return newValidator(cfg, p)
		}),
	}
}

func newSourceResolver(ctx context.Context, cfg *config.Config, storage token.Storage) (importer.SourceResolver, error) {
	if !cfg.GitHub.ResolveViaAPI {
		return &github.URLResolver{
			BaseURL: cfg.GitHub.URL,
			Hosts:   urlutils.NewHostPolicy(cfg.GitHub.AllowedHosts...),
		}, nil
	}

	// anonymous lookups work for public sources
	var value string
	t, err := storage.Retrieve(ctx, cfg.Token.Key)
	switch {
	case err == nil:
		value = t.Value
	case !stderrors.Is(err, token.ErrTokenNotFound):
		return nil, fmt.Errorf("failed to get %s token: %w", cfg.Token.Key, err)
	}

	client, err := github.NewClient(ctx, value, github.WithBaseURL(cfg.GitHub.APIURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return &github.APIResolver{Client: client}, nil
}
