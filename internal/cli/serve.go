package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stitchgrid/internal/server"
	"github.com/matzehuels/stitchgrid/pkg/cache"
	"github.com/matzehuels/stitchgrid/pkg/observability"
	"github.com/matzehuels/stitchgrid/pkg/pipeline"
)

const (
	defaultAddr = ":8080"

	// redisKeyPrefix scopes keys in a Redis instance shared with other apps.
	redisKeyPrefix = "stitchgrid:v1:"
)

// serveFlags holds flags for the serve command.
type serveFlags struct {
	addr      string
	redisURL  string
	catalog   string
	maxUpload int64
}

// serveCommand creates the HTTP API command.
func (c *CLI) serveCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pattern HTTP API",
		Long: `Serve the pattern HTTP API.

Patterns are cached in Redis when --redis (or server.redis_url in the
config file) is set, otherwise in the local cache directory.`,
		Example: `  stitchgrid serve
  stitchgrid serve --addr :9000 --redis redis://localhost:6379/0
  curl -F image=@photo.jpg -F colors=32 -F format=png localhost:8080/v1/patterns > pattern.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") && c.Config.Server.Addr != "" {
				flags.addr = c.Config.Server.Addr
			}
			if flags.redisURL == "" {
				flags.redisURL = c.Config.Server.RedisURL
			}
			return c.runServe(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&flags.redisURL, "redis", "", "Redis URL for the pattern cache (redis://host:port/db)")
	cmd.Flags().StringVar(&flags.catalog, "catalog", "", "thread catalog CSV (id,name,r,g,b); embedded DMC by default")
	cmd.Flags().Int64Var(&flags.maxUpload, "max-upload", server.DefaultMaxUpload, "maximum image upload size in bytes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, flags serveFlags) error {
	cat, err := c.loadCatalog(flags.catalog)
	if err != nil {
		return err
	}

	runner, err := c.newServerRunner(ctx, flags.redisURL)
	if err != nil {
		return err
	}
	defer runner.Close()

	observability.SetServerHooks(observability.NewLogHooks(c.Logger))

	srv := server.New(server.Config{
		Runner:    runner,
		Catalog:   cat,
		Logger:    c.Logger,
		MaxUpload: flags.maxUpload,
	})

	printSuccess("Serving on %s", StyleNumber.Render(flags.addr))
	printDetail("%d threads in catalog", cat.Len())
	err = srv.ListenAndServe(ctx, flags.addr)
	if stderrors.Is(err, context.Canceled) {
		printInfo("Server stopped")
		return nil
	}
	return err
}

// newServerRunner builds a runner backed by Redis when a URL is given, or by
// the local cache otherwise.
func (c *CLI) newServerRunner(ctx context.Context, redisURL string) (*pipeline.Runner, error) {
	if redisURL == "" {
		return c.newRunner(false)
	}

	observability.SetPipelineHooks(observability.NewLogHooks(c.Logger))
	observability.SetCacheHooks(observability.NewLogHooks(c.Logger))

	rc, err := cache.NewRedisCache(ctx, redisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	c.Logger.Info("using redis cache", "url", redactURL(redisURL))
	return pipeline.NewRunner(rc, cache.NewScopedKeyer(nil, redisKeyPrefix), c.Logger), nil
}

// redactURL hides the password of a connection URL for logging.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}
