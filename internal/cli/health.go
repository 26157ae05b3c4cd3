package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const healthPollInterval = 250 * time.Millisecond

func newHealthCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Long: `Check that the server is up.

With --wait, keep polling until the server answers or the duration runs out.
Useful in scripts that start the server and then drive it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deadline := time.Now().Add(wait)
			for {
				start := time.Now()
				var result HealthResult
				err := client.Get("/api/v1/health", &result)
				if err == nil {
					result.Server = cfg.ServerURL
					result.Latency = time.Since(start).Round(time.Millisecond).String()
					NewOutput(cfg.Output).Print(result)
					return nil
				}

				if !time.Now().Add(healthPollInterval).Before(deadline) {
					if wait > 0 {
						return fmt.Errorf("server not healthy after %s: %w", wait, err)
					}
					return err
				}
				time.Sleep(healthPollInterval)
			}
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "keep retrying for up to this long (e.g. 10s)")
	return cmd
}
