// Package logctl implements the operator CLI for the device log service.
package logctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	pb "github.com/dmitrijs2005/devlogs/internal/proto"
	"github.com/spf13/cobra"
)

// TokenEnv is read when --token is not given.
const TokenEnv = "DEVLOGS_TOKEN"

type options struct {
	server  string
	token   string
	timeout time.Duration
	asJSON  bool

	dial func(server, token string) (pb.DeviceLogsServiceClient, io.Closer, error)
}

// NewRootCmd builds the logctl command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{dial: dial})
}

func newRootCmd(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "logctl",
		Short:         "logctl drives device log uploads",
		Long:          "logctl talks to the devlogs server: it lists upload history, queries live devices\nand starts, cancels or deletes log uploads.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&o.server, "server", "127.0.0.1:50051", "devlogs gRPC endpoint")
	root.PersistentFlags().StringVar(&o.token, "token", os.Getenv(TokenEnv), "access token (default $"+TokenEnv+")")
	root.PersistentFlags().DurationVar(&o.timeout, "timeout", 30*time.Second, "per-call timeout")
	root.PersistentFlags().BoolVar(&o.asJSON, "json", false, "print raw JSON responses")

	root.AddCommand(
		newListCmd(o),
		newDomainsCmd(o),
		newStartCmd(o),
		newCancelCmd(o),
		newDeleteCmd(o),
		newURLCmd(o),
	)
	return root
}

// call dials the server, runs fn with a bounded context and closes the
// connection.
func (o *options) call(cmd *cobra.Command, fn func(ctx context.Context, c pb.DeviceLogsServiceClient) (any, error), print func(w io.Writer, resp any)) error {
	if o.token == "" {
		return fmt.Errorf("logctl %s: no access token, use --token or $%s", cmd.Name(), TokenEnv)
	}

	client, closer, err := o.dial(o.server, o.token)
	if err != nil {
		return fmt.Errorf("logctl %s: %w", cmd.Name(), err)
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()

	resp, err := fn(ctx, client)
	if err != nil {
		return fmt.Errorf("logctl %s: %w", cmd.Name(), err)
	}

	w := cmd.OutOrStdout()
	if o.asJSON {
		pretty, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("logctl %s: %w", cmd.Name(), err)
		}
		fmt.Fprintln(w, string(pretty))
		return nil
	}
	print(w, resp)
	return nil
}
