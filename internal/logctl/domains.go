package logctl

import (
	"context"
	"fmt"
	"io"
	"time"

	pb "github.com/dmitrijs2005/devlogs/internal/proto"
	"github.com/spf13/cobra"
)

func newDomainsCmd(o *options) *cobra.Command {
	var req pb.ListRealtimeDomainsRequest

	cmd := &cobra.Command{
		Use:   "domains",
		Short: "List log files a live device holds",
		Long:  "Ask an online device which log files it currently holds for the given domains.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.call(cmd, func(ctx context.Context, c pb.DeviceLogsServiceClient) (any, error) {
				return c.ListRealtimeDomains(ctx, &req)
			}, printDomains)
		},
	}

	cmd.Flags().StringVar(&req.DeviceSN, "sn", "", "device serial number")
	cmd.Flags().StringSliceVar(&req.Domains, "domain", nil, "log domain (repeatable)")
	_ = cmd.MarkFlagRequired("sn")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}

func printDomains(w io.Writer, resp any) {
	for _, d := range resp.(*pb.ListRealtimeDomainsResponse).Domains {
		fmt.Fprintf(w, "%s (%d files)\n", d.Domain, len(d.Files))
		for _, f := range d.Files {
			fmt.Fprintf(w, "  boot %d  %s .. %s  %d bytes\n", f.BootIndex, f.StartTime.Format(time.RFC3339), f.EndTime.Format(time.RFC3339), f.Size)
		}
	}
}
