package logctl

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	pb "github.com/dmitrijs2005/devlogs/internal/proto"
	"github.com/spf13/cobra"
)

func parseTime(flag, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", flag, err)
	}
	return t, nil
}

func newListCmd(o *options) *cobra.Command {
	var (
		req        pb.ListUploadedLogsRequest
		begin, end string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List upload history of a device",
		Long:  "List past and running log uploads of one device, newest first unless --asc is given.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if req.BeginTime, err = parseTime("begin", begin); err != nil {
				return err
			}
			if req.EndTime, err = parseTime("end", end); err != nil {
				return err
			}
			return o.call(cmd, func(ctx context.Context, c pb.DeviceLogsServiceClient) (any, error) {
				return c.ListUploadedLogs(ctx, &req)
			}, printHistory)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.DeviceSN, "sn", "", "device serial number")
	f.IntVar(&req.Page, "page", 1, "page number")
	f.IntVar(&req.PageSize, "page-size", 10, "page size")
	f.StringVar(&req.Status, "status", "", "only requests with a file in this status")
	f.StringVar(&req.Keyword, "keyword", "", "description substring")
	f.StringVar(&begin, "begin", "", "created at or after (RFC3339)")
	f.StringVar(&end, "end", "", "created at or before (RFC3339)")
	f.BoolVar(&req.Ascending, "asc", false, "oldest first")
	_ = cmd.MarkFlagRequired("sn")
	return cmd
}

func printHistory(w io.Writer, resp any) {
	r := resp.(*pb.ListUploadedLogsResponse)
	fmt.Fprintf(w, "Page %d (size %d), %d total\n", r.Page, r.PageSize, r.Total)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REQUEST\tSTATUS\tCREATED\tBY\tFILES")
	for _, it := range r.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", it.ID, it.Status, it.CreatedAt.Format(time.RFC3339), it.RequestedBy, len(it.Files))
		for _, f := range it.Files {
			fmt.Fprintf(tw, "  %s\t%s\t%d%%\t%s\t\n", f.FileID, f.Status, f.Progress, f.Domain)
		}
	}
	tw.Flush()
}
