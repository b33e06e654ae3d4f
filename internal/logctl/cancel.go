package logctl

import (
	"context"
	"fmt"
	"io"
	"strings"

	pb "github.com/dmitrijs2005/devlogs/internal/proto"
	"github.com/spf13/cobra"
)

func newCancelCmd(o *options) *cobra.Command {
	var req pb.CancelUploadRequest

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel files of a running upload",
		Long:  "Cancel the given files or domains of an upload request. Files the device finished first are reported as skipped.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(req.FileIDs) == 0 && len(req.Domains) == 0 {
				return fmt.Errorf("logctl cancel: at least one --file or --domain is required")
			}
			return o.call(cmd, func(ctx context.Context, c pb.DeviceLogsServiceClient) (any, error) {
				return c.CancelUpload(ctx, &req)
			}, printCancelled)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.DeviceSN, "sn", "", "device serial number")
	f.StringVar(&req.RequestID, "request", "", "upload request id")
	f.StringSliceVar(&req.FileIDs, "file", nil, "file id (repeatable)")
	f.StringSliceVar(&req.Domains, "domain", nil, "cancel every file of this domain (repeatable)")
	_ = cmd.MarkFlagRequired("sn")
	_ = cmd.MarkFlagRequired("request")
	return cmd
}

func printCancelled(w io.Writer, resp any) {
	r := resp.(*pb.CancelUploadResponse)
	fmt.Fprintf(w, "Cancelled: %s\n", strings.Join(r.Cancelled, ", "))
	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped:   %s\n", strings.Join(r.Skipped, ", "))
	}
}
