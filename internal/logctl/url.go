package logctl

import (
	"context"
	"fmt"
	"io"

	pb "github.com/dmitrijs2005/devlogs/internal/proto"
	"github.com/spf13/cobra"
)

func newURLCmd(o *options) *cobra.Command {
	var req pb.GetDownloadURLRequest

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print a download URL for an uploaded file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.call(cmd, func(ctx context.Context, c pb.DeviceLogsServiceClient) (any, error) {
				return c.GetDownloadURL(ctx, &req)
			}, func(w io.Writer, resp any) {
				fmt.Fprintln(w, resp.(*pb.GetDownloadURLResponse).URL)
			})
		},
	}

	cmd.Flags().StringVar(&req.RequestID, "request", "", "upload request id")
	cmd.Flags().StringVar(&req.FileID, "file", "", "file id")
	_ = cmd.MarkFlagRequired("request")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
