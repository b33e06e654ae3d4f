package logctl

import (
	"context"
	"fmt"
	"io"

	pb "github.com/dmitrijs2005/devlogs/internal/proto"
	"github.com/spf13/cobra"
)

func newDeleteCmd(o *options) *cobra.Command {
	var req pb.DeleteHistoryRequest

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a finished upload from history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.call(cmd, func(ctx context.Context, c pb.DeviceLogsServiceClient) (any, error) {
				return c.DeleteHistory(ctx, &req)
			}, func(w io.Writer, _ any) {
				fmt.Fprintf(w, "Deleted %s\n", req.RequestID)
			})
		},
	}

	cmd.Flags().StringVar(&req.DeviceSN, "sn", "", "device serial number")
	cmd.Flags().StringVar(&req.RequestID, "request", "", "upload request id")
	_ = cmd.MarkFlagRequired("sn")
	_ = cmd.MarkFlagRequired("request")
	return cmd
}
