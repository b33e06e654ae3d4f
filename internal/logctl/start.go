package logctl

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	pb "github.com/dmitrijs2005/devlogs/internal/proto"
	"github.com/spf13/cobra"
)

// parseFileSpec reads "id=f1,domain=flight,boot=3,start=RFC3339,end=RFC3339".
// id and domain are required.
func parseFileSpec(s string) (*pb.FileSpec, error) {
	spec := &pb.FileSpec{}
	for _, kv := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--file %q: expected key=value, got %q", s, kv)
		}
		var err error
		switch strings.TrimSpace(k) {
		case "id":
			spec.FileID = v
		case "domain":
			spec.Domain = v
		case "boot":
			spec.BootIndex, err = strconv.Atoi(v)
		case "start":
			spec.StartTime, err = parseTime("file start", v)
		case "end":
			spec.EndTime, err = parseTime("file end", v)
		default:
			err = fmt.Errorf("unknown key %q", k)
		}
		if err != nil {
			return nil, fmt.Errorf("--file %q: %w", s, err)
		}
	}
	if spec.FileID == "" || spec.Domain == "" {
		return nil, fmt.Errorf("--file %q: id and domain are required", s)
	}
	return spec, nil
}

func newStartCmd(o *options) *cobra.Command {
	var (
		req   pb.StartUploadRequest
		files []string
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a log upload",
		Long:  "Ask a device to upload the selected log files.\nEach --file is id=ID,domain=DOMAIN[,boot=N][,start=RFC3339][,end=RFC3339].",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Files = req.Files[:0]
			for _, s := range files {
				spec, err := parseFileSpec(s)
				if err != nil {
					return err
				}
				req.Files = append(req.Files, spec)
			}
			return o.call(cmd, func(ctx context.Context, c pb.DeviceLogsServiceClient) (any, error) {
				return c.StartUpload(ctx, &req)
			}, printStarted)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.DeviceSN, "sn", "", "device serial number")
	f.StringVar(&req.WorkspaceID, "workspace", "", "workspace id")
	f.StringVar(&req.Description, "description", "", "free text stored with the request")
	f.StringArrayVar(&files, "file", nil, "file to upload (repeatable)")
	_ = cmd.MarkFlagRequired("sn")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printStarted(w io.Writer, resp any) {
	r := resp.(*pb.StartUploadResponse).Request
	fmt.Fprintf(w, "Request %s: %s, %d files\n", r.ID, r.Status, len(r.Files))
}
