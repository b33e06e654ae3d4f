package proto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, "json", c.Name())
}

func TestCodec_WireNames(t *testing.T) {
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	b, err := jsonCodec{}.Marshal(&StartUploadRequest{
		DeviceSN: "SN001",
		Files:    []*FileSpec{{FileID: "f1", Domain: "flight", StartTime: start, EndTime: start}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"device_sn":"SN001"`)
	assert.Contains(t, string(b), `"file_id":"f1"`)
	assert.NotContains(t, string(b), "workspace_id")

	var got StartUploadRequest
	require.NoError(t, jsonCodec{}.Unmarshal(b, &got))
	require.Len(t, got.Files, 1)
	assert.True(t, start.Equal(got.Files[0].StartTime))
}
