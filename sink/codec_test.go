package sink

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ceyewan/devmetrics/metrics"
	"github.com/ceyewan/devmetrics/xerrors"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		UTCTimestampMs: 1700000000123,
		InstanceID:     "i-123",
		Sections: []metrics.Section{
			{Name: "block", Values: []metrics.Value{
				{Name: "read_bytes", Kind: metrics.KindCounter, Value: 4096},
				{Name: "pending_requests", Kind: metrics.KindGauge, Value: 2},
			}},
			{Name: "block_rootfs", Values: []metrics.Value{
				{Name: "read_bytes", Kind: metrics.KindCounter, Value: 4096},
				{Name: "pending_requests", Kind: metrics.KindGauge, Value: 2},
			}},
		},
	}
}

func TestNewCodec(t *testing.T) {
	tests := []struct {
		format string
		want   string
		sep    string
	}{
		{format: "", want: FormatJSON, sep: "\n"},
		{format: FormatJSON, want: FormatJSON, sep: "\n"},
		{format: FormatMsgpack, want: FormatMsgpack, sep: ""},
		{format: FormatEMF, want: FormatEMF, sep: "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			c, err := NewCodec(&Config{Format: tt.format})
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Name())
			assert.Equal(t, tt.sep, string(c.Separator()))
		})
	}

	_, err := NewCodec(&Config{Format: "yaml"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestJSONCodec(t *testing.T) {
	data, err := (&JSONCodec{}).Encode(sampleSnapshot())
	require.NoError(t, err)
	assert.Equal(t,
		`{"utc_timestamp_ms":1700000000123,`+
			`"block":{"read_bytes":4096,"pending_requests":2},`+
			`"block_rootfs":{"read_bytes":4096,"pending_requests":2}}`,
		string(data))
	assert.True(t, json.Valid(data))
}

func TestJSONCodec_Escaping(t *testing.T) {
	snap := &Snapshot{Sections: []metrics.Section{
		{Name: `net_"quoted"`, Values: []metrics.Value{{Name: "网卡", Value: 1}}},
	}}
	data, err := (&JSONCodec{}).Encode(snap)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Contains(t, out, `net_"quoted"`)
}

func TestCodec_InvalidNames(t *testing.T) {
	codecs := []Codec{&JSONCodec{}, &MsgpackCodec{}, &EMFCodec{Namespace: "ns"}}
	snapshots := map[string]*Snapshot{
		"empty section": {Sections: []metrics.Section{{Name: ""}}},
		"invalid utf8":  {Sections: []metrics.Section{{Name: "net_\xff"}}},
		"empty field": {Sections: []metrics.Section{
			{Name: "net", Values: []metrics.Value{{Name: ""}}},
		}},
		"duplicate": {Sections: []metrics.Section{{Name: "net"}, {Name: "net"}}},
	}

	for _, c := range codecs {
		for name, snap := range snapshots {
			t.Run(c.Name()+"/"+name, func(t *testing.T) {
				_, err := c.Encode(snap)
				require.Error(t, err)
				assert.True(t, xerrors.Is(err, xerrors.ErrInvalidInput))
			})
		}
	}
}

func TestMsgpackCodec(t *testing.T) {
	data, err := (&MsgpackCodec{}).Encode(sampleSnapshot())
	require.NoError(t, err)

	dec := msgpack.NewDecoder(bytes.NewReader(data))
	n, err := dec.DecodeMapLen()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	key, err := dec.DecodeString()
	require.NoError(t, err)
	assert.Equal(t, "utc_timestamp_ms", key)
	ts, err := dec.DecodeInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), ts)

	for _, want := range []string{"block", "block_rootfs"} {
		name, err := dec.DecodeString()
		require.NoError(t, err)
		assert.Equal(t, want, name)

		fields, err := dec.DecodeMapLen()
		require.NoError(t, err)
		require.Equal(t, 2, fields)

		field, err := dec.DecodeString()
		require.NoError(t, err)
		assert.Equal(t, "read_bytes", field)
		v, err := dec.DecodeUint64()
		require.NoError(t, err)
		assert.Equal(t, uint64(4096), v)

		field, err = dec.DecodeString()
		require.NoError(t, err)
		assert.Equal(t, "pending_requests", field)
		v, err = dec.DecodeUint64()
		require.NoError(t, err)
		assert.Equal(t, uint64(2), v)
	}
}

func TestEMFCodec(t *testing.T) {
	data, err := (&EMFCodec{Namespace: "devmetrics"}).Encode(sampleSnapshot())
	require.NoError(t, err)

	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 2)

	type directive struct {
		Namespace  string     `json:"Namespace"`
		Dimensions [][]string `json:"Dimensions"`
		Metrics    []struct {
			Name string `json:"Name"`
			Unit string `json:"Unit"`
		} `json:"Metrics"`
	}
	var rec struct {
		AWS struct {
			Timestamp         int64       `json:"Timestamp"`
			CloudWatchMetrics []directive `json:"CloudWatchMetrics"`
		} `json:"_aws"`
		Device     string `json:"device"`
		InstanceID string `json:"InstanceId"`
		ReadBytes  uint64 `json:"read_bytes"`
		Pending    uint64 `json:"pending_requests"`
	}

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, int64(1700000000123), rec.AWS.Timestamp)
	require.Len(t, rec.AWS.CloudWatchMetrics, 1)
	d := rec.AWS.CloudWatchMetrics[0]
	assert.Equal(t, "devmetrics", d.Namespace)
	assert.Equal(t, [][]string{{"device"}}, d.Dimensions)
	require.Len(t, d.Metrics, 2)
	assert.Equal(t, "read_bytes", d.Metrics[0].Name)
	assert.Equal(t, "Count", d.Metrics[0].Unit)
	assert.Equal(t, "None", d.Metrics[1].Unit)

	assert.Equal(t, "block_rootfs", rec.Device)
	assert.Equal(t, "i-123", rec.InstanceID)
	assert.Equal(t, uint64(4096), rec.ReadBytes)
	assert.Equal(t, uint64(2), rec.Pending)
}
