package sink

import (
	"bytes"
	"encoding/json"
	"strconv"
	"unicode/utf8"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ceyewan/devmetrics/metrics"
	"github.com/ceyewan/devmetrics/xerrors"
)

// Codec 快照编码器
type Codec interface {
	// Name 格式名
	Name() string
	// Encode 把快照编码为一条记录
	Encode(s *Snapshot) ([]byte, error)
	// Separator 记录之间的分隔符，可以为空
	Separator() []byte
}

// NewCodec 按格式名创建编码器
//
// 支持的格式:
//   - "json": 一个 JSON 对象，键顺序为 utc_timestamp_ms、各条目，字段按 schema 顺序
//   - "msgpack": 与 json 相同结构的有序 MessagePack map
//   - "emf": CloudWatch Embedded Metric Format，每个条目一行
func NewCodec(cfg *Config) (Codec, error) {
	switch cfg.Format {
	case FormatJSON, "":
		return &JSONCodec{Pretty: cfg.Pretty}, nil
	case FormatMsgpack:
		return &MsgpackCodec{}, nil
	case FormatEMF:
		return &EMFCodec{Namespace: cfg.EMFNamespace}, nil
	default:
		return nil, xerrors.Wrapf(ErrUnsupportedFormat, "%q", cfg.Format)
	}
}

// validateSnapshot 条目名和字段名必须是非空的合法 UTF-8，条目名不能重复
func validateSnapshot(s *Snapshot) error {
	seen := make(map[string]struct{}, len(s.Sections))
	for _, sec := range s.Sections {
		if err := validateName(sec.Name); err != nil {
			return xerrors.Wrap(err, "section name")
		}
		if _, ok := seen[sec.Name]; ok {
			return xerrors.Wrapf(xerrors.ErrInvalidInput, "duplicate section %q", sec.Name)
		}
		seen[sec.Name] = struct{}{}

		for _, v := range sec.Values {
			if err := validateName(v.Name); err != nil {
				return xerrors.Wrapf(err, "field name in section %q", sec.Name)
			}
		}
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "empty name")
	}
	if !utf8.ValidString(name) {
		return xerrors.Wrapf(xerrors.ErrInvalidInput, "invalid utf-8 %q", name)
	}
	return nil
}

// JSONCodec 有序 JSON 编码
type JSONCodec struct {
	Pretty bool
}

func (c *JSONCodec) Name() string { return FormatJSON }

func (c *JSONCodec) Separator() []byte { return []byte("\n") }

func (c *JSONCodec) Encode(s *Snapshot) ([]byte, error) {
	if err := validateSnapshot(s); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"utc_timestamp_ms":`)
	buf.WriteString(strconv.FormatInt(s.UTCTimestampMs, 10))
	for _, sec := range s.Sections {
		buf.WriteByte(',')
		writeJSONString(&buf, sec.Name)
		buf.WriteByte(':')
		writeJSONValues(&buf, sec.Values)
	}
	buf.WriteByte('}')

	if !c.Pretty {
		return buf.Bytes(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeJSONValues(buf *bytes.Buffer, values []metrics.Value) {
	buf.WriteByte('{')
	for i, v := range values {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSONString(buf, v.Name)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatUint(v.Value, 10))
	}
	buf.WriteByte('}')
}

// writeJSONString 写入转义后的 JSON 字符串，名称已校验为合法 UTF-8
func writeJSONString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}

// MsgpackCodec 有序 MessagePack 编码
type MsgpackCodec struct{}

func (c *MsgpackCodec) Name() string { return FormatMsgpack }

func (c *MsgpackCodec) Separator() []byte { return nil }

func (c *MsgpackCodec) Encode(s *Snapshot) ([]byte, error) {
	if err := validateSnapshot(s); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.EncodeMapLen(len(s.Sections) + 1); err != nil {
		return nil, err
	}
	if err := enc.EncodeString("utc_timestamp_ms"); err != nil {
		return nil, err
	}
	if err := enc.EncodeInt(s.UTCTimestampMs); err != nil {
		return nil, err
	}

	for _, sec := range s.Sections {
		if err := enc.EncodeString(sec.Name); err != nil {
			return nil, err
		}
		if err := enc.EncodeMapLen(len(sec.Values)); err != nil {
			return nil, err
		}
		for _, v := range sec.Values {
			if err := enc.EncodeString(v.Name); err != nil {
				return nil, err
			}
			if err := enc.EncodeUint(v.Value); err != nil {
				return nil, err
			}
		}
	}
	return buf.Bytes(), nil
}

// EMFCodec CloudWatch Embedded Metric Format 编码
//
// 每个条目输出一行，条目名作为 device 维度：
//
//	{"_aws":{"Timestamp":...,"CloudWatchMetrics":[{"Namespace":"devmetrics",
//	  "Dimensions":[["device"]],"Metrics":[{"Name":"rx_bytes_count","Unit":"Count"}]}]},
//	  "device":"net_eth0","InstanceId":"...","rx_bytes_count":10}
type EMFCodec struct {
	Namespace string
}

func (c *EMFCodec) Name() string { return FormatEMF }

func (c *EMFCodec) Separator() []byte { return []byte("\n") }

func (c *EMFCodec) Encode(s *Snapshot) ([]byte, error) {
	if err := validateSnapshot(s); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for i, sec := range s.Sections {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(`{"_aws":{"Timestamp":`)
		buf.WriteString(strconv.FormatInt(s.UTCTimestampMs, 10))
		buf.WriteString(`,"CloudWatchMetrics":[{"Namespace":`)
		writeJSONString(&buf, c.Namespace)
		buf.WriteString(`,"Dimensions":[["device"]],"Metrics":[`)
		for j, v := range sec.Values {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(`{"Name":`)
			writeJSONString(&buf, v.Name)
			buf.WriteString(`,"Unit":`)
			writeJSONString(&buf, emfUnit(v.Kind))
			buf.WriteByte('}')
		}
		buf.WriteString(`]}]},"device":`)
		writeJSONString(&buf, sec.Name)
		buf.WriteString(`,"InstanceId":`)
		writeJSONString(&buf, s.InstanceID)
		for _, v := range sec.Values {
			buf.WriteByte(',')
			writeJSONString(&buf, v.Name)
			buf.WriteByte(':')
			buf.WriteString(strconv.FormatUint(v.Value, 10))
		}
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

func emfUnit(k metrics.Kind) string {
	if k == metrics.KindCounter {
		return "Count"
	}
	return "None"
}
