package trace

const (
	// Messaging 语义属性键
	AttrMessagingSystem      = "messaging.system"
	AttrMessagingDestination = "messaging.destination"
	AttrMessagingOperation   = "messaging.operation"
	AttrMessagingBodySize    = "messaging.message.body.size"
)

const (
	MessagingSystemNATS       = "nats"
	MessagingOperationPublish = "publish"
)

// TracerName 是 devmetrics 内部 span 使用的 instrumentation 名称
const TracerName = "github.com/ceyewan/devmetrics"

// SpanNamePublish 返回快照发布 span 的名称
func SpanNamePublish(subject string) string {
	if subject == "" {
		return "snapshot.publish"
	}
	return "snapshot.publish " + subject
}
