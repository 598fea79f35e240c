package metrics

// testBlock 测试用的小型 Block：两个 Counter 和一个 Gauge
type testBlock struct {
	Bytes    Counter
	Fails    Counter
	InFlight Gauge
}

func (b *testBlock) Fields() []Field {
	return []Field{
		CounterField("bytes", &b.Bytes),
		CounterField("fails", &b.Fails),
		GaugeField("in_flight", &b.InFlight),
	}
}

type otherBlock struct {
	Bytes Counter
}

func (b *otherBlock) Fields() []Field {
	return []Field{CounterField("bytes", &b.Bytes)}
}
