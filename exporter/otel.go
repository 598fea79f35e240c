package exporter

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"

	"github.com/ceyewan/devmetrics/clog"
	"github.com/ceyewan/devmetrics/metrics"
	"github.com/ceyewan/devmetrics/xerrors"
)

const meterName = "github.com/ceyewan/devmetrics/exporter"

// OTel 把设备注册表桥接为 OpenTelemetry 异步指标
//
// 每个字段对应一个 Int64ObservableCounter 或 Int64ObservableGauge，命名为 <class>.<field>，
// 属性 device 为设备 id。收集时在回调中读取累计值。
type OTel struct {
	provider     *sdkmetric.MeterProvider
	registration metric.Registration
	logger       clog.Logger
}

// observed 一个设备类别及其每个字段对应的异步指标
type observed struct {
	source      Source
	instruments []metric.Int64Observable
}

// NewOTel 创建 OTel 桥接
//
// 未指定 WithReader 时，使用 OTel Prometheus 导出，注册到 WithRegisterer 指定的
// Registerer（默认 prometheus.DefaultRegisterer）。
func NewOTel(cfg *Config, sources []Source, opts ...Option) (*OTel, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.setDefaults()

	opt := &options{logger: clog.Discard()}
	for _, o := range opts {
		o(opt)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.Version),
		),
	)
	if err != nil {
		return nil, xerrors.Wrap(err, "create resource")
	}

	reader := opt.reader
	if reader == nil {
		registerer := opt.registerer
		if registerer == nil {
			registerer = prometheus.DefaultRegisterer
		}
		if reader, err = otelprom.New(otelprom.WithRegisterer(registerer)); err != nil {
			return nil, xerrors.Wrap(err, "create prometheus exporter")
		}
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(meterName)

	o := &OTel{provider: provider, logger: opt.logger}
	if err := o.register(meter, sources); err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, err
	}

	if cfg.EnableRuntime {
		if err := runtime.Start(runtime.WithMeterProvider(provider)); err != nil {
			_ = o.Shutdown(context.Background())
			return nil, xerrors.Wrap(err, "start runtime instrumentation")
		}
	}

	o.logger.Info("otel bridge created",
		clog.String("service_name", cfg.ServiceName),
		clog.Int("sources", len(sources)))
	return o, nil
}

func (o *OTel) register(meter metric.Meter, sources []Source) error {
	var all []metric.Observable
	observes := make([]observed, 0, len(sources))

	for _, src := range sources {
		schema := src.Schema()
		obs := observed{source: src, instruments: make([]metric.Int64Observable, len(schema))}
		for i, f := range schema {
			name := src.Class() + "." + f.Name
			if f.Kind() == metrics.KindGauge {
				g, err := meter.Int64ObservableGauge(name, metric.WithDescription(src.Class()+" gauge "+f.Name))
				if err != nil {
					return xerrors.Wrapf(err, "create gauge %s", name)
				}
				obs.instruments[i] = g
				all = append(all, g)
				continue
			}
			c, err := meter.Int64ObservableCounter(name, metric.WithDescription(src.Class()+" counter "+f.Name))
			if err != nil {
				return xerrors.Wrapf(err, "create counter %s", name)
			}
			obs.instruments[i] = c
			all = append(all, c)
		}
		observes = append(observes, obs)
	}

	if len(all) == 0 {
		return nil
	}

	reg, err := meter.RegisterCallback(func(_ context.Context, ob metric.Observer) error {
		for _, obs := range observes {
			obs.source.Each(func(id string, block metrics.Block) {
				attrs := metric.WithAttributes(attribute.String(DeviceLabel, id))
				for i, f := range block.Fields() {
					if i >= len(obs.instruments) {
						return
					}
					ob.ObserveInt64(obs.instruments[i], toInt64(cumulative(f)), attrs)
				}
			})
		}
		return nil
	}, all...)
	if err != nil {
		return xerrors.Wrap(err, "register callback")
	}
	o.registration = reg
	return nil
}

// Shutdown 注销回调并关闭 MeterProvider
func (o *OTel) Shutdown(ctx context.Context) error {
	var errs []error
	if o.registration != nil {
		errs = append(errs, o.registration.Unregister())
	}
	errs = append(errs, o.provider.Shutdown(ctx))
	return xerrors.Combine(errs...)
}
