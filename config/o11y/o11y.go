// Package o11y wires the honeycomb tracer, statsd metrics and rollbar together
// from flat configuration.
package o11y

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/rollbar/rollbar-go"

	"github.com/zetteln/server/config/secret"
	"github.com/zetteln/server/o11y"
	"github.com/zetteln/server/o11y/honeycomb"
)

type Config struct {
	Statsd            string
	RollbarToken      secret.String
	RollbarEnv        string
	RollbarServerRoot string
	HoneycombEnabled  bool
	HoneycombDataset  string
	HoneycombHost     string
	HoneycombKey      secret.String
	SampleTraces      bool
	SampleKeyFunc     func(map[string]interface{}) string
	SampleRates       map[string]int
	Format            string
	Version           string
	Service           string
	StatsNamespace    string

	// Optional
	Mode                    string
	Debug                   bool
	RollbarDisabled         bool
	StatsdTelemetryDisabled bool
	// Writer receives the text or json span output, stderr when nil.
	Writer io.Writer
}

// Setup returns a context carrying the configured provider, and the function
// that flushes and closes it.
func Setup(ctx context.Context, o Config) (context.Context, func(context.Context), error) {
	honeyConfig, err := honeyComb(o)
	if err != nil {
		return nil, nil, err
	}

	hostname, _ := os.Hostname()

	honeyConfig.Metrics, err = metrics(o, hostname)
	if err != nil {
		return nil, nil, fmt.Errorf("statsd client failed: %w", err)
	}

	provider := honeycomb.New(honeyConfig)
	provider.AddGlobalField("service", o.Service)
	provider.AddGlobalField("version", o.Version)
	if o.Mode != "" {
		provider.AddGlobalField("mode", o.Mode)
	}

	if o.RollbarToken.IsSet() {
		client := rollbar.NewAsync(o.RollbarToken.Raw(), o.RollbarEnv, o.Version, hostname, o.RollbarServerRoot)
		client.SetEnabled(!o.RollbarDisabled)
		client.Message(rollbar.INFO, "Deployment")
		provider = rollbarProvider{
			Provider:      provider,
			rollbarClient: client,
		}
	}

	return o11y.WithProvider(ctx, provider), provider.Close, nil
}

func metrics(o Config, hostname string) (o11y.ClosableMetricsProvider, error) {
	if o.Statsd == "" {
		return &statsd.NoOpClient{}, nil
	}

	tags := []string{
		"service:" + o.Service,
		"version:" + o.Version,
		"hostname:" + hostname,
	}
	if o.Mode != "" {
		tags = append(tags, "mode:"+o.Mode)
	}

	opts := []statsd.Option{
		statsd.WithNamespace(o.StatsNamespace),
		statsd.WithTags(tags),
	}
	if o.StatsdTelemetryDisabled {
		opts = append(opts, statsd.WithoutTelemetry())
	}
	return statsd.New(o.Statsd, opts...)
}

type rollbarProvider struct {
	o11y.Provider
	rollbarClient *rollbar.Client
}

func (p rollbarProvider) Close(ctx context.Context) {
	p.Provider.Close(ctx)
	_ = p.rollbarClient.Close()
}

// RollBarClient lets o11y.HandlePanic report to rollbar.
func (p rollbarProvider) RollBarClient() *rollbar.Client {
	return p.rollbarClient
}

// DefaultSampleKey groups spans by the server, route and status recorded by the gin middleware.
func DefaultSampleKey(fields map[string]interface{}) string {
	return fmt.Sprintf("%v %v %v",
		fields["http.server_name"],
		fields["http.route"],
		fields["http.status_code"],
	)
}

func honeyComb(o Config) (honeycomb.Config, error) {
	if o.SampleKeyFunc == nil {
		o.SampleKeyFunc = DefaultSampleKey
	}

	conf := honeycomb.Config{
		Host:          o.HoneycombHost,
		Dataset:       o.HoneycombDataset,
		Key:           o.HoneycombKey.Raw(),
		Format:        o.Format,
		SendTraces:    o.HoneycombEnabled,
		SampleTraces:  o.SampleTraces,
		SampleKeyFunc: o.SampleKeyFunc,
		SampleRates:   o.SampleRates,
		Writer:        o.Writer,
		ServiceName:   o.Service,
		Debug:         o.Debug,
	}
	return conf, conf.Validate()
}
