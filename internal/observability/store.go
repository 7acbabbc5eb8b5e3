package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gstbill/gstbill/internal/dataset"
)

func newStoreDuration() *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gstbill_store_operation_duration_seconds",
		Help:    "Dataset load, save and update latency by driver and outcome.",
		Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5},
	}, []string{"driver", "op", "result"})
}

// InstrumentGateway times every Load and Save on gw, and Update when gw is a
// dataset.Updater. A nil receiver returns gw unchanged.
func (m *Metrics) InstrumentGateway(driver string, gw dataset.Gateway) dataset.Gateway {
	if m == nil || gw == nil {
		return gw
	}
	inner := &instrumentedGateway{next: gw, driver: driver, duration: m.storeDuration}
	if u, ok := gw.(dataset.Updater); ok {
		return &instrumentedUpdater{instrumentedGateway: inner, updater: u}
	}
	return inner
}

type instrumentedGateway struct {
	next     dataset.Gateway
	driver   string
	duration *prometheus.HistogramVec
}

func (g *instrumentedGateway) Load(ctx context.Context) (*dataset.Dataset, error) {
	start := time.Now()
	ds, err := g.next.Load(ctx)
	g.observe("load", start, err)
	return ds, err
}

func (g *instrumentedGateway) Save(ctx context.Context, ds *dataset.Dataset) error {
	start := time.Now()
	err := g.next.Save(ctx, ds)
	g.observe("save", start, err)
	return err
}

type instrumentedUpdater struct {
	*instrumentedGateway
	updater dataset.Updater
}

func (g *instrumentedUpdater) Update(ctx context.Context, fn func(*dataset.Dataset) error) error {
	start := time.Now()
	err := g.updater.Update(ctx, fn)
	g.observe("update", start, err)
	return err
}

func (g *instrumentedGateway) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	g.duration.WithLabelValues(g.driver, op, result).Observe(time.Since(start).Seconds())
}
