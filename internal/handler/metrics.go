package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/softdesk-lab/softdesk/dao/model"
	"github.com/softdesk-lab/softdesk/internal/resputil"
)

type MetricsMgr struct {
	name  string
	store Store
}

func NewMetricsMgr(conf *RegisterConfig) Manager {
	return &MetricsMgr{
		name:  "metrics",
		store: conf.Store,
	}
}

func (mgr *MetricsMgr) GetName() string { return mgr.name }

func (mgr *MetricsMgr) RegisterPublic(metrics *gin.RouterGroup) {
	metrics.GET("/metrics", mgr.GetMetrics)
}

func (mgr *MetricsMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *MetricsMgr) RegisterAdmin(_ *gin.RouterGroup) {}

var registry *prometheus.Registry

var promHTTPHandler http.Handler

// Issue counts per lifecycle state, refreshed on scrape.
var issuesGauge = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "issues_total",
		Help: "Number of issues per status",
	},
	[]string{"status"},
)

// Authorization denials since process start.
var deniedCounter = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "authz_denied_total",
		Help: "Total number of denied authorization decisions",
	},
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewMetricsMgr)
	registry = prometheus.NewRegistry()
	promHTTPHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	registry.MustRegister(issuesGauge)
	registry.MustRegister(deniedCounter)
}

func observeDeny() {
	deniedCounter.Inc()
}

// GetMetrics godoc
//
//	@Summary		Prometheus metrics
//	@Description	Issue counts per status and authorization deny totals
//	@Tags			Metrics
//	@Produce		plain
//	@Success		200	{string}	string	"exposition format"
//	@Router			/metrics [get]
func (mgr *MetricsMgr) GetMetrics(c *gin.Context) {
	counts, err := mgr.store.CountIssuesByStatus(c)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	for _, status := range []model.IssueStatus{model.StatusToDo, model.StatusInProgress, model.StatusFinished} {
		issuesGauge.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
	promHTTPHandler.ServeHTTP(c.Writer, c.Request)
}
