package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	gatehouse "github.com/schmanat/gatehouse"
)

type metricsSource interface {
	MetricsSnapshot() gatehouse.MetricsSnapshot
	AuditDropped() uint64
}

type counterDef struct {
	ID   gatehouse.MetricID
	Name string
	Help string
}

var counterDefs = []counterDef{
	{gatehouse.MetricLoginSuccess, "gatehouse_login_success_total", "Successful logins."},
	{gatehouse.MetricLoginFailure, "gatehouse_login_failure_total", "Rejected login attempts."},
	{gatehouse.MetricAccountLocked, "gatehouse_account_locked_total", "Accounts entering the lockout state."},
	{gatehouse.MetricPasswordMigrated, "gatehouse_password_migrated_total", "Legacy digests rewritten to the salted format."},
	{gatehouse.MetricAuthenticateSuccess, "gatehouse_authenticate_success_total", "Successful session revalidations."},
	{gatehouse.MetricAuthenticateFailure, "gatehouse_authenticate_failure_total", "Rejected session revalidations."},
	{gatehouse.MetricSessionCreated, "gatehouse_session_created_total", "Sessions opened at login."},
	{gatehouse.MetricSessionInvalidated, "gatehouse_session_invalidated_total", "Sessions removed at logout."},
	{gatehouse.MetricLogout, "gatehouse_logout_total", "Completed logouts."},
}

// PrometheusExporter renders gatehouse metrics in Prometheus text exposition format.
type PrometheusExporter struct {
	source metricsSource
}

// NewPrometheusExporter creates a Prometheus exporter that reads from the given [gatehouse.Engine].
func NewPrometheusExporter(engine *gatehouse.Engine) *PrometheusExporter {
	return &PrometheusExporter{source: engine}
}

// NewPrometheusExporterFromSource creates a Prometheus exporter from a
// custom metrics source.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render writes the current metrics in Prometheus text exposition format.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	if len(snapshot.Counters) == 0 && dropped == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(4096)

	for _, def := range counterDefs {
		writeCounter(&b, def.Name, def.Help, snapshot.Counters[def.ID])
	}

	writeCounter(&b, "gatehouse_audit_dropped_total", "Dropped audit events due to dispatcher backpressure.", dropped)

	return b.String()
}

func writeCounter(b *strings.Builder, name, help string, value uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" counter\n")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}
