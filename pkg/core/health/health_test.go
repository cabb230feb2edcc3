package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRegistry_Check(t *testing.T) {
	r := NewRegistry("dcmd", "0.1.0")
	r.RegisterFunc("b-commands", func(ctx context.Context) CheckResult {
		return Healthy("7 commands")
	})
	r.RegisterFunc("a-history", func(ctx context.Context) CheckResult {
		return Healthy("")
	})

	report := r.Check(context.Background())

	if report.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", report.Status)
	}
	if len(report.Checks) != 2 {
		t.Fatalf("len(Checks) = %d, want 2", len(report.Checks))
	}
	if report.Checks[0].Name != "a-history" || report.Checks[1].Name != "b-commands" {
		t.Errorf("checks not sorted by name: %v, %v", report.Checks[0].Name, report.Checks[1].Name)
	}
	if report.Checks[1].Message != "7 commands" {
		t.Errorf("Message = %q", report.Checks[1].Message)
	}
	if report.Checks[0].Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestRegistry_OverallStatus(t *testing.T) {
	tests := []struct {
		name    string
		results []CheckResult
		want    Status
	}{
		{"empty", nil, StatusHealthy},
		{"degraded", []CheckResult{Healthy(""), Degraded("slow")}, StatusDegraded},
		{"unhealthy wins", []CheckResult{Degraded("slow"), Unhealthy(errors.New("down"))}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry("dcmd", "0.1.0")
			for i, res := range tt.results {
				res := res
				r.RegisterFunc(string(rune('a'+i)), func(context.Context) CheckResult { return res })
			}
			if got := r.Check(context.Background()).Status; got != tt.want {
				t.Errorf("Status = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry("dcmd", "0.1.0")
	r.RegisterFunc("x", func(context.Context) CheckResult { return Unhealthy(errors.New("old")) })
	r.RegisterFunc("x", func(context.Context) CheckResult { return Healthy("new") })

	report := r.Check(context.Background())
	if len(report.Checks) != 1 || report.Checks[0].Message != "new" {
		t.Errorf("Checks = %+v", report.Checks)
	}
}

func TestReport_String(t *testing.T) {
	report := &Report{Service: "dcmd", Status: StatusHealthy, Uptime: 90 * time.Second}
	s := report.String()
	if !strings.Contains(s, "dcmd") || !strings.Contains(s, "healthy") || !strings.Contains(s, "1m30s") {
		t.Errorf("String() = %q", s)
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry("dcmd", "0.1.0")
	r.RegisterFunc("waits", func(ctx context.Context) CheckResult {
		<-ctx.Done()
		return Unhealthy(ctx.Err())
	})

	rec := httptest.NewRecorder()
	Handler(r, 10*time.Millisecond)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Code = %d, want 503", rec.Code)
	}
	var report Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if report.Status != StatusUnhealthy || report.Checks[0].Name != "waits" {
		t.Errorf("report = %+v", report)
	}
}
