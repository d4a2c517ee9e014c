package metrics

import (
	"sort"
	"strconv"

	dto "github.com/prometheus/client_model/go"
)

// OperationStats aggregates the calls of one API operation.
type OperationStats struct {
	Operation     string
	Requests      float64
	Errors        float64
	NetworkErrors float64
	AvgSeconds    float64
}

type Summary struct {
	Operations  []OperationStats
	Transitions map[string]float64 // "state/reason" -> count
}

func (m *Metrics) Summary() (Summary, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return Summary{}, err
	}
	fam := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		fam[f.GetName()] = f
	}

	ops := map[string]*OperationStats{}
	get := func(name string) *OperationStats {
		s, ok := ops[name]
		if !ok {
			s = &OperationStats{Operation: name}
			ops[name] = s
		}
		return s
	}

	if f := fam["useradmin_api_requests_total"]; f != nil {
		for _, mt := range f.GetMetric() {
			s := get(labelValue(mt, "operation"))
			v := mt.GetCounter().GetValue()
			s.Requests += v
			code, _ := strconv.Atoi(labelValue(mt, "status_code"))
			switch {
			case code == 0:
				s.NetworkErrors += v
				s.Errors += v
			case code >= 300:
				s.Errors += v
			}
		}
	}
	if f := fam["useradmin_api_request_duration_seconds"]; f != nil {
		for _, mt := range f.GetMetric() {
			h := mt.GetHistogram()
			if h.GetSampleCount() == 0 {
				continue
			}
			get(labelValue(mt, "operation")).AvgSeconds = h.GetSampleSum() / float64(h.GetSampleCount())
		}
	}

	out := Summary{Transitions: map[string]float64{}}
	for _, s := range ops {
		out.Operations = append(out.Operations, *s)
	}
	sort.Slice(out.Operations, func(i, j int) bool {
		return out.Operations[i].Operation < out.Operations[j].Operation
	})

	if f := fam["useradmin_session_transitions_total"]; f != nil {
		for _, mt := range f.GetMetric() {
			key := labelValue(mt, "state") + "/" + labelValue(mt, "reason")
			out.Transitions[key] += mt.GetCounter().GetValue()
		}
	}
	return out, nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
