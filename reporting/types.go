// Package reporting talks to the analytics reporting service: it signs a
// service-account assertion, trades it for a bearer token and runs report
// queries. Nothing here is cached between calls.
package reporting

import "encoding/json"

// Credentials identify the service account and the property it reads.
type Credentials struct {
	PropertyID  string
	ClientEmail string
	PrivateKey  string
}

// Configured reports whether all three fields are set. A partial set is
// treated the same as none.
func (c Credentials) Configured() bool {
	return c.PropertyID != "" && c.ClientEmail != "" && c.PrivateKey != ""
}

type Value struct {
	Value string `json:"value"`
}

// UnmarshalJSON accepts the value as a JSON string or a bare number. null and
// other types decode to "", which later counts as zero.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	v.Value = ""
	if len(raw.Value) == 0 {
		return nil
	}
	if raw.Value[0] == '"' {
		return json.Unmarshal(raw.Value, &v.Value)
	}
	var n json.Number
	if err := json.Unmarshal(raw.Value, &n); err == nil {
		v.Value = n.String()
	}
	return nil
}

// Row is one report row. Which dimensions and metrics it carries depends on
// the query that produced it.
type Row struct {
	DimensionValues []Value `json:"dimensionValues"`
	MetricValues    []Value `json:"metricValues"`
}

// Dimension returns the i-th dimension value, or "" when the row has fewer.
func (r Row) Dimension(i int) string {
	if i < 0 || i >= len(r.DimensionValues) {
		return ""
	}
	return r.DimensionValues[i].Value
}

// Metric returns the i-th metric value, or "" when the row has fewer.
func (r Row) Metric(i int) string {
	if i < 0 || i >= len(r.MetricValues) {
		return ""
	}
	return r.MetricValues[i].Value
}

type Report struct {
	Rows     []Row `json:"rows"`
	RowCount int   `json:"rowCount"`
}

// Reports bundles the three raw payloads the dashboard is built from.
type Reports struct {
	PageViews Report
	Events    Report
	Users     Report
}
