package models

import "time"

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Text        string  `json:"text"`
	LastFilters *Filter `json:"lastFilters,omitempty"`
	LastOffset  *int    `json:"lastOffset,omitempty"`
}

// QueryResponse is the pipeline output for one turn.
// Canned intent replies only carry Intent and Reply.
type QueryResponse struct {
	Intent     string  `json:"intent,omitempty"`
	Filters    *Filter `json:"filters,omitempty"`
	Count      int     `json:"count"`
	Total      int     `json:"total"`
	Offset     int     `json:"offset"`
	Reply      string  `json:"reply"`
	Plans      []Plan  `json:"plans"`
	NextOffset *int    `json:"nextOffset"`
}

// HealthResponse reports catalog freshness for GET /health.
type HealthResponse struct {
	Status      string     `json:"status"`
	Uptime      float64    `json:"uptime"`
	LastFetched *time.Time `json:"lastFetched,omitempty"`
	LoadMs      int64      `json:"loadMs"`
	Stale       bool       `json:"stale"`
	Plans       int        `json:"plans"`
	Error       string     `json:"error,omitempty"`
}

// PlansResponse is returned by GET /api/plans.
type PlansResponse struct {
	Total int    `json:"total"`
	Plans []Plan `json:"plans"`
}
