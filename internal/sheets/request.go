// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package sheets

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultEndpoint is the values API root used when a Request does not name
// one.
const DefaultEndpoint = "https://sheets.googleapis.com/v4/spreadsheets"

// Credentials are handed through to the backend untouched.
type Credentials struct {
	// Key is the static access key sent with every request.
	Key string `yaml:"key"`
	// Spreadsheet is the dataset identifier.
	Spreadsheet string `yaml:"spreadsheet"`
}

// String masks the key so Credentials can be logged.
func (c Credentials) String() string {
	key := ""
	if c.Key != "" {
		key = "********"
	}
	return fmt.Sprintf("Credentials{Key:%s Spreadsheet:%s}", key, c.Spreadsheet)
}

// Dimension is the major orientation of the returned grid.
type Dimension string

const (
	Rows    Dimension = "ROWS"
	Columns Dimension = "COLUMNS"
)

// Render selects raw values or display-formatted strings.
type Render string

const (
	Formatted   Render = "FORMATTED_VALUE"
	Unformatted Render = "UNFORMATTED_VALUE"
)

// Request identifies a single range fetch. The zero values of Endpoint,
// Dimension and Render resolve to DefaultEndpoint, Rows and Formatted.
type Request struct {
	Endpoint    string
	Credentials Credentials
	Range       string
	Dimension   Dimension
	Render      Render
}

// Resolved returns a copy with every defaulted field filled in.
func (r Request) Resolved() Request {
	if r.Endpoint == "" {
		r.Endpoint = DefaultEndpoint
	}
	r.Endpoint = strings.TrimSuffix(r.Endpoint, "/")
	if r.Dimension == "" {
		r.Dimension = Rows
	}
	if r.Render == "" {
		r.Render = Formatted
	}
	return r
}

// URL returns the fully resolved request URL. Anything that changes the data
// the backend returns changes this string. Query parameters are encoded in
// sorted order so equal requests always produce equal URLs.
func (r Request) URL() string {
	r = r.Resolved()

	q := url.Values{}
	q.Set("key", r.Credentials.Key)
	q.Set("majorDimension", string(r.Dimension))
	q.Set("valueRenderOption", string(r.Render))

	return fmt.Sprintf("%s/%s/values/%s?%s",
		r.Endpoint,
		url.PathEscape(r.Credentials.Spreadsheet),
		url.PathEscape(r.Range),
		q.Encode(),
	)
}

// Redacted is URL with the access key masked, for logs and errors.
func (r Request) Redacted() string {
	r.Credentials.Key = "xxxx"
	return r.URL()
}
