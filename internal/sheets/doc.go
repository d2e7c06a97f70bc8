// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package sheets speaks the backend range-fetch protocol: a request names a
// credential, a spreadsheet, a range such as "Events!A1:C10", an orientation
// and a render mode, and the answer is a Grid of scalar cells.
package sheets
