// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package forum

import (
	"encoding/json"
	"strings"

	"github.com/echecmap/echec-map/internal/platform/constants"
)

// Comment is one reply under a forum post.
type Comment struct {
	Author    string `json:"author"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Post is a forum message: a player proposing a game at a bar.
//
// # Identity
//
// Posts historically had no identifier and were addressed by list position,
// which renumbered on every deletion. Each post now carries a stable ID
// assigned at load or creation time. The ID lives in memory only; the CSV
// keeps its historical column set so older deployments can read the file.
type Post struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	Bar          string         `json:"bar"`
	Game         string         `json:"game"`
	When         string         `json:"when"`
	Message      string         `json:"message"`
	Timestamp    string         `json:"timestamp"`
	Reported     bool           `json:"reported"`
	ReportReason string         `json:"report_reason"`
	Reactions    map[string]int `json:"reactions"`
	Comments     []Comment      `json:"comments"`
}

// Request states. Pending requests await an admin decision; the other two
// are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Request is a user-submitted ask to add a game to a bar's list or to
// report an error in it.
type Request struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Username    string `json:"username"`
	BarName     string `json:"bar_name"`
	GameName    string `json:"game_name"`
	ActionType  string `json:"action_type"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// # Legacy Cell Decoding
//
// The CSV predates the structured reaction and comment formats. Three
// generations of data coexist in production files and all must keep
// loading.

// decodeReactions turns a reactions cell into a counted mapping.
//
// Cells may be empty, a float artifact ("nan"), or a JSON object. Anything
// unreadable degrades to an empty mapping rather than failing the row.
func decodeReactions(cell string) map[string]int {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "nan") {
		return map[string]int{}
	}

	var reactions map[string]int
	if err := json.Unmarshal([]byte(cell), &reactions); err != nil || reactions == nil {
		return map[string]int{}
	}
	return reactions
}

// decodeComments turns a comments cell into a comment list.
//
// The three-way fallback, oldest format last:
//
//  1. A JSON array of comment objects (current format).
//  2. A legacy "|||"-delimited string of bare texts, wrapped into anonymous
//     comments with no timestamp.
//  3. Anything else becomes an empty list.
func decodeComments(cell string) []Comment {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "nan") {
		return []Comment{}
	}

	var comments []Comment
	if err := json.Unmarshal([]byte(cell), &comments); err == nil {
		if comments == nil {
			return []Comment{}
		}
		return comments
	}

	if strings.Contains(cell, "|||") {
		var migrated []Comment
		for _, text := range strings.Split(cell, "|||") {
			if text == "" {
				continue
			}
			migrated = append(migrated, Comment{
				Author:    constants.AnonymousAuthor,
				Text:      text,
				Timestamp: "",
			})
		}
		return migrated
	}

	return []Comment{}
}

// encodeJSONCell serialises a reactions map or comment list for its CSV
// cell. Empty reaction maps stay empty cells, matching what the historical
// writer produced.
func encodeJSONCell(value any) string {
	if m, ok := value.(map[string]int); ok && len(m) == 0 {
		return ""
	}

	data, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(data)
}
