// Package events defines the routing keys and payloads published on the
// "events" exchange whenever centrale data changes.
package events

import "centrale/internal/model"

const (
	RoutingKeyBoardUpdated = "centrale.board.updated"
	RoutingKeyBoardDeleted = "centrale.board.deleted"
	RoutingKeyFileUploaded = "centrale.file.uploaded"
)

// BoardEvent is the payload for board created/updated/deleted events.
type BoardEvent struct {
	Partition string `json:"centrale_type"`
	BoardID   string `json:"board_id"`
	Version   int64  `json:"version,omitempty"`
}

// FileEvent is the payload for file upload events.
type FileEvent struct {
	Partition string        `json:"centrale_type"`
	BoardID   string        `json:"board_id"`
	RowID     string        `json:"row_id"`
	File      model.FileRef `json:"file"`
}
