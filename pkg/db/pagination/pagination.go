package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidPageToken is returned for tokens this package did not issue.
var ErrInvalidPageToken = errors.New("invalid_page_token")

// Pagination is the keyset page request bound from query parameters.
type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=10"`
}

// Cursor points at the last row of the previous page. Snowflake ids grow with
// time, so the id alone orders newest-first listings.
type Cursor struct {
	ID string `json:"id"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

// EncodeCursor returns a URL-safe token for cursor.
func EncodeCursor(cursor Cursor) (string, error) {
	raw, err := json.Marshal(cursor)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func DecodeCursor(token string) (*Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPageToken, err)
	}
	var cursor Cursor
	if err := json.Unmarshal(raw, &cursor); err != nil || cursor.ID == "" {
		return nil, ErrInvalidPageToken
	}
	return &cursor, nil
}

// BuildCursorPageInfo drops the lookahead row fetched by ApplyPagination and
// issues the next token from the last row kept.
func BuildCursorPageInfo[T any](rows []*T, limit int, idOf func(*T) string) ([]*T, PageInfo) {
	if limit <= 0 || len(rows) <= limit {
		return rows, PageInfo{}
	}
	rows = rows[:limit]
	info := PageInfo{HasMore: true}
	if token, err := EncodeCursor(Cursor{ID: idOf(rows[len(rows)-1])}); err == nil {
		info.NextPageToken = token
	}
	return rows, info
}
