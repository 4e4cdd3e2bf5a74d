package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidPageToken = errors.New("invalid_page_token")

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=25"`
}

// Limit clamps the requested page size to [1, 250].
func (p Pagination) Limit() int {
	switch {
	case p.PageSize <= 0:
		return 25
	case p.PageSize > 250:
		return 250
	default:
		return p.PageSize
	}
}

type Cursor struct {
	ID string `json:"id,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPageToken, err)
	}

	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPageToken, err)
	}
	return &cursor, nil
}

// Trim cuts a result fetched with limit+1 rows down to limit and reports
// whether another page exists.
func Trim[T any](data []T, limit int, extractID func(T) string) ([]T, PageInfo) {
	if len(data) <= limit {
		return data, PageInfo{}
	}
	data = data[:limit]
	token, _ := EncodeCursor(Cursor{ID: extractID(data[len(data)-1])})
	return data, PageInfo{NextPageToken: token, HasMore: true}
}
