package model

import "math"

// Page はページング済みの一覧結果を表す。
// JSONのフィールド名はフロントエンドとの互換性のためcamelCaseとする。
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// NewPage は取得済みの要素と総件数からPageを組み立てる。
// contentがnilの場合は空スライスに置き換える。
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         req.Page == 0,
		Last:          req.Page+1 >= totalPages,
	}
}

// MapPage はPageの要素を変換した新しいPageを返す。
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Content))
	for i, v := range p.Content {
		out[i] = fn(v)
	}
	return Page[U]{
		Content:       out,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		First:         p.First,
		Last:          p.Last,
	}
}

const (
	// DefaultPageSize はsize未指定時のページサイズ。
	DefaultPageSize = 10
	// MaxPageSize はページサイズの上限。
	MaxPageSize = 100
)

// maxOffset はOFFSETとして許容する上限。page*sizeがこれを超えるページ番号はエラーとする。
const maxOffset = math.MaxInt32

// NewPageRequest はページ番号を検証し、サイズを1..MaxPageSizeに丸めたPageRequestを返す。
// 負のページ番号と、OFFSETがmaxOffsetを超えるページ番号はエラーとする。
func NewPageRequest(page, size int) (PageRequest, error) {
	if page < 0 {
		return PageRequest{}, NewInvalidPageError(page)
	}
	switch {
	case size < 1:
		size = 1
	case size > MaxPageSize:
		size = MaxPageSize
	}
	if page > maxOffset/size {
		return PageRequest{}, NewInvalidPageError(page)
	}
	return PageRequest{Page: page, Size: size}, nil
}
