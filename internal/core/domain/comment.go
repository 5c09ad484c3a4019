package domain

import (
	"fmt"
	"strings"
	"time"
)

const MaxCommentLength = 500

type Comment struct {
	ID        int64
	DiaryID   int64
	MemberID  int64
	Content   string
	CreatedAt time.Time
}

func NewComment(diaryID, memberID int64, content string) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" || len([]rune(content)) > MaxCommentLength {
		return nil, fmt.Errorf("%w: comment must be 1-%d characters", ErrInvalidInput, MaxCommentLength)
	}
	return &Comment{
		DiaryID:   diaryID,
		MemberID:  memberID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}, nil
}

type Like struct {
	DiaryID   int64
	MemberID  int64
	CreatedAt time.Time
}
