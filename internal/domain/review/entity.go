package review

import (
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

var (
	ErrInvalidRating  = apperrors.ErrInvalidParams.WithMessage("评分必须为1-5的整数")
	ErrInvalidTitle   = apperrors.ErrInvalidParams.WithMessage("标题长度应为1-100个字符")
	ErrInvalidComment = apperrors.ErrInvalidParams.WithMessage("评价内容长度应为1-1000个字符")
)

// 评价只保存纯文本
var textPolicy = bluemonday.StrictPolicy()

// Review 商品评价，每个用户对每个商品最多一条
type Review struct {
	ID                 uint
	UserID             uint
	UserName           string
	LaptopID           uint
	Rating             int
	Title              string
	Comment            string
	IsVerifiedPurchase bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewReview 创建评价
func NewReview(userID, laptopID uint, rating int, title, comment string) (*Review, error) {
	now := time.Now()
	r := &Review{
		UserID:    userID,
		LaptopID:  laptopID,
		Rating:    rating,
		Title:     Sanitize(title),
		Comment:   Sanitize(comment),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Edit 修改评价，nil 字段保持不变
func (r *Review) Edit(rating *int, title, comment *string) error {
	if rating != nil {
		r.Rating = *rating
	}
	if title != nil {
		r.Title = Sanitize(*title)
	}
	if comment != nil {
		r.Comment = Sanitize(*comment)
	}
	r.UpdatedAt = time.Now()
	return r.Validate()
}

// Validate 校验字段
func (r *Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	if n := utf8.RuneCountInString(r.Title); n < 1 || n > 100 {
		return ErrInvalidTitle
	}
	if n := utf8.RuneCountInString(r.Comment); n < 1 || n > 1000 {
		return ErrInvalidComment
	}
	return nil
}

// IsOwnedBy 是否为评价作者
func (r *Review) IsOwnedBy(userID uint) bool {
	return r.UserID == userID
}

// Sanitize 去除HTML标签，保留文字内容
func Sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// Summary 商品评分汇总
type Summary struct {
	Average float64
	Count   int
}

// Summarize 计算算术平均分与条数，没有评价时均为0
func Summarize(ratings []int) Summary {
	if len(ratings) == 0 {
		return Summary{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return Summary{Average: float64(sum) / float64(len(ratings)), Count: len(ratings)}
}
