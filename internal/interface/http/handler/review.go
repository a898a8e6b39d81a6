package handler

import (
	"github.com/gin-gonic/gin"

	appreview "github.com/xiebiao/techhaven/internal/application/review"
	"github.com/xiebiao/techhaven/internal/interface/http/dto"
	"github.com/xiebiao/techhaven/internal/interface/http/middleware"
	"github.com/xiebiao/techhaven/pkg/response"
)

// ReviewHandler 评价HTTP处理器
type ReviewHandler struct {
	reviewUseCase *appreview.ReviewUseCase
}

// NewReviewHandler 创建评价处理器
func NewReviewHandler(reviewUseCase *appreview.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{reviewUseCase: reviewUseCase}
}

// ListByLaptop 商品评价
// @Summary      商品评价列表
// @Tags         评价
// @Produce      json
// @Param        id       path  int true  "商品ID"
// @Param        page     query int false "页码" default(1)
// @Param        pageSize query int false "每页条数（最大50）" default(10)
// @Success      200 {object} response.Response{data=response.PageData{list=[]dto.ReviewResponse}}
// @Failure      404 {object} response.ErrorBody "商品不存在"
// @Router       /api/laptops/{id}/reviews [get]
func (h *ReviewHandler) ListByLaptop(c *gin.Context) {
	laptopID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ListReviewsRequest
	if !bindQuery(c, &req) {
		return
	}
	page, err := h.reviewUseCase.ListByLaptop(c.Request.Context(), laptopID, req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, page)
}

// ListMine 我的评价
// @Summary      我的评价
// @Tags         评价
// @Produce      json
// @Security     BearerAuth
// @Param        page     query int false "页码" default(1)
// @Param        pageSize query int false "每页条数（最大50）" default(10)
// @Success      200 {object} response.Response{data=response.PageData{list=[]dto.ReviewResponse}}
// @Router       /api/reviews/me [get]
func (h *ReviewHandler) ListMine(c *gin.Context) {
	var req dto.ListReviewsRequest
	if !bindQuery(c, &req) {
		return
	}
	page, err := h.reviewUseCase.ListMine(c.Request.Context(), middleware.GetUserID(c), req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, page)
}

func writePage(c *gin.Context, p *appreview.Page) {
	response.SuccessWithPage(c, dto.NewReviewList(p.Reviews), p.Total, p.Page, p.PageSize)
}

// Create 发表评价
// @Summary      发表评价
// @Description  每个用户对每个商品只能评价一次；购买并签收过的商品标记为已购评价
// @Tags         评价
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                      true "商品ID"
// @Param        request body dto.CreateReviewRequest true "评价内容"
// @Success      201 {object} response.Response{data=dto.ReviewResponse}
// @Failure      400 {object} response.ErrorBody "参数错误"
// @Failure      404 {object} response.ErrorBody "商品不存在"
// @Failure      409 {object} response.ErrorBody "已评价过该商品"
// @Router       /api/laptops/{id}/reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	laptopID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	rv, err := h.reviewUseCase.Create(c.Request.Context(), appreview.CreateReviewRequest{
		UserID:   middleware.GetUserID(c),
		LaptopID: laptopID,
		Rating:   req.Rating,
		Title:    req.Title,
		Comment:  req.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewReviewResponse(rv))
}

// Update 修改评价（仅作者）
// @Summary      修改评价
// @Tags         评价
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                      true "评价ID"
// @Param        request body dto.UpdateReviewRequest true "修改内容"
// @Success      200 {object} response.Response{data=dto.ReviewResponse}
// @Failure      403 {object} response.ErrorBody "只能修改自己的评价"
// @Failure      404 {object} response.ErrorBody "评价不存在"
// @Router       /api/reviews/{id} [put]
func (h *ReviewHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	rv, err := h.reviewUseCase.Update(c.Request.Context(), id, author(c), appreview.UpdateReviewRequest{
		Rating:  req.Rating,
		Title:   req.Title,
		Comment: req.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewReviewResponse(rv))
}

// Delete 删除评价（作者或管理员）
// @Summary      删除评价
// @Tags         评价
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "评价ID"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.ErrorBody "无权删除"
// @Failure      404 {object} response.ErrorBody "评价不存在"
// @Router       /api/reviews/{id} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.reviewUseCase.Delete(c.Request.Context(), id, author(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
