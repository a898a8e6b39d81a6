package handler

import (
	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/techhaven/internal/application/cart"
	"github.com/xiebiao/techhaven/internal/interface/http/dto"
	"github.com/xiebiao/techhaven/internal/interface/http/middleware"
	"github.com/xiebiao/techhaven/pkg/response"
)

// CartHandler 购物车HTTP处理器
type CartHandler struct {
	cartUseCase *appcart.CartUseCase
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(cartUseCase *appcart.CartUseCase) *CartHandler {
	return &CartHandler{cartUseCase: cartUseCase}
}

// Get 查看购物车
// @Summary      查看购物车
// @Description  读取时按商品当前状态对账：下架商品移除，数量超库存时下调，单价刷新为当前售价
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dto.CartResponse}
// @Router       /api/cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	view, err := h.cartUseCase.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewCartResponse(view.Cart, view.Laptops))
}

// AddItem 加入购物车
// @Summary      加入购物车
// @Description  同一商品同一延保方案合并数量，合并后不能超过库存
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddCartItemRequest true "商品"
// @Success      200 {object} response.Response{data=dto.CartResponse}
// @Failure      400 {object} response.ErrorBody "库存不足或商品不可售"
// @Failure      404 {object} response.ErrorBody "商品不存在"
// @Router       /api/cart [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.cartUseCase.AddItem(c.Request.Context(), middleware.GetUserID(c), appcart.AddItemRequest{
		LaptopID: req.LaptopID,
		Quantity: req.Quantity,
		Warranty: req.Warranty,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewCartResponse(view.Cart, view.Laptops))
}

// UpdateItem 修改数量或延保
// @Summary      修改购物车条目
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        itemId  path int                        true "条目ID"
// @Param        request body dto.UpdateCartItemRequest true "修改内容"
// @Success      200 {object} response.Response{data=dto.CartResponse}
// @Failure      400 {object} response.ErrorBody "库存不足"
// @Failure      404 {object} response.ErrorBody "条目不存在"
// @Router       /api/cart/items/{itemId} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	var req dto.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.cartUseCase.UpdateItem(c.Request.Context(), middleware.GetUserID(c), itemID, appcart.UpdateItemRequest{
		Quantity: req.Quantity,
		Warranty: req.Warranty,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewCartResponse(view.Cart, view.Laptops))
}

// RemoveItem 移除条目
// @Summary      移除购物车条目
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        itemId path int true "条目ID"
// @Success      200 {object} response.Response{data=dto.CartResponse}
// @Failure      404 {object} response.ErrorBody "条目不存在"
// @Router       /api/cart/items/{itemId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	view, err := h.cartUseCase.RemoveItem(c.Request.Context(), middleware.GetUserID(c), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewCartResponse(view.Cart, view.Laptops))
}

// Clear 清空购物车
// @Summary      清空购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.cartUseCase.Clear(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
