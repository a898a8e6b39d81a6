package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	apporder "github.com/xiebiao/techhaven/internal/application/order"
	"github.com/xiebiao/techhaven/internal/domain/order"
	"github.com/xiebiao/techhaven/internal/infrastructure/config"
	"github.com/xiebiao/techhaven/internal/infrastructure/events"
	"github.com/xiebiao/techhaven/internal/interface/http/dto"
	"github.com/xiebiao/techhaven/internal/interface/http/middleware"
	"github.com/xiebiao/techhaven/pkg/logger"
	"github.com/xiebiao/techhaven/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	createUseCase   *apporder.CreateOrderUseCase
	getUseCase      *apporder.GetOrderUseCase
	listUseCase     *apporder.ListOrdersUseCase
	statusUseCase   *apporder.UpdateOrderStatusUseCase
	cancelUseCase   *apporder.CancelOrderUseCase
	payUseCase      *apporder.PayOrderUseCase
	shippingUseCase *apporder.UpdateShippingUseCase
	deleteUseCase   *apporder.DeleteOrderUseCase
	hub             *events.Hub
	upgrader        websocket.Upgrader
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createUseCase *apporder.CreateOrderUseCase,
	getUseCase *apporder.GetOrderUseCase,
	listUseCase *apporder.ListOrdersUseCase,
	statusUseCase *apporder.UpdateOrderStatusUseCase,
	cancelUseCase *apporder.CancelOrderUseCase,
	payUseCase *apporder.PayOrderUseCase,
	shippingUseCase *apporder.UpdateShippingUseCase,
	deleteUseCase *apporder.DeleteOrderUseCase,
	hub *events.Hub,
	cfg *config.Config,
) *OrderHandler {
	allowed := make(map[string]bool)
	for _, o := range cfg.Server.AllowedOrigins() {
		allowed[o] = true
	}
	return &OrderHandler{
		createUseCase:   createUseCase,
		getUseCase:      getUseCase,
		listUseCase:     listUseCase,
		statusUseCase:   statusUseCase,
		cancelUseCase:   cancelUseCase,
		payUseCase:      payUseCase,
		shippingUseCase: shippingUseCase,
		deleteUseCase:   deleteUseCase,
		hub:             hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
	}
}

// Create 下单
// @Summary      创建订单
// @Description  锁定商品行 → 校验价格 → 条件扣减库存 → 写订单 → 清空购物车，全部在一个事务内完成。
// @Description  金额由服务端重新计算，请求中的金额仅用于比对。
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateOrderRequest true "订单信息"
// @Success      201 {object} response.Response{data=dto.OrderResponse} "下单成功"
// @Failure      400 {object} response.ErrorBody "参数错误、库存不足或价格已变动"
// @Failure      401 {object} response.ErrorBody "未登录"
// @Failure      404 {object} response.ErrorBody "商品不存在"
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]apporder.CreateOrderItem, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		items = append(items, apporder.CreateOrderItem{
			LaptopID: it.LaptopID,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}

	o, err := h.createUseCase.Execute(c.Request.Context(), apporder.CreateOrderRequest{
		UserID:          middleware.GetUserID(c),
		Items:           items,
		ShippingAddress: req.ShippingAddress.ToDomain(),
		PaymentMethod:   req.PaymentMethod,
		ClientTotals:    req.ClientTotals(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewOrderResponse(o))
}

// ListMine 我的订单
// @Summary      我的订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        status   query string false "状态过滤" Enums(pending, processing, shipped, delivered, cancelled)
// @Param        page     query int    false "页码" default(1)
// @Param        pageSize query int    false "每页条数" default(10)
// @Success      200 {object} response.Response{data=response.PageData{list=[]dto.OrderResponse}}
// @Router       /api/orders [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	h.list(c, true)
}

// ListAll 全部订单（管理员）
// @Summary      全部订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        status   query string false "状态过滤"
// @Param        page     query int    false "页码" default(1)
// @Param        pageSize query int    false "每页条数" default(10)
// @Success      200 {object} response.Response{data=response.PageData{list=[]dto.OrderResponse}}
// @Failure      403 {object} response.ErrorBody "需要管理员权限"
// @Router       /api/orders/all [get]
func (h *OrderHandler) ListAll(c *gin.Context) {
	h.list(c, false)
}

func (h *OrderHandler) list(c *gin.Context, mine bool) {
	var req dto.ListOrdersRequest
	if !bindQuery(c, &req) {
		return
	}
	q := apporder.ListOrdersRequest{Status: req.Status, Page: req.Page, PageSize: req.PageSize}

	var (
		orders []*order.Order
		total  int64
		err    error
	)
	if mine {
		orders, total, err = h.listUseCase.ListMine(c.Request.Context(), middleware.GetUserID(c), q)
	} else {
		orders, total, err = h.listUseCase.ListAll(c.Request.Context(), q)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	response.SuccessWithPage(c, dto.NewOrderList(orders), total, page, pageSize)
}

// Get 订单详情（所有者或管理员）
// @Summary      订单详情
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      403 {object} response.ErrorBody "无权查看"
// @Failure      404 {object} response.ErrorBody "订单不存在"
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	o, err := h.getUseCase.Execute(c.Request.Context(), id, requester(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o))
}

// UpdateStatus 修改订单状态（管理员）
// @Summary      修改订单状态
// @Description  状态只能前进；取消会回补库存；已签收、已取消为终态
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                      true "订单ID"
// @Param        request body dto.UpdateStatusRequest true "目标状态"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      400 {object} response.ErrorBody "状态非法或不允许流转"
// @Failure      404 {object} response.ErrorBody "订单不存在"
// @Router       /api/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.statusUseCase.Execute(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o))
}

// Cancel 取消订单（所有者或管理员）
// @Summary      取消订单
// @Description  仅pending/processing订单可取消，库存回补
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      400 {object} response.ErrorBody "当前状态不可取消"
// @Failure      403 {object} response.ErrorBody "无权操作"
// @Router       /api/orders/{id}/cancel [put]
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	o, err := h.cancelUseCase.Execute(c.Request.Context(), id, requester(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o))
}

// Pay 标记已支付（管理员）
// @Summary      标记已支付
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                  true  "订单ID"
// @Param        request body dto.PayOrderRequest false "支付结果"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      400 {object} response.ErrorBody "订单已支付或已取消"
// @Router       /api/orders/{id}/pay [put]
func (h *OrderHandler) Pay(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.PayOrderRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	o, err := h.payUseCase.Execute(c.Request.Context(), apporder.PayOrderRequest{
		OrderID:      id,
		PaymentID:    req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.EmailAddress,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o))
}

// UpdateShipping 填写物流信息（管理员）
// @Summary      填写物流信息
// @Description  未发货订单进入shipped；不传追踪号时自动生成
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                        true "订单ID"
// @Param        request body dto.UpdateShippingRequest true "物流信息"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      400 {object} response.ErrorBody "订单已取消或已签收"
// @Router       /api/orders/{id}/shipping [put]
func (h *OrderHandler) UpdateShipping(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateShippingRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	o, err := h.shippingUseCase.Execute(c.Request.Context(), apporder.UpdateShippingRequest{
		OrderID:           id,
		TrackingNumber:    req.TrackingNumber,
		EstimatedDelivery: req.EstimatedDelivery,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o))
}

// Delete 删除订单（管理员）
// @Summary      删除订单
// @Description  未完结订单删除前回补库存
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.ErrorBody "订单不存在"
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.deleteUseCase.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Subscribe 订单事件推送（管理员）
// @Summary      订单事件WebSocket
// @Description  浏览器无法在握手时设置Header，Token 通过 ?token= 传递
// @Tags         订单
// @Security     BearerAuth
// @Param        token query string false "Access Token"
// @Success      101 {string} string "Switching Protocols"
// @Router       /api/orders/ws [get]
func (h *OrderHandler) Subscribe(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失败时已写出错误响应
		logger.FromContext(c.Request.Context()).Warn("websocket握手失败", zap.Error(err))
		return
	}
	h.hub.Serve(conn)
}
