package order

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xiebiao/techhaven/internal/domain/cart"
	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/internal/domain/order"
	"github.com/xiebiao/techhaven/internal/domain/user"
	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/gormdb"
	"github.com/xiebiao/techhaven/internal/infrastructure/persistence/gormdb/gormdbtest"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
	"github.com/xiebiao/techhaven/pkg/metrics"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []order.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt order.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []order.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]order.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db         *gorm.DB
	laptops    laptop.Repository
	orders     order.Repository
	carts      cart.Repository
	publisher  *recordingPublisher
	metrics    *metrics.Metrics
	create     *CreateOrderUseCase
	status     *UpdateOrderStatusUseCase
	cancel     *CancelOrderUseCase
	pay        *PayOrderUseCase
	shipping   *UpdateShippingUseCase
	remove     *DeleteOrderUseCase
	get        *GetOrderUseCase
	list       *ListOrdersUseCase
	buyer      *user.User
	otherBuyer *user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := gormdbtest.NewDB(t)
	reg := prometheus.NewRegistry()
	f := &fixture{
		db:        db,
		laptops:   gormdb.NewLaptopRepository(db),
		orders:    gormdb.NewOrderRepository(db),
		carts:     gormdb.NewCartRepository(db),
		publisher: &recordingPublisher{},
		metrics:   metrics.New(reg, reg),
	}
	tx := gormdb.NewTxManager(db)
	pricing, err := order.NewPricing("0.08", 1500, 50000)
	require.NoError(t, err)
	cache := laptop.NopCache{}

	f.create = NewCreateOrderUseCase(f.orders, f.laptops, f.carts, tx, pricing, f.publisher, cache, f.metrics)
	f.status = NewUpdateOrderStatusUseCase(f.orders, f.laptops, tx, f.publisher, cache, f.metrics)
	f.cancel = NewCancelOrderUseCase(f.orders, f.laptops, tx, f.publisher, cache, f.metrics)
	f.pay = NewPayOrderUseCase(f.orders, f.laptops, tx, f.publisher, cache, f.metrics)
	f.shipping = NewUpdateShippingUseCase(f.orders, f.laptops, tx, f.publisher, cache, f.metrics)
	f.remove = NewDeleteOrderUseCase(f.orders, f.laptops, tx, f.publisher, cache, f.metrics)
	f.get = NewGetOrderUseCase(f.orders)
	f.list = NewListOrdersUseCase(f.orders)

	f.buyer = gormdbtest.SeedUser(t, db, "Ann", "ann@example.com", user.RoleUser)
	f.otherBuyer = gormdbtest.SeedUser(t, db, "Bob", "bob@example.com", user.RoleUser)
	return f
}

func (f *fixture) stock(t *testing.T, id uint) (int, bool) {
	t.Helper()
	l, err := f.laptops.FindByID(context.Background(), id)
	require.NoError(t, err)
	return l.Stock, l.IsAvailable
}

func address() order.ShippingAddress {
	return order.ShippingAddress{FullName: "Ann Lee", Address: "1 Main St", City: "Austin", PostalCode: "73301", Country: "US"}
}

func checkout(userID uint, items ...CreateOrderItem) CreateOrderRequest {
	return CreateOrderRequest{
		UserID:          userID,
		Items:           items,
		ShippingAddress: address(),
		PaymentMethod:   "paypal",
	}
}

func TestCreateOrder_DecrementsStockAndClearsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := gormdbtest.SeedLaptop(t, f.db, "XPS13", 99900, 5)

	c := cart.NewCart(f.buyer.ID)
	require.NoError(t, c.AddItem(l.ID, 1, cart.WarrantyNone, cart.LaptopState{Price: l.Price, Stock: l.Stock, Available: true}))
	require.NoError(t, f.carts.Save(ctx, c))

	o, err := f.create.Execute(ctx, checkout(f.buyer.ID, CreateOrderItem{LaptopID: l.ID, Quantity: 3, Price: 99900}))
	require.NoError(t, err)

	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, "XPS13", o.Items[0].Name, "订单项保存商品快照")
	assert.Equal(t, int64(299700), o.Totals.Subtotal)
	assert.Equal(t, int64(23976), o.Totals.Tax)
	assert.Zero(t, o.Totals.ShippingCost)
	assert.Equal(t, int64(323676), o.Totals.TotalPrice)

	stock, available := f.stock(t, l.ID)
	assert.Equal(t, 2, stock)
	assert.True(t, available)

	emptied, err := f.carts.FindByUserID(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, emptied.Items, "下单后清空购物车")

	assert.Equal(t, []order.EventType{order.EventCreated}, f.publisher.types())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.OrdersCreated))
}

func TestCreateOrder_LastUnitMarksUnavailable(t *testing.T) {
	f := newFixture(t)
	l := gormdbtest.SeedLaptop(t, f.db, "Blade", 249900, 2)

	_, err := f.create.Execute(context.Background(), checkout(f.buyer.ID, CreateOrderItem{LaptopID: l.ID, Quantity: 2, Price: 249900}))
	require.NoError(t, err)

	stock, available := f.stock(t, l.ID)
	assert.Zero(t, stock)
	assert.False(t, available, "库存为0时不可售")
}

func TestCreateOrder_FailureRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := gormdbtest.SeedLaptop(t, f.db, "ThinkPad", 149900, 5)
	second := gormdbtest.SeedLaptop(t, f.db, "Zenbook", 89900, 1)

	_, err := f.create.Execute(ctx, checkout(f.buyer.ID,
		CreateOrderItem{LaptopID: first.ID, Quantity: 2, Price: 149900},
		CreateOrderItem{LaptopID: second.ID, Quantity: 2, Price: 89900},
	))
	require.ErrorIs(t, err, apperrors.ErrInsufficientStock)

	stock, _ := f.stock(t, first.ID)
	assert.Equal(t, 5, stock, "第一件商品的扣减必须回滚")
	stock, _ = f.stock(t, second.ID)
	assert.Equal(t, 1, stock)

	_, total, err := f.list.ListAll(ctx, ListOrdersRequest{})
	require.NoError(t, err)
	assert.Zero(t, total, "不能产生半截订单")
	assert.Empty(t, f.publisher.types())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CheckoutFailures.WithLabelValues("insufficient_stock")))
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := gormdbtest.SeedLaptop(t, f.db, "Spectre", 139900, 3)

	_, err := f.create.Execute(ctx, checkout(f.buyer.ID, CreateOrderItem{LaptopID: l.ID, Quantity: 1, Price: 100}))
	assert.ErrorIs(t, err, apperrors.ErrPriceMismatch)

	_, err = f.create.Execute(ctx, checkout(f.buyer.ID, CreateOrderItem{LaptopID: 9999, Quantity: 1, Price: 100}))
	assert.ErrorIs(t, err, apperrors.ErrLaptopNotFound)

	_, err = f.create.Execute(ctx, checkout(f.buyer.ID))
	assert.ErrorIs(t, err, apperrors.ErrEmptyOrder)

	_, err = f.create.Execute(ctx, checkout(f.buyer.ID, CreateOrderItem{LaptopID: l.ID, Quantity: 0, Price: 139900}))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidParams))

	req := checkout(f.buyer.ID, CreateOrderItem{LaptopID: l.ID, Quantity: 1, Price: 139900})
	req.PaymentMethod = "bitcoin"
	_, err = f.create.Execute(ctx, req)
	assert.ErrorIs(t, err, order.ErrInvalidPayment)

	stock, _ := f.stock(t, l.ID)
	assert.Equal(t, 3, stock)
}

func TestCreateOrder_ClientTotalsIgnored(t *testing.T) {
	f := newFixture(t)
	l := gormdbtest.SeedLaptop(t, f.db, "Aspire", 1999, 3)

	req := checkout(f.buyer.ID, CreateOrderItem{LaptopID: l.ID, Quantity: 1, Price: 1999})
	req.ClientTotals = &order.Totals{Subtotal: 1, Tax: 0, ShippingCost: 0, TotalPrice: 1}
	o, err := f.create.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, order.Totals{Subtotal: 1999, Tax: 160, ShippingCost: 1500, TotalPrice: 3659}, o.Totals)
}

func TestCreateOrder_ConcurrentLastUnit(t *testing.T) {
	f := newFixture(t)
	l := gormdbtest.SeedLaptop(t, f.db, "Surface", 119900, 1)

	const buyers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.create.Execute(context.Background(), checkout(f.buyer.ID, CreateOrderItem{LaptopID: l.ID, Quantity: 1, Price: 119900}))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if assert.ErrorIs(t, err, apperrors.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded, "最后一件只能卖出一次")
	assert.Equal(t, buyers-1, rejected)
	stock, available := f.stock(t, l.ID)
	assert.Zero(t, stock)
	assert.False(t, available)
}

func TestCancelOrder_RestocksOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := gormdbtest.SeedLaptop(t, f.db, "MacBook", 129900, 5)

	o, err := f.create.Execute(ctx, checkout(f.buyer.ID, CreateOrderItem{LaptopID: l.ID, Quantity: 3, Price: 129900}))
	require.NoError(t, err)
	stock, _ := f.stock(t, l.ID)
	require.Equal(t, 2, stock)

	_, err = f.cancel.Execute(ctx, o.ID, Requester{UserID: f.otherBuyer.ID})
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)

	cancelled, err := f.cancel.Execute(ctx, o.ID, Requester{UserID: f.buyer.ID})
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)
	stock, available := f.stock(t, l.ID)
	assert.Equal(t, 5, stock)
	assert.True(t, available)

	_, err = f.cancel.Execute(ctx, o.ID, Requester{UserID: f.buyer.ID})
	require.NoError(t, err, "重复取消为空操作")
	stock, _ = f.stock(t, l.ID)
	assert.Equal(t, 5, stock, "重复取消不能再次回补")

	assert.Equal(t, float64(3), testutil.ToFloat64(f.metrics.StockRestoredUnits))
	assert.Equal(t, []order.EventType{order.EventCreated, order.EventStatusChanged}, f.publisher.types())
}

func TestCancelOrder_SoldOutBecomesAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := gormdbtest.SeedLaptop(t, f.db, "Predator", 179900, 1)

	o, err := f.create.Execute(ctx, checkout(f.buyer.ID, CreateOrderItem{LaptopID: l.ID, Quantity: 1, Price: 179900}))
	require.NoError(t, err)
	_, available := f.stock(t, l.ID)
	require.False(t, available)

	_, err = f.cancel.Execute(ctx, o.ID, Requester{UserID: f.otherBuyer.ID, IsAdmin: true})
	require.NoError(t, err, "管理员可以取消任何订单")
	stock, available := f.stock(t, l.ID)
	assert.Equal(t, 1, stock)
	assert.True(t, available)
}

func TestCancelOrder_ShippedRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := gormdbtest.SeedLaptop(t, f.db, "Galaxy", 99900, 4)

	o, err := f.create.Execute(ctx, checkout(f.buyer.ID, CreateOrderItem{LaptopID: l.ID, Quantity: 1, Price: 99900}))
	require.NoError(t, err)
	_, err = f.status.Execute(ctx, o.ID, "shipped")
	require.NoError(t, err)

	_, err = f.cancel.Execute(ctx, o.ID, Requester{UserID: f.buyer.ID})
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrderState)
	stock, _ := f.stock(t, l.ID)
	assert.Equal(t, 3, stock)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := gormdbtest.SeedLaptop(t, f.db, "Legion", 159900, 4)

	o, err := f.create.Execute(ctx, checkout(f.buyer.ID, CreateOrderItem{LaptopID: l.ID, Quantity: 1, Price: 159900}))
	require.NoError(t, err)

	_, err = f.status.Execute(ctx, o.ID, "refunded")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrderStatus)

	delivered, err := f.status.Execute(ctx, o.ID, "delivered")
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	require.NotNil(t, delivered.DeliveredAt)

	stored, err := f.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, stored.Status)
	assert.True(t, stored.IsDelivered)

	_, err = f.status.Execute(ctx, o.ID, "processing")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrderState)

	_, err = f.status.Execute(ctx, 9999, "shipped")
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)

	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.OrderTransitions.WithLabelValues("pending", "delivered")))
}

func TestPayAndShip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := gormdbtest.SeedLaptop(t, f.db, "Chromebook", 29900, 4)

	o, err := f.create.Execute(ctx, checkout(f.buyer.ID, CreateOrderItem{LaptopID: l.ID, Quantity: 1, Price: 29900}))
	require.NoError(t, err)

	paid, err := f.pay.Execute(ctx, PayOrderRequest{OrderID: o.ID, PaymentID: "PAY-1", Status: "COMPLETED"})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.Equal(t, order.StatusProcessing, paid.Status)

	_, err = f.pay.Execute(ctx, PayOrderRequest{OrderID: o.ID, PaymentID: "PAY-2"})
	assert.ErrorIs(t, err, apperrors.ErrOrderAlreadyPaid)

	shipped, err := f.shipping.Execute(ctx, UpdateShippingRequest{OrderID: o.ID})
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, shipped.Status)
	assert.NotEmpty(t, shipped.TrackingNumber, "未填写时生成内部追踪号")

	stored, err := f.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PaymentResult)
	assert.Equal(t, "PAY-1", stored.PaymentResult.ID)
	assert.Equal(t, shipped.TrackingNumber, stored.TrackingNumber)
}

func TestDeleteOrder_RestocksLiveOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := gormdbtest.SeedLaptop(t, f.db, "Swift", 69900, 3)

	live, err := f.create.Execute(ctx, checkout(f.buyer.ID, CreateOrderItem{LaptopID: l.ID, Quantity: 2, Price: 69900}))
	require.NoError(t, err)
	require.NoError(t, f.remove.Execute(ctx, live.ID))

	stock, _ := f.stock(t, l.ID)
	assert.Equal(t, 3, stock)
	_, err = f.orders.FindByID(ctx, live.ID)
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)

	done, err := f.create.Execute(ctx, checkout(f.buyer.ID, CreateOrderItem{LaptopID: l.ID, Quantity: 1, Price: 69900}))
	require.NoError(t, err)
	_, err = f.status.Execute(ctx, done.ID, "delivered")
	require.NoError(t, err)
	require.NoError(t, f.remove.Execute(ctx, done.ID))

	stock, _ = f.stock(t, l.ID)
	assert.Equal(t, 2, stock, "已签收订单删除不回补库存")
}

func TestGetAndListOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := gormdbtest.SeedLaptop(t, f.db, "Envy", 109900, 10)

	mine, err := f.create.Execute(ctx, checkout(f.buyer.ID, CreateOrderItem{LaptopID: l.ID, Quantity: 1, Price: 109900}))
	require.NoError(t, err)
	_, err = f.create.Execute(ctx, checkout(f.otherBuyer.ID, CreateOrderItem{LaptopID: l.ID, Quantity: 1, Price: 109900}))
	require.NoError(t, err)

	_, err = f.get.Execute(ctx, mine.ID, Requester{UserID: f.otherBuyer.ID})
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)
	got, err := f.get.Execute(ctx, mine.ID, Requester{UserID: f.otherBuyer.ID, IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, mine.OrderNo, got.OrderNo)

	orders, total, err := f.list.ListMine(ctx, f.buyer.ID, ListOrdersRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, mine.ID, orders[0].ID)

	_, total, err = f.list.ListAll(ctx, ListOrdersRequest{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, _, err = f.list.ListAll(ctx, ListOrdersRequest{Status: "lost"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrderStatus)
}
