package service

import (
	"context"
	"fmt"
	"time"

	"eventgo-ticketing/config"
	"eventgo-ticketing/internal/model"
	"eventgo-ticketing/internal/queue"
	"eventgo-ticketing/internal/repository"
	apperrors "eventgo-ticketing/pkg/app_errors"
	"eventgo-ticketing/pkg/logger"
	"eventgo-ticketing/pkg/monitoring"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ExpireOutcome ExpireIfDue 的三種結果
type ExpireOutcome int

const (
	ExpireOutcomeExpired ExpireOutcome = iota
	ExpireOutcomeNotDue
	ExpireOutcomeAlreadyTerminal
)

type OrderService interface {
	// CreateOrder 預約庫存並建立 PENDING 訂單，兩者同一筆交易。
	// 折扣被拒時整筆交易回滾，已扣的庫存隨之歸還。
	CreateOrder(ctx context.Context, eventID int, req model.CreateOrderRequest) (*model.Order, error)
	GetOrderByID(ctx context.Context, id int) (*model.Order, error)
	ListOrdersByBuyer(ctx context.Context, buyerID int) ([]*model.Order, error)
	// GetOrderTickets 付款完成前不揭露任何兌換碼
	GetOrderTickets(ctx context.Context, orderID int) ([]*model.IssuedTicket, error)
	// GetTicketByCode 未付款訂單的票回 ErrTicketUnpaid
	GetTicketByCode(ctx context.Context, redemptionCode string) (*model.IssuedTicket, error)

	// MarkPaid 將 PENDING 訂單轉為 PAID 並簽發入場券。
	// 已過期的訂單改走過期路徑並回傳 ErrOrderExpired——遲到的成功
	// webhook 絕不能讓過期訂單變成 PAID。重複呼叫回傳 ErrOrderAlreadyTerminal。
	MarkPaid(ctx context.Context, orderID int) ([]*model.IssuedTicket, error)
	MarkFailed(ctx context.Context, orderID int, reason string) error
	ExpireIfDue(ctx context.Context, orderID int, now time.Time) (ExpireOutcome, error)
	// ExpireDueOrders 過期掃描入口，回傳本輪處理掉的訂單數
	ExpireDueOrders(ctx context.Context, now time.Time, limit int) (int, error)

	CheckIn(ctx context.Context, eventID int, redemptionCode string) (*model.CheckInResult, error)
}

type OrderServiceImpl struct {
	pool           *pgxpool.Pool
	repository     repository.OrderRepository
	ticketTypeRepo repository.TicketTypeRepository
	issuedRepo     repository.IssuedTicketRepository
	discountSvc    DiscountService
	loyaltySvc     LoyaltyService
	notifications  queue.NotificationQueue
	cfg            config.BookingConfig
	log            *zap.Logger
}

func NewOrderService(
	pool *pgxpool.Pool,
	orderRepository repository.OrderRepository,
	ticketTypeRepo repository.TicketTypeRepository,
	issuedRepo repository.IssuedTicketRepository,
	discountSvc DiscountService,
	loyaltySvc LoyaltyService,
	notifications queue.NotificationQueue,
	cfg config.BookingConfig,
) OrderService {
	return &OrderServiceImpl{
		pool:           pool,
		repository:     orderRepository,
		ticketTypeRepo: ticketTypeRepo,
		issuedRepo:     issuedRepo,
		discountSvc:    discountSvc,
		loyaltySvc:     loyaltySvc,
		notifications:  notifications,
		cfg:            cfg,
		log:            logger.WithComponent("order"),
	}
}

func (s *OrderServiceImpl) CreateOrder(ctx context.Context, eventID int, req model.CreateOrderRequest) (*model.Order, error) {
	method := model.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 鎖順序固定：先 ticket_types 再 orders，避免死鎖
	ticketType, err := s.ticketTypeRepo.FindByIDWithLock(ctx, tx, req.TicketTypeID)
	if err != nil {
		monitoring.RecordBooking("rejected")
		return nil, err
	}
	if ticketType.EventID != eventID {
		monitoring.RecordBooking("rejected")
		return nil, apperrors.ErrTicketTypeNotFound
	}

	// 先預約庫存，fail fast；此時尚未有任何訂單 row
	if err := s.ticketTypeRepo.DecrementStock(ctx, tx, ticketType.ID, req.Quantity); err != nil {
		monitoring.RecordBooking("insufficient_stock")
		return nil, err
	}

	now := time.Now().UTC()
	percentOff := 0
	var discountCode *string
	var discountPercent *int

	if req.DiscountCode != "" {
		rank, err := s.loyaltySvc.Rank(ctx, req.BuyerID)
		if err != nil {
			return nil, err
		}
		// 折扣評估失敗 -> 回滾交易，扣掉的庫存一併還原
		percentOff, err = s.discountSvc.Evaluate(ctx, req.DiscountCode, eventID, rank, now)
		if err != nil {
			monitoring.RecordBooking("discount_rejected")
			return nil, err
		}
		discountCode = &req.DiscountCode
		discountPercent = &percentOff
	}

	total := ApplyDiscount(ticketType.UnitPrice, req.Quantity, percentOff)

	order := &model.Order{
		BuyerID:         req.BuyerID,
		TicketTypeID:    ticketType.ID,
		Quantity:        req.Quantity,
		UnitPrice:       ticketType.UnitPrice,
		DiscountCode:    discountCode,
		DiscountPercent: discountPercent,
		TotalAmount:     total,
		PaymentMethod:   method,
		Status:          model.OrderStatusPending,
		Active:          true,
		ExpiresAt:       now.Add(s.cfg.PaymentWindow),
	}

	created, err := s.repository.Create(ctx, tx, order)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	monitoring.RecordBooking("created")
	s.log.Info("order created",
		zap.Int("order_id", created.ID),
		zap.Int("buyer_id", created.BuyerID),
		zap.Int("ticket_type_id", created.TicketTypeID),
		zap.Int("quantity", created.Quantity),
		zap.Time("expires_at", created.ExpiresAt))

	return created, nil
}

func (s *OrderServiceImpl) GetOrderByID(ctx context.Context, id int) (*model.Order, error) {
	return s.repository.FindByID(ctx, id)
}

func (s *OrderServiceImpl) ListOrdersByBuyer(ctx context.Context, buyerID int) ([]*model.Order, error) {
	return s.repository.ListByBuyerID(ctx, buyerID)
}

func (s *OrderServiceImpl) GetOrderTickets(ctx context.Context, orderID int) ([]*model.IssuedTicket, error) {
	order, err := s.repository.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPaid {
		return []*model.IssuedTicket{}, nil
	}
	return s.issuedRepo.ListByOrderID(ctx, orderID)
}

func (s *OrderServiceImpl) GetTicketByCode(ctx context.Context, redemptionCode string) (*model.IssuedTicket, error) {
	ticket, err := s.issuedRepo.FindByCode(ctx, redemptionCode)
	if err != nil {
		return nil, err
	}
	order, err := s.repository.FindByID(ctx, ticket.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPaid {
		return nil, apperrors.ErrTicketUnpaid
	}
	return ticket, nil
}

func (s *OrderServiceImpl) MarkPaid(ctx context.Context, orderID int) ([]*model.IssuedTicket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 狀態與期限檢查必須在 row lock 之後：webhook 與過期掃描在此序列化
	order, err := s.repository.FindByIDWithLock(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status.IsTerminal() {
		return nil, apperrors.ErrOrderAlreadyTerminal
	}

	now := time.Now().UTC()
	if order.IsExpired(now) {
		// 庫存可能已經賣給別人，遲到的成功不能落地
		if err := s.expireLocked(ctx, tx, order); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		monitoring.RecordExpired(1)
		s.notify(order.BuyerID, fmt.Sprintf("Order #%d expired before payment completed", order.ID))
		return nil, apperrors.ErrOrderExpired
	}

	if _, err := s.repository.UpdateStatus(ctx, tx, order.ID, model.OrderStatusPaid, true); err != nil {
		return nil, err
	}

	tickets := make([]*model.IssuedTicket, 0, order.Quantity)
	for seq := 1; seq <= order.Quantity; seq++ {
		tickets = append(tickets, &model.IssuedTicket{
			OrderID:        order.ID,
			TicketTypeID:   order.TicketTypeID,
			RedemptionCode: redemptionCode(order.ID, order.TicketTypeID, seq),
		})
	}
	if err := s.issuedRepo.CreateBatch(ctx, tx, tickets); err != nil {
		// 唯一索引衝突代表產碼有 bug，整筆回滾
		return nil, fmt.Errorf("issue tickets for order %d: %w", order.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	monitoring.RecordTicketsIssued(len(tickets))
	s.loyaltySvc.Invalidate(ctx, order.BuyerID)
	s.log.Info("order paid",
		zap.Int("order_id", order.ID),
		zap.Int("tickets_issued", len(tickets)))
	s.notify(order.BuyerID, fmt.Sprintf("Order #%d paid, %d ticket(s) issued", order.ID, len(tickets)))

	return tickets, nil
}

func (s *OrderServiceImpl) MarkFailed(ctx context.Context, orderID int, reason string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	order, err := s.repository.FindByIDWithLock(ctx, tx, orderID)
	if err != nil {
		return err
	}

	if order.Status.IsTerminal() {
		return apperrors.ErrOrderAlreadyTerminal
	}

	if err := s.expireLocked(ctx, tx, order); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.log.Info("order failed",
		zap.Int("order_id", order.ID),
		zap.String("reason", reason))
	s.notify(order.BuyerID, fmt.Sprintf("Order #%d failed: %s", order.ID, reason))

	return nil
}

func (s *OrderServiceImpl) ExpireIfDue(ctx context.Context, orderID int, now time.Time) (ExpireOutcome, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ExpireOutcomeNotDue, err
	}
	defer tx.Rollback(ctx)

	order, err := s.repository.FindByIDWithLock(ctx, tx, orderID)
	if err != nil {
		return ExpireOutcomeNotDue, err
	}

	if order.Status.IsTerminal() {
		return ExpireOutcomeAlreadyTerminal, nil
	}
	if !order.IsExpired(now) {
		return ExpireOutcomeNotDue, nil
	}

	if err := s.expireLocked(ctx, tx, order); err != nil {
		return ExpireOutcomeNotDue, err
	}

	if err := tx.Commit(ctx); err != nil {
		return ExpireOutcomeNotDue, err
	}

	s.log.Info("order expired", zap.Int("order_id", order.ID))
	s.notify(order.BuyerID, fmt.Sprintf("Order #%d expired before payment completed", order.ID))

	return ExpireOutcomeExpired, nil
}

func (s *OrderServiceImpl) ExpireDueOrders(ctx context.Context, now time.Time, limit int) (int, error) {
	ids, err := s.repository.ListExpiredPending(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		outcome, err := s.ExpireIfDue(ctx, id, now)
		if err != nil {
			s.log.Warn("expire sweep failed for order", zap.Int("order_id", id), zap.Error(err))
			continue
		}
		if outcome == ExpireOutcomeExpired {
			expired++
		}
	}

	if expired > 0 {
		monitoring.RecordExpired(expired)
	}
	return expired, nil
}

// expireLocked 終結一張已持鎖的 PENDING 訂單並歸還庫存。
// active=false 保證庫存只會歸還這一次。
func (s *OrderServiceImpl) expireLocked(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	if err := s.ticketTypeRepo.IncrementStock(ctx, tx, order.TicketTypeID, order.Quantity); err != nil {
		return err
	}
	if _, err := s.repository.UpdateStatus(ctx, tx, order.ID, model.OrderStatusFailed, false); err != nil {
		return err
	}
	return nil
}

func (s *OrderServiceImpl) CheckIn(ctx context.Context, eventID int, redemptionCode string) (*model.CheckInResult, error) {
	ticket, err := s.issuedRepo.FindByCodeForEvent(ctx, eventID, redemptionCode)
	if err != nil {
		monitoring.RecordCheckIn("not_found")
		return nil, err
	}

	order, err := s.repository.FindByID(ctx, ticket.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPaid {
		monitoring.RecordCheckIn("unpaid")
		return nil, apperrors.ErrTicketUnpaid
	}

	updated, err := s.issuedRepo.MarkCheckedIn(ctx, ticket.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	result := &model.CheckInResult{
		OrderID:          ticket.OrderID,
		RedemptionCode:   ticket.RedemptionCode,
		AlreadyCheckedIn: !updated,
	}
	if updated {
		monitoring.RecordCheckIn("checked_in")
	} else {
		monitoring.RecordCheckIn("repeat")
	}
	return result, nil
}

// redemptionCode 兌換碼由訂單、票種與序號導出，配合唯一索引保證不撞碼
func redemptionCode(orderID, ticketTypeID, seq int) string {
	return fmt.Sprintf("QR_%d_%d_%d", orderID, ticketTypeID, seq)
}

// notify fire-and-forget：通知失敗不影響訂單流程
func (s *OrderServiceImpl) notify(buyerID int, message string) {
	if s.notifications == nil {
		return
	}
	n := &model.Notification{
		BuyerID:   buyerID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	// 使用 context.Background()：訂單交易已提交，不跟隨請求生命週期
	if err := s.notifications.Publish(context.Background(), n); err != nil {
		s.log.Warn("publish notification failed", zap.Int("buyer_id", buyerID), zap.Error(err))
	}
}
