package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/infrastructure/models"
)

// TicketRepository implements support ticket data operations
type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, t *entities.SupportTicket) error {
	m := &models.SupportTicket{
		ID:        t.ID,
		UserID:    t.UserID,
		Subject:   t.Subject,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *TicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.SupportTicket, error) {
	var m models.SupportTicket
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return ticketToEntity(&m), nil
}

// ListByUser returns the user's tickets newest first.
func (r *TicketRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.SupportTicket, error) {
	return r.list(GetDB(ctx, r.db).Where("user_id = ?", userID))
}

// ListAll returns every ticket newest first.
func (r *TicketRepository) ListAll(ctx context.Context) ([]*entities.SupportTicket, error) {
	return r.list(GetDB(ctx, r.db))
}

func (r *TicketRepository) CountByStatus(ctx context.Context, status entities.TicketStatus) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&models.SupportTicket{}).Where("status = ?", string(status)).Count(&n).Error
	return n, err
}

func (r *TicketRepository) list(q *gorm.DB) ([]*entities.SupportTicket, error) {
	var rows []models.SupportTicket
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]*entities.SupportTicket, 0, len(rows))
	for i := range rows {
		items = append(items, ticketToEntity(&rows[i]))
	}
	return items, nil
}

func ticketToEntity(m *models.SupportTicket) *entities.SupportTicket {
	return &entities.SupportTicket{
		ID:        m.ID,
		UserID:    m.UserID,
		Subject:   m.Subject,
		Status:    entities.TicketStatus(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

// TicketMessageRepository implements ticket message data operations
type TicketMessageRepository struct {
	db *gorm.DB
}

func NewTicketMessageRepository(db *gorm.DB) *TicketMessageRepository {
	return &TicketMessageRepository{db: db}
}

func (r *TicketMessageRepository) Create(ctx context.Context, msg *entities.TicketMessage) error {
	m := &models.TicketMessage{
		ID:        msg.ID,
		TicketID:  msg.TicketID,
		SenderID:  msg.SenderID,
		Message:   msg.Message,
		CreatedAt: msg.CreatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// ListByTicket returns the thread oldest first.
func (r *TicketMessageRepository) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]*entities.TicketMessage, error) {
	var rows []models.TicketMessage
	if err := GetDB(ctx, r.db).Where("ticket_id = ?", ticketID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]*entities.TicketMessage, 0, len(rows))
	for _, m := range rows {
		items = append(items, &entities.TicketMessage{
			ID:        m.ID,
			TicketID:  m.TicketID,
			SenderID:  m.SenderID,
			Message:   m.Message,
			CreatedAt: m.CreatedAt,
		})
	}
	return items, nil
}
