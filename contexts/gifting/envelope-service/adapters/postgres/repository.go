package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"redpacket/contexts/gifting/envelope-service/domain/entities"
	domainerrors "redpacket/contexts/gifting/envelope-service/domain/errors"
	"redpacket/contexts/gifting/envelope-service/ports"
	"redpacket/internal/shared/events"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
)

// Repository backs the durable gifting ports: ledger accounts, festive round
// dedup, settlement archive, and the announcement outbox. Active pools never
// touch postgres.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the tables this repository owns.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(
		&ledgerAccountModel{},
		&festiveRoundModel{},
		&festiveInstanceModel{},
		&festiveClaimModel{},
		&settlementModel{},
		&outboxModel{},
	)
}

func (r *Repository) CheckAndReserve(ctx context.Context, userID string, amount int64, currency string) error {
	if amount <= 0 {
		return domainerrors.ErrInvalidSeedRequest
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row ledgerAccountModel
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND currency = ?", userID, currency).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no %s account", domainerrors.ErrInsufficientFunds, currency)
			}
			return err
		}
		if row.Balance < amount {
			return fmt.Errorf("%w: balance %d is below %d", domainerrors.ErrInsufficientFunds, row.Balance, amount)
		}

		result := tx.
			Model(&ledgerAccountModel{}).
			Where("user_id = ? AND currency = ?", userID, currency).
			Update("balance", gorm.Expr("balance - ?", amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrInsufficientFunds
		}
		return nil
	})
}

func (r *Repository) Credit(ctx context.Context, userID string, amount int64, currency string) error {
	if amount < 0 {
		return domainerrors.ErrInvalidSeedRequest
	}
	if amount == 0 {
		return nil
	}

	row := ledgerAccountModel{
		UserID:   userID,
		Currency: currency,
		Balance:  amount,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "currency"}},
			DoUpdates: clause.Assignments(map[string]any{"balance": gorm.Expr("ledger_accounts.balance + ?", amount)}),
		}).
		Create(&row).
		Error
}

func (r *Repository) StartRound(ctx context.Context, roundID string, startedAt time.Time) error {
	row := festiveRoundModel{
		RoundID:   roundID,
		StartedAt: startedAt.UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "round_id"}},
			DoNothing: true,
		}).
		Create(&row).
		Error
	if err != nil && isUniqueViolation(err) {
		return nil
	}
	return err
}

func (r *Repository) RegisterInstance(ctx context.Context, roundID string, groupID string) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&festiveRoundModel{}).
		Where("round_id = ?", roundID).
		Count(&count).
		Error; err != nil {
		return err
	}
	if count == 0 {
		return domainerrors.ErrRoundNotFound
	}

	row := festiveInstanceModel{RoundID: roundID, GroupID: groupID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "round_id"}, {Name: "group_id"}},
			DoNothing: true,
		}).
		Create(&row).
		Error
	if err != nil && isUniqueViolation(err) {
		return nil
	}
	return err
}

func (r *Repository) UnregisterInstance(ctx context.Context, roundID string, groupID string) (int, error) {
	var remaining int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("round_id = ? AND group_id = ?", roundID, groupID).
			Delete(&festiveInstanceModel{}).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&festiveInstanceModel{}).
			Where("round_id = ?", roundID).
			Count(&remaining).
			Error; err != nil {
			return err
		}
		if remaining == 0 {
			return deleteRound(tx, roundID)
		}
		return nil
	})
	return int(remaining), err
}

func (r *Repository) TryClaimRound(ctx context.Context, roundID string, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&festiveRoundModel{}).
		Where("round_id = ?", roundID).
		Count(&count).
		Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, domainerrors.ErrRoundNotFound
	}

	row := festiveClaimModel{
		RoundID:   roundID,
		UserID:    userID,
		ClaimedAt: time.Now().UTC(),
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "round_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) ReleaseRoundClaim(ctx context.Context, roundID string, userID string) error {
	return r.db.WithContext(ctx).
		Where("round_id = ? AND user_id = ?", roundID, userID).
		Delete(&festiveClaimModel{}).
		Error
}

func (r *Repository) EndRound(ctx context.Context, roundID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteRound(tx, roundID)
	})
}

func (r *Repository) ExpireRounds(ctx context.Context, cutoff time.Time) (int, error) {
	var stale []festiveRoundModel
	if err := r.db.WithContext(ctx).
		Where("started_at < ?", cutoff.UTC()).
		Find(&stale).
		Error; err != nil {
		return 0, err
	}

	expired := 0
	for _, round := range stale {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return deleteRound(tx, round.RoundID)
		})
		if err != nil {
			return expired, err
		}
		expired++
	}
	return expired, nil
}

func deleteRound(tx *gorm.DB, roundID string) error {
	if err := tx.Where("round_id = ?", roundID).Delete(&festiveClaimModel{}).Error; err != nil {
		return err
	}
	if err := tx.Where("round_id = ?", roundID).Delete(&festiveInstanceModel{}).Error; err != nil {
		return err
	}
	return tx.Where("round_id = ?", roundID).Delete(&festiveRoundModel{}).Error
}

func (r *Repository) RecordSettlement(ctx context.Context, result entities.SettlementResult) error {
	claimants, err := json.Marshal(result.Claimants)
	if err != nil {
		return err
	}
	row := settlementModel{
		PoolID:         result.PoolID,
		GroupID:        result.GroupID,
		SeederID:       result.SeederID,
		Name:           result.Name,
		FestiveRoundID: result.FestiveRoundID,
		TotalClaimed:   result.TotalClaimed,
		Returned:       result.Returned,
		Claimants:      claimants,
		SettledAt:      result.SettledAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		// Settlement is idempotent upstream; a duplicate row means the
		// result was already archived.
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

func (r *Repository) ListSettlements(ctx context.Context, groupID string, limit int, offset int) ([]entities.SettlementResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	tx := r.db.WithContext(ctx).Model(&settlementModel{})
	if groupID != "" {
		tx = tx.Where("group_id = ?", groupID)
	}

	var rows []settlementModel
	if err := tx.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "settled_at"}, Desc: true}).
		Offset(offset).
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.SettlementResult, 0, len(rows))
	for _, row := range rows {
		item, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository) AppendAnnouncement(ctx context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

func (r *Repository) ListPendingAnnouncements(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkAnnouncementSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":  outboxStatusSent,
			"sent_at": sentAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPoolNotFound
	}
	return nil
}

type ledgerAccountModel struct {
	UserID   string `gorm:"column:user_id;primaryKey"`
	Currency string `gorm:"column:currency;primaryKey"`
	Balance  int64  `gorm:"column:balance"`
}

func (ledgerAccountModel) TableName() string {
	return "ledger_accounts"
}

type festiveRoundModel struct {
	RoundID   string    `gorm:"column:round_id;primaryKey"`
	StartedAt time.Time `gorm:"column:started_at"`
}

func (festiveRoundModel) TableName() string {
	return "festive_rounds"
}

type festiveInstanceModel struct {
	RoundID string `gorm:"column:round_id;primaryKey"`
	GroupID string `gorm:"column:group_id;primaryKey"`
}

func (festiveInstanceModel) TableName() string {
	return "festive_round_instances"
}

type festiveClaimModel struct {
	RoundID   string    `gorm:"column:round_id;primaryKey"`
	UserID    string    `gorm:"column:user_id;primaryKey"`
	ClaimedAt time.Time `gorm:"column:claimed_at"`
}

func (festiveClaimModel) TableName() string {
	return "festive_round_claims"
}

type settlementModel struct {
	PoolID         string    `gorm:"column:pool_id;primaryKey"`
	GroupID        string    `gorm:"column:group_id"`
	SeederID       string    `gorm:"column:seeder_id"`
	Name           string    `gorm:"column:name"`
	FestiveRoundID string    `gorm:"column:festive_round_id"`
	TotalClaimed   int64     `gorm:"column:total_claimed"`
	Returned       int64     `gorm:"column:returned"`
	Claimants      []byte    `gorm:"column:claimants"`
	SettledAt      time.Time `gorm:"column:settled_at"`
}

func (settlementModel) TableName() string {
	return "pool_settlements"
}

func (m settlementModel) toEntity() (entities.SettlementResult, error) {
	var claimants []entities.ClaimEntry
	if len(m.Claimants) > 0 {
		if err := json.Unmarshal(m.Claimants, &claimants); err != nil {
			return entities.SettlementResult{}, err
		}
	}
	return entities.SettlementResult{
		PoolID:         m.PoolID,
		GroupID:        m.GroupID,
		SeederID:       m.SeederID,
		Name:           m.Name,
		FestiveRoundID: m.FestiveRoundID,
		TotalClaimed:   m.TotalClaimed,
		Returned:       m.Returned,
		Claimants:      claimants,
		SettledAt:      m.SettledAt.UTC(),
	}, nil
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string {
	return "gifting_outbox"
}

// SystemClock and UUIDGenerator satisfy the time/id ports for postgres-backed
// wiring.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
