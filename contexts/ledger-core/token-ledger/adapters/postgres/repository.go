package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"karat/contexts/ledger-core/token-ledger/domain/entities"
	domainerrors "karat/contexts/ledger-core/token-ledger/domain/errors"
	"karat/contexts/ledger-core/token-ledger/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository mirrors applied ledger records into postgres for external
// indexers. It is write-mostly: replays of the same record ID are
// idempotent no-ops.
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

func (r *Repository) SaveTransferRecord(ctx context.Context, record entities.TransferRecord) error {
	if strings.TrimSpace(record.ID) == "" {
		return domainerrors.ErrInvalidLedgerInput
	}
	row := transferModel{
		ID:         strings.TrimSpace(record.ID),
		FromAcct:   strings.TrimSpace(record.From),
		ToAcct:     strings.TrimSpace(record.To),
		Value:      record.Value,
		Kind:       string(record.Kind),
		Spender:    strings.TrimSpace(record.Spender),
		OccurredAt: record.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return r.logError("ledger_repo_save_transfer_failed", err,
			"transfer_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) SaveApprovalRecord(ctx context.Context, record entities.ApprovalRecord) error {
	if strings.TrimSpace(record.ID) == "" {
		return domainerrors.ErrInvalidLedgerInput
	}
	row := approvalModel{
		ID:         strings.TrimSpace(record.ID),
		Owner:      strings.TrimSpace(record.Owner),
		Spender:    strings.TrimSpace(record.Spender),
		Value:      record.Value,
		OccurredAt: record.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return r.logError("ledger_repo_save_approval_failed", err,
			"approval_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) SaveHolderRecord(ctx context.Context, record entities.HolderRecord) error {
	account := strings.TrimSpace(record.Account)
	if account == "" {
		return domainerrors.ErrInvalidAccount
	}
	row := holderModel{
		Account:       account,
		FirstCreditAt: record.FirstCreditAt.UTC(),
	}
	// The registry is append-only and de-duplicated; replays keep the
	// original first-credit row.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account"}},
			DoNothing: true,
		}).
		Create(&row).
		Error
	if err != nil {
		return r.logError("ledger_repo_save_holder_failed", err,
			"account", account,
		)
	}
	return nil
}

func (r *Repository) ListTransferRecords(ctx context.Context, account string, limit int) ([]entities.TransferRecord, error) {
	account = strings.TrimSpace(account)
	if limit <= 0 {
		limit = 100
	}
	var rows []transferModel
	query := r.db.WithContext(ctx).Order("occurred_at DESC").Limit(limit)
	if account != "" {
		query = query.Where("from_acct = ? OR to_acct = ?", account, account)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_transfers_failed", err,
			"account", account,
		)
	}
	records := make([]entities.TransferRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, entities.TransferRecord{
			ID:         row.ID,
			From:       row.FromAcct,
			To:         row.ToAcct,
			Value:      row.Value,
			Kind:       entities.TransferKind(row.Kind),
			Spender:    row.Spender,
			OccurredAt: row.OccurredAt,
		})
	}
	return records, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+7)
	fields = append(fields,
		"event", event,
		"module", "ledger-core/token-ledger",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("ledger repository operation failed", fields...)
	return err
}

type transferModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	FromAcct   string    `gorm:"column:from_acct"`
	ToAcct     string    `gorm:"column:to_acct"`
	Value      uint64    `gorm:"column:value"`
	Kind       string    `gorm:"column:kind"`
	Spender    string    `gorm:"column:spender"`
	OccurredAt time.Time `gorm:"column:occurred_at"`
}

func (transferModel) TableName() string {
	return "ledger_transfers"
}

type approvalModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	Owner      string    `gorm:"column:owner"`
	Spender    string    `gorm:"column:spender"`
	Value      uint64    `gorm:"column:value"`
	OccurredAt time.Time `gorm:"column:occurred_at"`
}

func (approvalModel) TableName() string {
	return "ledger_approvals"
}

type holderModel struct {
	Account       string    `gorm:"column:account;primaryKey"`
	Position      int64     `gorm:"column:position;autoIncrement"`
	FirstCreditAt time.Time `gorm:"column:first_credit_at"`
}

func (holderModel) TableName() string {
	return "ledger_holders"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.RecordArchive = (*Repository)(nil)
