// Package storage persists Ledgerly's entities in SQLite through GORM.
// Every transaction query is scoped by owner: handlers never pass a bare
// row id without the user it must belong to.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledgerly/internal/core"
	"ledgerly/internal/models"
)

// ErrNotFound reports a lookup that matched no row owned by the requesting
// user. Foreign rows are indistinguishable from missing ones.
var ErrNotFound = errors.New("not found")

type Repository struct {
	db *gorm.DB
}

// Open opens (creating if needed) the SQLite database at dbPath, runs
// migrations, and returns a ready repository. Foreign key enforcement is
// switched on per connection; the cascade rules live in the schema.
func Open(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open("file:"+dbPath+"?_fk=1"), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	return NewRepository(db)
}

// NewRepository wraps an already-open GORM handle, running migrations first.
func NewRepository(db *gorm.DB) (*Repository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Repository{db: db}, nil
}

// Ping verifies the database connection, for readiness checks.
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// owned returns the transaction query scoped to one user.
func (r *Repository) owned(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Transaction{}).Where("transactions.user_id = ?", userID)
}

// CreateTransaction stores a validated draft and returns the new row.
func (r *Repository) CreateTransaction(ctx context.Context, userID uint, draft core.TransactionDraft) (*models.Transaction, error) {
	txn := models.Transaction{
		UserID:        userID,
		CategoryID:    draft.CategoryID,
		Name:          draft.Name,
		Type:          draft.Direction,
		AmountInCents: draft.AmountInCents,
		OccurredOn:    core.DateOnly(draft.OccurredOn),
		Note:          draft.Note,
	}
	if err := r.db.WithContext(ctx).Create(&txn).Error; err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return &txn, nil
}

// GetTransaction fetches one transaction scoped to its owner. A row owned by
// a different user yields ErrNotFound, the same as a missing row.
func (r *Repository) GetTransaction(ctx context.Context, userID, id uint) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND id = ?", userID, id).
		First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return &txn, nil
}

// UpdateTransaction re-validates ownership and overwrites the mutable fields
// of an existing transaction from the draft. The update anchors on a bare
// model, never the preloaded row: handing GORM a row with its Category
// loaded would autosave the association and clobber the map's category_id.
func (r *Repository) UpdateTransaction(ctx context.Context, userID, id uint, draft core.TransactionDraft) (*models.Transaction, error) {
	if _, err := r.GetTransaction(ctx, userID, id); err != nil {
		return nil, err
	}
	updates := map[string]any{
		"name":            draft.Name,
		"type":            draft.Direction,
		"amount_in_cents": draft.AmountInCents,
		"category_id":     draft.CategoryID,
		"occurred_on":     core.DateOnly(draft.OccurredOn),
		"note":            draft.Note,
		"updated_at":      time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("update transaction %d: %w", id, err)
	}
	return r.GetTransaction(ctx, userID, id)
}

// DeleteTransaction removes one transaction after the ownership-scoped
// lookup; deleting a foreign or missing id fails with ErrNotFound first.
func (r *Repository) DeleteTransaction(ctx context.Context, userID, id uint) error {
	txn, err := r.GetTransaction(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(txn).Error; err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return nil
}

// ClearHistory bulk-deletes every transaction owned by userID and reports
// how many rows went away. Other users' rows are untouched by construction.
func (r *Repository) ClearHistory(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Transaction{})
	if res.Error != nil {
		return 0, fmt.Errorf("clear history: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CountTransactions returns the user's total transaction count.
func (r *Repository) CountTransactions(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := r.owned(ctx, userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// ListTransactions returns the user's full history, newest first.
func (r *Repository) ListTransactions(ctx context.Context, userID uint) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", userID).
		Order("occurred_on DESC, id DESC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}

// CycleTotals sums income and outgo within the half-open window
// [start, end). Windows with no rows yield zero totals.
func (r *Repository) CycleTotals(ctx context.Context, userID uint, start, end time.Time) (income, outgo int64, err error) {
	type row struct {
		Type  core.Direction
		Total int64
	}
	var rows []row
	err = r.owned(ctx, userID).
		Select("type, COALESCE(SUM(amount_in_cents), 0) AS total").
		Where("occurred_on >= ? AND occurred_on < ?", start, end).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, fmt.Errorf("cycle totals: %w", err)
	}
	for _, r := range rows {
		switch r.Type {
		case core.DirectionIncome:
			income = r.Total
		case core.DirectionOutgo:
			outgo = r.Total
		}
	}
	return income, outgo, nil
}

// TopExpenses returns the largest outgoing transactions in the window.
// Ties break on ascending id so the ordering is stable across requests.
func (r *Repository) TopExpenses(ctx context.Context, userID uint, start, end time.Time, limit int) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND type = ? AND occurred_on >= ? AND occurred_on < ?",
			userID, core.DirectionOutgo, start, end).
		Order("amount_in_cents DESC, id ASC").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("top expenses: %w", err)
	}
	return txns, nil
}

// RecentTransactions returns the newest transactions inside the window.
func (r *Repository) RecentTransactions(ctx context.Context, userID uint, start, end time.Time, limit int) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND occurred_on >= ? AND occurred_on < ?", userID, start, end).
		Order("occurred_on DESC, id DESC").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return txns, nil
}

// SearchTransactions filters the user's full history with a case-insensitive
// substring match across name, note, category name, and the direction value.
// An empty query returns no rows; search never means "everything".
func (r *Repository) SearchTransactions(ctx context.Context, userID uint, query string, limit int) ([]models.Transaction, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	pattern := "%" + strings.ToLower(query) + "%"
	var txns []models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Category").
		Joins("LEFT JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ?", userID).
		Where(
			"LOWER(transactions.name) LIKE ? OR LOWER(transactions.note) LIKE ? OR LOWER(COALESCE(categories.name, '')) LIKE ? OR LOWER(transactions.type) LIKE ?",
			pattern, pattern, pattern, pattern,
		).
		Order("transactions.occurred_on DESC, transactions.id DESC").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("search transactions: %w", err)
	}
	return txns, nil
}

// SuggestTransactionNames returns distinct transaction names matching the
// query, alphabetical, capped at limit.
func (r *Repository) SuggestTransactionNames(ctx context.Context, userID uint, query string, limit int) ([]string, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	var names []string
	err := r.owned(ctx, userID).
		Where("name <> '' AND LOWER(name) LIKE ?", pattern).
		Distinct().
		Order("name ASC").
		Limit(limit).
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("suggest transaction names: %w", err)
	}
	return names, nil
}

// SuggestCategoryNames returns distinct active category names matching the
// query, alphabetical, capped at limit.
func (r *Repository) SuggestCategoryNames(ctx context.Context, query string, limit int) ([]string, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	var names []string
	err := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("is_active = ? AND LOWER(name) LIKE ?", true, pattern).
		Distinct().
		Order("name ASC").
		Limit(limit).
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("suggest category names: %w", err)
	}
	return names, nil
}

// TransactionsForMonth returns the user's transactions within one calendar
// month, ordered by date, name, then id for deterministic grouping.
func (r *Repository) TransactionsForMonth(ctx context.Context, userID uint, year, month int) ([]models.Transaction, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	var txns []models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND occurred_on >= ? AND occurred_on < ?", userID, start, end).
		Order("occurred_on ASC, name ASC, id ASC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("transactions for month: %w", err)
	}
	return txns, nil
}

// TransactionsUpdatedSince returns every transaction, across all users,
// created or modified after the given instant. The export worker uses it to
// catch rows whose events were lost.
func (r *Repository) TransactionsUpdatedSince(ctx context.Context, since time.Time) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("updated_at > ?", since).
		Order("updated_at ASC, id ASC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("transactions updated since %s: %w", since.Format(time.RFC3339), err)
	}
	return txns, nil
}

// ActiveCategories lists the categories available for tagging new expenses.
func (r *Repository) ActiveCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&cats).Error
	if err != nil {
		return nil, fmt.Errorf("active categories: %w", err)
	}
	return cats, nil
}

// CreateCategory adds a new active category.
func (r *Repository) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	cat := models.Category{Name: strings.TrimSpace(name), IsActive: true}
	if cat.Name == "" {
		return nil, fmt.Errorf("create category: %w", core.ErrEmptyName)
	}
	if err := r.db.WithContext(ctx).Create(&cat).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &cat, nil
}

// DeactivateCategory soft-deletes a category. Historical transactions keep
// their reference; only new tagging stops offering it.
func (r *Repository) DeactivateCategory(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetOrCreateSettings returns the user's settings row, creating it with
// defaults on first access. The insert is an atomic upsert keyed on user_id
// so concurrent first requests cannot race into duplicate rows.
func (r *Repository) GetOrCreateSettings(ctx context.Context, userID uint, today time.Time) (*models.UserSettings, error) {
	defaults := models.UserSettings{
		UserID:         userID,
		CycleStartDate: core.FirstOfMonth(today),
		CurrencyCode:   core.DefaultCurrency,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&defaults).Error
	if err != nil {
		return nil, fmt.Errorf("upsert settings: %w", err)
	}

	var settings models.UserSettings
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &settings, nil
}

// UpdateCycleStart persists a new cycle anchor date.
func (r *Repository) UpdateCycleStart(ctx context.Context, userID uint, start time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.UserSettings{}).
		Where("user_id = ?", userID).
		Update("cycle_start_date", core.DateOnly(start)).Error
	if err != nil {
		return fmt.Errorf("update cycle start: %w", err)
	}
	return nil
}

// UpdateCurrency persists a new preferred currency code.
func (r *Repository) UpdateCurrency(ctx context.Context, userID uint, code string) error {
	err := r.db.WithContext(ctx).Model(&models.UserSettings{}).
		Where("user_id = ?", userID).
		Update("currency_code", code).Error
	if err != nil {
		return fmt.Errorf("update currency: %w", err)
	}
	return nil
}

// CreateUser stores a new user with a pre-hashed password.
func (r *Repository) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	user := models.User{Username: username, PasswordHash: passwordHash}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// UserByUsername looks a user up for login.
func (r *Repository) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user by username: %w", err)
	}
	return &user, nil
}

// DeleteUser removes the account. Transactions and settings cascade away via
// the schema's foreign keys.
func (r *Repository) DeleteUser(ctx context.Context, userID uint) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, userID)
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
